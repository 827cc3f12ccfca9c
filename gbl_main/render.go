package main

import (
	"github.com/spf13/cobra"

	"github.com/eyebp/boosting/gbl"
	"github.com/eyebp/boosting/logger"
)

//RenderConfig drives the rendering of every tree of a model into a figure
//per tree. FigureType is one of png, svg and jpg.
type RenderConfig struct {
	FilenameModel     string `mapstructure:"filename_model"`
	FigureType        string `mapstructure:"figure_type"`
	PicturesDirectory string `mapstructure:"pictures_directory"`
	DumpPrefix        string `mapstructure:"dump_prefix"`
}

func renderCmd() *cobra.Command {
	var srcConfig string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the trees of a model as figures",
		Long:  `Load a trained model and draw every tree into its own png, svg or jpg file.`,
		Run: func(cmd *cobra.Command, args []string) {
			render(srcConfig)
		},
	}
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "render_config.json", "path to the render config")
	return cmd
}

func render(srcConfig string) {
	var renderConfig RenderConfig
	loadConfig(srcConfig, &renderConfig)

	if renderConfig.FigureType == "" {
		renderConfig.FigureType = "png"
	}
	if renderConfig.DumpPrefix == "" {
		renderConfig.DumpPrefix = "tree"
	}
	if renderConfig.PicturesDirectory == "" {
		renderConfig.PicturesDirectory = "."
	}

	model := gbl.LoadModel(renderConfig.FilenameModel)
	model.RenderTrees(renderConfig.DumpPrefix, renderConfig.FigureType, renderConfig.PicturesDirectory)
	logger.Infof("%d trees rendered into %s", len(model.Trees), renderConfig.PicturesDirectory)
}
