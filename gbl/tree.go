package gbl

import (
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"gonum.org/v1/gonum/mat"
)

//TreeNode is a node of a materialized tree. The tree is stored in an array,
//parent before children. LeftIndex and RightIndex are equal to -1 when the
//node is a leaf, otherwise they contain array indices of the children. An
//internal node routes a row left when the row's bin code for FeatureId is
//less than or equal to Fv; Boundary is the raw value of that threshold.
type TreeNode struct {
	TreeNodeId            int
	FeatureId             int
	Fv                    int
	Boundary              float64
	Gain                  float64
	Value                 float64
	LeftIndex, RightIndex int // -1, -1 if it is a leaf
	NumExamples           int
}

//IsLeaf returns whether this node is a leaf.
func (node TreeNode) IsLeaf() bool {
	return node.LeftIndex == -1 && node.RightIndex == -1
}

//GraphDescription returns the description of a tree node for rendering.
func (node TreeNode) GraphDescription() string {
	var sb strings.Builder
	if node.IsLeaf() {
		sb.WriteString(fmt.Sprintln("id: ", node.TreeNodeId))
		sb.WriteString(fmt.Sprintf("value: %6.5f\n", node.Value))
		sb.WriteString(fmt.Sprintln("#", node.NumExamples))
		return sb.String()
	}
	sb.WriteString(fmt.Sprintln("#", node.NumExamples))
	sb.WriteString(fmt.Sprintln("id: ", node.TreeNodeId))
	sb.WriteString(fmt.Sprintln("gain: ", node.Gain))
	sb.WriteString(fmt.Sprintf("f_%d <= %6.5f", node.FeatureId, node.Boundary))
	return sb.String()
}

//Tree is one materialized regression tree.
type Tree struct {
	Nodes []TreeNode
}

//Root returns the index of the root node.
func (tree Tree) Root() int {
	return 0
}

//NumLeaves counts the leaves of the tree.
func (tree Tree) NumLeaves() int {
	leaves := 0
	for _, node := range tree.Nodes {
		if node.IsLeaf() {
			leaves++
		}
	}
	return leaves
}

//NumInternal counts the internal nodes of the tree.
func (tree Tree) NumInternal() int {
	return len(tree.Nodes) - tree.NumLeaves()
}

//PredictCode walks one encoded row of a dataset down to a leaf and returns
//the leaf value.
func (tree Tree) PredictCode(ds *DataSet, row int) float64 {
	ind := 0
	for !tree.Nodes[ind].IsLeaf() {
		if ds.Code(tree.Nodes[ind].FeatureId, row) <= tree.Nodes[ind].Fv {
			ind = tree.Nodes[ind].LeftIndex
		} else {
			ind = tree.Nodes[ind].RightIndex
		}
	}
	return tree.Nodes[ind].Value
}

//PredictRaw walks one row of a raw feature matrix down to a leaf, comparing
//values against the stored boundaries.
func (tree Tree) PredictRaw(features *mat.Dense, p int) float64 {
	ind := 0
	for !tree.Nodes[ind].IsLeaf() {
		if features.At(p, tree.Nodes[ind].FeatureId) <= tree.Nodes[ind].Boundary {
			ind = tree.Nodes[ind].LeftIndex
		} else {
			ind = tree.Nodes[ind].RightIndex
		}
	}
	return tree.Nodes[ind].Value
}

//PredictValue infers one column of predictions for a raw feature matrix.
func (tree Tree) PredictValue(features *mat.Dense) (prediction *mat.Dense) {
	h, _ := features.Dims()
	prediction = mat.NewDense(h, 1, nil)
	for p := 0; p < h; p++ {
		prediction.Set(p, 0, tree.PredictRaw(features, p))
	}
	return
}

func recurrentDraw(g *cgraph.Graph, tree Tree, nodeNumber int, parentNode *cgraph.Node) {
	currentNode, err := g.CreateNode(fmt.Sprint(tree.Nodes[nodeNumber].TreeNodeId))
	HandleError(err)

	if parentNode != nil {
		_, err = g.CreateEdge("", parentNode, currentNode)
		HandleError(err)
	}

	currentNode.Set("label", tree.Nodes[nodeNumber].GraphDescription())
	if tree.Nodes[nodeNumber].IsLeaf() {
		currentNode.Set("shape", "box")
	} else {
		recurrentDraw(g, tree, tree.Nodes[nodeNumber].LeftIndex, currentNode)
		recurrentDraw(g, tree, tree.Nodes[nodeNumber].RightIndex, currentNode)
	}
}

func (tree Tree) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph) {
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	HandleError(err)

	recurrentDraw(graph, tree, 0, nil)

	return graphViz, graph
}
