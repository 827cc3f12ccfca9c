package gbl

import (
	"math/rand"

	"github.com/eyebp/boosting/logger"
)

//MinLeafExamples is the process wide lower bound on examples per leaf. It is
//read at candidate evaluation and asserted again at materialization. Change
//it before training starts, never while a tree is growing.
var MinLeafExamples = 256

//TreeRegressor grows one regression tree over a dataset and a target vector,
//which during boosting is the current pseudo residual. The randomness of row
//and feature sampling comes from the generator handed to GetTree, so a fixed
//seed fixes the tree.
type TreeRegressor struct {
	ds         *DataSet
	targets    []float64
	fun        GbmFun
	threadsNum int
	arena      splitArena
	frontier   []int
}

//NewTreeRegressor prepares a regressor. threadsNum above one moves the per
//feature histogram scans of each candidate onto a pool; the grown tree is
//identical either way.
func NewTreeRegressor(ds *DataSet, targets []float64, fun GbmFun, threadsNum int) *TreeRegressor {
	if len(targets) != ds.NumExamples {
		logger.Panicf("the target length %d is not equal to the number of examples %d", len(targets), ds.NumExamples)
	}
	if threadsNum < 1 {
		threadsNum = 1
	}
	return &TreeRegressor{ds: ds, targets: targets, fun: fun, threadsNum: threadsNum}
}

//GetTree samples rows, grows at most numSplits internal nodes best first and
//materializes the result. Gains of the selected splits are added into fimps
//by feature. The sampled subset must be large enough to fill every possible
//leaf with MinLeafExamples rows.
func (tr *TreeRegressor) GetTree(numSplits int, exampleSamplingRate, featureSamplingRate float64, rng *rand.Rand, fimps []float64) *Tree {
	if len(fimps) != tr.ds.NumFeatures() {
		logger.Panicf("the importance vector length %d is not equal to the number of features %d", len(fimps), tr.ds.NumFeatures())
	}
	tr.arena.reset()
	tr.frontier = tr.frontier[:0]

	subset := sampleRows(rng, tr.ds.NumExamples, exampleSamplingRate)
	numLeaves := numSplits + 1
	if len(subset) < MinLeafExamples*numLeaves {
		logger.Panicf("%d sampled examples cannot fill %d leaves of %d examples each", len(subset), numLeaves, MinLeafExamples)
	}

	rootIdx := tr.getBestSplits(subset, numSplits, featureSamplingRate, rng)

	tree := &Tree{}
	tr.materialize(rootIdx, tree, fimps)
	return tree
}

//getBestSplits runs the select and expand loop: take the strictly best
//candidate off the frontier, partition its subset, evaluate the two children
//and put them back on the frontier unless the budget is spent. The loop ends
//early when no frontier candidate improves on staying a leaf.
func (tr *TreeRegressor) getBestSplits(subset []int, numSplits int, featureSamplingRate float64, rng *rand.Rand) int {
	rootIdx := tr.evaluateCandidate(subset, featureSamplingRate, false, rng)
	tr.frontier = append(tr.frontier, rootIdx)

	numSelected := 0
	for numSelected < numSplits {
		if len(tr.frontier) != numSelected+1 {
			logger.Panicf("the frontier holds %d candidates, want %d", len(tr.frontier), numSelected+1)
		}

		bestGain := 0.0
		bestPos := -1
		for pos, idx := range tr.frontier {
			if tr.arena.at(idx).Gain > bestGain {
				bestGain = tr.arena.at(idx).Gain
				bestPos = pos
			}
		}
		if bestPos < 0 {
			break
		}

		bestIdx := tr.frontier[bestPos]
		tr.arena.at(bestIdx).Selected = true
		numSelected++
		tr.frontier = append(tr.frontier[:bestPos], tr.frontier[bestPos+1:]...)

		left, right := tr.ds.PartitionSubset(tr.arena.at(bestIdx).Subset, tr.arena.at(bestIdx).Fid, tr.arena.at(bestIdx).Fv)
		if len(left) < MinLeafExamples || len(right) < MinLeafExamples {
			logger.Panicf("a selected split left %d and %d examples, both sides need at least %d", len(left), len(right), MinLeafExamples)
		}

		terminal := numSelected == numSplits
		leftIdx := tr.evaluateCandidate(left, featureSamplingRate, terminal, rng)
		rightIdx := tr.evaluateCandidate(right, featureSamplingRate, terminal, rng)
		// evaluateCandidate may move the arena, write through fresh indices
		tr.arena.at(bestIdx).Left = leftIdx
		tr.arena.at(bestIdx).Right = rightIdx
		if !terminal {
			tr.frontier = append(tr.frontier, leftIdx, rightIdx)
		}
	}
	return rootIdx
}

//materialize converts the candidate at candidateIdx into output tree nodes,
//parent before children, and returns the node index. Unselected candidates
//become leaves valued by the objective; selected ones carry their split and
//add their gain to the importance of their feature.
func (tr *TreeRegressor) materialize(candidateIdx int, tree *Tree, fimps []float64) int {
	if candidateIdx < 0 {
		return -1
	}
	candidate := tr.arena.at(candidateIdx)

	nodeId := len(tree.Nodes)
	if !candidate.Selected {
		if len(candidate.Subset) < MinLeafExamples {
			logger.Panicf("a leaf holds %d examples, the minimum is %d", len(candidate.Subset), MinLeafExamples)
		}
		value := tr.fun.LeafValue(candidate.Subset, tr.targets)
		logger.Infof("leaf %d: value %v over %d examples", nodeId, value, len(candidate.Subset))
		tree.Nodes = append(tree.Nodes, TreeNode{
			TreeNodeId: nodeId, FeatureId: -1, Fv: -1,
			Value: value, LeftIndex: -1, RightIndex: -1,
			NumExamples: len(candidate.Subset),
		})
		return nodeId
	}

	fimps[candidate.Fid] += candidate.Gain
	value := tr.fun.LeafValue(candidate.Subset, tr.targets)
	tree.Nodes = append(tree.Nodes, TreeNode{
		TreeNodeId: nodeId, FeatureId: candidate.Fid, Fv: candidate.Fv,
		Boundary: tr.ds.Features[candidate.Fid].Transitions[candidate.Fv],
		Gain:     candidate.Gain, Value: value, LeftIndex: -1, RightIndex: -1,
		NumExamples: len(candidate.Subset),
	})
	leftIdx := tr.materialize(tr.arena.at(candidateIdx).Left, tree, fimps)
	tree.Nodes[nodeId].LeftIndex = leftIdx
	rightIdx := tr.materialize(tr.arena.at(candidateIdx).Right, tree, fimps)
	tree.Nodes[nodeId].RightIndex = rightIdx
	return nodeId
}
