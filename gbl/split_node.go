package gbl

import "math/rand"

//SplitNode is one candidate of a growing tree. It owns its row subset. Fid
//is -1 while no feature improved on keeping the node whole. Left and Right
//are arena indices of the children, -1 until the candidate is selected and
//expanded. An unselected candidate is a leaf of the finished tree.
type SplitNode struct {
	Subset   []int
	Fid      int
	Fv       int
	Gain     float64
	Selected bool
	Left     int
	Right    int
}

//splitArena owns every candidate created during one growth call. Candidates
//are addressed by index; the arena is dropped as a whole once the tree has
//been materialized.
type splitArena struct {
	nodes []SplitNode
}

func (arena *splitArena) add(node SplitNode) int {
	arena.nodes = append(arena.nodes, node)
	return len(arena.nodes) - 1
}

func (arena *splitArena) at(idx int) *SplitNode {
	return &arena.nodes[idx]
}

func (arena *splitArena) reset() {
	arena.nodes = arena.nodes[:0]
}

//evaluateCandidate creates a candidate over a subset and stores it in the
//arena. A terminal candidate is a pre-leaf for an exhausted split budget: it
//skips the histogram work entirely. Otherwise every sampled feature is
//scanned and the strictly best one is kept, first feature winning ties.
func (tr *TreeRegressor) evaluateCandidate(subset []int, featureSamplingRate float64, terminal bool, rng *rand.Rand) int {
	node := SplitNode{Subset: subset, Fid: -1, Fv: -1, Left: -1, Right: -1}
	if !terminal {
		totalSum := 0.0
		for _, row := range subset {
			totalSum += tr.targets[row]
		}
		flips := sampleFeatures(rng, tr.ds, featureSamplingRate)
		node.Fid, node.Fv, node.Gain = findTheBestSplit(tr.ds, subset, tr.targets, totalSum, flips, tr.threadsNum)
	}
	return tr.arena.add(node)
}
