package rtree

import (
	"math"
	"sort"
)

// Insert adds a payload to the tree under the given envelope.
func (t *RTree[T]) Insert(payload T, envelope Envelope) {
	entry := &node[T]{envelope: envelope, payload: payload}
	t.insertNode(entry, t.root.height-1)
}

// insertNode places item at the given level below the root, splitting
// overflowing nodes on the way back up. Level root.height-1 is the
// leaf level; bulk loading passes shallower levels to graft whole
// subtrees.
func (t *RTree[T]) insertNode(item *node[T], level int) {
	target, path := t.chooseSubtree(item.envelope, level)
	target.children = append(target.children, item)
	target.envelope.Extend(item.envelope)

	for level >= 0 && len(path[level].children) > t.maxEntries {
		t.split(path, level)
		level--
	}

	// Levels consumed by splits had their envelopes refreshed inside
	// split; the remaining ancestors only need extending.
	for i := level; i >= 0; i-- {
		path[i].envelope.Extend(item.envelope)
	}
}

// chooseSubtree descends from the root to the given level, picking at
// each step the child whose envelope needs the least area enlargement
// to take in bbox. The returned path holds every visited node, the
// root at index 0 and the target at index level.
func (t *RTree[T]) chooseSubtree(bbox Envelope, level int) (*node[T], []*node[T]) {
	var path []*node[T]
	n := t.root
	for {
		path = append(path, n)
		if n.leaf || len(path)-1 == level {
			break
		}
		best := n.children[0]
		bestArea := best.envelope.Area()
		bestDelta := enlargedArea(bbox, best.envelope) - bestArea
		for _, child := range n.children[1:] {
			area := child.envelope.Area()
			delta := enlargedArea(bbox, child.envelope) - area
			if delta < bestDelta || (delta == bestDelta && area < bestArea) {
				// Area is used as a tie break if the enlargements
				// are the same.
				best = child
				bestDelta = delta
				bestArea = area
			}
		}
		n = best
	}
	return n, path
}

// split divides the overflowing node at path[level] in two, choosing
// the split axis by minimum total distribution margin and the split
// index by minimum overlap. The new sibling joins the parent's child
// list, or a new root if the split node was the root.
func (t *RTree[T]) split(path []*node[T], level int) {
	n := path[level]
	m, M := t.minEntries, len(n.children)

	t.chooseSplitAxis(n, m, M)
	splitIndex := t.chooseSplitIndex(n, m, M)

	sibling := &node[T]{
		envelope: emptyEnvelope(),
		children: append([]*node[T](nil), n.children[splitIndex:]...),
		height:   n.height,
		leaf:     n.leaf,
	}
	for i := splitIndex; i < len(n.children); i++ {
		n.children[i] = nil
	}
	n.children = n.children[:splitIndex]

	n.refreshEnvelope()
	sibling.refreshEnvelope()

	if level > 0 {
		parent := path[level-1]
		parent.children = append(parent.children, sibling)
	} else {
		t.splitRoot(n, sibling)
	}
}

// splitRoot grows the tree one level: the new root holds exactly the
// two siblings of a root split.
func (t *RTree[T]) splitRoot(left, right *node[T]) {
	root := &node[T]{
		envelope: emptyEnvelope(),
		children: []*node[T]{left, right},
		height:   left.height + 1,
	}
	root.refreshEnvelope()
	t.root = root
}

// chooseSplitAxis leaves the children of n sorted along the axis
// whose candidate distributions have the smallest total margin. Ties
// go to the Y axis, which the children are already sorted by.
func (t *RTree[T]) chooseSplitAxis(n *node[T], m, M int) {
	sortByMinX(n.children)
	marginX := allDistMargin(n, m, M)
	sortByMinY(n.children)
	marginY := allDistMargin(n, m, M)
	if marginX < marginY {
		sortByMinX(n.children)
	}
}

// allDistMargin sums the margins of every candidate left/right
// distribution of n's children in their current order.
func allDistMargin[T comparable](n *node[T], m, M int) int {
	left := distEnvelope(n, 0, m)
	right := distEnvelope(n, M-m, M)
	margin := left.Margin() + right.Margin()
	for i := m; i < M-m; i++ {
		left.Extend(n.children[i].envelope)
		margin += left.Margin()
	}
	for i := M - m - 1; i >= m; i-- {
		right.Extend(n.children[i].envelope)
		margin += right.Margin()
	}
	return margin
}

// chooseSplitIndex picks the distribution with minimum overlap
// between the two halves, breaking ties by minimum combined area.
// The earliest candidate wins a full tie.
func (t *RTree[T]) chooseSplitIndex(n *node[T], m, M int) int {
	index := m
	minOverlap := math.MaxInt
	minArea := math.MaxInt
	for i := m; i <= M-m; i++ {
		bbox1 := distEnvelope(n, 0, i)
		bbox2 := distEnvelope(n, i, M)

		overlap := intersectionArea(bbox1, bbox2)
		area := bbox1.Area() + bbox2.Area()

		if overlap < minOverlap || (overlap == minOverlap && area < minArea) {
			minOverlap = overlap
			minArea = area
			index = i
		}
	}
	return index
}

// distEnvelope returns the union of the child envelopes in [k, p).
func distEnvelope[T comparable](n *node[T], k, p int) Envelope {
	e := emptyEnvelope()
	for i := k; i < p; i++ {
		e.Extend(n.children[i].envelope)
	}
	return e
}

func sortByMinX[T comparable](children []*node[T]) {
	sort.Slice(children, func(i, j int) bool {
		return children[i].envelope.MinX < children[j].envelope.MinX
	})
}

func sortByMinY[T comparable](children []*node[T]) {
	sort.Slice(children, func(i, j int) bool {
		return children[i].envelope.MinY < children[j].envelope.MinY
	})
}
