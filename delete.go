package rtree

// Remove deletes the item with the given payload from the tree. The
// descent only enters subtrees whose envelope contains the item's
// envelope, so the envelope should be the one the payload was
// inserted under; any other envelope may cause the item to be missed.
// When the item is not found the call is a no-op.
func (t *RTree[T]) Remove(payload T, envelope Envelope) {
	var (
		path    []*node[T]
		indexes []int
		parent  *node[T]
		i       int
		goingUp bool
	)

	n := t.root
	for n != nil || len(path) != 0 {
		if n == nil {
			// Pop back up to the parent and resume at the recorded
			// sibling index.
			n = path[len(path)-1]
			path = path[:len(path)-1]
			if len(path) == 0 {
				parent = nil
			} else {
				parent = path[len(path)-1]
			}
			i = indexes[len(indexes)-1]
			indexes = indexes[:len(indexes)-1]
			goingUp = true
		}

		if n.leaf {
			if idx := findPayload(n, payload); idx != -1 {
				dropChild(n, idx)
				path = append(path, n)
				t.condense(path)
				return
			}
		}

		switch {
		case !goingUp && !n.leaf && n.envelope.Contains(envelope):
			// Go down.
			path = append(path, n)
			indexes = append(indexes, i)
			i = 0
			parent = n
			n = n.children[0]
		case parent != nil:
			// Go right.
			i++
			if i == len(parent.children) {
				n = nil
			} else {
				n = parent.children[i]
			}
			goingUp = false
		default:
			// The ascent exhausted the root; the item is not present.
			n = nil
		}
	}
}

// condense walks the removal path from the deepest node upward,
// pruning nodes left empty and refreshing the envelopes of the rest.
// Nodes that fall below the minimum fill are tolerated; only truly
// empty nodes are removed.
func (t *RTree[T]) condense(path []*node[T]) {
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if len(n.children) == 0 {
			if i == 0 {
				t.Clear()
			} else {
				dropNode(path[i-1], n)
			}
		} else {
			n.refreshEnvelope()
		}
	}
}

// findPayload scans a leaf for the entry holding payload.
func findPayload[T comparable](leaf *node[T], payload T) int {
	for i, child := range leaf.children {
		if child.payload == payload {
			return i
		}
	}
	return -1
}

// dropChild removes the child at index idx, preserving the order of
// the rest.
func dropChild[T comparable](n *node[T], idx int) {
	copy(n.children[idx:], n.children[idx+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
}

// dropNode removes child from parent's child list, matching by node
// identity.
func dropNode[T comparable](parent, child *node[T]) {
	for i, sibling := range parent.children {
		if sibling == child {
			dropChild(parent, i)
			return
		}
	}
}
