package dom

// Node is a member of the document tree: *Document, *Page, *Step, *Geometry
// or any Element. Ownership flows strictly downwards, parent links are
// lookups only.
type Node interface {
	IsDisposed() bool
	IsDisposing() bool
	IsFrozen() bool
	// Freeze makes the node (and, through propagation to its ancestors, the
	// whole tree it belongs to) read-only. Freezing is permanent.
	Freeze()
	// Dispose releases the node. Disposing twice is a no-op.
	Dispose() error

	parentNode() Node
	state() *lifecycle
}

// IsFrozen reports whether n or any of its ancestors is frozen.
func IsFrozen(n Node) bool {
	for ; n != nil; n = n.parentNode() {
		if n.state().frozen {
			return true
		}
	}
	return false
}

// IsLocked reports effective lock state of n. Only steps, element
// collections and elements can be locked.
func IsLocked(n Node) bool {
	if l, ok := n.(interface{ IsLocked() bool }); ok {
		return l.IsLocked()
	}
	return false
}

// DocumentOf returns document n belongs to, nil for detached nodes.
func DocumentOf(n Node) *Document {
	for ; n != nil; n = n.parentNode() {
		if d, ok := n.(*Document); ok {
			return d
		}
	}
	return nil
}

// PageOf returns the nearest enclosing page.
func PageOf(n Node) *Page {
	for ; n != nil; n = n.parentNode() {
		if p, ok := n.(*Page); ok {
			return p
		}
	}
	return nil
}

// StepOf returns the nearest enclosing step.
func StepOf(n Node) *Step {
	for ; n != nil; n = n.parentNode() {
		if s, ok := n.(*Step); ok {
			return s
		}
	}
	return nil
}

// isAncestor reports whether a is n or one of n's ancestors.
func isAncestor(a, n Node) bool {
	for ; n != nil; n = n.parentNode() {
		if n == a {
			return true
		}
	}
	return false
}
