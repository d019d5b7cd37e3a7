package dom

// lifecycle keeps the local state flags of a node. Effective (inherited)
// values are computed by walking parent links, see IsFrozen and IsLocked.
//
// Transitions are one way: Live -> Disposing -> Disposed and
// Unfrozen -> Frozen.
type lifecycle struct {
	disposing bool
	disposed  bool
	frozen    bool
}

func (l *lifecycle) state() *lifecycle { return l }

// IsDisposed reports whether the node has been disposed.
func (l *lifecycle) IsDisposed() bool { return l.disposed }

// IsDisposing reports whether the node is being torn down right now.
// Checks that would block the teardown are skipped for children of such node.
func (l *lifecycle) IsDisposing() bool { return l.disposing }

// IsLocallyFrozen reports whether Freeze was called on this very node.
func (l *lifecycle) IsLocallyFrozen() bool { return l.frozen }

// freeze flips the frozen flag of n after freezing everything n structurally
// depends on, so the whole chain up to the document root becomes frozen at
// once from the caller point of view.
func freeze(n Node) {
	st := n.state()
	if st.frozen || st.disposed {
		return
	}
	if p := n.parentNode(); p != nil {
		p.Freeze()
	}
	st.frozen = true
	notify(n, Change{Kind: ChangeFrozen, Source: n})
}

// ChangeKind classifies tree change notifications.
type ChangeKind int

const (
	ChangeInserted ChangeKind = iota
	ChangeRemoved
	ChangeReplaced
	ChangeCleared
	ChangeProperty
	ChangeLocked
	ChangeFrozen
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeInserted:
		return "inserted"
	case ChangeRemoved:
		return "removed"
	case ChangeReplaced:
		return "replaced"
	case ChangeCleared:
		return "cleared"
	case ChangeProperty:
		return "property"
	case ChangeLocked:
		return "locked"
	case ChangeFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Change describes a single mutation somewhere in a document tree.
type Change struct {
	Kind ChangeKind
	// Source is the node that changed. For structural changes it is the
	// container (document, page or element collection).
	Source Node
	// Item is the inserted, removed or replacing node.
	Item Node
	// Old is the replaced node.
	Old      Node
	Index    int
	Property string
}

// Observer receives change notifications of a document.
type Observer func(Change)

// observers is the registry owned by the document root. Nodes never keep
// subscriptions themselves, notifications bubble up through parent links.
type observers struct {
	next int
	fns  map[int]Observer
}

func (o *observers) add(fn Observer) func() {
	if o.fns == nil {
		o.fns = make(map[int]Observer)
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() { delete(o.fns, id) }
}

func (o *observers) dispatch(ch Change) {
	for i := 0; i < o.next; i++ {
		if fn, ok := o.fns[i]; ok {
			fn(ch)
		}
	}
}

func notify(n Node, ch Change) {
	d := DocumentOf(n)
	if d == nil || d.disposing || d.disposed {
		return
	}
	d.dispatch(ch)
}
