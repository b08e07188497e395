package domain

// NodeInfo is an opaque, freely-copied handle to a peer: its ring id and
// the network address it listens on. It carries no ownership or lifetime.
type NodeInfo struct {
	ID   ID
	Addr string
}

// IsZero reports whether n is the empty NodeInfo (no address known).
func (n NodeInfo) IsZero() bool { return n.Addr == "" }
