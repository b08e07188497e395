package node

import (
	"errors"

	"chordring/internal/domain"
)

// ErrNoPredecessor is returned by GetPredecessor when none is set yet.
var ErrNoPredecessor = errors.New("node: no predecessor set")

// ErrEmptySuccessorList is an assertion failure: every node always has at
// least itself as successor once initialized.
var ErrEmptySuccessorList = errors.New("node: successor list is empty")

// GetSuccessor returns the immediate successor.
func (n *Node) GetSuccessor() (domain.NodeInfo, error) {
	s := n.rt.FirstSuccessor()
	if s.IsZero() {
		return domain.NodeInfo{}, ErrEmptySuccessorList
	}
	return s, nil
}

// GetPredecessor returns the predecessor, or ErrNoPredecessor if absent.
func (n *Node) GetPredecessor() (domain.NodeInfo, error) {
	if !n.rt.HasPredecessor() {
		return domain.NodeInfo{}, ErrNoPredecessor
	}
	return n.rt.GetPredecessor(), nil
}

// GetSuccessorList returns the full successor list.
func (n *Node) GetSuccessorList() []domain.NodeInfo {
	return n.rt.SuccessorList()
}

// Ping is a liveness no-op; reachability alone is the signal.
func (n *Node) Ping() {}

// Snapshot captures node state for the monitor report.
type Snapshot struct {
	Self        domain.NodeInfo
	Predecessor *domain.NodeInfo
	Successors  []domain.NodeInfo
	FingerTable []domain.NodeInfo
	StoredKeys  []string
	State       State
}

func (n *Node) BuildSnapshot() Snapshot {
	snap := Snapshot{
		Self:        n.Self(),
		Successors:  n.rt.SuccessorList(),
		FingerTable: n.rt.FingerTable(),
		State:       n.State(),
	}
	if n.rt.HasPredecessor() {
		p := n.rt.GetPredecessor()
		snap.Predecessor = &p
	}
	for _, r := range n.s.All() {
		snap.StoredKeys = append(snap.StoredKeys, r.RawKey)
	}
	return snap
}
