// Package routingtable holds a node's view of the ring: its predecessor,
// successor list, and finger table. Each slot is guarded by its own
// sync.RWMutex, so a reader of one finger never blocks a writer of
// another — the pattern the whole node package relies on when it takes
// read-only snapshots before any remote call.
package routingtable

import (
	"sync"

	"chordring/internal/domain"
	"chordring/internal/logger"
)

// NumFingers is the fixed finger-table size for a 64-bit ring.
const NumFingers = domain.Bits

type routingEntry struct {
	mu   sync.RWMutex
	node *domain.NodeInfo
}

type Option func(*RoutingTable)

func WithLogger(l logger.Logger) Option {
	return func(rt *RoutingTable) { rt.lgr = l }
}

// RoutingTable is the per-node ring state.
type RoutingTable struct {
	lgr           logger.Logger
	self          domain.NodeInfo
	succListSize  int
	successorList []*routingEntry
	predecessor   *routingEntry
	fingers       []*routingEntry
}

// New builds a routing table for self, with succListSize successor slots
// and a full 64-entry finger table, all initially empty.
func New(self domain.NodeInfo, succListSize int, opts ...Option) *RoutingTable {
	rt := &RoutingTable{
		lgr:           &logger.NopLogger{},
		self:          self,
		succListSize:  succListSize,
		successorList: make([]*routingEntry, succListSize),
		predecessor:   &routingEntry{},
		fingers:       make([]*routingEntry, NumFingers),
	}
	for i := range rt.successorList {
		rt.successorList[i] = &routingEntry{}
	}
	for i := range rt.fingers {
		rt.fingers[i] = &routingEntry{}
	}
	for _, o := range opts {
		o(rt)
	}
	return rt
}

// InitSingleNode points the first successor slot, the predecessor, and every
// finger at self, the state of a freshly created ring with one member. The
// other successor slots stay empty.
func (rt *RoutingTable) InitSingleNode() {
	rt.SetSuccessor(0, rt.self)
	rt.SetPredecessor(rt.self)
	for i := 0; i < NumFingers; i++ {
		rt.SetFinger(i, rt.self)
	}
}

func (rt *RoutingTable) Self() domain.NodeInfo       { return rt.self }
func (rt *RoutingTable) SuccListSize() int           { return rt.succListSize }

// GetSuccessor returns successor slot i, or the zero NodeInfo if unset or
// out of range.
func (rt *RoutingTable) GetSuccessor(i int) domain.NodeInfo {
	if i < 0 || i >= len(rt.successorList) {
		rt.lgr.Warn("GetSuccessor index out of range", logger.F("i", i))
		return domain.NodeInfo{}
	}
	e := rt.successorList[i]
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.node == nil {
		return domain.NodeInfo{}
	}
	return *e.node
}

// SetSuccessor sets successor slot i.
func (rt *RoutingTable) SetSuccessor(i int, n domain.NodeInfo) {
	if i < 0 || i >= len(rt.successorList) {
		rt.lgr.Warn("SetSuccessor index out of range", logger.F("i", i))
		return
	}
	e := rt.successorList[i]
	e.mu.Lock()
	defer e.mu.Unlock()
	node := n
	e.node = &node
}

// FirstSuccessor is GetSuccessor(0).
func (rt *RoutingTable) FirstSuccessor() domain.NodeInfo { return rt.GetSuccessor(0) }

// SuccessorList returns a snapshot of the non-empty successor entries, in
// order.
func (rt *RoutingTable) SuccessorList() []domain.NodeInfo {
	out := make([]domain.NodeInfo, 0, len(rt.successorList))
	for _, e := range rt.successorList {
		e.mu.RLock()
		if e.node != nil {
			out = append(out, *e.node)
		}
		e.mu.RUnlock()
	}
	return out
}

// SetSuccessorList overwrites the successor list, truncating or padding
// with empty entries to match succListSize.
func (rt *RoutingTable) SetSuccessorList(nodes []domain.NodeInfo) {
	for i := 0; i < rt.succListSize; i++ {
		if i < len(nodes) {
			rt.SetSuccessor(i, nodes[i])
		} else {
			e := rt.successorList[i]
			e.mu.Lock()
			e.node = nil
			e.mu.Unlock()
		}
	}
	rt.lgr.Debug("successor list updated", logger.F("list", rt.SuccessorList()))
}

// PromoteCandidate rebuilds the successor list starting from entry i (the
// first live candidate found by the caller after the current head failed).
func (rt *RoutingTable) PromoteCandidate(i int) {
	if i <= 0 || i >= len(rt.successorList) {
		rt.lgr.Warn("PromoteCandidate invalid index", logger.F("i", i))
		return
	}
	candidate := rt.GetSuccessor(i)
	if candidate.IsZero() {
		rt.lgr.Warn("PromoteCandidate: candidate empty", logger.F("i", i))
		return
	}
	rest := make([]domain.NodeInfo, 0, rt.succListSize)
	rest = append(rest, candidate)
	for j := i + 1; j < len(rt.successorList); j++ {
		n := rt.GetSuccessor(j)
		if !n.IsZero() {
			rest = append(rest, n)
		}
	}
	rt.SetSuccessorList(rest)
}

// GetPredecessor returns the predecessor, or the zero NodeInfo if absent.
func (rt *RoutingTable) GetPredecessor() domain.NodeInfo {
	rt.predecessor.mu.RLock()
	defer rt.predecessor.mu.RUnlock()
	if rt.predecessor.node == nil {
		return domain.NodeInfo{}
	}
	return *rt.predecessor.node
}

// HasPredecessor reports whether a predecessor is currently set.
func (rt *RoutingTable) HasPredecessor() bool {
	rt.predecessor.mu.RLock()
	defer rt.predecessor.mu.RUnlock()
	return rt.predecessor.node != nil
}

// SetPredecessor sets the predecessor.
func (rt *RoutingTable) SetPredecessor(n domain.NodeInfo) {
	rt.predecessor.mu.Lock()
	defer rt.predecessor.mu.Unlock()
	node := n
	rt.predecessor.node = &node
}

// ClearPredecessor removes the predecessor.
func (rt *RoutingTable) ClearPredecessor() {
	rt.predecessor.mu.Lock()
	defer rt.predecessor.mu.Unlock()
	rt.predecessor.node = nil
}

// ClearPredecessorIfMatches clears the predecessor only if it currently
// equals id (used by check_predecessor, which must not clobber a
// predecessor that changed concurrently).
func (rt *RoutingTable) ClearPredecessorIfMatches(id domain.ID) bool {
	rt.predecessor.mu.Lock()
	defer rt.predecessor.mu.Unlock()
	if rt.predecessor.node != nil && rt.predecessor.node.ID == id {
		rt.predecessor.node = nil
		return true
	}
	return false
}

// GetFinger returns finger-table entry i.
func (rt *RoutingTable) GetFinger(i int) domain.NodeInfo {
	if i < 0 || i >= len(rt.fingers) {
		return domain.NodeInfo{}
	}
	e := rt.fingers[i]
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.node == nil {
		return domain.NodeInfo{}
	}
	return *e.node
}

// SetFinger sets finger-table entry i.
func (rt *RoutingTable) SetFinger(i int, n domain.NodeInfo) {
	if i < 0 || i >= len(rt.fingers) {
		return
	}
	e := rt.fingers[i]
	e.mu.Lock()
	defer e.mu.Unlock()
	node := n
	e.node = &node
}

// FingerTable returns a snapshot of every set finger entry.
func (rt *RoutingTable) FingerTable() []domain.NodeInfo {
	out := make([]domain.NodeInfo, 0, len(rt.fingers))
	for _, e := range rt.fingers {
		e.mu.RLock()
		if e.node != nil {
			out = append(out, *e.node)
		}
		e.mu.RUnlock()
	}
	return out
}

// FindingerCandidates returns finger entries whose id lies in the open
// interval (self.id, target), deduplicated by id and sorted by descending
// clockwise distance from self (descending id when the interval does not
// wrap) — the closest-preceding-finger candidate order find_successor uses.
func (rt *RoutingTable) FindingerCandidates(target domain.ID) []domain.NodeInfo {
	seen := make(map[domain.ID]bool)
	var out []domain.NodeInfo
	for _, e := range rt.fingers {
		e.mu.RLock()
		n := e.node
		e.mu.RUnlock()
		if n == nil || n.IsZero() || n.ID == rt.self.ID {
			continue
		}
		if !n.ID.BetweenOpen(rt.self.ID, target) {
			continue
		}
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, *n)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ID-rt.self.ID > out[i].ID-rt.self.ID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// DebugLog emits one structured snapshot of the whole table.
func (rt *RoutingTable) DebugLog() {
	rt.lgr.Debug("routing table snapshot",
		logger.F("self", rt.self),
		logger.F("predecessor", rt.GetPredecessor()),
		logger.F("successors", rt.SuccessorList()),
		logger.F("fingers", rt.FingerTable()),
	)
}
