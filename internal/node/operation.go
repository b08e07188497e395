package node

import (
	"context"
	"errors"
	"fmt"

	"chordring/internal/ctxutil"
	"chordring/internal/domain"
	"chordring/internal/logger"
)

// ErrUnavailable is returned when a routing operation exhausts every
// candidate hop without success.
var ErrUnavailable = errors.New("node: unavailable, no live hop reachable")

// FindSuccessor resolves the current best-known successor of target,
// making remote calls as needed (§4.1). It never returns self as the
// answer unless self genuinely is the successor.
func (n *Node) FindSuccessor(ctx context.Context, target domain.ID) (domain.NodeInfo, error) {
	self := n.Self()
	ctx = ctxutil.EnsureTraceID(ctx, self.ID)
	if ctxutil.HopsFromContext(ctx) < 0 {
		ctx = ctxutil.WithHops(ctx)
	}
	n.lgr.Debug("find_successor",
		logger.F("target", target.ToHexString(true)),
		logger.F("traceID", ctxutil.TraceIDFromContext(ctx)),
		logger.F("hops", ctxutil.HopsFromContext(ctx)))

	succ := n.rt.FirstSuccessor()

	if !succ.IsZero() && target.Between(self.ID, succ.ID) {
		return succ, nil
	}

	tried := make(map[domain.ID]bool)
	tried[self.ID] = true

	for _, cand := range n.rt.FindingerCandidates(target) {
		tried[cand.ID] = true
		info, err := n.cp.FindSuccessor(ctx, cand.Addr, target)
		if err != nil {
			n.lgr.Debug("find_successor candidate unreachable", logger.F("addr", cand.Addr), logger.F("err", err.Error()))
			n.HandlePeerGone(cand.Addr)
			continue
		}
		return info, nil
	}

	for _, s := range n.rt.SuccessorList() {
		if tried[s.ID] || s.IsZero() {
			continue
		}
		tried[s.ID] = true
		info, err := n.cp.FindSuccessor(ctx, s.Addr, target)
		if err != nil {
			n.lgr.Debug("find_successor fallback unreachable", logger.F("addr", s.Addr), logger.F("err", err.Error()))
			n.HandlePeerGone(s.Addr)
			continue
		}
		return info, nil
	}

	if !succ.IsZero() {
		// Every finger candidate and successor-list entry failed. (A
		// single-node ring never gets here: succ is self and the first
		// check above covers the whole ring.)
		return domain.NodeInfo{}, ErrUnavailable
	}
	return domain.NodeInfo{}, ErrUnavailable
}

// Notify is invoked by a would-be predecessor p (§4.3).
func (n *Node) Notify(p domain.NodeInfo) {
	self := n.Self()
	hadPred := n.rt.HasPredecessor()
	pred := n.rt.GetPredecessor()

	adopt := !hadPred || p.ID.BetweenOpen(pred.ID, self.ID)
	if !adopt || p.ID == self.ID {
		return
	}

	n.rt.SetPredecessor(p)
	n.lgr.Info("adopted new predecessor", logger.FNode("predecessor", p))

	// Keys in (old predecessor, p] now belong to p. With no old predecessor
	// the lower bound is self, so every key outside (p, self] is handed over.
	lower := pred.ID
	if !hadPred {
		lower = self.ID
	}
	toTransfer := n.s.Between(lower, p.ID)
	if len(toTransfer) == 0 {
		return
	}
	go n.transferKeysAsync(p, toTransfer)
}

// transferKeysAsync ships resources to p and removes them locally only
// after the remote side has acknowledged receipt (remove-after-ack).
func (n *Node) transferKeysAsync(p domain.NodeInfo, resources []domain.Resource) {
	entries := make(map[string]string, len(resources))
	for _, r := range resources {
		entries[r.RawKey] = r.Value
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
	defer cancel()
	if err := n.cp.TransferKeys(ctx, p.Addr, entries); err != nil {
		n.lgr.Warn("key transfer failed, keys kept locally", logger.F("to", p.Addr), logger.F("err", err.Error()))
		return
	}
	for _, r := range resources {
		_ = n.s.Delete(r.Key)
	}
	n.lgr.Debug("transferred keys", logger.F("to", p.Addr), logger.F("count", len(resources)))
}

// Put stores (key, value), forwarding to the owner if it isn't self, and
// fans out fire-and-forget replication to the R nearest successors when it
// is (§4.6).
func (n *Node) Put(ctx context.Context, key, value string) (bool, error) {
	owner, err := n.FindSuccessor(ctx, domain.HashString(key))
	if err != nil {
		return false, err
	}
	self := n.Self()
	if owner.ID == self.ID {
		n.s.Put(domain.NewResource(key, value))
		go n.replicateToSuccessors(key, value)
		return true, nil
	}
	return n.cp.Put(ctx, owner.Addr, key, value)
}

// Get retrieves key, forwarding to the owner if it isn't self.
func (n *Node) Get(ctx context.Context, key string) (string, bool, error) {
	owner, err := n.FindSuccessor(ctx, domain.HashString(key))
	if err != nil {
		return "", false, err
	}
	self := n.Self()
	if owner.ID == self.ID {
		res, err := n.s.Get(domain.HashString(key))
		if err != nil {
			return "", false, nil
		}
		return res.Value, true, nil
	}
	return n.cp.Get(ctx, owner.Addr, key)
}

// Replicate stores (key, value) as a replica copy; it is not distinguished
// from a primary entry in the store.
func (n *Node) Replicate(key, value string) {
	n.s.Put(domain.NewResource(key, value))
}

// TransferKeys bulk-inserts a batch handed off by notify or leave.
func (n *Node) TransferKeys(entries map[string]string) {
	for k, v := range entries {
		n.s.Put(domain.NewResource(k, v))
	}
}

// replicateToSuccessors pushes (key,value) to the first R successors,
// skipping self, logging but never surfacing failures (fire-and-forget).
func (n *Node) replicateToSuccessors(key, value string) {
	self := n.Self()
	count := 0
	for _, s := range n.rt.SuccessorList() {
		if count >= n.repl.Factor {
			break
		}
		if s.IsZero() || s.ID == self.ID {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
		err := n.cp.Replicate(ctx, s.Addr, key, value)
		cancel()
		if err != nil {
			n.lgr.Warn("replicate failed", logger.F("to", s.Addr), logger.F("err", err.Error()))
		}
		count++
	}
}

// Join resolves self's successor through an existing ring member. The
// predecessor remains unset until a notify arrives from behind.
func (n *Node) Join(ctx context.Context, peerAddr string) error {
	n.setState(Joining)
	self := n.Self()
	succ, err := n.cp.FindSuccessor(ctx, peerAddr, self.ID)
	if err != nil {
		return fmt.Errorf("node: join via %s: %w", peerAddr, err)
	}
	n.rt.SetSuccessor(0, succ)
	n.setState(Active)
	n.lgr.Info("joined ring", logger.F("via", peerAddr), logger.FNode("successor", succ))
	return nil
}

// LeaveNetwork transfers every locally-held key to the immediate successor
// (§4.8). Failure is logged, not retried; replication plus stabilization
// recovers the data.
func (n *Node) LeaveNetwork(ctx context.Context) {
	n.setState(Leaving)
	succ := n.rt.FirstSuccessor()
	self := n.Self()
	if succ.IsZero() || succ.ID == self.ID {
		return
	}
	resources := n.s.All()
	if len(resources) == 0 {
		return
	}
	entries := make(map[string]string, len(resources))
	for _, r := range resources {
		entries[r.RawKey] = r.Value
	}
	if err := n.cp.TransferKeys(ctx, succ.Addr, entries); err != nil {
		n.lgr.Warn("leave: key transfer failed", logger.F("to", succ.Addr), logger.F("err", err.Error()))
		return
	}
	n.lgr.Info("leave: transferred keys to successor", logger.F("to", succ.Addr), logger.F("count", len(resources)))
}

// HandlePeerGone releases the pooled connection to a peer that routing
// found unreachable. Routing-table slots that still point at the peer are
// left as they are.
func (n *Node) HandlePeerGone(addr string) {
	n.cp.Release(addr)
}
