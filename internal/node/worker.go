package node

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"chordring/internal/client"
	"chordring/internal/domain"
	"chordring/internal/logger"
	"chordring/internal/rpc/monitorv1"
)

// BackgroundConfig carries the five periodic-activity intervals (§2).
type BackgroundConfig struct {
	Stabilize           time.Duration
	FixFingers          time.Duration
	CheckPredecessor    time.Duration
	MaintainReplication time.Duration
	ReportToMonitor     time.Duration
	MonitorAddr         string
}

// StartBackgroundTasks launches the periodic-activity goroutines: four
// always, plus report_to_monitor when cfg.MonitorAddr is set. Each runs
// until ctx is done.
func (n *Node) StartBackgroundTasks(ctx context.Context, cfg BackgroundConfig) {
	go n.loop(ctx, cfg.Stabilize, n.stabilize)
	go n.loop(ctx, cfg.FixFingers, n.fixFingers)
	go n.loop(ctx, cfg.CheckPredecessor, n.checkPredecessor)
	go n.loop(ctx, cfg.MaintainReplication, n.maintainReplication)
	if cfg.MonitorAddr != "" {
		go n.loop(ctx, cfg.ReportToMonitor, func() { n.reportToMonitor(cfg.MonitorAddr) })
	}
}

func (n *Node) loop(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// stabilize converges successor_list[0] to the true immediate successor
// and publishes self to it (§4.2).
func (n *Node) stabilize() {
	self := n.Self()
	s := n.rt.FirstSuccessor()
	if s.IsZero() {
		return
	}

	if s.ID != self.ID {
		ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
		x, err := n.cp.GetPredecessor(ctx, s.Addr)
		cancel()

		switch {
		case err == nil:
			if !x.IsZero() && x.ID.BetweenOpen(self.ID, s.ID) {
				// Re-verify successor hasn't changed since the snapshot.
				if n.rt.FirstSuccessor().ID == s.ID {
					n.rt.SetSuccessor(0, x)
					n.lgr.Debug("stabilize: adopted closer successor", logger.FNode("successor", x))
				}
			}
		case errors.Is(err, client.ErrNoPredecessor):
			// Successor is alive but has no predecessor yet; nothing to adopt.
		default:
			n.handleSuccessorFailure(s)
			return
		}
	}

	s = n.rt.FirstSuccessor()
	if s.ID != self.ID {
		ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
		notifyErr := n.cp.Notify(ctx, s.Addr, self)
		cancel()
		if notifyErr != nil {
			n.handleSuccessorFailure(s)
			return
		}

		ctx2, cancel2 := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
		remoteList, err := n.cp.GetSuccessorList(ctx2, s.Addr)
		cancel2()
		if err == nil {
			newList := make([]domain.NodeInfo, 0, n.rt.SuccListSize())
			newList = append(newList, s)
			for _, r := range remoteList {
				if len(newList) >= n.rt.SuccListSize() {
					break
				}
				if r.ID == self.ID {
					break
				}
				newList = append(newList, r)
			}
			n.rt.SetSuccessorList(newList)
		}
	}
}

// handleSuccessorFailure demotes a dead successor, promoting the next
// non-empty entry in the successor list (its liveness is checked on the
// next stabilize tick), or reverting to single-node mode if none remain.
func (n *Node) handleSuccessorFailure(dead domain.NodeInfo) {
	n.lgr.Warn("stabilize: successor unreachable", logger.FNode("successor", dead))
	n.cp.Release(dead.Addr)

	for i := 1; i < n.rt.SuccListSize(); i++ {
		cand := n.rt.GetSuccessor(i)
		if !cand.IsZero() {
			n.rt.PromoteCandidate(i)
			return
		}
	}
	n.lgr.Warn("stabilize: no live successor candidates, reverting to single-node mode")
	n.rt.SetSuccessor(0, n.Self())
}

// fixFingers refreshes one random finger-table slot per tick (§4.4).
func (n *Node) fixFingers() {
	i := rand.Intn(domain.Bits)
	target := domain.FingerStart(n.Self().ID, i)

	ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
	defer cancel()
	succ, err := n.FindSuccessor(ctx, target)
	if err != nil {
		return
	}
	n.rt.SetFinger(i, succ)
}

// checkPredecessor pings the predecessor and clears it on any failure,
// holding the clear-or-keep decision atomic against a concurrent notify
// (§4.5, §9: the write must be a single check-and-clear, not a
// check-then-separately-clear).
func (n *Node) checkPredecessor() {
	pred := n.rt.GetPredecessor()
	if pred.IsZero() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
	err := n.cp.Ping(ctx, pred.Addr)
	cancel()
	if err != nil {
		if n.rt.ClearPredecessorIfMatches(pred.ID) {
			n.cp.Release(pred.Addr)
			n.lgr.Warn("predecessor unreachable, cleared", logger.FNode("predecessor", pred))
		}
	}
}

// maintainReplication pushes every locally-primary key to the R nearest
// successors (§4.6).
func (n *Node) maintainReplication() {
	if !n.rt.HasPredecessor() {
		return
	}
	self := n.Self()
	pred := n.rt.GetPredecessor()
	owned := n.s.Between(pred.ID, self.ID)
	if len(owned) == 0 {
		return
	}
	successors := n.rt.SuccessorList()
	for _, res := range owned {
		count := 0
		for _, s := range successors {
			if count >= n.repl.Factor {
				break
			}
			if s.IsZero() || s.ID == self.ID {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
			err := n.cp.Replicate(ctx, s.Addr, res.RawKey, res.Value)
			cancel()
			if err != nil {
				n.lgr.Debug("maintain_replication: push failed", logger.F("to", s.Addr), logger.F("err", err.Error()))
			}
			count++
		}
	}
}

// reportToMonitor best-effort pushes a state snapshot to the observer.
func (n *Node) reportToMonitor(addr string) {
	snap := n.BuildSnapshot()
	wire := toWireSnapshot(snap)
	ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
	defer cancel()
	if err := n.cp.ReportState(ctx, addr, wire); err != nil {
		n.lgr.Debug("report_to_monitor failed", logger.F("err", err.Error()))
	}
}

func toWireSnapshot(s Snapshot) monitorv1.NodeSnapshot {
	out := monitorv1.NodeSnapshot{
		ID:         uint64(s.Self.ID),
		Addr:       s.Self.Addr,
		StoredKeys: s.StoredKeys,
		State:      s.State.String(),
	}
	if s.Predecessor != nil {
		out.Predecessor = &monitorv1.NodeInfo{ID: uint64(s.Predecessor.ID), Addr: s.Predecessor.Addr}
	}
	for _, n := range s.Successors {
		out.Successors = append(out.Successors, monitorv1.NodeInfo{ID: uint64(n.ID), Addr: n.Addr})
	}
	for _, n := range s.FingerTable {
		out.FingerTable = append(out.FingerTable, monitorv1.NodeInfo{ID: uint64(n.ID), Addr: n.Addr})
	}
	return out
}
