// Package node implements the chord peer: routing, stabilization, and the
// put/get/replicate/join/leave handlers that sit behind the RPC surface.
package node

import (
	"os"
	"sync/atomic"
	"time"

	"chordring/internal/client"
	"chordring/internal/domain"
	"chordring/internal/logger"
	"chordring/internal/routingtable"
	"chordring/internal/storage"
)

// State is a node's lifecycle stage (§4.9). Transitions are linear; a node
// never re-enters an earlier state.
type State int32

const (
	Bootstrapping State = iota
	Joining
	Active
	Leaving
	Terminated
)

func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case Joining:
		return "joining"
	case Active:
		return "active"
	case Leaving:
		return "leaving"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// ReplicationConfig fixes the two chord constants spec.md names: L
// (successor list length) is carried on the routing table itself; R
// (replication factor) governs how many successors receive a pushed copy.
type ReplicationConfig struct {
	Factor int
}

type Option func(*Node)

func WithLogger(l logger.Logger) Option {
	return func(n *Node) { n.lgr = l }
}

// WithLeaveGraceDelay sets the delay between a leave RPC completing and
// the process exiting (§4.8). Defaults to 100ms if unset.
func WithLeaveGraceDelay(d time.Duration) Option {
	return func(n *Node) { n.leaveGraceDelay = d }
}

// Node is a chord peer: its routing state, connection pool, local store,
// and lifecycle state.
type Node struct {
	rt              *routingtable.RoutingTable
	cp              *client.Pool
	s               storage.Store
	lgr             logger.Logger
	repl            ReplicationConfig
	state           atomic.Int32
	leaveGraceDelay time.Duration
}

// New builds a Node over an existing routing table, connection pool, and
// store.
func New(rt *routingtable.RoutingTable, cp *client.Pool, s storage.Store, repl ReplicationConfig, opts ...Option) *Node {
	n := &Node{rt: rt, cp: cp, s: s, lgr: &logger.NopLogger{}, repl: repl, leaveGraceDelay: 100 * time.Millisecond}
	for _, o := range opts {
		o(n)
	}
	n.state.Store(int32(Bootstrapping))
	return n
}

// ScheduleExit sleeps the configured grace delay then terminates the
// process, the second half of the leave RPC contract (§4.8).
func (n *Node) ScheduleExit() {
	time.Sleep(n.leaveGraceDelay)
	n.setState(Terminated)
	n.lgr.Info("leave grace delay elapsed, exiting")
	os.Exit(0)
}

func (n *Node) Self() domain.NodeInfo { return n.rt.Self() }

// State returns the node's current lifecycle state.
func (n *Node) State() State { return State(n.state.Load()) }

func (n *Node) setState(s State) { n.state.Store(int32(s)) }

// CreateNewDHT initializes a brand-new single-node ring.
func (n *Node) CreateNewDHT() {
	n.rt.InitSingleNode()
	n.setState(Active)
	n.lgr.Info("created new ring", logger.FNode("self", n.Self()))
}
