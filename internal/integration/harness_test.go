// Package integration drives whole rings of in-process nodes over real
// loopback gRPC connections, the goroutine-hosted equivalent of the
// docker-container rings the teacher's client-worker/tester binaries used
// to drive (see DESIGN.md).
package integration

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"chordring/internal/client"
	"chordring/internal/domain"
	"chordring/internal/logger"
	"chordring/internal/node"
	"chordring/internal/routingtable"
	"chordring/internal/server"
	"chordring/internal/storage"
)

const (
	succListSize  = 5
	replFactor    = 2
	dialTimeout   = 500 * time.Millisecond
	failureWindow = 500 * time.Millisecond

	stabilizeInterval = 20 * time.Millisecond
	fixFingerInterval = 15 * time.Millisecond
	checkPredInterval = 20 * time.Millisecond
	replicateInterval = 25 * time.Millisecond
)

// ringNode is one goroutine-hosted peer: real gRPC server, real client
// pool, real routing table and storage, wired exactly as cmd/node wires
// them minus config loading and bootstrap discovery.
type ringNode struct {
	n    *node.Node
	cp   *client.Pool
	addr string
	lis  net.Listener
	srv  *server.Server
	stop context.CancelFunc
}

func spawnNode(t *testing.T, joinAddr string) *ringNode {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	self := domain.NodeInfo{ID: domain.HashString(addr), Addr: addr}

	rt := routingtable.New(self, succListSize)
	cp := client.New(dialTimeout, failureWindow)
	store := storage.NewMemory(&logger.NopLogger{})

	n := node.New(rt, cp, store,
		node.ReplicationConfig{Factor: replFactor},
		node.WithLeaveGraceDelay(10*time.Millisecond),
	)

	srv := server.New(lis, n, nil)
	go func() { _ = srv.Start() }()

	if joinAddr == "" {
		n.CreateNewDHT()
	} else {
		joinCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := n.Join(joinCtx, joinAddr); err != nil {
			t.Fatalf("join %s via %s: %v", addr, joinAddr, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.StartBackgroundTasks(ctx, node.BackgroundConfig{
		Stabilize:           stabilizeInterval,
		FixFingers:          fixFingerInterval,
		CheckPredecessor:    checkPredInterval,
		MaintainReplication: replicateInterval,
	})

	return &ringNode{n: n, cp: cp, addr: addr, lis: lis, srv: srv, stop: cancel}
}

// crash stops the gRPC server and background tasks without transferring
// keys, simulating an abrupt departure (§4.8) rather than a graceful leave.
func (r *ringNode) crash() {
	r.stop()
	r.srv.Stop()
}

// leave performs the graceful-leave handoff, then tears the node down.
func (r *ringNode) leave(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r.n.LeaveNetwork(ctx)
	r.stop()
	r.srv.Stop()
}

// spawnRing builds a size-N ring by joining each node to the first.
func spawnRing(t *testing.T, size int) []*ringNode {
	t.Helper()
	nodes := make([]*ringNode, 0, size)
	first := spawnNode(t, "")
	nodes = append(nodes, first)
	for i := 1; i < size; i++ {
		nodes = append(nodes, spawnNode(t, first.addr))
	}
	return nodes
}

func stopAll(nodes []*ringNode) {
	for _, n := range nodes {
		n.stop()
		n.srv.Stop()
	}
}

func settle(d time.Duration) { time.Sleep(d) }

// key builds a distinct test key so successive sub-tests don't collide
// when they happen to hash into the same node's range.
func key(prefix string, i int) string { return fmt.Sprintf("%s-%d", prefix, i) }
