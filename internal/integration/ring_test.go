package integration

import (
	"context"
	"testing"
	"time"
)

// A lone node forms a single-node ring: its own successor, no predecessor
// needed, state Active immediately.
func TestRingFormationSingleNode(t *testing.T) {
	n := spawnNode(t, "")
	defer stopAll([]*ringNode{n})

	succ, err := n.n.GetSuccessor()
	if err != nil {
		t.Fatalf("GetSuccessor: %v", err)
	}
	if succ.Addr != n.addr {
		t.Fatalf("single node successor = %s, want self %s", succ.Addr, n.addr)
	}
}

// Three nodes converge to a closed ring: node 0's successor chain walked
// three times returns to node 0.
func TestRingClosesAfterJoins(t *testing.T) {
	nodes := spawnRing(t, 3)
	defer stopAll(nodes)
	settle(2 * time.Second)

	start := nodes[0]
	addr := start.addr
	for i := 0; i < 3; i++ {
		succ, err := findNodeByAddr(nodes, addr).n.GetSuccessor()
		if err != nil {
			t.Fatalf("hop %d: GetSuccessor: %v", i, err)
		}
		addr = succ.Addr
	}
	if addr != start.addr {
		t.Fatalf("ring did not close: after 3 hops landed on %s, want %s", addr, start.addr)
	}
}

func findNodeByAddr(nodes []*ringNode, addr string) *ringNode {
	for _, n := range nodes {
		if n.addr == addr {
			return n
		}
	}
	return nil
}

// A value put through one entry point is readable through every other
// entry point once the ring has stabilized, since routing (not the entry
// node's own storage) decides ownership.
func TestRoutedPutGet(t *testing.T) {
	nodes := spawnRing(t, 5)
	defer stopAll(nodes)
	settle(2 * time.Second)

	k, v := key("routed", 1), "hello-ring"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	ok, err := nodes[0].n.Put(ctx, k, v)
	cancel()
	if err != nil || !ok {
		t.Fatalf("put: ok=%v err=%v", ok, err)
	}

	for _, n := range nodes {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		got, found, err := n.n.Get(ctx, k)
		cancel()
		if err != nil {
			t.Fatalf("get from %s: %v", n.addr, err)
		}
		if !found || got != v {
			t.Fatalf("get from %s: found=%v value=%q, want %q", n.addr, found, got, v)
		}
	}
}

// Joining a node never loses keys: the total number of distinct stored
// keys across the ring is conserved across a join (some move owner, none
// vanish).
func TestJoinConservesKeys(t *testing.T) {
	nodes := spawnRing(t, 3)
	defer stopAll(nodes) // covers the original 3; the joiner below stops itself
	settle(1500 * time.Millisecond)

	const n = 30
	for i := 0; i < n; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		ok, err := nodes[i%len(nodes)].n.Put(ctx, key("conserve", i), "v")
		cancel()
		if err != nil || !ok {
			t.Fatalf("put %d: ok=%v err=%v", i, ok, err)
		}
	}
	settle(500 * time.Millisecond)

	before := totalStoredKeys(nodes)
	if before != n {
		t.Fatalf("before join: stored %d keys, want %d", before, n)
	}

	joiner := spawnNode(t, nodes[0].addr)
	nodes = append(nodes, joiner)
	defer joiner.stop()
	settle(1500 * time.Millisecond)

	after := totalStoredKeys(nodes)
	if after != n {
		t.Fatalf("after join: stored %d keys, want %d (keys lost or duplicated)", after, n)
	}
}

func totalStoredKeys(nodes []*ringNode) int {
	seen := map[string]struct{}{}
	for _, n := range nodes {
		for _, k := range n.n.BuildSnapshot().StoredKeys {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// A graceful leave hands every locally-held key to the successor before
// exiting; the key set survives the departure and stays readable.
func TestGracefulLeaveReclaimsKeys(t *testing.T) {
	nodes := spawnRing(t, 4)
	settle(1500 * time.Millisecond)

	const n = 12
	for i := 0; i < n; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		ok, err := nodes[0].n.Put(ctx, key("leave", i), "v")
		cancel()
		if err != nil || !ok {
			t.Fatalf("put %d: ok=%v err=%v", i, ok, err)
		}
	}
	settle(300 * time.Millisecond)

	leaving := nodes[1]
	remaining := append([]*ringNode{}, nodes[0], nodes[2], nodes[3])
	leaving.leave(t)
	settle(1500 * time.Millisecond)
	defer stopAll(remaining)

	for i := 0; i < n; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, found, err := remaining[0].n.Get(ctx, key("leave", i))
		cancel()
		if err != nil || !found {
			t.Fatalf("get %d after leave: found=%v err=%v", i, found, err)
		}
	}
}

// Replication keeps a key readable after its owner crashes without a
// graceful leave, as long as a replica holder is still reachable.
func TestCrashSurvivesViaReplication(t *testing.T) {
	nodes := spawnRing(t, 5)
	settle(1500 * time.Millisecond)

	const n = 20
	for i := 0; i < n; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		ok, err := nodes[0].n.Put(ctx, key("crash", i), "v")
		cancel()
		if err != nil || !ok {
			t.Fatalf("put %d: ok=%v err=%v", i, ok, err)
		}
	}
	settle(500 * time.Millisecond)

	crashed := nodes[2]
	survivors := append([]*ringNode{}, nodes[0], nodes[1], nodes[3], nodes[4])
	crashed.crash()
	defer stopAll(survivors)
	settle(2 * time.Second)

	missing := 0
	for i := 0; i < n; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, found, err := survivors[0].n.Get(ctx, key("crash", i))
		cancel()
		if err != nil || !found {
			missing++
		}
	}
	if missing > 0 {
		t.Fatalf("%d/%d keys unreadable after crash despite replication factor %d", missing, n, replFactor)
	}
}

// A 20-node ring still routes every put to a readable, consistent owner.
func TestLargeRingPutGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large ring test in -short mode")
	}
	nodes := spawnRing(t, 20)
	defer stopAll(nodes)
	settle(5 * time.Second)

	const n = 50
	for i := 0; i < n; i++ {
		entry := nodes[i%len(nodes)]
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		ok, err := entry.n.Put(ctx, key("large", i), "v")
		cancel()
		if err != nil || !ok {
			t.Fatalf("put %d via %s: ok=%v err=%v", i, entry.addr, ok, err)
		}
	}
	settle(300 * time.Millisecond)

	for i := 0; i < n; i++ {
		entry := nodes[(i+7)%len(nodes)]
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, found, err := entry.n.Get(ctx, key("large", i))
		cancel()
		if err != nil || !found {
			t.Fatalf("get %d via %s: found=%v err=%v", i, entry.addr, found, err)
		}
	}
}
