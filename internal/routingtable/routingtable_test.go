package routingtable

import (
	"testing"

	"chordring/internal/domain"
)

func TestInitSingleNode(t *testing.T) {
	self := domain.NodeInfo{ID: 10, Addr: "a"}
	rt := New(self, 5)
	rt.InitSingleNode()

	if rt.FirstSuccessor().ID != self.ID {
		t.Fatalf("successor = %v, want self", rt.FirstSuccessor())
	}
	if rt.GetPredecessor().ID != self.ID {
		t.Fatalf("predecessor = %v, want self", rt.GetPredecessor())
	}
	if rt.GetFinger(0).ID != self.ID {
		t.Fatalf("finger[0] = %v, want self", rt.GetFinger(0))
	}
}

func TestPromoteCandidate(t *testing.T) {
	self := domain.NodeInfo{ID: 1, Addr: "a"}
	rt := New(self, 3)
	rt.SetSuccessorList([]domain.NodeInfo{
		{ID: 2, Addr: "b"},
		{ID: 3, Addr: "c"},
		{ID: 4, Addr: "d"},
	})
	rt.PromoteCandidate(1)
	list := rt.SuccessorList()
	if len(list) != 2 || list[0].ID != 3 || list[1].ID != 4 {
		t.Fatalf("after promote, list = %v", list)
	}
}

func TestFindingerCandidatesOrderAndDedup(t *testing.T) {
	self := domain.NodeInfo{ID: 100, Addr: "self"}
	rt := New(self, 3)
	rt.SetFinger(0, domain.NodeInfo{ID: 150, Addr: "x"})
	rt.SetFinger(1, domain.NodeInfo{ID: 150, Addr: "x"}) // duplicate id
	rt.SetFinger(2, domain.NodeInfo{ID: 300, Addr: "y"})
	rt.SetFinger(3, domain.NodeInfo{ID: 100, Addr: "self"}) // equals self, excluded

	cands := rt.FindingerCandidates(400)
	if len(cands) != 2 {
		t.Fatalf("expected 2 deduped candidates, got %d: %v", len(cands), cands)
	}
	if cands[0].ID != 300 || cands[1].ID != 150 {
		t.Fatalf("expected descending order [300,150], got %v", cands)
	}
}

func TestClearPredecessorIfMatches(t *testing.T) {
	self := domain.NodeInfo{ID: 1, Addr: "a"}
	rt := New(self, 3)
	rt.SetPredecessor(domain.NodeInfo{ID: 99, Addr: "p"})

	if rt.ClearPredecessorIfMatches(1) {
		t.Fatalf("should not clear on mismatched id")
	}
	if !rt.HasPredecessor() {
		t.Fatalf("predecessor should still be set")
	}
	if !rt.ClearPredecessorIfMatches(99) {
		t.Fatalf("should clear on matching id")
	}
	if rt.HasPredecessor() {
		t.Fatalf("predecessor should be cleared")
	}
}
