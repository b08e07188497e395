package client

import (
	"testing"
	"time"
)

func TestPoolRefCounting(t *testing.T) {
	// Dialing loopback addresses succeeds even with nothing listening,
	// since grpc.DialContext without WithBlock returns immediately.
	p := New(time.Second, time.Second)
	defer p.CloseAll()

	addr := "127.0.0.1:1"
	if err := p.AddRef(addr); err != nil {
		t.Fatalf("AddRef: %v", err)
	}
	if err := p.AddRef(addr); err != nil {
		t.Fatalf("AddRef: %v", err)
	}
	p.Release(addr)
	p.mu.Lock()
	_, stillPresent := p.conns[addr]
	p.mu.Unlock()
	if !stillPresent {
		t.Fatalf("connection evicted after only one of two releases")
	}
	p.Release(addr)
	p.mu.Lock()
	_, stillPresent = p.conns[addr]
	p.mu.Unlock()
	if stillPresent {
		t.Fatalf("connection not evicted after matching releases")
	}
}
