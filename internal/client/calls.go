package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chordring/internal/domain"
	"chordring/internal/rpc/dhtv1"
)

var (
	// ErrNoPredecessor is returned when a remote node reports no
	// predecessor set yet (a NotFound response to GetPredecessor).
	ErrNoPredecessor = errors.New("client: remote node has no predecessor")
	// ErrUnavailable marks a transport failure against a remote peer.
	ErrUnavailable = errors.New("client: remote node unavailable")
)

func toNodeInfo(n *dhtv1.NodeInfo) domain.NodeInfo {
	if n == nil {
		return domain.NodeInfo{}
	}
	return domain.NodeInfo{ID: domain.ID(n.ID), Addr: n.Addr}
}

func fromNodeInfo(n domain.NodeInfo) *dhtv1.NodeInfo {
	return &dhtv1.NodeInfo{ID: uint64(n.ID), Addr: n.Addr}
}

func normalize(err error) error {
	if err == nil {
		return nil
	}
	s, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch s.Code() {
	case codes.NotFound:
		return ErrNoPredecessor
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, s.Message())
	}
}

// FindSuccessor asks the peer at addr to resolve target via its own
// find_successor.
func (p *Pool) FindSuccessor(ctx context.Context, addr string, target domain.ID) (domain.NodeInfo, error) {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return domain.NodeInfo{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	resp, err := cli.FindSuccessor(ctx, &dhtv1.FindSuccessorRequest{ID: uint64(target)})
	if err != nil {
		return domain.NodeInfo{}, normalize(err)
	}
	return toNodeInfo(resp), nil
}

// GetPredecessor asks the peer at addr for its predecessor.
func (p *Pool) GetPredecessor(ctx context.Context, addr string) (domain.NodeInfo, error) {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return domain.NodeInfo{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	resp, err := cli.GetPredecessor(ctx, &dhtv1.Empty{})
	if err != nil {
		return domain.NodeInfo{}, normalize(err)
	}
	return toNodeInfo(resp), nil
}

// GetSuccessorList asks the peer at addr for its successor list.
func (p *Pool) GetSuccessorList(ctx context.Context, addr string) ([]domain.NodeInfo, error) {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	resp, err := cli.GetSuccessorList(ctx, &dhtv1.Empty{})
	if err != nil {
		return nil, normalize(err)
	}
	out := make([]domain.NodeInfo, 0, len(resp.Successors))
	for _, n := range resp.Successors {
		out = append(out, toNodeInfo(&n))
	}
	return out, nil
}

// Notify tells the peer at addr that self believes it may be its
// predecessor.
func (p *Pool) Notify(ctx context.Context, addr string, self domain.NodeInfo) error {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	_, err = cli.Notify(ctx, fromNodeInfo(self))
	if err != nil {
		return normalize(err)
	}
	return nil
}

// Ping checks liveness of the peer at addr.
func (p *Pool) Ping(ctx context.Context, addr string) error {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	_, err = cli.Ping(ctx, &dhtv1.Empty{})
	if err != nil {
		return normalize(err)
	}
	return nil
}

// Put forwards a put to the owner at addr.
func (p *Pool) Put(ctx context.Context, addr, key, value string) (bool, error) {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	resp, err := cli.Put(ctx, &dhtv1.PutRequest{Key: key, Value: value})
	if err != nil {
		return false, normalize(err)
	}
	return resp.Success, nil
}

// Replicate pushes a key/value pair to a replica at addr, fire-and-forget
// from the caller's perspective (errors are returned for logging only).
func (p *Pool) Replicate(ctx context.Context, addr, key, value string) error {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	_, err = cli.Replicate(ctx, &dhtv1.ReplicateRequest{Key: key, Value: value})
	if err != nil {
		return normalize(err)
	}
	return nil
}

// Get forwards a get to the owner at addr.
func (p *Pool) Get(ctx context.Context, addr, key string) (string, bool, error) {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	resp, err := cli.Get(ctx, &dhtv1.GetRequest{Key: key})
	if err != nil {
		return "", false, normalize(err)
	}
	return resp.Value, resp.Found, nil
}

// TransferKeys hands a batch of entries to the peer at addr.
func (p *Pool) TransferKeys(ctx context.Context, addr string, entries map[string]string) error {
	cli, err := p.GetFromPool(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	_, err = cli.TransferKeys(ctx, &dhtv1.TransferKeysRequest{Entries: entries})
	if err != nil {
		return normalize(err)
	}
	return nil
}
