package server

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"chordring/internal/ctxutil"
	"chordring/internal/domain"
	"chordring/internal/node"
	"chordring/internal/rpc/dhtv1"
)

// dhtService bridges the dhtv1.DhtServer RPC surface onto a node.Node.
type dhtService struct {
	n *node.Node
}

// RegisterDHTService registers n's RPC handlers against srv.
func RegisterDHTService(srv grpc.ServiceRegistrar, n *node.Node) {
	dhtv1.RegisterDhtServer(srv, &dhtService{n: n})
}

func toWire(n domain.NodeInfo) *dhtv1.NodeInfo {
	return &dhtv1.NodeInfo{ID: uint64(n.ID), Addr: n.Addr}
}

func (s *dhtService) GetSuccessor(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.NodeInfo, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	succ, err := s.n.GetSuccessor()
	if err != nil {
		return nil, ctxutil.InternalError(err)
	}
	return toWire(succ), nil
}

func (s *dhtService) GetPredecessor(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.NodeInfo, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	pred, err := s.n.GetPredecessor()
	if err != nil {
		if errors.Is(err, node.ErrNoPredecessor) {
			return nil, ctxutil.NotFoundError(err)
		}
		return nil, ctxutil.InternalError(err)
	}
	return toWire(pred), nil
}

func (s *dhtService) FindSuccessor(ctx context.Context, req *dhtv1.FindSuccessorRequest) (*dhtv1.NodeInfo, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	info, err := s.n.FindSuccessor(ctx, domain.ID(req.ID))
	if err != nil {
		return nil, ctxutil.UnavailableError(err)
	}
	return toWire(info), nil
}

func (s *dhtService) Notify(ctx context.Context, req *dhtv1.NodeInfo) (*dhtv1.Empty, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	s.n.Notify(domain.NodeInfo{ID: domain.ID(req.ID), Addr: req.Addr})
	return &dhtv1.Empty{}, nil
}

func (s *dhtService) GetSuccessorList(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.SuccessorListResponse, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	list := s.n.GetSuccessorList()
	out := make([]dhtv1.NodeInfo, 0, len(list))
	for _, n := range list {
		out = append(out, *toWire(n))
	}
	return &dhtv1.SuccessorListResponse{Successors: out}, nil
}

func (s *dhtService) Ping(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.Empty, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	s.n.Ping()
	return &dhtv1.Empty{}, nil
}

func (s *dhtService) Put(ctx context.Context, req *dhtv1.PutRequest) (*dhtv1.PutResponse, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	ok, err := s.n.Put(ctx, req.Key, req.Value)
	if err != nil {
		return nil, ctxutil.UnavailableError(err)
	}
	return &dhtv1.PutResponse{Success: ok}, nil
}

func (s *dhtService) Replicate(ctx context.Context, req *dhtv1.ReplicateRequest) (*dhtv1.Empty, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	s.n.Replicate(req.Key, req.Value)
	return &dhtv1.Empty{}, nil
}

func (s *dhtService) Get(ctx context.Context, req *dhtv1.GetRequest) (*dhtv1.GetResponse, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	value, found, err := s.n.Get(ctx, req.Key)
	if err != nil {
		return nil, ctxutil.UnavailableError(err)
	}
	return &dhtv1.GetResponse{Value: value, Found: found}, nil
}

func (s *dhtService) TransferKeys(ctx context.Context, req *dhtv1.TransferKeysRequest) (*dhtv1.Empty, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	s.n.TransferKeys(req.Entries)
	return &dhtv1.Empty{}, nil
}

func (s *dhtService) Leave(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.Empty, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	s.n.LeaveNetwork(ctx)
	go s.n.ScheduleExit()
	return &dhtv1.Empty{}, nil
}
