package dhtv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the gRPC service's fully-qualified name, used for both
// routing (method strings) and reflection-style logging.
const ServiceName = "chordring.dht.v1.Dht"

// DhtServer is implemented by the node-side RPC handler. It is registered
// against a *grpc.Server via RegisterDhtServer.
type DhtServer interface {
	GetSuccessor(ctx context.Context, req *Empty) (*NodeInfo, error)
	GetPredecessor(ctx context.Context, req *Empty) (*NodeInfo, error)
	FindSuccessor(ctx context.Context, req *FindSuccessorRequest) (*NodeInfo, error)
	Notify(ctx context.Context, req *NodeInfo) (*Empty, error)
	GetSuccessorList(ctx context.Context, req *Empty) (*SuccessorListResponse, error)
	Ping(ctx context.Context, req *Empty) (*Empty, error)
	Put(ctx context.Context, req *PutRequest) (*PutResponse, error)
	Replicate(ctx context.Context, req *ReplicateRequest) (*Empty, error)
	Get(ctx context.Context, req *GetRequest) (*GetResponse, error)
	TransferKeys(ctx context.Context, req *TransferKeysRequest) (*Empty, error)
	Leave(ctx context.Context, req *Empty) (*Empty, error)
}

// DhtClient is the client-side stub, returned by NewDhtClient.
type DhtClient interface {
	GetSuccessor(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*NodeInfo, error)
	GetPredecessor(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*NodeInfo, error)
	FindSuccessor(ctx context.Context, req *FindSuccessorRequest, opts ...grpc.CallOption) (*NodeInfo, error)
	Notify(ctx context.Context, req *NodeInfo, opts ...grpc.CallOption) (*Empty, error)
	GetSuccessorList(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*SuccessorListResponse, error)
	Ping(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*Empty, error)
	Put(ctx context.Context, req *PutRequest, opts ...grpc.CallOption) (*PutResponse, error)
	Replicate(ctx context.Context, req *ReplicateRequest, opts ...grpc.CallOption) (*Empty, error)
	Get(ctx context.Context, req *GetRequest, opts ...grpc.CallOption) (*GetResponse, error)
	TransferKeys(ctx context.Context, req *TransferKeysRequest, opts ...grpc.CallOption) (*Empty, error)
	Leave(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*Empty, error)
}

type dhtClient struct {
	cc grpc.ClientConnInterface
}

// NewDhtClient builds a DhtClient over an existing connection.
func NewDhtClient(cc grpc.ClientConnInterface) DhtClient {
	return &dhtClient{cc: cc}
}

func (c *dhtClient) call(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, ServiceName+"/"+method, req, resp, opts...)
}

func (c *dhtClient) GetSuccessor(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*NodeInfo, error) {
	out := new(NodeInfo)
	return out, c.call(ctx, "GetSuccessor", req, out, opts...)
}

func (c *dhtClient) GetPredecessor(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*NodeInfo, error) {
	out := new(NodeInfo)
	return out, c.call(ctx, "GetPredecessor", req, out, opts...)
}

func (c *dhtClient) FindSuccessor(ctx context.Context, req *FindSuccessorRequest, opts ...grpc.CallOption) (*NodeInfo, error) {
	out := new(NodeInfo)
	return out, c.call(ctx, "FindSuccessor", req, out, opts...)
}

func (c *dhtClient) Notify(ctx context.Context, req *NodeInfo, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "Notify", req, out, opts...)
}

func (c *dhtClient) GetSuccessorList(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*SuccessorListResponse, error) {
	out := new(SuccessorListResponse)
	return out, c.call(ctx, "GetSuccessorList", req, out, opts...)
}

func (c *dhtClient) Ping(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "Ping", req, out, opts...)
}

func (c *dhtClient) Put(ctx context.Context, req *PutRequest, opts ...grpc.CallOption) (*PutResponse, error) {
	out := new(PutResponse)
	return out, c.call(ctx, "Put", req, out, opts...)
}

func (c *dhtClient) Replicate(ctx context.Context, req *ReplicateRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "Replicate", req, out, opts...)
}

func (c *dhtClient) Get(ctx context.Context, req *GetRequest, opts ...grpc.CallOption) (*GetResponse, error) {
	out := new(GetResponse)
	return out, c.call(ctx, "Get", req, out, opts...)
}

func (c *dhtClient) TransferKeys(ctx context.Context, req *TransferKeysRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "TransferKeys", req, out, opts...)
}

func (c *dhtClient) Leave(ctx context.Context, req *Empty, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "Leave", req, out, opts...)
}

// RegisterDhtServer wires srv's methods into s's service table.
func RegisterDhtServer(s grpc.ServiceRegistrar, srv DhtServer) {
	s.RegisterService(&serviceDesc, srv)
}

func handlerGetSuccessor(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).GetSuccessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetSuccessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).GetSuccessor(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerGetPredecessor(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).GetPredecessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetPredecessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).GetPredecessor(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerFindSuccessor(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FindSuccessorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).FindSuccessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/FindSuccessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).FindSuccessor(ctx, req.(*FindSuccessorRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerNotify(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NodeInfo)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).Notify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Notify"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).Notify(ctx, req.(*NodeInfo))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerGetSuccessorList(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).GetSuccessorList(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetSuccessorList"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).GetSuccessorList(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerPing(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Ping"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).Ping(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerPut(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PutRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).Put(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Put"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).Put(ctx, req.(*PutRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerReplicate(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReplicateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).Replicate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Replicate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).Replicate(ctx, req.(*ReplicateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerGet(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Get"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).Get(ctx, req.(*GetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerTransferKeys(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TransferKeysRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).TransferKeys(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/TransferKeys"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).TransferKeys(ctx, req.(*TransferKeysRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerLeave(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DhtServer).Leave(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Leave"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DhtServer).Leave(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DhtServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSuccessor", Handler: handlerGetSuccessor},
		{MethodName: "GetPredecessor", Handler: handlerGetPredecessor},
		{MethodName: "FindSuccessor", Handler: handlerFindSuccessor},
		{MethodName: "Notify", Handler: handlerNotify},
		{MethodName: "GetSuccessorList", Handler: handlerGetSuccessorList},
		{MethodName: "Ping", Handler: handlerPing},
		{MethodName: "Put", Handler: handlerPut},
		{MethodName: "Replicate", Handler: handlerReplicate},
		{MethodName: "Get", Handler: handlerGet},
		{MethodName: "TransferKeys", Handler: handlerTransferKeys},
		{MethodName: "Leave", Handler: handlerLeave},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dhtv1/dht.proto",
}
