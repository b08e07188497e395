// Package monitorv1 defines the node-to-observer reporting surface (§6
// monitor surface), a single best-effort fire-and-forget RPC.
package monitorv1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "chordring.monitor.v1.Monitor"

// NodeInfo mirrors domain.NodeInfo on the wire.
type NodeInfo struct {
	ID   uint64 `json:"id"`
	Addr string `json:"addr"`
}

// NodeSnapshot is the periodic state report a node pushes to the monitor.
type NodeSnapshot struct {
	ID          uint64     `json:"id"`
	Addr        string     `json:"addr"`
	Predecessor *NodeInfo  `json:"predecessor,omitempty"`
	Successors  []NodeInfo `json:"successors"`
	FingerTable []NodeInfo `json:"fingerTable"`
	StoredKeys  []string   `json:"storedKeys"`
	State       string     `json:"state"`
}

type Empty struct{}

// MonitorServer is implemented by the observer (cmd/monitor).
type MonitorServer interface {
	ReportState(ctx context.Context, req *NodeSnapshot) (*Empty, error)
}

// MonitorClient is the node-side stub used to push snapshots.
type MonitorClient interface {
	ReportState(ctx context.Context, req *NodeSnapshot, opts ...grpc.CallOption) (*Empty, error)
}

type monitorClient struct{ cc grpc.ClientConnInterface }

func NewMonitorClient(cc grpc.ClientConnInterface) MonitorClient { return &monitorClient{cc: cc} }

func (c *monitorClient) ReportState(ctx context.Context, req *NodeSnapshot, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	err := c.cc.Invoke(ctx, ServiceName+"/ReportState", req, out, opts...)
	return out, err
}

func RegisterMonitorServer(s grpc.ServiceRegistrar, srv MonitorServer) {
	s.RegisterService(&serviceDesc, srv)
}

func handlerReportState(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NodeSnapshot)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MonitorServer).ReportState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/ReportState"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MonitorServer).ReportState(ctx, req.(*NodeSnapshot))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReportState", Handler: handlerReportState},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "monitorv1/monitor.proto",
}
