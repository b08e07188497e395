// Package trace generates per-lookup trace ids and carries them (plus a
// hop counter) across the chain of gRPC calls a routed lookup makes, so a
// single logical request stays attributable across every node it touches.
package trace

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"chordring/internal/domain"

	"github.com/oklog/ulid/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type traceKey struct{}
type hopsKey struct{}

const (
	metadataTraceKey = "x-chordring-trace-id"
	metadataHopsKey  = "x-chordring-hops"
)

// GenerateTraceID builds a globally unique trace id: "<nodeID>-<ULID>".
func GenerateTraceID(nodeID string) string {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	return fmt.Sprintf("%s-%s", nodeID, id.String())
}

// AttachTraceID generates a trace id for nodeID and stores it on ctx.
func AttachTraceID(ctx context.Context, nodeID domain.ID) (context.Context, string) {
	traceID := GenerateTraceID(nodeID.ToHexString(false))
	return SetTraceID(ctx, traceID), traceID
}

// SetTraceID attaches an already-known trace id (e.g. one restored from
// incoming RPC metadata) to ctx.
func SetTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// GetTraceID reads the trace id stashed on ctx, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	if v := ctx.Value(traceKey{}); v != nil {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// WithHops initializes the hop counter at 0, called at a lookup's entry
// point (the node that first receives a client's request).
func WithHops(ctx context.Context) context.Context {
	return context.WithValue(ctx, hopsKey{}, 0)
}

// Hops returns the current hop counter, or -1 if it was never initialized.
func Hops(ctx context.Context) int {
	if v, ok := ctx.Value(hopsKey{}).(int); ok {
		return v
	}
	return -1
}

// ClientInterceptor propagates the trace id and hop count onto outgoing
// RPC metadata, so the next hop of a routed lookup can restore them.
func ClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if id := GetTraceID(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, metadataTraceKey, id)
		}
		if hops := Hops(ctx); hops >= 0 {
			ctx = metadata.AppendToOutgoingContext(ctx, metadataHopsKey, strconv.Itoa(hops+1))
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// ServerInterceptor restores the trace id and hop count from incoming RPC
// metadata, if the caller attached one.
func ServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(metadataTraceKey); len(vals) > 0 && vals[0] != "" {
				ctx = SetTraceID(ctx, vals[0])
			}
			if vals := md.Get(metadataHopsKey); len(vals) > 0 {
				if h, err := strconv.Atoi(vals[0]); err == nil {
					ctx = context.WithValue(ctx, hopsKey{}, h)
				}
			}
		}
		return handler(ctx, req)
	}
}
