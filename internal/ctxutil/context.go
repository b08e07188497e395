// Package ctxutil translates context and domain errors into the gRPC status
// codes the RPC layer exposes, per the error taxonomy in the design.
package ctxutil

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chordring/internal/domain"
	"chordring/internal/trace"
)

// CheckContext returns a gRPC status error if ctx has already been
// cancelled or timed out, nil otherwise. Called at the top of every RPC
// handler and long-running operation.
func CheckContext(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return status.Error(codes.Canceled, ctx.Err().Error())
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, ctx.Err().Error())
	default:
		return status.Error(codes.Unknown, ctx.Err().Error())
	}
}

// NotFoundError wraps err as a gRPC NotFound status.
func NotFoundError(err error) error {
	return status.Error(codes.NotFound, err.Error())
}

// UnavailableError wraps err as a gRPC Unavailable status.
func UnavailableError(err error) error {
	return status.Error(codes.Unavailable, err.Error())
}

// InternalError wraps err as a gRPC Internal status.
func InternalError(err error) error {
	return status.Error(codes.Internal, err.Error())
}

// FromStatus maps a gRPC status error back to a sentinel domain error,
// used on the client side to normalize remote responses.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	s, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch s.Code() {
	case codes.NotFound:
		return domain.ErrResourceNotFound
	case codes.Unavailable:
		return ErrUnavailable
	default:
		return err
	}
}

// ErrUnavailable marks a routing/transport failure after all hops were
// exhausted.
var ErrUnavailable = errors.New("ctxutil: unavailable")

// EnsureTraceID guarantees ctx carries a trace id, generating a fresh one
// derived from nodeID if none is attached yet. Called at a lookup's entry
// point; every subsequent hop inherits the same id over RPC metadata.
func EnsureTraceID(ctx context.Context, nodeID domain.ID) context.Context {
	if trace.GetTraceID(ctx) != "" {
		return ctx
	}
	ctx, _ = trace.AttachTraceID(ctx, nodeID)
	return ctx
}

// TraceIDFromContext returns the trace id attached to ctx, or "" if none.
func TraceIDFromContext(ctx context.Context) string { return trace.GetTraceID(ctx) }

// WithHops initializes ctx's hop counter at 0.
func WithHops(ctx context.Context) context.Context { return trace.WithHops(ctx) }

// HopsFromContext returns ctx's hop counter, or -1 if it was never
// initialized.
func HopsFromContext(ctx context.Context) int { return trace.Hops(ctx) }
