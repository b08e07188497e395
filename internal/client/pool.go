// Package client provides a reference-counted gRPC connection pool and the
// typed RPC wrappers the node's routing and stabilization logic calls
// through. The pool's API (GetFromPool/AddRef/Release/DialEphemeral/
// FailureTimeout) is the contract the node package depends on; see
// DESIGN.md for why no single pre-existing implementation backed it.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"chordring/internal/logger"
	"chordring/internal/rpc/codec"
	"chordring/internal/rpc/dhtv1"
	"chordring/internal/telemetry/lookuptrace"
	"chordring/internal/trace"
)

type entry struct {
	conn *grpc.ClientConn
	refs int
}

// Pool caches gRPC connections by address. A connection pinned with AddRef
// stays open until Release has been called as many times; a connection
// obtained only through GetFromPool carries no reference, so a single
// Release closes and evicts it.
type Pool struct {
	lgr            logger.Logger
	mu             sync.Mutex
	conns          map[string]*entry
	dialTimeout    time.Duration
	failureTimeout time.Duration
}

type Option func(*Pool)

// WithLogger sets the pool's logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) { p.lgr = l }
}

// New builds a connection pool. failureTimeout bounds every RPC issued
// through the pool's typed wrappers; dialTimeout is the deadline passed to
// grpc.DialContext (for pooled and DialEphemeral connections alike).
func New(dialTimeout, failureTimeout time.Duration, opts ...Option) *Pool {
	p := &Pool{
		lgr:            &logger.NopLogger{},
		conns:          make(map[string]*entry),
		dialTimeout:    dialTimeout,
		failureTimeout: failureTimeout,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// FailureTimeout returns the per-RPC deadline callers should apply.
func (p *Pool) FailureTimeout() time.Duration { return p.failureTimeout }

func dialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(codec.Codec{})),
		grpc.WithChainUnaryInterceptor(lookuptrace.ClientInterceptor(), trace.ClientInterceptor()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// dial opens a new connection to addr. Not cached; callers decide pooling.
func (p *Pool) dial(addr string) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
	defer cancel()
	conn, err := grpc.DialContext(ctx, addr, dialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}
	return conn, nil
}

// getRawConn returns the pooled *grpc.ClientConn for addr, dialing and
// caching it on first use. Shared by GetFromPool and the monitor client,
// which rides the same connection cache but a different service stub.
func (p *Pool) getRawConn(addr string) (*grpc.ClientConn, error) {
	p.mu.Lock()
	e, ok := p.conns[addr]
	if ok {
		p.mu.Unlock()
		return e.conn, nil
	}
	p.mu.Unlock()

	conn, err := p.dial(addr)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.conns[addr]; ok {
		conn.Close()
		return existing.conn, nil
	}
	p.conns[addr] = &entry{conn: conn, refs: 0}
	return conn, nil
}

// GetFromPool returns a client for addr, dialing and caching the
// connection on first use. The returned connection is not yet
// reference-counted for the caller; call AddRef to pin it past this call.
func (p *Pool) GetFromPool(addr string) (dhtv1.DhtClient, error) {
	conn, err := p.getRawConn(addr)
	if err != nil {
		return nil, err
	}
	return dhtv1.NewDhtClient(conn), nil
}

// AddRef pins addr's connection so Release must be called an equal number
// of times before it is eligible for closing. Dials if not already pooled.
func (p *Pool) AddRef(addr string) error {
	if _, err := p.getRawConn(addr); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[addr].refs++
	return nil
}

// Release drops one reference on addr's connection, closing and evicting
// it once the count reaches zero.
func (p *Pool) Release(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.conns[addr]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(p.conns, addr)
		e.conn.Close()
		p.lgr.Debug("closed idle connection", logger.F("addr", addr))
	}
}

// DialEphemeral opens a one-off, uncached connection+client for addresses
// the pool doesn't track as routing-table neighbors (e.g. Put/Get forwards
// to an arbitrary owner). The caller is responsible for closing it.
func (p *Pool) DialEphemeral(addr string) (dhtv1.DhtClient, *grpc.ClientConn, error) {
	conn, err := p.dial(addr)
	if err != nil {
		return nil, nil, err
	}
	return dhtv1.NewDhtClient(conn), conn, nil
}

// CloseAll releases every pooled connection regardless of ref count. Used
// on node shutdown.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, e := range p.conns {
		e.conn.Close()
		delete(p.conns, addr)
	}
}
