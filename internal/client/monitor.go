package client

import (
	"context"
	"fmt"

	"chordring/internal/rpc/monitorv1"
)

// ReportState pushes a snapshot to the monitor at addr. Fire-and-forget:
// callers log the error, never retry (§4.6/§7 replication-style policy
// applied to the monitor surface too).
func (p *Pool) ReportState(ctx context.Context, addr string, snap monitorv1.NodeSnapshot) error {
	conn, err := p.getRawConn(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	cli := monitorv1.NewMonitorClient(conn)
	ctx, cancel := context.WithTimeout(ctx, p.failureTimeout)
	defer cancel()
	_, err = cli.ReportState(ctx, &snap)
	if err != nil {
		return normalize(err)
	}
	return nil
}
