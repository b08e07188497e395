// Command monitor runs a minimal observer: nodes push periodic state
// snapshots to it (§6 monitor surface) and it logs what it receives.
package main

import (
	"context"
	"flag"
	"log"
	"net"

	"google.golang.org/grpc"

	_ "chordring/internal/rpc/codec"
	"chordring/internal/rpc/monitorv1"
)

type monitorServer struct{}

func (monitorServer) ReportState(ctx context.Context, snap *monitorv1.NodeSnapshot) (*monitorv1.Empty, error) {
	log.Printf("node %x (%s) state=%s predecessor=%v successors=%d fingers=%d keys=%d",
		snap.ID, snap.Addr, snap.State, snap.Predecessor, len(snap.Successors), len(snap.FingerTable), len(snap.StoredKeys))
	return &monitorv1.Empty{}, nil
}

func main() {
	bind := flag.String("bind", "0.0.0.0:6000", "address to listen on")
	flag.Parse()

	lis, err := net.Listen("tcp", *bind)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", *bind, err)
	}

	srv := grpc.NewServer()
	monitorv1.RegisterMonitorServer(srv, monitorServer{})

	log.Printf("monitor listening on %s", lis.Addr().String())
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("monitor server terminated: %v", err)
	}
}
