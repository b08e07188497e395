package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"chordring/internal/bootstrap"
	"chordring/internal/client"
	"chordring/internal/config"
	"chordring/internal/domain"
	"chordring/internal/logger"
	zapfactory "chordring/internal/logger/zap"
	"chordring/internal/node"
	"chordring/internal/routingtable"
	"chordring/internal/server"
	"chordring/internal/storage"
	"chordring/internal/telemetry"
	"chordring/internal/telemetry/lookuptrace"
)

var defaultConfigPath = "config/node/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "override node.port")
	join := flag.String("join", "", "override node.join (bootstrap peer address)")
	monitor := flag.String("monitor", "", "override telemetry.monitorAddr (monitor push target)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()
	if *port != 0 {
		cfg.Node.Port = *port
	}
	if *join != "" {
		cfg.Node.Join = *join
	}
	if *monitor != "" {
		cfg.Telemetry.MonitorAddr = *monitor
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()
		lgr = zapfactory.NewZapAdapter(zapLog)
	} else {
		lgr = &logger.NopLogger{}
	}
	cfg.LogConfig(lgr)

	lis, advertised, err := server.Listen(cfg.DHT.Mode, cfg.Node.Bind, cfg.Node.Host, cfg.Node.Port)
	if err != nil {
		lgr.Error("failed to initialize listener", logger.F("err", err))
		os.Exit(1)
	}
	defer func() { _ = lis.Close() }()
	addr := lis.Addr().String()
	lgr.Debug("created listener", logger.F("addr", addr))

	id := domain.HashString(advertised)
	self := domain.NodeInfo{ID: id, Addr: advertised}
	lgr = lgr.Named("node").With(logger.FNode("self", self))
	lgr.Info("node initializing")

	shutdownTracer := telemetry.InitTracer(cfg.Telemetry, "chordring-node", id)
	defer shutdownTracer(context.Background())

	rt := routingtable.New(self, cfg.DHT.Replication.SuccessorListSize, routingtable.WithLogger(lgr.Named("routingtable")))
	cp := client.New(cfg.DHT.Intervals.FailureTimeout, cfg.DHT.Intervals.FailureTimeout, client.WithLogger(lgr.Named("clientpool")))
	store := storage.NewMemory(lgr.Named("storage"))

	n := node.New(rt, cp, store,
		node.ReplicationConfig{Factor: cfg.DHT.Replication.Factor},
		node.WithLogger(lgr),
		node.WithLeaveGraceDelay(cfg.DHT.Intervals.LeaveGraceDelay),
	)
	lgr.Debug("node state built")

	var grpcOpts []grpc.ServerOption
	if cfg.Telemetry.Tracing.Enabled {
		grpcOpts = append(grpcOpts, grpc.ChainUnaryInterceptor(lookuptrace.ServerInterceptor()))
		lgr.Debug("gRPC tracing enabled (lookup-only)")
	}

	s := server.New(lis, n, grpcOpts, server.WithLogger(lgr.Named("server")))

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Start() }()
	lgr.Debug("server started")

	boot, err := bootstrap.New(cfg.DHT.Bootstrap, lgr.Named("bootstrap"))
	if err != nil {
		lgr.Error("failed to initialize bootstrap backend", logger.F("err", err))
		s.Stop()
		os.Exit(1)
	}

	discoverCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	peers, err := boot.Discover(discoverCtx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err))
		s.Stop()
		os.Exit(1)
	}
	if cfg.Node.Join != "" {
		peers = append([]string{cfg.Node.Join}, peers...)
	}
	lgr.Info("resolved bootstrap peers", logger.F("peers", peers))

	if len(peers) == 0 {
		n.CreateNewDHT()
		lgr.Debug("new ring created")
	} else {
		joined := false
		joinCtx, joinCancel := context.WithTimeout(context.Background(), 10*time.Second)
		for _, peer := range peers {
			if err := n.Join(joinCtx, peer); err != nil {
				lgr.Warn("join attempt failed", logger.F("peer", peer), logger.F("err", err))
				continue
			}
			joined = true
			break
		}
		joinCancel()
		if !joined {
			lgr.Error("failed to join ring through any bootstrap peer")
			s.Stop()
			os.Exit(1)
		}
		lgr.Debug("joined ring")
	}

	registerCtx, registerCancel := context.WithTimeout(context.Background(), 10*time.Second)
	registered := true
	if err := boot.Register(registerCtx, &self); err != nil {
		lgr.Warn("failed to register node", logger.F("err", err))
		registered = false
	}
	registerCancel()

	deregister := func() {
		if !registered {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := boot.Deregister(ctx, &self); err != nil {
			lgr.Warn("failed to deregister node", logger.F("err", err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	n.StartBackgroundTasks(ctx, node.BackgroundConfig{
		Stabilize:           cfg.DHT.Intervals.Stabilize,
		FixFingers:          cfg.DHT.Intervals.FixFingers,
		CheckPredecessor:    cfg.DHT.Intervals.CheckPredecessor,
		MaintainReplication: cfg.DHT.Intervals.MaintainReplication,
		ReportToMonitor:     cfg.DHT.Intervals.ReportToMonitor,
		MonitorAddr:         cfg.Telemetry.MonitorAddr,
	})
	lgr.Debug("background tasks started")

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received, leaving ring gracefully")
		stop()

		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		n.LeaveNetwork(leaveCtx)
		leaveCancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
			lgr.Info("server stopped gracefully")
		case <-shutdownCtx.Done():
			lgr.Warn("graceful stop timed out, forcing shutdown")
			s.Stop()
		}
		cancel()
		cp.CloseAll()
		deregister()

		n.ScheduleExit()

	case err := <-serveErr:
		lgr.Error("gRPC server terminated unexpectedly", logger.F("err", err))
		stop()
		cp.CloseAll()
		deregister()
		os.Exit(1)
	}
}
