package bootstrap

import (
	"context"
	"fmt"

	"chordring/internal/configloader"
	"chordring/internal/domain"
	"chordring/internal/logger"
)

// New builds the Bootstrap backend named by cfg.Mode.
func New(cfg configloader.BootstrapConfig, lgr logger.Logger) (Bootstrap, error) {
	switch cfg.Mode {
	case "static", "":
		return NewStaticBootstrap(cfg.Peers), nil
	case "route53":
		return NewRoute53Bootstrap(cfg.Route53)
	case "dns":
		return &dnsBootstrap{cfg: cfg, lgr: lgr}, nil
	case "none":
		return NewStaticBootstrap(nil), nil
	default:
		return nil, fmt.Errorf("bootstrap: unsupported mode %q", cfg.Mode)
	}
}

// dnsBootstrap discovers peers by SRV/A lookup on each Discover call.
// It never registers or deregisters records itself.
type dnsBootstrap struct {
	cfg configloader.BootstrapConfig
	lgr logger.Logger
}

func (d *dnsBootstrap) Discover(ctx context.Context) ([]string, error) {
	return ResolveBootstrap(d.cfg, d.lgr)
}

func (d *dnsBootstrap) Register(ctx context.Context, node *domain.NodeInfo) error   { return nil }
func (d *dnsBootstrap) Deregister(ctx context.Context, node *domain.NodeInfo) error { return nil }
