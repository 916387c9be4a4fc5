package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"medvault/internal/audit"
	"medvault/internal/clinical"
	"medvault/internal/gateway"
	"medvault/internal/identity"
	"medvault/internal/platform/config"
	"medvault/internal/platform/logger"
	"medvault/internal/platform/metrics"
	"medvault/pkg/requestcontext"
)

// app bundles the wired gateway and its process-level dependencies for one
// command invocation.
type app struct {
	cfg config.Config
	log *zap.Logger
	gw  *gateway.Gateway
}

// newApp loads configuration, opens the three store files, and wires the
// gateway. The gateway owns the store handles; Close releases everything.
func newApp(opts *RootOptions) (*app, error) {
	cfg := config.FromEnv()
	if opts.DataDir != "" {
		cfg = cfg.WithDataDir(opts.DataDir)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	identities, err := identity.OpenSQLite(cfg.IdentityPath)
	if err != nil {
		return nil, fmt.Errorf("open identity store: %w", err)
	}
	clinicals, err := clinical.OpenSQLite(cfg.ClinicalPath)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open clinical store: %w", err), identities.Close())
	}
	auditLog, err := audit.OpenSQLite(cfg.AuditPath)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open audit store: %w", err), identities.Close(), clinicals.Close())
	}

	gw := gateway.New(identities, clinicals, auditLog, log, metrics.New(prometheus.NewRegistry()), gateway.Config{
		PseudonymRetries: cfg.PseudonymRetries,
		AuditQueryLimit:  cfg.AuditQueryLimit,
	})
	return &app{cfg: cfg, log: log, gw: gw}, nil
}

func (a *app) Close() error {
	err := a.gw.Close()
	_ = a.log.Sync()
	return err
}

// actorContext attaches the operator identity from the global flags.
func actorContext(ctx context.Context, opts *RootOptions) context.Context {
	return requestcontext.WithActor(ctx, requestcontext.Actor{
		UserID:    opts.UserID,
		UserRole:  opts.UserRole,
		IPAddress: "127.0.0.1",
		UserAgent: "medvault-cli",
		Purpose:   opts.Purpose,
	})
}
