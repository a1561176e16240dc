package datasource

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/logging"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
	"github.com/Preyash-NEU/InsightIQ/pkg/retry"
)

// DefaultProbeTimeout bounds a probe when the caller's context has no deadline.
const DefaultProbeTimeout = 10 * time.Second

// Prober runs one-shot connectivity checks through the registry.
type Prober struct {
	logger  *zap.Logger
	timeout time.Duration
	retry   *retry.Config
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithRetry replaces the backoff used when opening the connection fails
// with a transient error. A nil config disables retries.
func WithRetry(cfg *retry.Config) ProberOption {
	return func(p *Prober) {
		p.retry = cfg
	}
}

func NewProber(logger *zap.Logger, opts ...ProberOption) *Prober {
	p := &Prober{
		logger:  logger.Named("probe"),
		timeout: DefaultProbeTimeout,
		retry:   retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe opens a tester for conn, runs it, optionally checks for table, and
// closes it again.
func (p *Prober) Probe(ctx context.Context, conn models.DatabaseConnection, table string) (*ProbeResult, error) {
	factory := GetFactory(conn.DBType)
	if factory == nil {
		return nil, fmt.Errorf("unsupported database type: %s (not compiled in)", conn.DBType)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.logger.Info("Probing database", logging.ConnectionFields(conn)...)

	cfg := p.retry
	if cfg == nil {
		cfg = &retry.Config{}
	} else {
		withLog := *cfg
		withLog.OnRetry = func(attempt int, err error, delay time.Duration) {
			p.logger.Debug("Retrying probe",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.String("error", logging.SanitizeError(err)))
		}
		cfg = &withLog
	}

	var tester ConnectionTester
	res, err := retry.Do(ctx, cfg, func() (*ProbeResult, error) {
		t, err := factory(ctx, conn)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		res, err := t.TestConnection(ctx)
		if err != nil {
			t.Close()
			return nil, err
		}
		res.Latency = time.Since(start)
		tester = t
		return res, nil
	})
	if err != nil {
		p.logger.Warn("Probe failed",
			zap.String("db_type", string(conn.DBType)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	defer tester.Close()

	if table != "" {
		ok, err := tester.HasTable(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to look up table %q: %w", table, err)
		}
		if !ok {
			return res, fmt.Errorf("table %q not found in %s", table, res.Database)
		}
	}
	return res, nil
}
