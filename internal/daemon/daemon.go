package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"spoolcheck/internal/api"
	"spoolcheck/internal/checks"
	"spoolcheck/internal/config"
	"spoolcheck/internal/history"
	"spoolcheck/internal/logging"
	"spoolcheck/internal/preflight"
	"spoolcheck/internal/prestart"
)

const pruneInterval = 24 * time.Hour

// ErrNotRunning is returned for session requests while the daemon is stopped.
var ErrNotRunning = errors.New("daemon not running")

// Daemon serves pre-print sessions and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	runner  *prestart.Runner
	history *history.Store
	logPath string

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running   atomic.Bool
	sessions  atomic.Int64
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu   sync.Mutex
	last *api.Session

	readiness func(ctx context.Context) []preflight.Result
}

// New constructs a daemon. store may be nil when history is disabled.
func New(cfg *config.Config, runner *prestart.Runner, store *history.Store, logger *slog.Logger, logPath string) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and runner")
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		runner:   runner,
		history:  store,
		logPath:  logPath,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.readiness = func(ctx context.Context) []preflight.Result {
		return preflight.RunAll(ctx, cfg)
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start validates the check settings, acquires the daemon lock, and starts
// the HTTP API and history pruning.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if _, err := checks.ResolveConfig(d.cfg.CheckSettings()); err != nil {
		return fmt.Errorf("invalid [checks] section: %w", err)
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another spoolcheck daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	if d.history != nil && d.cfg.History.RetentionDays > 0 {
		d.wg.Add(1)
		go d.pruneLoop(d.ctx)
	}

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("spoolcheck daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.api.address()),
		logging.String(logging.FieldEventType, "daemon_start"),
	)
	return nil
}

// Stop stops background work and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next start may report another instance"),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("spoolcheck daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.history != nil {
		return d.history.Close()
	}
	return nil
}

// Running reports whether Start succeeded and Stop has not been called.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LogPath returns the daemon log file, if any.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// PrePrintChecks runs one print-start session.
func (d *Daemon) PrePrintChecks(ctx context.Context, req api.PrePrintRequest) (api.Session, error) {
	if !d.running.Load() {
		return api.Session{}, ErrNotRunning
	}
	result := d.runner.Run(ctx, prestart.Request{Filename: req.Filename})
	session := api.FromResult(result)

	d.sessions.Add(1)
	d.mu.Lock()
	d.last = &session
	d.mu.Unlock()
	return session, nil
}

// History returns up to limit recent sessions.
func (d *Daemon) History(ctx context.Context, limit int) (api.HistoryResponse, error) {
	if d.history == nil {
		return api.HistoryResponse{}, errors.New("session history is disabled")
	}
	entries, err := d.history.Recent(ctx, limit)
	if err != nil {
		return api.HistoryResponse{}, err
	}
	return api.FromHistoryEntries(entries), nil
}

// Status returns runtime information and live readiness checks.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		SocketPath:   d.cfg.SocketPath(),
		LogPath:      d.logPath,
		SessionsRun:  d.sessions.Load(),
	}
	if status.Running {
		status.StartedAt = d.startedAt.UTC().Format(time.RFC3339)
	}
	if d.history != nil {
		status.HistoryDBPath = d.history.Path()
	}
	d.mu.Lock()
	if d.last != nil {
		last := *d.last
		status.LastSession = &last
	}
	d.mu.Unlock()
	status.Readiness = api.FromPreflight(d.readiness(ctx))
	return status
}

func (d *Daemon) pruneLoop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		d.prune(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Daemon) prune(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -d.cfg.History.RetentionDays)
	removed, err := d.history.Prune(ctx, cutoff)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.WarnWithContext(d.logger, "history prune failed", "history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history database keeps growing"),
		)
		return
	}
	if removed > 0 {
		d.logger.Info("history pruned",
			logging.Int64("removed_count", removed),
			logging.Int("retention_days", d.cfg.History.RetentionDays),
		)
	}
}
