package hub

import (
	"context"
	"sync"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/telemetry"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/metrics"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
)

// JanitorConfig carries the cleanup timings. Zero values are replaced with
// the defaults the protocol was designed around.
type JanitorConfig struct {
	// FileTTL is how long a file may live before a sweep reclaims it.
	// Sessions that stay empty this long are reclaimed too.
	FileTTL time.Duration

	// SweepInterval is the period of the background sweep.
	SweepInterval time.Duration

	// EmptyGrace is how long after a session empties the one-shot
	// delete-if-still-empty check fires.
	EmptyGrace time.Duration
}

// Default cleanup timings.
const (
	DefaultFileTTL       = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
	DefaultEmptyGrace    = 5 * time.Minute
)

func (c *JanitorConfig) applyDefaults() {
	if c.FileTTL <= 0 {
		c.FileTTL = DefaultFileTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.EmptyGrace <= 0 {
		c.EmptyGrace = DefaultEmptyGrace
	}
}

// Janitor reclaims stale resources: files older than the TTL and sessions
// that have sat empty. It runs a periodic sweep and, via the registry's
// empty hook, a one-shot check shortly after each session empties. The two
// mechanisms overlap on purpose; deletion is idempotent so whichever fires
// first wins and the other is a no-op.
type Janitor struct {
	reg     *Registry
	cfg     JanitorConfig
	metrics metrics.HubMetrics

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewJanitor builds a janitor over the registry and installs its empty-hook.
// A nil metrics implementation disables instrumentation.
func NewJanitor(reg *Registry, cfg JanitorConfig, m metrics.HubMetrics) *Janitor {
	cfg.applyDefaults()
	j := &Janitor{
		reg:     reg,
		cfg:     cfg,
		metrics: m,
		timers:  make(map[string]*time.Timer),
	}
	reg.SetEmptyHook(j.scheduleEmptyCheck)
	return j
}

// Run sweeps on the configured interval until ctx is cancelled. Pending
// one-shot timers are stopped on the way out.
func (j *Janitor) Run(ctx context.Context) {
	logger.Info("janitor started",
		logger.Component("janitor"),
		"file_ttl", j.cfg.FileTTL.String(),
		"sweep_interval", j.cfg.SweepInterval.String())

	ticker := time.NewTicker(j.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.stopTimers()
			logger.Info("janitor stopped", logger.Component("janitor"))
			return
		case <-ticker.C:
			_, span := telemetry.StartSpan(ctx, telemetry.SpanSweep)
			j.Sweep(time.Now())
			span.End()
		}
	}
}

// Sweep reclaims everything stale as of now: files uploaded more than a TTL
// ago, announcing each removal to the owning session, and sessions that have
// been empty for at least a TTL. The time is a parameter so tests can march
// the clock instead of sleeping.
func (j *Janitor) Sweep(now time.Time) {
	cutoff := now.Add(-j.cfg.FileTTL)

	var files, sessions int
	for _, s := range j.reg.Sessions() {
		for _, meta := range s.Files().ExpireBefore(cutoff) {
			files++
			if j.metrics != nil {
				j.metrics.FileExpired()
			}
			frame, err := protocol.Encode(protocol.FileRemoved{
				Type:   protocol.TypeFileRemoved,
				FileID: meta.ID,
			})
			if err != nil {
				logger.Error("encoding file_removed failed",
					logger.FileID(meta.ID),
					logger.Err(err))
				continue
			}
			recipients := s.Broadcast(frame, "")
			logger.Info("expired file",
				logger.Component("janitor"),
				logger.SessionCode(s.Code()),
				logger.FileID(meta.ID),
				logger.FileName(meta.OriginalName),
				logger.Devices(recipients))
		}

		if j.reg.RemoveIfEmptySince(s.Code(), cutoff) {
			sessions++
			if j.metrics != nil {
				j.metrics.SessionDestroyed()
			}
			logger.Info("expired empty session",
				logger.Component("janitor"),
				logger.SessionCode(s.Code()))
		}
	}

	if files > 0 || sessions > 0 {
		logger.Debug("sweep done",
			logger.Component("janitor"),
			logger.Files(files),
			logger.Sessions(sessions))
	}
}

// scheduleEmptyCheck arms the one-shot delete-if-still-empty check for a
// session that just emptied. Re-arming replaces any earlier timer for the
// same code so only the latest emptiness counts.
func (j *Janitor) scheduleEmptyCheck(code string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if t, ok := j.timers[code]; ok {
		t.Stop()
	}
	j.timers[code] = time.AfterFunc(j.cfg.EmptyGrace, func() {
		j.checkEmpty(code)
	})
}

func (j *Janitor) checkEmpty(code string) {
	j.mu.Lock()
	delete(j.timers, code)
	j.mu.Unlock()

	if j.reg.RemoveIfEmpty(code) {
		if j.metrics != nil {
			j.metrics.SessionDestroyed()
		}
		logger.Info("removed empty session",
			logger.Component("janitor"),
			logger.SessionCode(code))
	}
}

func (j *Janitor) stopTimers() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for code, t := range j.timers {
		t.Stop()
		delete(j.timers, code)
	}
}
