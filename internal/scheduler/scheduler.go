// Package scheduler orchestrates the reminder pipeline: it owns the
// preference store and the committed schedule, recomputes targets on
// preference change or on the periodic re-evaluation tick, and drives the
// minimal diff against the delivery port.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ablomov/remindd/internal/domain"
	"github.com/ablomov/remindd/internal/reconcile"
	"github.com/ablomov/remindd/internal/store"
	"github.com/ablomov/remindd/internal/trigger"
)

// DeliveryPort is the external primitive that presents and cancels device
// notifications. Cancel of an unknown id is not an error.
type DeliveryPort interface {
	HasPermission(ctx context.Context) bool
	Schedule(ctx context.Context, t domain.Trigger) error
	Cancel(ctx context.Context, id domain.SequenceID) error
}

// Options tunes a Scheduler. Zero values get defaults.
type Options struct {
	Horizon   time.Duration    // zero → 48h
	DefaultTZ string           // zero → "UTC"; applied on first-ever run
	Now       func() time.Time // zero → time.Now; injected in tests
}

// Scheduler serializes all schedule mutations behind one mutex: a
// concurrent call queues behind the in-flight one instead of racing its
// read-modify-write of the committed set.
type Scheduler struct {
	repo store.Repo
	port DeliveryPort
	log  *zap.Logger

	userID    string
	horizon   time.Duration
	defaultTZ string
	now       func() time.Time

	mu         sync.Mutex
	prefs      domain.Preferences
	committed  map[domain.SequenceID]domain.Trigger
	prefsDirty bool // save failed; retry on next pass
}

// New creates a Scheduler for one user. Call Initialize before use.
func New(repo store.Repo, port DeliveryPort, log *zap.Logger, userID string, opts Options) *Scheduler {
	if opts.Horizon <= 0 {
		opts.Horizon = 48 * time.Hour
	}
	if opts.DefaultTZ == "" {
		opts.DefaultTZ = "UTC"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		repo:      repo,
		port:      port,
		log:       log,
		userID:    userID,
		horizon:   opts.Horizon,
		defaultTZ: opts.DefaultTZ,
		now:       opts.Now,
		committed: make(map[domain.SequenceID]domain.Trigger),
	}
}

// Initialize loads preferences (defaults on first run) and the persisted
// committed schedule, then performs one reconciliation pass.
func (s *Scheduler) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.repo.LoadPreferences(ctx, s.userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		prefs = domain.DefaultPreferences(s.userID, s.defaultTZ)
		s.log.Info("no stored preferences, using defaults", zap.String("tz", s.defaultTZ))
	case err != nil:
		// Recoverable: run on defaults in memory. Not marked dirty, a
		// retried save could overwrite a stored snapshot we failed to read.
		s.log.Warn("load preferences failed, running on defaults", zap.Error(err))
		prefs = domain.DefaultPreferences(s.userID, s.defaultTZ)
	}
	// A stored row can go bad out from under us (say, a timezone the tz
	// database dropped). Startup keeps going on defaults rather than
	// taking the host down.
	if err := prefs.Validate(); err != nil {
		s.log.Warn("stored preferences invalid, falling back to defaults", zap.Error(err))
		prefs = domain.DefaultPreferences(s.userID, s.defaultTZ)
	}
	s.prefs = prefs

	committed, err := s.repo.LoadCommitted(ctx, s.userID)
	if err != nil {
		s.log.Warn("load committed schedule failed, starting empty", zap.Error(err))
		committed = nil
	}
	s.committed = make(map[domain.SequenceID]domain.Trigger, len(committed))
	for _, t := range committed {
		s.committed[t.SequenceID] = t
	}

	return s.reconcileLocked(ctx, "initialize")
}

// GetPreferences returns the current snapshot without blocking on I/O.
func (s *Scheduler) GetPreferences() domain.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Clone()
}

// UpdatePreferences validates, persists and applies a new snapshot. On a
// validation error nothing is mutated. A storage write failure is
// recoverable: the snapshot stays authoritative in memory and the save is
// retried on the next pass.
func (s *Scheduler) UpdatePreferences(ctx context.Context, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefs.SchemaVersion = domain.PreferencesSchemaVersion
	if err := s.repo.SavePreferences(ctx, prefs); err != nil {
		s.log.Warn("save preferences failed, keeping in memory", zap.Error(err))
		s.prefsDirty = true
	} else {
		s.prefsDirty = false
	}
	s.prefs = prefs.Clone()

	return s.reconcileLocked(ctx, "preferences_update")
}

// Refresh is the single re-evaluation entry point, used by the periodic
// tick and after a permission grant. It expires fired entries, retries a
// pending preference save and reconciles against the current instant.
func (s *Scheduler) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefsDirty {
		if err := s.repo.SavePreferences(ctx, s.prefs); err != nil {
			s.log.Warn("preference save retry failed", zap.Error(err))
		} else {
			s.prefsDirty = false
			s.log.Info("preference save retried successfully")
		}
	}
	return s.reconcileLocked(ctx, "refresh")
}

// CancelAll cancels every committed trigger and clears the schedule, both
// in memory and on disk. Individual cancel failures are logged and not
// retried; the entries are discarded regardless. Used on logout.
func (s *Scheduler) CancelAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.committed {
		if err := s.port.Cancel(ctx, id); err != nil {
			s.log.Warn("cancel failed", zap.String("sequence_id", string(id)), zap.Error(err))
		}
	}
	s.committed = make(map[domain.SequenceID]domain.Trigger)

	if err := s.repo.ClearCommitted(ctx, s.userID); err != nil {
		s.log.Warn("clear committed schedule failed", zap.Error(err))
		return err
	}
	return nil
}

// Run drives periodic re-evaluation until ctx is canceled. This stands in
// for the app-foreground event: it catches clock advances past the
// scheduled horizon and timezone changes.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.log.Error("refresh failed", zap.Error(err))
			}
		}
	}
}

// reconcileLocked recomputes targets and converges the delivery port.
// Caller holds s.mu.
//
// The committed set is updated per trigger, only after the corresponding
// port call succeeds: a rejected schedule leaves its entry absent and a
// failed cancel leaves the old entry present, so the next pass recomputes
// the same diff instead of double-scheduling.
func (s *Scheduler) reconcileLocked(ctx context.Context, reason string) error {
	now := s.now()

	// Fired entries: past instants leave the committed set without a
	// cancel call, the delivery primitive already consumed them.
	for id, t := range s.committed {
		if !t.At.After(now) {
			delete(s.committed, id)
		}
	}

	targets, err := trigger.ComputeTargets(s.prefs, now, s.horizon)
	if err != nil {
		return err
	}

	if !s.port.HasPermission(ctx) {
		// Preferences are recorded; scheduling stays pending until the
		// permission grant triggers the next refresh. The expiry above
		// still has to reach disk.
		s.log.Info("notification permission missing, targets pending",
			zap.String("reason", reason),
			zap.Int("pending", len(targets)),
		)
		if err := s.persistCommittedLocked(ctx); err != nil {
			s.log.Warn("persist committed schedule failed", zap.Error(err))
		}
		return nil
	}

	toCancel, toSchedule := reconcile.Diff(s.committedSlice(), targets)

	failedCancels := make(map[domain.SequenceID]bool)
	for _, t := range toCancel {
		if err := s.port.Cancel(ctx, t.SequenceID); err != nil {
			s.log.Warn("cancel failed, will retry",
				zap.String("sequence_id", string(t.SequenceID)), zap.Error(err))
			failedCancels[t.SequenceID] = true
			continue
		}
		delete(s.committed, t.SequenceID)
	}

	for _, t := range toSchedule {
		if failedCancels[t.SequenceID] {
			// The stale entry under this id is still armed. Scheduling
			// its replacement now would leave both firing; keep the old
			// committed entry so the next pass retries the cancel first.
			s.log.Warn("reschedule deferred until stale entry cancels",
				zap.String("sequence_id", string(t.SequenceID)))
			continue
		}
		err := s.port.Schedule(ctx, t)
		switch {
		case errors.Is(err, domain.ErrPermissionDenied):
			// Permission revoked mid-pass; stop issuing schedules.
			s.log.Warn("permission denied mid-pass", zap.String("reason", reason))
			err = s.persistCommittedLocked(ctx)
			if err != nil {
				s.log.Warn("persist committed schedule failed", zap.Error(err))
			}
			return nil
		case err != nil:
			// Per-trigger rejection: the others proceed, this one shows
			// up in toSchedule again next pass.
			s.log.Warn("schedule rejected",
				zap.String("sequence_id", string(t.SequenceID)),
				zap.Time("at", t.At), zap.Error(err))
			continue
		}
		s.committed[t.SequenceID] = t
	}

	if err := s.persistCommittedLocked(ctx); err != nil {
		s.log.Warn("persist committed schedule failed", zap.Error(err))
	}

	s.log.Debug("reconciliation pass complete",
		zap.String("reason", reason),
		zap.Int("canceled", len(toCancel)),
		zap.Int("scheduled", len(toSchedule)),
		zap.Int("committed", len(s.committed)),
	)
	return nil
}

func (s *Scheduler) persistCommittedLocked(ctx context.Context) error {
	return s.repo.ReplaceCommitted(ctx, s.userID, s.committedSlice())
}

func (s *Scheduler) committedSlice() []domain.Trigger {
	out := make([]domain.Trigger, 0, len(s.committed))
	for _, t := range s.committed {
		out = append(out, t)
	}
	return out
}
