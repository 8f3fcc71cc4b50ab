package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shine-lab/orchestration-core/internal/logging"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// Sweep periodically reconciles timeouts across every active session,
// generalizing session_reconciler.go's ticker-driven reconcile loop from a
// fixed-interval scan of a single state column to a cron-scheduled sweep
// of every non-completed session's task timeline. This is a safety net:
// the authoritative reconciliation happens inline before every read or
// inbound event (scheduler.ReconcileTimeouts); Sweep catches sessions that
// see neither for a while.
type Sweep struct {
	scheduler *Scheduler
	store     *store.Store
	cron      *cron.Cron
}

// NewSweep builds a Sweep; Start takes the spec it runs on (standard 5-field
// cron syntax, e.g. "*/30 * * * * *" is not valid here — robfig/cron/v3's
// default parser is minute-resolution; use "@every 30s" for sub-minute periods).
func NewSweep(sched *Scheduler, st *store.Store) *Sweep {
	return &Sweep{scheduler: sched, store: st, cron: cron.New()}
}

// Start registers the sweep job at the given cron spec and begins running
// it in the background. Call Stop to cancel.
func (s *Sweep) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	logging.Scheduler().Info().Str("spec", spec).Msg("started periodic timeout sweep")
	return nil
}

// Stop cancels the background sweep.
func (s *Sweep) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweep) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids, err := s.store.ListActiveSessionIDs(ctx)
	if err != nil {
		logging.Scheduler().Error().Err(err).Msg("sweep: list active sessions failed")
		return
	}

	now := time.Now()
	for _, id := range ids {
		if _, err := s.scheduler.ReconcileTimeouts(ctx, id, now); err != nil {
			logging.Scheduler().Warn().Err(err).Str("session_id", id).Msg("sweep: reconcile failed")
		}
	}
}
