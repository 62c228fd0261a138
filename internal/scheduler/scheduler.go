// Package scheduler is the top-level control loop: it gates on trading
// days and session windows, fires qualifying bots concurrently at their
// configured cadence, and triggers nightly retraining.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/var-trade-bot/internal/config"
	"github.com/your-org/var-trade-bot/internal/exchange"
	"github.com/your-org/var-trade-bot/pkg/logger"
)

// BotRunner executes one trading cycle for a bot.
type BotRunner interface {
	Run(ctx context.Context, bot *config.BotConfig) error
}

// Retrainer re-optimizes one bot's model hyperparameters.
type Retrainer interface {
	Retrain(ctx context.Context, bot *config.BotConfig) error
}

// Scheduler owns the control loop.
type Scheduler struct {
	store     *config.Store
	runner    BotRunner
	retrainer Retrainer
	schedule  config.ScheduleConf
	leases    *leaseSet

	lastRetrainDay string

	// now and sleep are injection points for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Scheduler.
func New(store *config.Store, runner BotRunner, retrainer Retrainer, schedule config.ScheduleConf) *Scheduler {
	return &Scheduler{
		store:     store,
		runner:    runner,
		retrainer: retrainer,
		schedule:  schedule,
		leases:    newLeaseSet(),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// Run drives the control loop until the context is cancelled. Gate
// checks are re-evaluated every iteration; leaving a session window or a
// weekday simply stops firing until the next qualifying instant.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Infof("Scheduler started: %d sessions, trigger second %d, retraining at %s",
		len(s.schedule.Sessions), s.schedule.TriggerSecond, s.schedule.RetrainAt)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := s.now()

		if !IsWeekday(now) {
			if err := s.sleep(ctx, time.Minute); err != nil {
				return err
			}
			continue
		}

		if InSession(s.schedule.Sessions, now) {
			if now.Second() == s.schedule.TriggerSecond {
				s.tick(ctx, now)
			} else if err := s.sleep(ctx, 200*time.Millisecond); err != nil {
				return err
			}
			continue
		}

		if day := now.Format("2006-01-02"); s.schedule.RetrainAt.Matches(now) && s.lastRetrainDay != day {
			s.lastRetrainDay = day
			s.retrainAll(ctx)
		}
		if err := s.sleep(ctx, time.Second); err != nil {
			return err
		}
	}
}

// tick fires every bot whose cadence matches the current minute, then
// blocks until every dispatched run completes. A failure in one bot's
// run is contained to that bot.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	bots, err := s.store.LoadAll()
	if err != nil {
		logger.Errorf("Scheduling tick aborted: %v", err)
		_ = s.sleep(ctx, time.Second)
		return
	}

	var due []*config.BotConfig
	for _, bot := range bots {
		cadence, err := exchange.IntervalMinutes(bot.Model.Interval)
		if err != nil {
			logger.Errorf("Bot %s has an invalid interval, skipping: %v", bot.Name, err)
			continue
		}
		if ShouldFire(now, cadence, s.schedule.TriggerSecond) {
			due = append(due, bot)
		}
	}

	// Step past the trigger second so the same minute cannot fire twice.
	if err := s.sleep(ctx, time.Second); err != nil {
		return
	}
	if len(due) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, bot := range due {
		if !s.leases.TryAcquire(bot.Name) {
			logger.Warnf("Bot %s is busy (retraining in progress?), skipping this firing", bot.Name)
			continue
		}
		wg.Add(1)
		go func(bot *config.BotConfig) {
			defer wg.Done()
			defer s.leases.Release(bot.Name)
			s.runBot(ctx, bot)
		}(bot)
	}
	wg.Wait()
}

func (s *Scheduler) runBot(ctx context.Context, bot *config.BotConfig) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Panic in run for bot %s: %v", bot.Name, r)
		}
	}()
	logger.Infof("Starting bot %s (%s)", bot.Name, bot.Model.ModelName)
	if err := s.runner.Run(ctx, bot); err != nil {
		logger.Errorf("An error occurred in run for bot %s: %v", bot.Name, err)
	}
}

// retrainAll dispatches one retraining task per bot. Dispatch does not
// block the control loop; the per-bot lease keeps a still-running task
// from racing the next day's trading ticks on the same instrument.
func (s *Scheduler) retrainAll(ctx context.Context) {
	bots, err := s.store.LoadAll()
	if err != nil {
		logger.Errorf("Nightly retraining aborted: %v", err)
		return
	}
	logger.Infof("Nightly retraining of %d bots started", len(bots))

	for _, bot := range bots {
		if !s.leases.TryAcquire(bot.Name) {
			logger.Warnf("Bot %s is busy, skipping retraining tonight", bot.Name)
			continue
		}
		go func(bot *config.BotConfig) {
			defer s.leases.Release(bot.Name)
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("Panic in retraining for bot %s: %v", bot.Name, r)
				}
			}()
			if err := s.retrainer.Retrain(ctx, bot); err != nil {
				logger.Errorf("Retraining failed for bot %s: %v", bot.Name, err)
			}
		}(bot)
	}
}

// IsWeekday reports whether t falls Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// InSession reports whether t falls inside any session window.
func InSession(sessions []config.SessionWindow, t time.Time) bool {
	for _, w := range sessions {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// ShouldFire reports whether a bot with the given cadence fires at t:
// the minute must divide evenly by the cadence and the second must equal
// the trigger second, a one-second firing window per matching minute.
func ShouldFire(t time.Time, cadenceMinutes, triggerSecond int) bool {
	if cadenceMinutes <= 0 {
		return false
	}
	return t.Minute()%cadenceMinutes == 0 && t.Second() == triggerSecond
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
