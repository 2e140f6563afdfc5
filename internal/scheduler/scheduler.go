// Package scheduler drives the market-hours gated scoring loop.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StockAuto/internal/model"
)

// State is a scheduler loop state.
type State int32

const (
	StateMarketClosedWait State = iota
	StateCycleRunning
	StateCycleCooldown
)

func (s State) String() string {
	switch s {
	case StateMarketClosedWait:
		return "MARKET_CLOSED_WAIT"
	case StateCycleRunning:
		return "CYCLE_RUNNING"
	case StateCycleCooldown:
		return "CYCLE_COOLDOWN"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// MarketClock reports whether the market is open at a given instant.
type MarketClock interface {
	IsOpen(now time.Time) bool
}

// SnapshotSource builds the indicator snapshot for one ticker. It never fails;
// unavailable readings are absent in the result.
type SnapshotSource interface {
	BuildSnapshot(ctx context.Context, ticker string) model.Snapshot
}

// Scorer reduces a snapshot to a composite signal.
type Scorer interface {
	Score(s model.Snapshot) model.ScoreResult
}

// Notifier delivers reports to the operator.
type Notifier interface {
	Notify(ctx context.Context, r model.Report) error
	NotifySkipped(ctx context.Context, r model.Report) error
}

// Recorder appends every report to an audit log.
type Recorder interface {
	Record(ctx context.Context, r model.Report) error
}

// Metrics receives scheduler activity.
type Metrics interface {
	RecordCycle(d time.Duration)
	RecordEvaluation(symbol string, result model.ScoreResult)
	RecordNotification(outcome string)
	RecordHeartbeat(t time.Time)
}

// SleepFunc suspends for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config is the cadence of the loop.
type Config struct {
	Tickers          []string
	CycleInterval    time.Duration
	InterTickerDelay time.Duration
	ClosedPoll       time.Duration
	// NotifyInsufficient also sends a short notice for tickers that could
	// not be scored.
	NotifyInsufficient bool
}

// Scheduler runs scoring cycles over the configured tickers, one at a time.
type Scheduler struct {
	cfg      Config
	clock    MarketClock
	source   SnapshotSource
	scorer   Scorer
	notifier Notifier
	recorder Recorder
	metrics  Metrics
	sleep    SleepFunc
	now      func() time.Time
	newID    func() string
	logger   zerolog.Logger

	heartbeat atomic.Int64
	state     atomic.Int32
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithNotifier sets where actionable reports are sent.
func WithNotifier(n Notifier) Option { return func(s *Scheduler) { s.notifier = n } }

// WithRecorder sets the audit log.
func WithRecorder(r Recorder) Option { return func(s *Scheduler) { s.recorder = r } }

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option { return func(s *Scheduler) { s.metrics = m } }

// WithSleep replaces the suspension primitive.
func WithSleep(f SleepFunc) Option { return func(s *Scheduler) { s.sleep = f } }

// WithNow replaces the wall clock.
func WithNow(f func() time.Time) Option { return func(s *Scheduler) { s.now = f } }

// WithIDFunc replaces the cycle ID generator.
func WithIDFunc(f func() string) Option { return func(s *Scheduler) { s.newID = f } }

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Scheduler) { s.logger = l } }

// New creates a scheduler. Notifier and recorder are optional.
func New(cfg Config, clock MarketClock, source SnapshotSource, scorer Scorer, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		clock:   clock,
		source:  source,
		scorer:  scorer,
		metrics: nopMetrics{},
		sleep:   Sleep,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  log.With().Str("component", "scheduler").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loops until ctx is canceled and returns ctx.Err(). Cancellation takes
// effect only at a sleep boundary; a ticker already being evaluated is
// finished first.
func (s *Scheduler) Run(ctx context.Context) error {
	s.beat()

	state := StateMarketClosedWait
	if s.clock.IsOpen(s.now()) {
		state = StateCycleRunning
	}

	s.logger.Info().
		Strs("tickers", s.cfg.Tickers).
		Dur("cycle_interval", s.cfg.CycleInterval).
		Dur("inter_ticker_delay", s.cfg.InterTickerDelay).
		Str("state", state.String()).
		Msg("Scheduler started")

	for {
		s.state.Store(int32(state))

		switch state {
		case StateMarketClosedWait:
			s.logger.Info().Dur("poll", s.cfg.ClosedPoll).Msg("Market closed, waiting")
			if err := s.sleep(ctx, s.cfg.ClosedPoll); err != nil {
				return err
			}
			s.beat()
			if s.clock.IsOpen(s.now()) {
				state = StateCycleRunning
			}

		case StateCycleRunning:
			if _, err := s.RunCycle(ctx); err != nil {
				return err
			}
			s.beat()
			state = StateCycleCooldown

		case StateCycleCooldown:
			cooldown := CooldownDuration(s.cfg.CycleInterval, s.cfg.InterTickerDelay, len(s.cfg.Tickers))
			s.logger.Debug().Dur("cooldown", cooldown).Msg("Cycle finished, cooling down")
			if err := s.sleep(ctx, cooldown); err != nil {
				return err
			}
			if s.clock.IsOpen(s.now()) {
				state = StateCycleRunning
			} else {
				state = StateMarketClosedWait
			}
		}
	}
}

// RunCycle evaluates every ticker once, in order, pausing InterTickerDelay
// between consecutive tickers. It returns the reports produced so far and
// ctx.Err() if ctx is canceled during a pause.
func (s *Scheduler) RunCycle(ctx context.Context) ([]model.Report, error) {
	cycleID := s.newID()
	start := s.now()
	logger := s.logger.With().Str("cycle_id", cycleID).Logger()
	logger.Info().Int("tickers", len(s.cfg.Tickers)).Msg("Cycle started")

	reports := make([]model.Report, 0, len(s.cfg.Tickers))
	for i, ticker := range s.cfg.Tickers {
		if report, ok := s.evaluate(ctx, logger, cycleID, ticker); ok {
			reports = append(reports, report)
		}

		if i < len(s.cfg.Tickers)-1 {
			if err := s.sleep(ctx, s.cfg.InterTickerDelay); err != nil {
				logger.Info().Msg("Cycle interrupted")
				return reports, err
			}
		}
	}

	elapsed := s.now().Sub(start)
	s.metrics.RecordCycle(elapsed)
	logger.Info().Int("evaluated", len(reports)).Dur("elapsed", elapsed).Msg("Cycle completed")
	return reports, nil
}

// evaluate fetches, scores and forwards one ticker. Any panic is contained to
// the ticker.
func (s *Scheduler) evaluate(ctx context.Context, logger zerolog.Logger, cycleID, ticker string) (report model.Report, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("symbol", ticker).Interface("panic", r).Msg("Ticker evaluation failed, skipping")
			ok = false
		}
	}()

	// The ticker runs to completion even if shutdown was requested meanwhile.
	ctx = context.WithoutCancel(ctx)

	snap := s.source.BuildSnapshot(ctx, ticker)
	result := s.scorer.Score(snap)
	report = model.Report{
		CycleID:  cycleID,
		Ticker:   ticker,
		Time:     s.now(),
		Snapshot: snap,
		Result:   result,
	}

	logger.Info().
		Str("symbol", ticker).
		Str("label", string(result.Label)).
		Int("score", result.Score).
		Int("max_magnitude", result.MaxMagnitude).
		Strs("reasons", result.Reasons).
		Msg("Signal")
	s.metrics.RecordEvaluation(ticker, result)

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, report); err != nil {
			logger.Warn().Err(err).Str("symbol", ticker).Msg("Failed to record report")
		}
	}

	if s.notifier == nil {
		return report, true
	}
	switch {
	case result.Label.Actionable():
		s.delivered(logger, ticker, s.notifier.Notify(ctx, report))
	case result.Label == model.LabelInsufficientData && s.cfg.NotifyInsufficient:
		s.delivered(logger, ticker, s.notifier.NotifySkipped(ctx, report))
	}

	return report, true
}

// delivered logs and counts a notification outcome. Failures never propagate.
func (s *Scheduler) delivered(logger zerolog.Logger, ticker string, err error) {
	if err != nil {
		logger.Warn().Err(err).Str("symbol", ticker).Msg("Notification failed")
		s.metrics.RecordNotification("failed")
		return
	}
	s.metrics.RecordNotification("sent")
}

func (s *Scheduler) beat() {
	now := s.now()
	s.heartbeat.Store(now.UnixNano())
	s.metrics.RecordHeartbeat(now)
}

// Heartbeat returns the time of the last completed cycle or closed-market
// check. It is safe to call from other goroutines.
func (s *Scheduler) Heartbeat() time.Time {
	n := s.heartbeat.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// State returns the loop state last entered by Run.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// CooldownDuration is the pause after a cycle so that a full cycle, including
// the inter-ticker delays, takes cycleInterval. It is never negative.
func CooldownDuration(cycleInterval, interTickerDelay time.Duration, tickers int) time.Duration {
	gaps := tickers - 1
	if gaps < 0 {
		gaps = 0
	}
	remaining := cycleInterval - time.Duration(gaps)*interTickerDelay
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Sleep waits for d or until ctx is done. A non-positive d only checks ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordCycle(time.Duration)                   {}
func (nopMetrics) RecordEvaluation(string, model.ScoreResult) {}
func (nopMetrics) RecordNotification(string)                  {}
func (nopMetrics) RecordHeartbeat(time.Time)                  {}
