package errorkit

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy holds the static backoff configuration for one error kind.
type RetryPolicy struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// Delay returns the backoff before retry number attempt (0-based):
// min(BaseDelay * BackoffMultiplier^attempt, MaxDelay). Non-decreasing in
// attempt for any multiplier >= 1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt)))
	if d > p.MaxDelay || d < 0 {
		return p.MaxDelay
	}
	return d
}

// DefaultPolicies returns the per-kind retry policies. Kinds without an entry
// fall back to the API policy.
func DefaultPolicies() map[ErrorKind]RetryPolicy {
	return map[ErrorKind]RetryPolicy{
		KindAPI:         {MaxRetries: 3, BaseDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffMultiplier: 2},
		KindRateLimit:   {MaxRetries: 3, BaseDelay: 30 * time.Second, MaxDelay: 15 * time.Minute, BackoffMultiplier: 2},
		KindNetwork:     {MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second, BackoffMultiplier: 2},
		KindTranslation: {MaxRetries: 2, BaseDelay: 5 * time.Second, MaxDelay: 30 * time.Second, BackoffMultiplier: 2},
		KindFilesystem:  {MaxRetries: 1, BaseDelay: time.Second, MaxDelay: time.Second, BackoffMultiplier: 1},
	}
}

// Notifier receives critical errors for external alerting. Implementations
// must not let delivery failures propagate back into the error core.
type Notifier interface {
	NotifyCritical(ctx context.Context, perr *PipelineError)
}

// rateLimitResetCarrier is implemented by errors that know when the rate
// limit window resets.
type rateLimitResetCarrier interface {
	RateLimitReset() time.Time
}

// ExecutorConfig configures a retry Executor.
type ExecutorConfig struct {
	Classifier *Classifier
	Stats      *Statistics
	Notifier   Notifier // optional
	Policies   map[ErrorKind]RetryPolicy
	Logger     *logrus.Logger
	// Sleep is the backoff sleep, overridable in tests. Defaults to a
	// context-aware timer sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Executor runs operations with bounded, kind-aware retry. On terminal
// failure it produces the enhanced *PipelineError, records statistics and
// dispatches critical notifications; both side effects happen exactly once
// per terminal failure and never on success.
type Executor struct {
	classifier *Classifier
	stats      *Statistics
	notifier   Notifier
	policies   map[ErrorKind]RetryPolicy
	logger     *logrus.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates a retry executor.
func NewExecutor(config ExecutorConfig) *Executor {
	if config.Classifier == nil {
		config.Classifier = NewClassifier()
	}
	if config.Stats == nil {
		config.Stats = NewStatistics()
	}
	if config.Policies == nil {
		config.Policies = DefaultPolicies()
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Sleep == nil {
		config.Sleep = sleepContext
	}

	return &Executor{
		classifier: config.Classifier,
		stats:      config.Stats,
		notifier:   config.Notifier,
		policies:   config.Policies,
		logger:     config.Logger,
		sleep:      config.Sleep,
	}
}

// Stats returns the statistics accumulator shared with the orchestrator.
func (e *Executor) Stats() *Statistics {
	return e.stats
}

// Run invokes op until it succeeds or the retry budget for kindHint is
// exhausted. The failing case performs exactly MaxRetries+1 invocations and
// never sleeps after the final attempt. opContext names the operation for the
// error metadata and logs.
func (e *Executor) Run(ctx context.Context, opContext string, kindHint ErrorKind, op func() error) error {
	policy, ok := e.policies[kindHint]
	if !ok {
		policy = e.policies[KindAPI]
	}

	log := e.logger.WithFields(logrus.Fields{
		"operation": opContext,
		"kind_hint": kindHint,
	})

	var lastErr error
	for attempt := 1; attempt <= policy.MaxRetries+1; attempt++ {
		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				log.WithField("attempt", attempt).Info("Operation succeeded after retry")
			}
			return nil
		}

		if attempt > policy.MaxRetries {
			break
		}

		delay := policy.Delay(attempt - 1)
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay.String(),
		}).WithError(lastErr).Warn("Operation failed, backing off before retry")

		if err := e.sleep(ctx, delay); err != nil {
			log.WithError(err).Warn("Backoff interrupted, surfacing last failure")
			break
		}
	}

	return e.finalize(ctx, opContext, lastErr)
}

// finalize turns the last failure into a *PipelineError, records it and
// dispatches the critical notification path.
func (e *Executor) finalize(ctx context.Context, opContext string, err error) error {
	perr, already := AsPipelineError(err)
	if already {
		// Classified once, never again; only fill in missing context.
		if _, ok := perr.Metadata["context"]; !ok {
			perr.WithContext(opContext)
		}
	} else {
		kind := e.classifier.Classify(err)
		perr = NewPipelineError(err.Error(), kind, SeverityFor(kind, err.Error()), err)
		perr.WithContext(opContext)

		var rl rateLimitResetCarrier
		if errors.As(err, &rl) {
			perr.Metadata["resetTime"] = rl.RateLimitReset()
		}
	}

	e.stats.Record(perr)

	e.logger.WithFields(logrus.Fields{
		"operation":  opContext,
		"error_kind": perr.Kind,
		"severity":   perr.Severity,
		"strategy":   StrategyFor(perr.Kind).ID,
	}).WithError(perr.Err).Error("Operation failed terminally")

	if perr.Severity == SeverityCritical && e.notifier != nil {
		e.notifier.NotifyCritical(ctx, perr)
	}

	return perr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
