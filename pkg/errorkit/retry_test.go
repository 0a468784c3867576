package errorkit_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/tweetpress/tweetpress/pkg/errorkit"
)

type fakeNotifier struct {
	calls []*errorkit.PipelineError
}

func (n *fakeNotifier) NotifyCritical(_ context.Context, perr *errorkit.PipelineError) {
	n.calls = append(n.calls, perr)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

var _ = Describe("RetryPolicy", func() {
	policy := errorkit.RetryPolicy{
		MaxRetries:        5,
		BaseDelay:         time.Second,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2,
	}

	It("grows exponentially and caps at MaxDelay", func() {
		Expect(policy.Delay(0)).To(Equal(time.Second))
		Expect(policy.Delay(1)).To(Equal(2 * time.Second))
		Expect(policy.Delay(2)).To(Equal(4 * time.Second))
		Expect(policy.Delay(3)).To(Equal(5 * time.Second))
		Expect(policy.Delay(10)).To(Equal(5 * time.Second))
	})

	It("is non-decreasing in attempt", func() {
		prev := time.Duration(0)
		for attempt := 0; attempt < 20; attempt++ {
			d := policy.Delay(attempt)
			Expect(d).To(BeNumerically(">=", prev))
			prev = d
		}
	})
})

var _ = Describe("Executor", func() {
	var (
		stats    *errorkit.Statistics
		notifier *fakeNotifier
		sleeps   []time.Duration
		executor *errorkit.Executor
	)

	policies := map[errorkit.ErrorKind]errorkit.RetryPolicy{
		errorkit.KindAPI:     {MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, BackoffMultiplier: 2},
		errorkit.KindNetwork: {MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 8 * time.Millisecond, BackoffMultiplier: 2},
	}

	BeforeEach(func() {
		stats = errorkit.NewStatistics()
		notifier = &fakeNotifier{}
		sleeps = nil
		executor = errorkit.NewExecutor(errorkit.ExecutorConfig{
			Stats:    stats,
			Notifier: notifier,
			Policies: policies,
			Logger:   quietLogger(),
			Sleep: func(_ context.Context, d time.Duration) error {
				sleeps = append(sleeps, d)
				return nil
			},
		})
	})

	It("returns immediately on first success without sleeping", func() {
		calls := 0
		err := executor.Run(context.Background(), "op", errorkit.KindNetwork, func() error {
			calls++
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(1))
		Expect(sleeps).To(BeEmpty())
		Expect(stats.Snapshot().TotalErrors).To(BeZero())
	})

	It("stops retrying as soon as the operation succeeds", func() {
		calls := 0
		err := executor.Run(context.Background(), "op", errorkit.KindNetwork, func() error {
			calls++
			if calls < 3 {
				return errors.New("connection timeout")
			}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(3))
		Expect(sleeps).To(HaveLen(2))
		Expect(stats.Snapshot().TotalErrors).To(BeZero())
	})

	It("invokes the operation exactly MaxRetries+1 times on terminal failure", func() {
		calls := 0
		err := executor.Run(context.Background(), "fetch", errorkit.KindNetwork, func() error {
			calls++
			return errors.New("network unreachable")
		})

		Expect(calls).To(Equal(4))
		Expect(sleeps).To(HaveLen(3), "no sleep after the final attempt")

		var perr *errorkit.PipelineError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Kind).To(Equal(errorkit.KindNetwork))
		Expect(perr.Severity).To(Equal(errorkit.SeverityMedium))
		Expect(perr.Metadata).To(HaveKeyWithValue("context", "fetch"))
	})

	It("uses increasing backoff delays between attempts", func() {
		_ = executor.Run(context.Background(), "op", errorkit.KindNetwork, func() error {
			return errors.New("network unreachable")
		})
		Expect(sleeps).To(Equal([]time.Duration{
			time.Millisecond,
			2 * time.Millisecond,
			4 * time.Millisecond,
		}))
	})

	It("falls back to the API policy for an unconfigured kind hint", func() {
		calls := 0
		_ = executor.Run(context.Background(), "op", errorkit.KindUnknown, func() error {
			calls++
			return errors.New("something odd happened")
		})
		Expect(calls).To(Equal(3)) // API policy: 2 retries
	})

	It("records statistics exactly once per terminal failure", func() {
		_ = executor.Run(context.Background(), "op", errorkit.KindNetwork, func() error {
			return errors.New("network unreachable")
		})

		snapshot := stats.Snapshot()
		Expect(snapshot.TotalErrors).To(Equal(uint64(1)))
		Expect(snapshot.ByKind).To(HaveKeyWithValue(errorkit.KindNetwork, uint64(1)))
		Expect(snapshot.BySeverity).To(HaveKeyWithValue(errorkit.SeverityMedium, uint64(1)))
		Expect(notifier.calls).To(BeEmpty(), "medium severity must not notify")
	})

	It("notifies exactly once on a critical terminal failure", func() {
		_ = executor.Run(context.Background(), "op", errorkit.KindAPI, func() error {
			return errors.New("request unauthorized")
		})

		Expect(notifier.calls).To(HaveLen(1))
		Expect(notifier.calls[0].Kind).To(Equal(errorkit.KindAuth))
		Expect(notifier.calls[0].Severity).To(Equal(errorkit.SeverityCritical))
		Expect(stats.Snapshot().CriticalErrors).To(Equal(uint64(1)))
	})

	It("does not reclassify an error that is already enhanced", func() {
		original := errorkit.NewPipelineError("translation failed", errorkit.KindTranslation, errorkit.SeverityMedium, nil)
		err := executor.Run(context.Background(), "op", errorkit.KindNetwork, func() error {
			return original
		})

		var perr *errorkit.PipelineError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr).To(BeIdenticalTo(original))
		Expect(perr.Kind).To(Equal(errorkit.KindTranslation))
	})

	It("surfaces the last failure when the backoff is interrupted", func() {
		interrupted := errorkit.NewExecutor(errorkit.ExecutorConfig{
			Stats:    stats,
			Policies: policies,
			Logger:   quietLogger(),
			Sleep: func(_ context.Context, _ time.Duration) error {
				return context.Canceled
			},
		})

		calls := 0
		err := interrupted.Run(context.Background(), "op", errorkit.KindNetwork, func() error {
			calls++
			return errors.New("network unreachable")
		})

		Expect(calls).To(Equal(1))
		var perr *errorkit.PipelineError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Kind).To(Equal(errorkit.KindNetwork))
	})
})
