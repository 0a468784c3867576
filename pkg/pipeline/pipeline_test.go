package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/tweetpress/tweetpress/pkg/dedup"
	"github.com/tweetpress/tweetpress/pkg/errorkit"
	"github.com/tweetpress/tweetpress/pkg/interfaces/twitter"
	"github.com/tweetpress/tweetpress/pkg/publisher"
	"github.com/tweetpress/tweetpress/pkg/translate"
)

type stubTranslator struct {
	err error
}

func (s stubTranslator) Translate(_ context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return text, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []*errorkit.PipelineError
}

func (n *recordingNotifier) NotifyCritical(_ context.Context, perr *errorkit.PipelineError) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, perr)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

var _ = Describe("Pipeline", func() {
	var (
		dir      string
		stats    *errorkit.Statistics
		notifier *recordingNotifier
		logger   *logrus.Logger
	)

	newTestPipeline := func(tr translate.Translator, contentDir, fallbackDir string) *Pipeline {
		writer, err := publisher.NewWriter(contentDir, fallbackDir, logger)
		Expect(err).NotTo(HaveOccurred())

		index, err := dedup.NewIndex(dedup.IndexConfig{
			Path:   filepath.Join(dir, "processed_tweets.json"),
			Logger: logger,
		})
		Expect(err).NotTo(HaveOccurred())

		executor := errorkit.NewExecutor(errorkit.ExecutorConfig{
			Stats:    stats,
			Notifier: notifier,
			Logger:   logger,
			Sleep:    func(_ context.Context, _ time.Duration) error { return nil },
			Policies: map[errorkit.ErrorKind]errorkit.RetryPolicy{
				errorkit.KindAPI:         {MaxRetries: 0},
				errorkit.KindTranslation: {MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiplier: 1},
				errorkit.KindFilesystem:  {MaxRetries: 0},
			},
		})

		return &Pipeline{
			translator:     tr,
			writer:         writer,
			index:          index,
			executor:       executor,
			logger:         logger,
			sourceUsername: "acct",
			targetLanguage: "Japanese",
		}
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "pipeline-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		stats = errorkit.NewStatistics()
		notifier = &recordingNotifier{}
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	})

	Describe("translation failures", func() {
		It("publishes the original text when the failure kind falls back", func() {
			p := newTestPipeline(
				stubTranslator{err: errors.New("translation backend unavailable")},
				filepath.Join(dir, "content"), "",
			)

			body, translated, err := p.translateText(context.Background(), "Bitcoin hits $50k")
			Expect(err).NotTo(HaveOccurred())
			Expect(translated).To(BeFalse())
			Expect(body).To(Equal("Bitcoin hits $50k"))

			snap := stats.Snapshot()
			Expect(snap.TotalErrors).To(Equal(uint64(1)))
			Expect(snap.RecoveredErrors).To(Equal(uint64(1)))
		})

		It("surfaces a critical auth failure instead of publishing pass-through content", func() {
			p := newTestPipeline(
				stubTranslator{err: errors.New("request unauthorized")},
				filepath.Join(dir, "content"), "",
			)

			err := p.processItem(context.Background(), twitter.Tweet{ID: "1", Text: "Bitcoin hits $50k"})
			Expect(err).To(HaveOccurred())

			perr, ok := errorkit.AsPipelineError(err)
			Expect(ok).To(BeTrue())
			Expect(perr.Kind).To(Equal(errorkit.KindAuth))
			Expect(perr.Severity).To(Equal(errorkit.SeverityCritical))
			Expect(notifier.count()).To(Equal(1))

			// Nothing reached the content directory
			Expect(filepath.Join(dir, "content")).NotTo(BeADirectory())
		})

		It("surfaces non-fallback failures so the item is skipped, not published", func() {
			p := newTestPipeline(
				stubTranslator{err: errors.New("connection timeout")},
				filepath.Join(dir, "content"), "",
			)

			_, _, err := p.translateText(context.Background(), "Bitcoin hits $50k")
			Expect(err).To(HaveOccurred())

			perr, ok := errorkit.AsPipelineError(err)
			Expect(ok).To(BeTrue())
			Expect(perr.Kind).To(Equal(errorkit.KindNetwork))
			Expect(perr.Severity).NotTo(Equal(errorkit.SeverityCritical))

			snap := stats.Snapshot()
			Expect(snap.RecoveredErrors).To(BeZero())
		})
	})

	Describe("fallback writes", func() {
		It("keeps recovery statistics consistent when the fallback directory is used", func() {
			// A file where the primary directory should be makes MkdirAll fail
			blocked := filepath.Join(dir, "blocked")
			Expect(os.WriteFile(blocked, []byte("in the way"), 0o644)).To(Succeed())

			p := newTestPipeline(translate.Passthrough{},
				filepath.Join(blocked, "posts"), filepath.Join(dir, "pending"))

			Expect(p.processItem(context.Background(), twitter.Tweet{ID: "1", Text: "Bitcoin hits $50k"})).To(Succeed())

			entries, err := os.ReadDir(filepath.Join(dir, "pending"))
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))

			snap := stats.Snapshot()
			Expect(snap.TotalErrors).To(Equal(uint64(1)))
			Expect(snap.RecoveredErrors).To(Equal(uint64(1)))
			Expect(snap.ByKind).To(HaveKeyWithValue(errorkit.KindFilesystem, uint64(1)))
			Expect(snap.RecoveryRate).To(Equal("100.00%"))
		})

		It("counts nothing when the primary directory works", func() {
			p := newTestPipeline(translate.Passthrough{},
				filepath.Join(dir, "content"), filepath.Join(dir, "pending"))

			Expect(p.processItem(context.Background(), twitter.Tweet{ID: "1", Text: "Bitcoin hits $50k"})).To(Succeed())

			snap := stats.Snapshot()
			Expect(snap.TotalErrors).To(BeZero())
			Expect(snap.RecoveredErrors).To(BeZero())
		})
	})
})
