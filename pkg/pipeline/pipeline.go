// Package pipeline orchestrates one content-automation run: fetch posts from
// the source timeline, reject duplicates, translate, render and write pages,
// record them in the duplicate index and trigger the site build.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tweetpress/tweetpress/pkg/archive"
	"github.com/tweetpress/tweetpress/pkg/dedup"
	"github.com/tweetpress/tweetpress/pkg/errorkit"
	"github.com/tweetpress/tweetpress/pkg/interfaces/twitter"
	"github.com/tweetpress/tweetpress/pkg/publisher"
	"github.com/tweetpress/tweetpress/pkg/translate"
)

// Config wires a Pipeline.
type Config struct {
	Client     *twitter.TwitterClient
	Translator translate.Translator
	Writer     *publisher.Writer
	Builder    publisher.SiteBuilder // optional, nil disables the build step
	Index      *dedup.Index
	Executor   *errorkit.Executor
	Store      *archive.Store // optional
	Logger     *logrus.Logger

	SourceUsername string
	TargetLanguage string
	MaxResults     int
}

// Pipeline is the single orchestrator instance owning the run's mutable
// state: the statistics accumulator (through the executor) and the duplicate
// index. Items are processed one at a time.
type Pipeline struct {
	client     *twitter.TwitterClient
	translator translate.Translator
	writer     *publisher.Writer
	builder    publisher.SiteBuilder
	index      *dedup.Index
	executor   *errorkit.Executor
	store      *archive.Store
	logger     *logrus.Logger

	sourceUsername string
	targetLanguage string
	maxResults     int

	sourceUserID string
}

// New creates a pipeline.
func New(config Config) (*Pipeline, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("twitter client is required")
	}
	if config.Translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if config.Writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	if config.Index == nil {
		return nil, fmt.Errorf("duplicate index is required")
	}
	if config.Executor == nil {
		return nil, fmt.Errorf("retry executor is required")
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.SourceUsername == "" {
		return nil, fmt.Errorf("source username is required")
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 25
	}

	return &Pipeline{
		client:         config.Client,
		translator:     config.Translator,
		writer:         config.Writer,
		builder:        config.Builder,
		index:          config.Index,
		executor:       config.Executor,
		store:          config.Store,
		logger:         config.Logger,
		sourceUsername: config.SourceUsername,
		targetLanguage: config.TargetLanguage,
		maxResults:     config.MaxResults,
	}, nil
}

// RunCycle executes one full pipeline pass. Non-critical item failures are
// counted and skipped; a critical failure aborts the cycle.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	runID := uuid.NewString()
	log := p.logger.WithField("run_id", runID)
	log.Info("Starting pipeline cycle")

	tweets, err := p.fetchTimeline(ctx)
	if err != nil {
		return err
	}
	log.WithField("tweets_count", len(tweets)).Info("Fetched source timeline")

	published := 0
	for _, tweet := range tweets {
		if err := p.processItem(ctx, tweet); err != nil {
			if perr, ok := errorkit.AsPipelineError(err); ok && perr.Severity == errorkit.SeverityCritical {
				log.WithFields(logrus.Fields{
					"tweet_id":   tweet.ID,
					"error_kind": perr.Kind,
				}).Error("Critical failure, aborting cycle")
				return err
			}
			log.WithField("tweet_id", tweet.ID).WithError(err).Warn("Skipping item after failure")
			continue
		}
		published++
	}

	if published > 0 && p.builder != nil {
		if err := p.buildSite(ctx); err != nil {
			return err
		}
	}

	snapshot := p.executor.Stats().Snapshot()
	log.WithFields(logrus.Fields{
		"published":     published,
		"total_errors":  snapshot.TotalErrors,
		"recovery_rate": snapshot.RecoveryRate,
	}).Info("Pipeline cycle finished")

	return nil
}

func (p *Pipeline) fetchTimeline(ctx context.Context) ([]twitter.Tweet, error) {
	if p.sourceUserID == "" {
		err := p.executor.Run(ctx, "resolve source user", errorkit.KindAPI, func() error {
			id, err := p.client.GetUserByUsername(ctx, p.sourceUsername)
			if err != nil {
				return err
			}
			p.sourceUserID = id
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	var tweets []twitter.Tweet
	err := p.executor.Run(ctx, "fetch source timeline", errorkit.KindAPI, func() error {
		fetched, err := p.client.GetUserTweets(ctx, twitter.GetUserTweetsParams{
			UserID:     p.sourceUserID,
			MaxResults: p.maxResults,
		})
		if err != nil {
			return err
		}
		tweets = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tweets, nil
}

// processItem runs the dedup check, translation, render, write and record
// steps for one tweet.
func (p *Pipeline) processItem(ctx context.Context, tweet twitter.Tweet) error {
	log := p.logger.WithField("tweet_id", tweet.ID)
	url := tweet.URL(p.sourceUsername)

	verdict, err := p.index.Check(tweet.ID, tweet.Text, url)
	if err != nil {
		return fmt.Errorf("duplicate check failed: %w", err)
	}
	if verdict.IsDuplicate {
		log.WithFields(logrus.Fields{
			"reason":      string(verdict.Reason),
			"fingerprint": verdict.Fingerprint,
		}).Info("Skipping duplicate item")
		return nil
	}

	body, translated, err := p.translateText(ctx, tweet.Text)
	if err != nil {
		return err
	}

	page := publisher.Page{
		Title:       publisher.TitleFromText(tweet.Text),
		Date:        time.Now(),
		Tags:        dedup.Keywords(tweet.Text),
		OriginalURL: url,
		Language:    p.targetLanguage,
		Fingerprint: verdict.Fingerprint,
		Body:        body,
	}
	rendered, err := publisher.RenderPage(page)
	if err != nil {
		return err
	}

	filename := publisher.Slug(tweet.ID, page.Date)
	var primaryWriteErr error
	err = p.executor.Run(ctx, "write content file", errorkit.KindFilesystem, func() error {
		_, perr, werr := p.writer.Write(filename, rendered)
		primaryWriteErr = perr
		return werr
	})
	if err != nil {
		return err
	}
	if primaryWriteErr != nil {
		// alternative_path strategy succeeded. The executor saw a success, so
		// the suppressed primary failure is recorded here alongside its
		// recovery to keep the counters consistent.
		msg := primaryWriteErr.Error()
		perr := errorkit.NewPipelineError(msg, errorkit.KindFilesystem,
			errorkit.SeverityFor(errorkit.KindFilesystem, msg), primaryWriteErr).
			WithContext("write content file")
		p.executor.Stats().Record(perr)
		p.executor.Stats().RecordRecovery()
	}

	if err := p.index.Record(tweet.ID, verdict.Fingerprint, filename, tweet.Text, url); err != nil {
		return fmt.Errorf("failed to record processed item: %w", err)
	}

	p.archivePost(ctx, tweet, page, filename, translated)

	log.WithFields(logrus.Fields{
		"filename":    filename,
		"fingerprint": verdict.Fingerprint,
		"translated":  translated,
	}).Info("Published item")

	return nil
}

// translateText attempts translation with retry. Only the
// fallback_to_original strategy licenses publishing pass-through content; any
// other terminal failure kind is surfaced so the caller can skip the item or
// abort the cycle on critical severity.
func (p *Pipeline) translateText(ctx context.Context, text string) (string, bool, error) {
	var out string
	err := p.executor.Run(ctx, "translate post", errorkit.KindTranslation, func() error {
		translated, terr := p.translator.Translate(ctx, text)
		if terr != nil {
			return terr
		}
		out = translated
		return nil
	})
	if err == nil {
		return out, true, nil
	}

	if perr, ok := errorkit.AsPipelineError(err); ok {
		if errorkit.StrategyFor(perr.Kind).ID == errorkit.StrategyFallbackToOriginal {
			p.logger.WithError(err).Warn("Translation failed, publishing original text")
			p.executor.Stats().RecordRecovery()
			return text, false, nil
		}
	}

	return "", false, err
}

func (p *Pipeline) buildSite(ctx context.Context) error {
	return p.executor.Run(ctx, "build site", errorkit.KindBuild, func() error {
		return p.builder.Build(ctx)
	})
}

// archivePost stores the published post when the archive is configured.
// Archive failures are logged, never fatal.
func (p *Pipeline) archivePost(ctx context.Context, tweet twitter.Tweet, page publisher.Page, filename string, translated bool) {
	if p.store == nil {
		return
	}

	post := &archive.Post{
		TweetID:     tweet.ID,
		Title:       page.Title,
		Filename:    filename,
		Fingerprint: page.Fingerprint,
		Keywords:    page.Tags,
		Language:    page.Language,
		SourceURL:   page.OriginalURL,
		Translated:  translated,
		PublishedAt: page.Date,
	}
	if err := p.store.SavePublished(ctx, post); err != nil {
		p.logger.WithField("tweet_id", tweet.ID).WithError(err).Warn("Failed to archive published post")
	}
}

// Stats exposes the run's error statistics snapshot.
func (p *Pipeline) Stats() errorkit.StatsSnapshot {
	return p.executor.Stats().Snapshot()
}
