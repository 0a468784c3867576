package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tweetpress/tweetpress/internal/pipelineconfig"
	"github.com/tweetpress/tweetpress/pkg/archive"
	"github.com/tweetpress/tweetpress/pkg/dedup"
	"github.com/tweetpress/tweetpress/pkg/errorkit"
	"github.com/tweetpress/tweetpress/pkg/interfaces/twitter"
	"github.com/tweetpress/tweetpress/pkg/logging"
	"github.com/tweetpress/tweetpress/pkg/notify"
	"github.com/tweetpress/tweetpress/pkg/pipeline"
	"github.com/tweetpress/tweetpress/pkg/publisher"
	"github.com/tweetpress/tweetpress/pkg/translate"
)

func main() {
	once := flag.Bool("once", false, "run a single pipeline cycle and exit")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Only log warning since .env is optional
		logrus.WithError(err).Warn("Error loading .env file")
	}

	// Initialize logger
	log := logrus.New()
	if os.Getenv("LOG_FORMAT") == "pretty" {
		log.SetFormatter(logging.NewColoredJSONFormatter())
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if level, err := logrus.ParseLevel(logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := pipelineconfig.New()
	if err != nil {
		log.WithError(err).Fatal("Failed to load pipeline config")
	}

	twitterConfig, err := twitter.NewTwitterConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create Twitter config")
	}
	twitterConfig.Logger = log

	twitterClient, err := twitter.NewTwitterClient(twitterConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Twitter client")
	}

	translateConfig, err := translate.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create translation config")
	}
	translateConfig.Logger = log

	translator, err := translate.NewLLMTranslator(translateConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create translator")
	}

	index, err := dedup.NewIndex(dedup.IndexConfig{
		Path:                config.IndexPath,
		Retention:           time.Duration(config.RetentionDays) * 24 * time.Hour,
		SimilarityThreshold: config.SimilarityThreshold,
		Logger:              log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create duplicate index")
	}

	writer, err := publisher.NewWriter(config.ContentDir, config.FallbackDir, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create content writer")
	}

	var builder publisher.SiteBuilder
	if config.BuildSite {
		hugoBuilder, err := publisher.NewHugoBuilder(config.SiteDir, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to create site builder")
		}
		builder = hugoBuilder
	}

	var channels []notify.Channel
	if config.SlackWebhookURL != "" {
		channels = append(channels, notify.NewSlackChannel(config.SlackWebhookURL))
	}
	if config.AlertWebhookURL != "" {
		channels = append(channels, notify.NewWebhookChannel("webhook", config.AlertWebhookURL))
	}
	gateway := notify.NewGateway(log, channels...)

	executor := errorkit.NewExecutor(errorkit.ExecutorConfig{
		Notifier: gateway,
		Logger:   log,
	})

	var store *archive.Store
	if archive.Enabled() {
		db, err := archive.SetupDatabase(log)
		if err != nil {
			log.WithError(err).Fatal("Failed to set up archive database")
		}
		store, err = archive.NewStore(db, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to create archive store")
		}
	} else {
		log.Info("Archive database not configured, skipping")
	}

	p, err := pipeline.New(pipeline.Config{
		Client:         twitterClient,
		Translator:     translator,
		Writer:         writer,
		Builder:        builder,
		Index:          index,
		Executor:       executor,
		Store:          store,
		Logger:         log,
		SourceUsername: twitterConfig.SourceUsername,
		TargetLanguage: translateConfig.TargetLanguage,
		MaxResults:     twitterConfig.MaxResults,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create pipeline")
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	if *once {
		if err := p.RunCycle(ctx); err != nil {
			log.WithError(err).Fatal("Pipeline cycle failed")
		}
		return
	}

	scheduler := pipeline.NewScheduler(p, config.Interval, log)
	if err := scheduler.Run(ctx); err != nil && err != context.Canceled {
		log.WithError(err).Fatal("Scheduler stopped with error")
	}

	log.Info("Pipeline shutdown complete")
}
