// Package notify delivers critical-error alerts to external channels. Channel
// failures are logged and reported in the dispatch summary but never escalate
// back into the error core.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tweetpress/tweetpress/pkg/errorkit"
)

// Alert is the structured payload handed to each channel.
type Alert struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	ErrorKind string                 `json:"errorKind"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Channel is a single delivery transport (Slack webhook, generic webhook,
// log fallback).
type Channel interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

// DispatchResult summarizes one dispatch across all configured channels.
type DispatchResult struct {
	AlertID   string
	Delivered []string
	Failed    []string
}

// Gateway fans an alert out to all configured channels. It implements
// errorkit.Notifier.
type Gateway struct {
	channels []Channel
	logger   *logrus.Logger
}

// NewGateway creates a notification gateway. With no channels configured it
// falls back to a log-only channel so critical errors are never silent.
func NewGateway(logger *logrus.Logger, channels ...Channel) *Gateway {
	if logger == nil {
		logger = logrus.New()
	}
	if len(channels) == 0 {
		channels = []Channel{NewLogChannel(logger)}
	}
	return &Gateway{channels: channels, logger: logger}
}

// NotifyCritical implements errorkit.Notifier.
func (g *Gateway) NotifyCritical(ctx context.Context, perr *errorkit.PipelineError) {
	alert := Alert{
		ID:        uuid.NewString(),
		Title:     "Pipeline critical error",
		Message:   perr.Message,
		ErrorKind: string(perr.Kind),
		Timestamp: perr.Time,
		Metadata:  perr.Metadata,
	}
	g.Dispatch(ctx, alert)
}

// Dispatch sends the alert on every channel and returns the delivery summary.
func (g *Gateway) Dispatch(ctx context.Context, alert Alert) DispatchResult {
	result := DispatchResult{AlertID: alert.ID}

	for _, ch := range g.channels {
		if err := ch.Send(ctx, alert); err != nil {
			g.logger.WithFields(logrus.Fields{
				"alert_id": alert.ID,
				"channel":  ch.Name(),
			}).WithError(err).Error("Alert delivery failed")
			result.Failed = append(result.Failed, ch.Name())
			continue
		}
		result.Delivered = append(result.Delivered, ch.Name())
	}

	g.logger.WithFields(logrus.Fields{
		"alert_id":  alert.ID,
		"delivered": result.Delivered,
		"failed":    result.Failed,
	}).Info("Alert dispatched")

	return result
}

// LogChannel writes alerts to the process log. Always available.
type LogChannel struct {
	logger *logrus.Logger
}

func NewLogChannel(logger *logrus.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (c *LogChannel) Name() string { return "log" }

func (c *LogChannel) Send(_ context.Context, alert Alert) error {
	c.logger.WithFields(logrus.Fields{
		"alert_id":   alert.ID,
		"error_kind": alert.ErrorKind,
		"title":      alert.Title,
	}).Error(alert.Message)
	return nil
}
