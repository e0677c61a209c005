// Package notify delivers alerts for postings that cross the alert
// threshold.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/retry"
	"github.com/matheuskafuri/jobradar/internal/score"
)

// Notifier matches cycle.Notifier.
type Notifier interface {
	Notify(ctx context.Context, postings []job.Posting) error
}

// Log writes one structured line per alert.
type Log struct {
	Logger *log.Logger
}

func (l Log) Notify(_ context.Context, postings []job.Posting) error {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	for _, p := range postings {
		kv := []any{
			"score", fmt.Sprintf("%.2f", p.Score),
			"title", p.Title,
			"company", p.Company,
			"source", p.Source,
			"url", p.URL,
		}
		if lvl := score.Level(p.GhostScore); lvl != score.GhostNone {
			kv = append(kv, "ghost", lvl)
		}
		logger.Info("new match", kv...)
	}
	return nil
}

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, postings []job.Posting) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, postings); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Webhook POSTs alerts as JSON to a URL, retrying transient failures.
type Webhook struct {
	url    string
	client *resty.Client
	retry  retry.Config
	logger *log.Logger
}

type webhookPosting struct {
	Hash       string   `json:"hash"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	URL        string   `json:"url"`
	Location   string   `json:"location,omitempty"`
	Source     string   `json:"source"`
	Score      float64  `json:"score"`
	GhostScore float64  `json:"ghost_score"`
	Ghost      string   `json:"ghost_level"`
	Reasons    []string `json:"ghost_reasons,omitempty"`
}

type webhookPayload struct {
	SentAt   time.Time        `json:"sent_at"`
	Postings []webhookPosting `json:"postings"`
}

func NewWebhook(url string, cfg retry.Config, logger *log.Logger) *Webhook {
	if logger == nil {
		logger = log.Default()
	}
	return &Webhook{
		url:    url,
		client: resty.New().SetTimeout(10*time.Second).SetHeader("Content-Type", "application/json"),
		retry:  cfg,
		logger: logger.WithPrefix("webhook"),
	}
}

func (w *Webhook) Notify(ctx context.Context, postings []job.Posting) error {
	payload := webhookPayload{SentAt: time.Now().UTC()}
	for _, p := range postings {
		payload.Postings = append(payload.Postings, webhookPosting{
			Hash:       p.Hash,
			Title:      p.Title,
			Company:    p.Company,
			URL:        p.URL,
			Location:   p.Location,
			Source:     p.Source,
			Score:      p.Score,
			GhostScore: p.GhostScore,
			Ghost:      string(score.Level(p.GhostScore)),
			Reasons:    p.GhostReasons,
		})
	}

	_, err := retry.Do(ctx, w.retry, "webhook", func(ctx context.Context) (struct{}, error) {
		resp, err := w.client.R().SetContext(ctx).SetBody(payload).Post(w.url)
		if err != nil {
			return struct{}{}, retry.FromTransport("webhook", err)
		}
		if resp.IsError() {
			return struct{}{}, retry.FromStatus("webhook", resp.StatusCode(), resp.String())
		}
		return struct{}{}, nil
	}, retry.WithLogger(w.logger))
	return err
}
