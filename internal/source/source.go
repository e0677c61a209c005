// Package source contains the scraper adapters that turn external job
// boards into job.Posting values.
package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matheuskafuri/jobradar/internal/config"
	"github.com/matheuskafuri/jobradar/internal/job"
)

// Source is one job board. An empty result is a successful scrape.
// Errors should be *retry.Error values so the caller can decide whether to
// retry.
type Source interface {
	Name() string
	Scrape(ctx context.Context) ([]job.Posting, error)
}

const (
	httpTimeout = 15 * time.Second
	userAgent   = "jobradar/1.0 (+https://github.com/matheuskafuri/jobradar)"
)

// Build turns the enabled config entries into adapters sharing one HTTP
// client.
func Build(specs []config.Source, creds config.Credentials) ([]Source, error) {
	client := &http.Client{Timeout: httpTimeout}
	var out []Source
	for _, s := range specs {
		switch s.Type {
		case config.TypeRSS, config.TypeAtom:
			out = append(out, NewRSS(s.Name, s.URL, WithHTTPClient(client)))
		case config.TypeAdzuna:
			out = append(out, NewAdzuna(AdzunaOptions{
				Name:     s.Name,
				BaseURL:  s.URL,
				AppID:    creds.AdzunaAppID,
				AppKey:   creds.AdzunaAppKey,
				Country:  s.Country,
				What:     s.What,
				Where:    s.Where,
				MaxPages: s.MaxPages,
			}, WithHTTPClient(client)))
		default:
			return nil, fmt.Errorf("source %q: unknown type %q", s.Name, s.Type)
		}
	}
	return out, nil
}

type options struct {
	client *http.Client
}

// Option customises an HTTP-backed adapter.
type Option func(*options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{client: &http.Client{Timeout: httpTimeout}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stripHTML drops markup and collapses whitespace. Length is left alone;
// oversized fields are rejected by validation, not cut here.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// remoteHint marks a posting remote when any field says so. It never marks
// a posting as onsite.
func remoteHint(fields ...string) *bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), "remote") {
			t := true
			return &t
		}
	}
	return nil
}
