package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/retry"
)

// RSS reads an RSS or Atom job feed.
type RSS struct {
	name   string
	url    string
	parser *gofeed.Parser
	now    func() time.Time
}

func NewRSS(name, url string, opts ...Option) *RSS {
	o := buildOptions(opts)
	p := gofeed.NewParser()
	p.Client = o.client
	p.UserAgent = userAgent
	return &RSS{name: name, url: url, parser: p, now: time.Now}
}

func (r *RSS) Name() string { return r.name }

func (r *RSS) Scrape(ctx context.Context) ([]job.Posting, error) {
	op := "scrape " + r.name
	feed, err := r.parser.ParseURLWithContext(r.url, ctx)
	if err != nil {
		var he gofeed.HTTPError
		switch {
		case errors.As(err, &he):
			return nil, retry.FromStatus(op, he.StatusCode, he.Status)
		case errors.Is(err, gofeed.ErrFeedTypeNotDetected):
			return nil, retry.Terminal(op, retry.KindMalformed, err)
		default:
			return nil, retry.FromTransport(op, err)
		}
	}
	return r.postings(feed), nil
}

func (r *RSS) postings(feed *gofeed.Feed) []job.Posting {
	now := r.now()
	postings := make([]job.Posting, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}

		var posted time.Time
		if item.PublishedParsed != nil {
			posted = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			posted = *item.UpdatedParsed
		}
		if posted.After(now) {
			posted = now
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		title, company := splitTitle(strings.TrimSpace(item.Title))
		if company == "" {
			company = itemAuthor(item)
		}
		if company == "" {
			company = strings.TrimSpace(feed.Title)
		}

		location := customField(item, "location", "region", "job_location")
		p := job.Posting{
			Title:       title,
			Company:     company,
			URL:         strings.TrimSpace(item.Link),
			Location:    strings.TrimSpace(location),
			Description: stripHTML(desc),
			Source:      r.name,
			PostedAt:    posted,
			Remote:      remoteHint(location, title),
		}
		p.EnsureHash()
		postings = append(postings, p)
	}
	return postings
}

// splitTitle handles the common "Company: Role" item title convention.
func splitTitle(title string) (role, company string) {
	if i := strings.Index(title, ": "); i > 0 && i < len(title)-2 {
		return strings.TrimSpace(title[i+2:]), strings.TrimSpace(title[:i])
	}
	return title, ""
}

func itemAuthor(item *gofeed.Item) string {
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	return ""
}

func customField(item *gofeed.Item, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(item.Custom[k]); v != "" {
			return v
		}
	}
	return ""
}
