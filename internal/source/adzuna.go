package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/retry"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3
)

type AdzunaOptions struct {
	Name     string
	BaseURL  string
	AppID    string
	AppKey   string
	Country  string // "us", "gb", "fr", ...
	What     string
	Where    string
	MaxPages int
}

// Adzuna queries the Adzuna search API page by page. Missing credentials
// make Scrape a successful no-op.
type Adzuna struct {
	opts   AdzunaOptions
	client *resty.Client
	logger *log.Logger
}

func NewAdzuna(o AdzunaOptions, opts ...Option) *Adzuna {
	if o.BaseURL == "" {
		o.BaseURL = adzunaBaseURL
	}
	if o.MaxPages <= 0 {
		o.MaxPages = adzunaMaxPages
	}
	if o.Name == "" {
		o.Name = "Adzuna " + strings.ToUpper(o.Country)
	}
	ho := buildOptions(opts)
	client := resty.NewWithClient(ho.client).
		SetBaseURL(strings.TrimRight(o.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	return &Adzuna{opts: o, client: client, logger: log.Default().WithPrefix("adzuna")}
}

func (a *Adzuna) Name() string { return a.opts.Name }

func (a *Adzuna) Scrape(ctx context.Context) ([]job.Posting, error) {
	if a.opts.AppID == "" || a.opts.AppKey == "" {
		a.logger.Warn("ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping", "source", a.opts.Name)
		return nil, nil
	}

	var postings []job.Posting
	for page := 1; page <= a.opts.MaxPages; page++ {
		batch, err := a.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		postings = append(postings, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}
	return postings, nil
}

func (a *Adzuna) fetchPage(ctx context.Context, page int) ([]job.Posting, error) {
	op := fmt.Sprintf("scrape %s page %d", a.opts.Name, page)

	params := map[string]string{
		"app_id":           a.opts.AppID,
		"app_key":          a.opts.AppKey,
		"results_per_page": strconv.Itoa(adzunaPageSize),
		"content-type":     "application/json",
		"sort_by":          "date",
	}
	if a.opts.What != "" {
		params["what"] = a.opts.What
	}
	if a.opts.Where != "" {
		params["where"] = a.opts.Where
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(fmt.Sprintf("/%s/search/%d", a.opts.Country, page))
	if err != nil {
		return nil, retry.FromTransport(op, err)
	}
	if resp.StatusCode() != 200 {
		return nil, retry.FromStatus(op, resp.StatusCode(), resp.String())
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, retry.Terminal(op, retry.KindMalformed, fmt.Errorf("response is not valid JSON"))
	}
	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, retry.Terminal(op, retry.KindMalformed, fmt.Errorf("response has no results array"))
	}

	var postings []job.Posting
	results.ForEach(func(_, r gjson.Result) bool {
		postings = append(postings, a.posting(r))
		return true
	})
	return postings, nil
}

func (a *Adzuna) posting(r gjson.Result) job.Posting {
	title := stripHTML(r.Get("title").String())
	location := r.Get("location.display_name").String()
	p := job.Posting{
		Title:          title,
		Company:        strings.TrimSpace(r.Get("company.display_name").String()),
		URL:            r.Get("redirect_url").String(),
		Location:       strings.TrimSpace(location),
		Description:    stripHTML(r.Get("description").String()),
		Source:         a.opts.Name,
		SalaryMin:      salary(r.Get("salary_min")),
		SalaryMax:      salary(r.Get("salary_max")),
		SalaryCurrency: currency(a.opts.Country),
		Remote:         remoteHint(location, title),
	}
	if created := r.Get("created").String(); created != "" {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			p.PostedAt = t
		}
	}
	p.EnsureHash()
	return p
}

func salary(r gjson.Result) *int64 {
	if !r.Exists() || r.Float() <= 0 {
		return nil
	}
	v := int64(r.Float())
	return &v
}

func currency(country string) string {
	switch strings.ToLower(country) {
	case "us":
		return "USD"
	case "gb":
		return "GBP"
	case "ca":
		return "CAD"
	case "au":
		return "AUD"
	case "in":
		return "INR"
	case "br":
		return "BRL"
	case "":
		return ""
	default:
		return "EUR"
	}
}
