// Package update checks whether a newer jobradar release is published.
package update

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/matheuskafuri/jobradar/internal/retry"
)

const defaultEndpoint = "https://api.github.com/repos/matheuskafuri/jobradar/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	URL           string
}

type Checker struct {
	endpoint string
	client   *resty.Client
	retry    retry.Config
	logger   *log.Logger
}

// NewChecker targets endpoint, or the GitHub releases API when empty.
func NewChecker(endpoint string) *Checker {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Checker{
		endpoint: endpoint,
		client: resty.New().
			SetTimeout(5*time.Second).
			SetHeader("Accept", "application/vnd.github+json"),
		retry:  retry.Aggressive(),
		logger: log.Default().WithPrefix("update"),
	}
}

// Check returns nil when current is up to date or the lookup failed; a
// release check never blocks the command that asked for it.
func (c *Checker) Check(ctx context.Context, current string) *Result {
	body, err := retry.Do(ctx, c.retry, "release check", func(ctx context.Context) ([]byte, error) {
		resp, err := c.client.R().SetContext(ctx).Get(c.endpoint)
		if err != nil {
			return nil, retry.FromTransport("release check", err)
		}
		if resp.IsError() {
			return nil, retry.FromStatus("release check", resp.StatusCode(), resp.String())
		}
		return resp.Body(), nil
	}, retry.WithLogger(c.logger))
	if err != nil || !gjson.ValidBytes(body) {
		return nil
	}

	res := gjson.GetManyBytes(body, "tag_name", "html_url")
	latest := strings.TrimPrefix(res[0].String(), "v")
	current = strings.TrimPrefix(current, "v")
	if latest == "" || latest == current || current == "dev" {
		return nil
	}
	return &Result{LatestVersion: latest, URL: res[1].String()}
}
