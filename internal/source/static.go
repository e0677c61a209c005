package source

import (
	"context"

	"github.com/matheuskafuri/jobradar/internal/job"
)

// Static returns a fixed set of postings, or a fixed error. Useful for
// demos and tests.
type Static struct {
	SourceName string
	Postings   []job.Posting
	Err        error
}

func (s *Static) Name() string { return s.SourceName }

func (s *Static) Scrape(ctx context.Context) ([]job.Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]job.Posting, len(s.Postings))
	copy(out, s.Postings)
	for i := range out {
		if out[i].Source == "" {
			out[i].Source = s.SourceName
		}
		out[i].EnsureHash()
	}
	return out, nil
}
