package store

import (
	"time"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/score"
)

// RepostEntry is the repost history for one normalized (company, title,
// source) key.
type RepostEntry struct {
	Company     string
	Title       string
	Source      string
	RepostCount int
	FirstSeen   time.Time
	LastSeen    time.Time
}

// History converts the entry into the ghost detector's input.
func (e RepostEntry) History() score.History {
	return score.History{
		RepostCount: e.RepostCount,
		FirstSeen:   e.FirstSeen,
		LastSeen:    e.LastSeen,
	}
}

// UpsertOutcome reports what an upsert did.
type UpsertOutcome struct {
	New       bool
	TimesSeen int
	Hidden    bool // the stored flag, which upserts never change
}

// Observation is the result of recording one scraped posting.
type Observation struct {
	UpsertOutcome
	Repost RepostEntry
	Ghost  score.Ghost
}

// DuplicateGroup is a set of visible postings sharing a normalized
// (title, company). It is computed on demand and never stored.
type DuplicateGroup struct {
	Key     string
	Primary job.Posting
	Members []job.Posting // includes Primary
}

// Others returns the non-primary members.
func (g DuplicateGroup) Others() []job.Posting {
	out := make([]job.Posting, 0, len(g.Members)-1)
	for _, m := range g.Members {
		if m.Hash != g.Primary.Hash {
			out = append(out, m)
		}
	}
	return out
}

// Order values accepted by QueryOpts.OrderBy.
const (
	OrderScore  = "score"
	OrderRecent = "recent"
	OrderGhost  = "ghost"
)

type QueryOpts struct {
	Since          time.Time // last_seen lower bound
	Sources        []string
	Search         string
	MinScore       float64
	IncludeHidden  bool
	BookmarkedOnly bool
	OrderBy        string
	Limit          int
}

// Stats summarizes the store for the stats command.
type Stats struct {
	Postings   int
	Hidden     int
	Bookmarked int
	Ghosts     int
	RepostKeys int
	SizeBytes  int64
	LastCycle  time.Time
}
