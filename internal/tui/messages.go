package tui

import (
	"github.com/matheuskafuri/jobradar/internal/cycle"
	"github.com/matheuskafuri/jobradar/internal/job"
)

type postingsLoadedMsg struct {
	postings []job.Posting
}

type errMsg struct {
	err error
}

type refreshDoneMsg struct {
	result *cycle.Result
	err    error
}

// postingUpdatedMsg carries the stored state after a flag or note change.
type postingUpdatedMsg struct {
	hash       string
	hidden     bool
	bookmarked bool
	notes      string
}
