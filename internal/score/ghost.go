package score

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/matheuskafuri/jobradar/internal/job"
)

// GhostLevel is the caller-facing classification of a ghost score.
type GhostLevel string

const (
	GhostNone    GhostLevel = "none"
	GhostWarning GhostLevel = "warning"
	GhostLikely  GhostLevel = "likely"
)

const (
	GhostLikelyThreshold  = 0.5
	GhostWarningThreshold = 0.3
)

// Level maps a ghost score to its classification.
func Level(ghostScore float64) GhostLevel {
	switch {
	case ghostScore >= GhostLikelyThreshold:
		return GhostLikely
	case ghostScore >= GhostWarningThreshold:
		return GhostWarning
	default:
		return GhostNone
	}
}

// History is the repost-tracking state for a (company, title, source) key.
type History struct {
	RepostCount int
	FirstSeen   time.Time
	LastSeen    time.Time
}

// Ghost is the outcome of a ghost evaluation.
type Ghost struct {
	Score   float64
	Reasons []string
}

// GhostDetector rates postings on repost frequency and staleness, plus a few
// content signals.
type GhostDetector struct {
	StaleAfter      time.Duration
	RepostThreshold int
}

// DefaultGhostDetector flags postings older than 30 days or seen 3+ times.
func DefaultGhostDetector() GhostDetector {
	return GhostDetector{StaleAfter: 30 * 24 * time.Hour, RepostThreshold: 3}
}

const minDescriptionLen = 200

var evergreenPhrases = []string{
	"always hiring",
	"always looking",
	"talent pool",
	"talent community",
	"future opportunities",
	"future openings",
	"talent pipeline",
}

// repostDays bounds the repost count by the number of days the history
// spans, so repeated scans within a day count once. Without timestamps there
// is no evidence of reposting.
func repostDays(h History) int {
	if h.FirstSeen.IsZero() || h.LastSeen.IsZero() || h.RepostCount <= 0 {
		return 0
	}
	days := int(h.LastSeen.Sub(h.FirstSeen)/(24*time.Hour)) + 1
	return min(h.RepostCount, days)
}

// Evaluate never fails; an empty history only removes the repost signals.
func (d GhostDetector) Evaluate(p job.Posting, h History, now time.Time) Ghost {
	if d.StaleAfter <= 0 {
		d.StaleAfter = DefaultGhostDetector().StaleAfter
	}
	if d.RepostThreshold <= 1 {
		d.RepostThreshold = DefaultGhostDetector().RepostThreshold
	}

	var (
		score   float64
		reasons []string
	)

	switch n := repostDays(h); {
	case n >= d.RepostThreshold+2:
		score += 0.45
		reasons = append(reasons, fmt.Sprintf("reposted on %d days", n))
	case n >= d.RepostThreshold:
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("reposted on %d days", n))
	case n >= 2:
		score += 0.15
		reasons = append(reasons, fmt.Sprintf("seen on %d days", n))
	}

	posted := p.PostedAt
	if posted.IsZero() {
		posted = h.FirstSeen
	}
	if posted.IsZero() {
		posted = p.FirstSeen
	}
	if !posted.IsZero() {
		age := now.Sub(posted)
		days := int(age.Hours() / 24)
		switch {
		case age > 3*d.StaleAfter:
			score += 0.4
			reasons = append(reasons, fmt.Sprintf("posted %d days ago", days))
		case age > 2*d.StaleAfter:
			score += 0.3
			reasons = append(reasons, fmt.Sprintf("posted %d days ago", days))
		case age > d.StaleAfter:
			score += 0.15
			reasons = append(reasons, fmt.Sprintf("posted %d days ago", days))
		}
	}

	if !h.FirstSeen.IsZero() && !h.LastSeen.IsZero() {
		if span := h.LastSeen.Sub(h.FirstSeen); span > d.StaleAfter*3/2 {
			score += 0.1
			reasons = append(reasons, fmt.Sprintf("still listed after %d days", int(span.Hours()/24)))
		}
	}

	desc := strings.TrimSpace(p.Description)
	if len([]rune(desc)) < minDescriptionLen {
		score += 0.1
		reasons = append(reasons, "vague or missing description")
	}

	text := strings.ToLower(p.Title + " " + desc)
	for _, phrase := range evergreenPhrases {
		if strings.Contains(text, phrase) {
			score += 0.15
			reasons = append(reasons, fmt.Sprintf("evergreen wording (%q)", phrase))
			break
		}
	}

	return Ghost{
		Score:   math.Round(clamp01(score)*100) / 100,
		Reasons: reasons,
	}
}
