// Package match scores how well a posting fits the user's stated
// preferences. It produces the five sub-scores consumed by package score.
package match

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/matheuskafuri/jobradar/internal/job"
)

// Preferences describe what the user is looking for.
type Preferences struct {
	Skills             []string
	SalaryMin          int64
	Locations          []string
	RemoteOnly         bool
	PreferredCompanies []string
	BlockedCompanies   []string
}

// Matcher implements score.Matcher with keyword and preference heuristics.
type Matcher struct {
	prefs     Preferences
	skills    []string
	preferred map[string]bool
	blocked   map[string]bool
	locations []string
	now       func() time.Time
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithClock replaces time.Now for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(m *Matcher) { m.now = now }
}

// New normalizes prefs once so Match does no per-call setup.
func New(prefs Preferences, opts ...Option) *Matcher {
	m := &Matcher{
		prefs:     prefs,
		preferred: make(map[string]bool, len(prefs.PreferredCompanies)),
		blocked:   make(map[string]bool, len(prefs.BlockedCompanies)),
		now:       time.Now,
	}
	for _, s := range prefs.Skills {
		if n := job.Normalize(s); n != "" {
			m.skills = append(m.skills, n)
		}
	}
	for _, c := range prefs.PreferredCompanies {
		m.preferred[job.Normalize(c)] = true
	}
	for _, c := range prefs.BlockedCompanies {
		m.blocked[job.Normalize(c)] = true
	}
	for _, l := range prefs.Locations {
		if n := job.Normalize(l); n != "" {
			m.locations = append(m.locations, n)
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns the sub-scores for p. The resume id only namespaces cache
// entries here; skills come from the preferences.
func (m *Matcher) Match(ctx context.Context, p job.Posting, _ string) (job.Breakdown, error) {
	if err := ctx.Err(); err != nil {
		return job.Breakdown{}, err
	}
	return job.Breakdown{
		Skills:   m.skillsScore(p.Title, p.Description),
		Salary:   m.salaryScore(p),
		Location: m.locationScore(p),
		Company:  m.companyScore(p.Company),
		Recency:  recencyScore(postedAt(p), m.now()),
	}, nil
}

// skillsScore awards 2 points for a skill in the title and 1 for one only in
// the description. Matching every skill in the description scores 1.0.
func (m *Matcher) skillsScore(title, description string) float64 {
	if len(m.skills) == 0 {
		return 0.5
	}
	titleText := tokenText(title)
	descText := tokenText(description)

	points := 0.0
	for _, s := range m.skills {
		needle := " " + s + " "
		switch {
		case strings.Contains(titleText, needle):
			points += 2
		case strings.Contains(descText, needle):
			points++
		}
	}
	return math.Min(1.0, points/float64(len(m.skills)))
}

// tokenText lower-cases text and rebuilds it as space-separated tokens,
// padded so whole-word lookups can use " skill ".
func tokenText(text string) string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("+#.-", r)
	})
	for i, f := range fields {
		fields[i] = strings.Trim(f, ".-")
	}
	return " " + strings.Join(fields, " ") + " "
}

func (m *Matcher) salaryScore(p job.Posting) float64 {
	if m.prefs.SalaryMin <= 0 {
		return 1.0
	}
	var top int64
	switch {
	case p.SalaryMax != nil:
		top = *p.SalaryMax
	case p.SalaryMin != nil:
		top = *p.SalaryMin
	default:
		return 0.5
	}
	if top >= m.prefs.SalaryMin {
		return 1.0
	}
	if top <= 0 {
		return 0.0
	}
	return float64(top) / float64(m.prefs.SalaryMin)
}

func (m *Matcher) locationScore(p job.Posting) float64 {
	remote := isRemote(p)
	if m.prefs.RemoteOnly {
		switch {
		case remote:
			return 1.0
		case p.Remote != nil:
			return 0.0
		default:
			return 0.3
		}
	}
	if len(m.locations) == 0 {
		return 1.0
	}
	loc := job.Normalize(p.Location)
	for _, want := range m.locations {
		if loc != "" && strings.Contains(loc, want) {
			return 1.0
		}
	}
	if remote {
		return 0.8
	}
	return 0.2
}

func isRemote(p job.Posting) bool {
	if p.Remote != nil {
		return *p.Remote
	}
	loc := strings.ToLower(p.Location)
	return strings.Contains(loc, "remote") || strings.Contains(strings.ToLower(p.Title), "remote")
}

func (m *Matcher) companyScore(company string) float64 {
	c := job.Normalize(company)
	switch {
	case m.blocked[c]:
		return 0.0
	case m.preferred[c]:
		return 1.0
	default:
		return 0.5
	}
}

func postedAt(p job.Posting) time.Time {
	if !p.PostedAt.IsZero() {
		return p.PostedAt
	}
	return p.FirstSeen
}

// recencyScore decays exponentially: 1.0 at publish, ~0.5 at 24h, ~0.1 at 72h.
func recencyScore(published, now time.Time) float64 {
	if published.IsZero() {
		return 0.0
	}
	hours := now.Sub(published).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp(-0.02888 * hours)
}
