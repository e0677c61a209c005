package match

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/matheuskafuri/jobradar/internal/job"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newMatcher(p Preferences) *Matcher {
	return New(p, WithClock(func() time.Time { return now }))
}

func TestSkillsScore(t *testing.T) {
	m := newMatcher(Preferences{Skills: []string{"Go", "Postgres", "Kubernetes", "C++"}})
	tests := []struct {
		name  string
		title string
		desc  string
		want  float64
	}{
		{"none", "Accountant", "Spreadsheets all day", 0},
		{"description only", "Engineer", "We use Go and Postgres.", 0.5},
		{"title counts double", "Go Engineer", "Postgres shop", 0.75},
		{"all in description", "Engineer", "go, postgres, kubernetes and c++", 1.0},
		{"capped", "Go Postgres Kubernetes C++", "", 1.0},
		{"whole words only", "Engineer", "Mongo and Django", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.skillsScore(tt.title, tt.desc)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("skillsScore = %.3f, want %.3f", got, tt.want)
			}
		})
	}
}

func TestSkillsScoreNoSkills(t *testing.T) {
	m := newMatcher(Preferences{})
	if got := m.skillsScore("Go Engineer", ""); got != 0.5 {
		t.Errorf("neutral skills score = %.2f, want 0.5", got)
	}
}

func TestSalaryScore(t *testing.T) {
	m := newMatcher(Preferences{SalaryMin: 100000})
	tests := []struct {
		name string
		p    job.Posting
		want float64
	}{
		{"unknown", job.Posting{}, 0.5},
		{"max above", job.Posting{SalaryMin: ptr[int64](80000), SalaryMax: ptr[int64](120000)}, 1.0},
		{"min only above", job.Posting{SalaryMin: ptr[int64](110000)}, 1.0},
		{"below", job.Posting{SalaryMax: ptr[int64](75000)}, 0.75},
	}
	for _, tt := range tests {
		if got := m.salaryScore(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: salaryScore = %.3f, want %.3f", tt.name, got, tt.want)
		}
	}

	if got := newMatcher(Preferences{}).salaryScore(job.Posting{}); got != 1.0 {
		t.Errorf("no minimum should score 1.0, got %.2f", got)
	}
}

func TestLocationScore(t *testing.T) {
	remoteOnly := newMatcher(Preferences{RemoteOnly: true})
	if got := remoteOnly.locationScore(job.Posting{Remote: ptr(true)}); got != 1.0 {
		t.Errorf("remote posting = %.2f, want 1.0", got)
	}
	if got := remoteOnly.locationScore(job.Posting{Remote: ptr(false), Location: "Berlin"}); got != 0.0 {
		t.Errorf("onsite posting = %.2f, want 0.0", got)
	}
	if got := remoteOnly.locationScore(job.Posting{Location: "Remote - EU"}); got != 1.0 {
		t.Errorf("remote in location text = %.2f, want 1.0", got)
	}
	if got := remoteOnly.locationScore(job.Posting{Location: "Lisbon"}); got != 0.3 {
		t.Errorf("unknown remote = %.2f, want 0.3", got)
	}

	cities := newMatcher(Preferences{Locations: []string{"Lisbon", "Berlin"}})
	if got := cities.locationScore(job.Posting{Location: "Berlin, Germany"}); got != 1.0 {
		t.Errorf("allowed city = %.2f, want 1.0", got)
	}
	if got := cities.locationScore(job.Posting{Location: "Anywhere", Remote: ptr(true)}); got != 0.8 {
		t.Errorf("remote fallback = %.2f, want 0.8", got)
	}
	if got := cities.locationScore(job.Posting{Location: "Paris"}); got != 0.2 {
		t.Errorf("other city = %.2f, want 0.2", got)
	}
}

func TestCompanyScore(t *testing.T) {
	m := newMatcher(Preferences{
		PreferredCompanies: []string{"Acme Corp"},
		BlockedCompanies:   []string{"Initech"},
	})
	tests := map[string]float64{
		"acme  corp": 1.0,
		"INITECH":    0.0,
		"Globex":     0.5,
	}
	for company, want := range tests {
		if got := m.companyScore(company); got != want {
			t.Errorf("companyScore(%q) = %.2f, want %.2f", company, got, want)
		}
	}
}

func TestRecencyDecay(t *testing.T) {
	fresh := recencyScore(now, now)
	day := recencyScore(now.Add(-24*time.Hour), now)
	threeDay := recencyScore(now.Add(-72*time.Hour), now)

	if fresh < 0.99 {
		t.Errorf("recency now should be ~1.0, got %.2f", fresh)
	}
	if math.Abs(day-0.5) > 0.01 {
		t.Errorf("recency at 24h should be ~0.5, got %.2f", day)
	}
	if threeDay > 0.2 {
		t.Errorf("recency at 72h should be <0.2, got %.2f", threeDay)
	}
	if recencyScore(time.Time{}, now) != 0 {
		t.Error("unknown publish time should score 0")
	}
	if recencyScore(now.Add(time.Hour), now) != 1 {
		t.Error("future publish time should clamp to 1")
	}
}

func TestMatchUsesFirstSeenWhenUndated(t *testing.T) {
	m := newMatcher(Preferences{})
	b, err := m.Match(context.Background(), job.Posting{Title: "SRE", FirstSeen: now}, "")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if b.Recency < 0.99 {
		t.Errorf("recency = %.2f, want ~1.0", b.Recency)
	}
}

func TestMatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newMatcher(Preferences{}).Match(ctx, job.Posting{}, ""); err == nil {
		t.Fatal("expected context error")
	}
}
