package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/score"
)

var base = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func posting(hash, title, company string, score float64) job.Posting {
	return job.Posting{
		Hash:        hash,
		Title:       title,
		Company:     company,
		URL:         "https://jobs.example/" + hash,
		Source:      "board",
		Description: "Description for " + title,
		Score:       score,
	}
}

func TestUpsertIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := posting("a", "Engineer", "Acme", 0.8)

	out, err := db.Upsert(ctx, p, base)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !out.New || out.TimesSeen != 1 {
		t.Fatalf("first upsert outcome = %+v, want new with times_seen 1", out)
	}

	later := base.Add(2 * time.Hour)
	out, err = db.Upsert(ctx, p, later)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if out.New || out.TimesSeen != 2 {
		t.Fatalf("second upsert outcome = %+v, want existing with times_seen 2", out)
	}

	got, err := db.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Hash != "a" {
		t.Errorf("hash changed to %q", got.Hash)
	}
	if !got.FirstSeen.Equal(base) {
		t.Errorf("first_seen = %v, want %v", got.FirstSeen, base)
	}
	if !got.LastSeen.Equal(later) {
		t.Errorf("last_seen = %v, want %v", got.LastSeen, later)
	}
	if got.TimesSeen != 2 {
		t.Errorf("times_seen = %d, want 2", got.TimesSeen)
	}
}

func TestUpsertUpdatesMutableFieldsAndKeepsFlags(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := posting("a", "Engineer", "Acme", 0.5)
	p.Breakdown = job.Breakdown{Skills: 0.5}
	if _, err := db.Upsert(ctx, p, base); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := db.SetBookmarked(ctx, "a", true); err != nil {
		t.Fatalf("bookmark: %v", err)
	}
	if err := db.SetNotes(ctx, "a", "ask about on-call"); err != nil {
		t.Fatalf("notes: %v", err)
	}

	remote := true
	salary := int64(120000)
	p.Score = 0.9
	p.Description = "Updated description"
	p.Remote = &remote
	p.SalaryMax = &salary
	p.GhostScore = 0.3
	p.GhostReasons = []string{"posted 61 days ago"}
	p.Breakdown = job.Breakdown{Skills: 1}
	if _, err := db.Upsert(ctx, p, base.Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != 0.9 || got.Description != "Updated description" {
		t.Errorf("mutable fields not updated: score %.2f desc %q", got.Score, got.Description)
	}
	if got.Remote == nil || !*got.Remote {
		t.Error("remote not stored")
	}
	if got.SalaryMax == nil || *got.SalaryMax != 120000 {
		t.Error("salary not stored")
	}
	if got.SalaryMin != nil {
		t.Error("salary min should stay NULL")
	}
	if got.Breakdown.Skills != 1 {
		t.Errorf("breakdown skills = %.2f, want 1", got.Breakdown.Skills)
	}
	if len(got.GhostReasons) != 1 || got.GhostReasons[0] != "posted 61 days ago" {
		t.Errorf("ghost reasons = %v", got.GhostReasons)
	}
	if !got.Bookmarked || got.Notes != "ask about on-call" {
		t.Errorf("user flags lost: bookmarked=%v notes=%q", got.Bookmarked, got.Notes)
	}
}

func TestUpsertRejectsInvalid(t *testing.T) {
	db := testDB(t)
	p := posting("a", "Engineer", "Acme", 0.5)
	p.URL = "ftp://jobs.example/a"

	_, err := db.Upsert(context.Background(), p, base)
	var ve *job.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := db.Get(context.Background(), "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("invalid posting was written: %v", err)
	}
}

func TestUpsertDerivesHash(t *testing.T) {
	db := testDB(t)
	p := posting("", "Engineer", "Acme", 0.5)
	if _, err := db.Upsert(context.Background(), p, base); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	want := job.Hash(p.Company, p.Title, p.Location, p.URL)
	if _, err := db.Get(context.Background(), want); err != nil {
		t.Errorf("posting not stored under derived hash: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := db.SetHidden(context.Background(), "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from SetHidden, got %v", err)
	}
}

func TestRepostCount(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var e RepostEntry
	var err error
	for i := 0; i < 3; i++ {
		e, err = db.TrackRepost(ctx, "Acme", "Engineer", "board", base.Add(time.Duration(i)*24*time.Hour))
		if err != nil {
			t.Fatalf("track %d: %v", i, err)
		}
	}
	if e.RepostCount != 3 {
		t.Errorf("repost_count = %d, want 3", e.RepostCount)
	}
	if !e.FirstSeen.Equal(base) {
		t.Errorf("first_seen = %v, want %v", e.FirstSeen, base)
	}
	if !e.LastSeen.Equal(base.Add(48 * time.Hour)) {
		t.Errorf("last_seen = %v", e.LastSeen)
	}

	// Normalized key: case and spacing do not split history.
	e, err = db.TrackRepost(ctx, " ACME ", "engineer", "board", base)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if e.RepostCount != 4 {
		t.Errorf("normalized repost_count = %d, want 4", e.RepostCount)
	}

	other, err := db.TrackRepost(ctx, "Acme", "Engineer", "other-board", base)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if other.RepostCount != 1 {
		t.Errorf("separate source repost_count = %d, want 1", other.RepostCount)
	}
}

func TestObserve(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	detector := score.DefaultGhostDetector()
	p := posting("a", "Engineer", "Acme", 0.7)

	var obs Observation
	var err error
	for i := 0; i < 3; i++ {
		obs, err = db.Observe(ctx, p, detector, base.Add(time.Duration(i)*24*time.Hour))
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
	}
	if obs.New || obs.TimesSeen != 3 {
		t.Errorf("outcome = %+v, want times_seen 3", obs.UpsertOutcome)
	}
	if obs.Repost.RepostCount != 3 {
		t.Errorf("repost_count = %d, want 3", obs.Repost.RepostCount)
	}
	// reposted on 3 days (0.3) + short description (0.1)
	if obs.Ghost.Score != 0.4 {
		t.Errorf("ghost score = %.2f, want 0.40 (reasons %v)", obs.Ghost.Score, obs.Ghost.Reasons)
	}

	got, err := db.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RepostCount != got.TimesSeen {
		t.Errorf("repost_count %d drifted from times_seen %d", got.RepostCount, got.TimesSeen)
	}
	if got.GhostScore != 0.4 || len(got.GhostReasons) != 2 {
		t.Errorf("stored ghost = %.2f %v", got.GhostScore, got.GhostReasons)
	}
}

func TestObserveFrequentScansStayFresh(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := posting("a", "Data Engineer", "Acme", 0.8)
	p.PostedAt = base.Add(-2 * time.Hour)
	p.Description = strings.Repeat("Design and run our data pipelines on Kubernetes. ", 8)

	var obs Observation
	var err error
	for i := 0; i < 5; i++ {
		obs, err = db.Observe(ctx, p, score.DefaultGhostDetector(), base.Add(time.Duration(i)*2*time.Hour))
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
	}
	if obs.Repost.RepostCount != 5 {
		t.Errorf("repost_count = %d, want 5", obs.Repost.RepostCount)
	}
	if obs.Ghost.Score >= score.GhostWarningThreshold {
		t.Errorf("ghost score = %.2f after 5 scans in 8h, want below warning (reasons %v)", obs.Ghost.Score, obs.Ghost.Reasons)
	}
}

func TestObserveInvalidWritesNothing(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := posting("a", strings.Repeat("x", job.MaxTitleLen+1), "Acme", 0.7)

	if _, err := db.Observe(ctx, p, score.DefaultGhostDetector(), base); err == nil {
		t.Fatal("expected validation error")
	}
	st, err := db.Stats(ctx, filepath.Join(t.TempDir(), "none.db"))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Postings != 0 || st.RepostKeys != 0 {
		t.Errorf("invalid observation wrote rows: %+v", st)
	}
}

func TestList(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	rows := []job.Posting{
		posting("a", "Go Engineer", "Acme", 0.9),
		posting("b", "Rust Engineer", "Globex", 0.6),
		posting("c", "Data Analyst", "Initech", 0.3),
	}
	rows[2].Source = "rss"
	for _, p := range rows {
		if _, err := db.Upsert(ctx, p, base); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := db.SetHidden(ctx, "b", true); err != nil {
		t.Fatalf("hide: %v", err)
	}

	tests := []struct {
		name string
		opts QueryOpts
		want []string
	}{
		{"visible by score", QueryOpts{}, []string{"a", "c"}},
		{"include hidden", QueryOpts{IncludeHidden: true}, []string{"a", "b", "c"}},
		{"min score", QueryOpts{MinScore: 0.5, IncludeHidden: true}, []string{"a", "b"}},
		{"source", QueryOpts{Sources: []string{"rss"}}, []string{"c"}},
		{"search", QueryOpts{Search: "engineer", IncludeHidden: true}, []string{"a", "b"}},
		{"limit", QueryOpts{Limit: 1}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d postings, want %d", len(got), len(tt.want))
			}
			for i, h := range tt.want {
				if got[i].Hash != h {
					t.Errorf("position %d = %s, want %s", i, got[i].Hash, h)
				}
			}
		})
	}

	if err := db.SetBookmarked(ctx, "c", true); err != nil {
		t.Fatalf("bookmark: %v", err)
	}
	got, err := db.List(ctx, QueryOpts{BookmarkedOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Hash != "c" {
		t.Errorf("bookmarked = %v", got)
	}
}

func TestResolve(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for _, h := range []string{"abc123", "abd456"} {
		if _, err := db.Upsert(ctx, posting(h, "Engineer "+h, "Acme", 0.5), base); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if got, err := db.Resolve(ctx, "abc"); err != nil || got != "abc123" {
		t.Errorf("Resolve(abc) = %q, %v", got, err)
	}
	if _, err := db.Resolve(ctx, "ab"); err == nil {
		t.Error("ambiguous prefix should fail")
	}
	if _, err := db.Resolve(ctx, "zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateGroups(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a := posting("a", "Engineer", "Acme", 0.9)
	b := posting("b", "engineer", "acme", 0.7)
	b.Source = "other-board"
	solo := posting("c", "Designer", "Acme", 0.95)
	for _, p := range []job.Posting{a, b, solo} {
		if _, err := db.Upsert(ctx, p, base); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	groups, err := db.FindDuplicateGroups(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.Primary.Hash != "a" {
		t.Errorf("primary = %s, want a", g.Primary.Hash)
	}
	if len(g.Members) != 2 {
		t.Errorf("members = %d, want 2", len(g.Members))
	}

	n, err := db.MergeGroup(ctx, g)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n != 1 {
		t.Errorf("merge hid %d, want 1", n)
	}
	hidden, err := db.Get(ctx, "b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hidden.Hidden {
		t.Error("non-primary member should be hidden")
	}
	primary, _ := db.Get(ctx, "a")
	if primary.Hidden {
		t.Error("primary should stay visible")
	}

	groups, err = db.FindDuplicateGroups(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("merged group still reported: %d", len(groups))
	}

	if err := db.SetHidden(ctx, "b", false); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	groups, _ = db.FindDuplicateGroups(ctx)
	if len(groups) != 1 {
		t.Errorf("unhiding should restore the group, got %d", len(groups))
	}
}

func TestDuplicatePrimaryTieBreaksOnFirstSeen(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if _, err := db.Upsert(ctx, posting("late", "Engineer", "Acme", 0.8), base.Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := db.Upsert(ctx, posting("early", "ENGINEER", "Acme", 0.8), base); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	groups, err := db.FindDuplicateGroups(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(groups) != 1 || groups[0].Primary.Hash != "early" {
		t.Fatalf("expected primary early, got %+v", groups)
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, ok, err := db.LoadWeights(ctx); err != nil || ok {
		t.Fatalf("empty store LoadWeights ok=%v err=%v", ok, err)
	}

	bad := score.Weights{Skills: 0.5, Salary: 0.3, Location: 0.2, Company: 0.1, Recency: -0.1}
	if err := db.SaveWeights(ctx, bad); !errors.Is(err, score.ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}

	w := score.Weights{Skills: 0.5, Salary: 0.2, Location: 0.2, Company: 0.05, Recency: 0.05}
	if err := db.SaveWeights(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := db.LoadWeights(ctx)
	if err != nil || !ok {
		t.Fatalf("load ok=%v err=%v", ok, err)
	}
	if got != w {
		t.Errorf("loaded %+v, want %+v", got, w)
	}

	if _, err := db.writeDB.ExecContext(ctx, "UPDATE scoring_config SET recency = 0.5 WHERE id = 1"); err != nil {
		t.Fatalf("corrupting row: %v", err)
	}
	if _, ok, err := db.LoadWeights(ctx); err != nil || ok {
		t.Errorf("invalid stored weights: ok=%v err=%v, want ignored", ok, err)
	}
}

func TestLastCycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if !db.NeedsRefresh(ctx, time.Hour) {
		t.Error("fresh store should need refresh")
	}
	if err := db.SetLastCycle(ctx, time.Now()); err != nil {
		t.Fatalf("set: %v", err)
	}
	if db.NeedsRefresh(ctx, time.Hour) {
		t.Error("store should not need refresh right after a cycle")
	}
	last, err := db.LastCycle(ctx)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if time.Since(last) > time.Minute {
		t.Errorf("last cycle = %v", last)
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	ghost := posting("g", "Engineer", "Acme", 0.2)
	ghost.GhostScore = 0.6
	for _, p := range []job.Posting{posting("a", "SRE", "Acme", 0.5), ghost} {
		if _, err := db.Upsert(ctx, p, base); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := db.SetHidden(ctx, "a", true); err != nil {
		t.Fatalf("hide: %v", err)
	}

	st, err := db.Stats(ctx, path)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Postings != 2 || st.Hidden != 1 || st.Ghosts != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.SizeBytes == 0 {
		t.Error("expected non-zero size")
	}
}
