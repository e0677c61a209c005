// Package digest summarizes recently observed postings for the home screen.
package digest

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/score"
)

const defaultSize = 5

// Digest is a snapshot of what changed since a point in time.
type Digest struct {
	DateLabel     string
	Greeting      string
	Scanned       int
	New           int
	Ghosts        int
	ActiveSources string
	Trending      []string
	Top           []job.Posting
}

type Options struct {
	Since time.Time
	Now   time.Time
	Size  int
	// MinScore drops weaker matches from Top; zero keeps everything.
	MinScore float64
}

// Build summarizes recent against the full visible set. recent must be the
// postings seen since opts.Since, all is used for term frequencies.
func Build(recent, all []job.Posting, opts Options) Digest {
	if opts.Size <= 0 {
		opts.Size = defaultSize
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	d := Digest{
		DateLabel: opts.Now.Format("Jan 2"),
		Greeting:  greeting(opts.Now),
		Scanned:   len(recent),
	}
	if len(recent) == 0 {
		return d
	}

	for _, p := range recent {
		if !p.FirstSeen.Before(opts.Since) {
			d.New++
		}
		if score.Level(p.GhostScore) == score.GhostLikely {
			d.Ghosts++
		}
	}

	top := make([]job.Posting, 0, len(recent))
	for _, p := range recent {
		if p.Hidden || p.Score < opts.MinScore {
			continue
		}
		if score.Level(p.GhostScore) == score.GhostLikely {
			continue
		}
		top = append(top, p)
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
	if len(top) > opts.Size {
		top = top[:opts.Size]
	}
	d.Top = top

	d.ActiveSources = activeSources(recent)
	d.Trending = trending(recent, all)
	return d
}

func greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

func activeSources(postings []job.Posting) string {
	counts := map[string]int{}
	for _, p := range postings {
		counts[p.Source]++
	}

	type sc struct {
		name  string
		count int
	}
	sorted := make([]sc, 0, len(counts))
	for name, count := range counts {
		sorted = append(sorted, sc{name, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].name < sorted[j].name
	})

	limit := min(3, len(sorted))
	parts := make([]string, limit)
	for i := 0; i < limit; i++ {
		parts[i] = fmt.Sprintf("%s (%d)", sorted[i].name, sorted[i].count)
	}
	return strings.Join(parts, ", ")
}

// trending ranks title terms of recent postings by TF-IDF against all.
func trending(recent, all []job.Posting) []string {
	df := map[string]int{}
	for _, p := range all {
		seen := map[string]bool{}
		for _, w := range tokenize(p.Title) {
			if !seen[w] {
				df[w]++
				seen[w] = true
			}
		}
	}

	tf := map[string]int{}
	for _, p := range recent {
		for _, w := range tokenize(p.Title) {
			tf[w]++
		}
	}

	totalDocs := max(len(all), 1)

	type scored struct {
		term  string
		score float64
	}
	var terms []scored
	for term, freq := range tf {
		if freq < 2 {
			continue
		}
		docFreq := max(df[term], 1)
		idf := math.Log(float64(totalDocs)/float64(docFreq)) + 1
		terms = append(terms, scored{term, float64(freq) * idf})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].score != terms[j].score {
			return terms[i].score > terms[j].score
		}
		return terms[i].term < terms[j].term
	})

	limit := min(3, len(terms))
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = terms[i].term
	}
	return out
}

// Job titles are full of seniority noise that says nothing about the market.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"senior": true, "junior": true, "staff": true, "principal": true, "lead": true,
	"remote": true, "hybrid": true, "onsite": true, "full": true, "time": true,
	"fulltime": true, "part": true, "contract": true, "intern": true,
	"level": true, "team": true, "role": true, "position": true, "opening": true,
	"hiring": true, "join": true, "ii": true, "iii": true,
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(word) < 3 || stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
