// Package job defines the canonical posting record shared by sources,
// scoring and storage.
package job

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Breakdown holds the five sub-scores, each in [0,1].
type Breakdown struct {
	Skills   float64 `json:"skills"`
	Salary   float64 `json:"salary"`
	Location float64 `json:"location"`
	Company  float64 `json:"company"`
	Recency  float64 `json:"recency"`
}

// Posting is a single job listing. Hash is its identity.
type Posting struct {
	Hash           string
	Title          string
	Company        string
	URL            string
	Location       string
	Description    string
	Source         string
	Remote         *bool
	SalaryMin      *int64
	SalaryMax      *int64
	SalaryCurrency string
	PostedAt       time.Time

	Score     float64
	Breakdown Breakdown

	TimesSeen   int
	FirstSeen   time.Time
	LastSeen    time.Time
	RepostCount int

	GhostScore   float64
	GhostReasons []string

	Hidden     bool
	Bookmarked bool
	Notes      string
}

// Hash derives the content hash from company, title, location and URL.
func Hash(company, title, location, url string) string {
	h := sha256.New()
	h.Write([]byte(company))
	h.Write([]byte{'|'})
	h.Write([]byte(title))
	h.Write([]byte{'|'})
	h.Write([]byte(location))
	h.Write([]byte{'|'})
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// EnsureHash fills Hash from the posting content when an adapter left it empty.
func (p *Posting) EnsureHash() {
	if p.Hash == "" {
		p.Hash = Hash(p.Company, p.Title, p.Location, p.URL)
	}
}

// HasSalary reports whether the adapter supplied any salary figure.
func (p Posting) HasSalary() bool {
	return p.SalaryMin != nil || p.SalaryMax != nil
}

// Normalize lower-cases s, trims it and collapses internal whitespace.
// Repost tracking and duplicate grouping both key on normalized text.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Key is the (company, title) identity used for cross-source grouping.
func (p Posting) Key() string {
	return Normalize(p.Title) + "\x00" + Normalize(p.Company)
}
