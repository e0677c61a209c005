package job

import (
	"errors"
	"strings"
	"testing"
)

func TestHashDeterministic(t *testing.T) {
	a := Hash("Acme", "Engineer", "Remote", "https://acme.com/jobs/1")
	b := Hash("Acme", "Engineer", "Remote", "https://acme.com/jobs/1")
	c := Hash("Acme", "Engineer", "Remote", "https://acme.com/jobs/2")

	if a != b {
		t.Error("same content should produce the same hash")
	}
	if a == c {
		t.Error("different URLs should produce different hashes")
	}
	if len(a) != 64 {
		t.Errorf("expected 64-char hex hash, got %d chars", len(a))
	}
}

func TestHashFieldBoundaries(t *testing.T) {
	if Hash("ab", "c", "", "") == Hash("a", "bc", "", "") {
		t.Error("field separator should keep shifted content distinct")
	}
}

func TestEnsureHash(t *testing.T) {
	p := Posting{Title: "Engineer", Company: "Acme", URL: "https://acme.com/1"}
	p.EnsureHash()
	if p.Hash != Hash("Acme", "Engineer", "", "https://acme.com/1") {
		t.Errorf("unexpected hash %q", p.Hash)
	}

	p2 := Posting{Hash: "preset"}
	p2.EnsureHash()
	if p2.Hash != "preset" {
		t.Error("EnsureHash must not overwrite an existing hash")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Senior   Engineer ", "senior engineer"},
		{"ACME\tCorp", "acme corp"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestKeyCaseInsensitive(t *testing.T) {
	a := Posting{Title: "Engineer", Company: "Acme"}
	b := Posting{Title: "engineer", Company: "ACME "}
	if a.Key() != b.Key() {
		t.Error("keys should match case-insensitively")
	}
}

func validPosting() Posting {
	return Posting{
		Title:       "Backend Engineer",
		Company:     "Acme",
		URL:         "https://acme.com/jobs/1",
		Location:    "Remote",
		Description: "Build things.",
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(validPosting()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	p := validPosting()
	p.URL = "http://acme.com/jobs/1"
	if err := Validate(p); err != nil {
		t.Errorf("http should be accepted: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Posting)
		field  string
	}{
		{"empty title", func(p *Posting) { p.Title = " " }, "title"},
		{"long title", func(p *Posting) { p.Title = strings.Repeat("x", MaxTitleLen+1) }, "title"},
		{"long company", func(p *Posting) { p.Company = strings.Repeat("x", MaxCompanyLen+1) }, "company"},
		{"long location", func(p *Posting) { p.Location = strings.Repeat("x", MaxLocationLen+1) }, "location"},
		{"long description", func(p *Posting) { p.Description = strings.Repeat("x", MaxDescriptionLen+1) }, "description"},
		{"long url", func(p *Posting) { p.URL = "https://a.com/" + strings.Repeat("x", MaxURLLen) }, "url"},
		{"file scheme", func(p *Posting) { p.URL = "file:///etc/passwd" }, "url"},
		{"javascript scheme", func(p *Posting) { p.URL = "javascript:alert(1)" }, "url"},
		{"missing url", func(p *Posting) { p.URL = "" }, "url"},
		{"relative url", func(p *Posting) { p.URL = "/jobs/1" }, "url"},
	}
	for _, tt := range tests {
		p := validPosting()
		tt.mutate(&p)
		err := Validate(p)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
			continue
		}
		if ve.Field != tt.field {
			t.Errorf("%s: field = %q, want %q", tt.name, ve.Field, tt.field)
		}
	}
}

func TestValidateCountsRunes(t *testing.T) {
	p := validPosting()
	p.Title = strings.Repeat("é", MaxTitleLen)
	if err := Validate(p); err != nil {
		t.Errorf("multi-byte title at the limit should pass: %v", err)
	}
}
