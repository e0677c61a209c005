// Package classify buckets postings into broad engineering roles.
package classify

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Role is a posting's coarse job family.
type Role string

const (
	Backend    Role = "Backend"
	Frontend   Role = "Frontend"
	DataML     Role = "Data/ML"
	Infra      Role = "Infra/SRE"
	Security   Role = "Security"
	Mobile     Role = "Mobile"
	Management Role = "Management"
	Other      Role = "Other"
)

// AllRoles returns every role in canonical order; earlier roles win ties.
func AllRoles() []Role {
	return []Role{Backend, Frontend, DataML, Infra, Security, Mobile, Management}
}

var roleKeywords = map[Role][]string{
	Backend: {
		"backend", "back-end", "server", "api", "golang", "java", "python",
		"ruby", "rails", "django", "node", "microservice", "grpc", "postgres",
		"distributed", "rust", "elixir", "scala", "kotlin", "php",
	},
	Frontend: {
		"frontend", "front-end", "react", "vue", "angular", "svelte", "css",
		"typescript", "javascript", "ui", "ux", "web", "next.js", "design system",
	},
	DataML: {
		"data", "machine learning", "ml", "ai", "llm", "analytics", "scientist",
		"spark", "airflow", "pytorch", "tensorflow", "etl", "warehouse", "nlp",
		"deep learning", "computer vision",
	},
	Infra: {
		"devops", "sre", "reliability", "infrastructure", "platform", "kubernetes",
		"terraform", "cloud", "aws", "gcp", "azure", "observability", "linux",
		"on-call", "ci/cd", "site reliability",
	},
	Security: {
		"security", "appsec", "penetration", "pentest", "soc", "threat",
		"vulnerability", "iam", "zero trust", "incident response", "cryptography",
	},
	Mobile: {
		"ios", "android", "mobile", "swift", "flutter", "react native", "swiftui",
	},
	Management: {
		"manager", "director", "head", "vp", "cto", "management", "people lead",
		"engineering manager",
	},
}

// Aliases maps short CLI values to roles.
var Aliases = map[string]Role{
	"backend":  Backend,
	"frontend": Frontend,
	"data":     DataML,
	"ml":       DataML,
	"infra":    Infra,
	"sre":      Infra,
	"devops":   Infra,
	"security": Security,
	"mobile":   Mobile,
	"manager":  Management,
	"other":    Other,
}

// ResolveAlias maps a CLI value to a Role. Full role names are accepted too.
func ResolveAlias(alias string) (Role, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if r, ok := Aliases[alias]; ok {
		return r, nil
	}
	for _, r := range append(AllRoles(), Other) {
		if strings.EqualFold(string(r), alias) {
			return r, nil
		}
	}
	valid := make([]string, 0, len(Aliases))
	for k := range Aliases {
		valid = append(valid, k)
	}
	slices.Sort(valid)
	return "", fmt.Errorf("unknown role %q (valid: %s)", alias, strings.Join(valid, ", "))
}

// Classify picks the role whose keywords best match the posting. Title hits
// count double; descriptions mention every stack under the sun.
func Classify(title, description string) Role {
	titleTokens := tokenize(title)
	descTokens := tokenize(description)
	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)

	best, bestScore := Other, 0
	for _, role := range AllRoles() {
		score := 0
		for _, kw := range roleKeywords[role] {
			if strings.ContainsAny(kw, " ./") {
				if strings.Contains(titleLower, kw) {
					score += 2
				}
				if strings.Contains(descLower, kw) {
					score++
				}
				continue
			}
			score += 2 * count(titleTokens, kw)
			score += count(descTokens, kw)
		}
		// strict > keeps the earlier role on ties
		if score > bestScore {
			best, bestScore = role, score
		}
	}
	return best
}

// count matches whole tokens only; "ai" must not match "maintain".
func count(tokens []string, kw string) int {
	n := 0
	for _, t := range tokens {
		if t == kw {
			n++
		}
	}
	return n
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		word = strings.Trim(word, "-")
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
