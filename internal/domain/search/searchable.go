package search

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field selects which parts of an entity a query is matched against
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldContent     Field = "content"
	FieldKeywords    Field = "keywords"
	FieldOwner       Field = "owner"
)

// DefaultFields returns the field set used when the caller does not narrow
// the search
func DefaultFields() []Field {
	return []Field{FieldTitle, FieldDescription, FieldContent, FieldKeywords, FieldOwner}
}

// Per-field weights. Title matches dominate, free-text content counts least.
const (
	weightTitle       = 3.0
	weightDescription = 2.0
	weightContent     = 1.0
	weightKeywords    = 2.5
	weightOwner       = 1.5
)

// Scoring increments within a field
const (
	phraseFactor    = 1.0
	wholeWordFactor = 0.8
	substringFactor = 0.4
	fuzzyFactor     = 0.2
)

// MinRelevance is the score below which a result is dropped from listings
const MinRelevance = 0.1

// Searchable is implemented by entities that participate in universal search
type Searchable interface {
	SearchID() uuid.UUID
	SearchEntityType() string
	SearchTitle() string
	SearchDescription() string
	SearchContent() string
	SearchKeywords() []string
	SearchOwnerName() string
	SearchStatus() string
	SearchCreatedAt() time.Time
}

// Score computes how well an entity matches a query over the given fields,
// normalized to [0, 1]. An empty query scores zero.
func Score(e Searchable, query string, fields []Field) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0.0
	}
	terms := strings.Fields(query)

	total := 0.0
	maxPossible := 0.0

	if hasField(fields, FieldTitle) {
		total += fieldRelevance(strings.ToLower(e.SearchTitle()), terms, weightTitle)
		maxPossible += weightTitle
	}
	if hasField(fields, FieldDescription) {
		total += fieldRelevance(strings.ToLower(e.SearchDescription()), terms, weightDescription)
		maxPossible += weightDescription
	}
	if hasField(fields, FieldContent) {
		total += fieldRelevance(strings.ToLower(e.SearchContent()), terms, weightContent)
		maxPossible += weightContent
	}
	if hasField(fields, FieldKeywords) {
		total += keywordRelevance(e.SearchKeywords(), terms, weightKeywords)
		maxPossible += weightKeywords
	}
	if hasField(fields, FieldOwner) {
		total += fieldRelevance(strings.ToLower(e.SearchOwnerName()), terms, weightOwner)
		maxPossible += weightOwner
	}

	if maxPossible == 0 {
		return 0.0
	}
	score := total / maxPossible
	if score > 1.0 {
		return 1.0
	}
	return score
}

// fieldRelevance scores one text field against the query terms. An exact
// phrase match short-circuits at full weight; otherwise each term earns a
// whole-word or substring increment, plus a small fuzzy bonus for near
// misses.
func fieldRelevance(content string, terms []string, weight float64) float64 {
	if strings.TrimSpace(content) == "" {
		return 0.0
	}

	phrase := strings.Join(terms, " ")
	score := 0.0

	for _, term := range terms {
		if len(term) < 2 {
			continue
		}

		if strings.Contains(content, phrase) {
			score += phraseFactor * weight
			break
		}

		if strings.Contains(content, term) {
			if wholeWordMatch(content, term) {
				score += wholeWordFactor * weight
			} else {
				score += substringFactor * weight
			}
		}

		if levenshtein(term, content) <= 2 {
			score += fuzzyFactor * weight
		}
	}

	return score
}

// keywordRelevance awards full weight per query term that exactly matches
// a keyword
func keywordRelevance(keywords []string, terms []string, weight float64) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	lower := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		lower[strings.ToLower(k)] = struct{}{}
	}

	score := 0.0
	for _, term := range terms {
		if _, ok := lower[strings.ToLower(term)]; ok {
			score += weight
		}
	}
	return score
}

func wholeWordMatch(content, term string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(content)
}

const levenshteinMaxLen = 20

// levenshtein returns the edit distance between two strings, or a distance
// large enough to never count as a match when either side exceeds
// levenshteinMaxLen. Long content makes the comparison meaningless.
func levenshtein(s1, s2 string) int {
	if len(s1) > levenshteinMaxLen || len(s2) > levenshteinMaxLen {
		return levenshteinMaxLen + 1
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, min(prev[j]+1, curr[j-1]+1))
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

func hasField(fields []Field, f Field) bool {
	for _, field := range fields {
		if field == f {
			return true
		}
	}
	return false
}

const summaryMaxLen = 150

// Summary builds the one-line display string for a search result:
// "title - description", with long descriptions truncated.
func Summary(e Searchable) string {
	var b strings.Builder

	if title := e.SearchTitle(); title != "" {
		b.WriteString(title)
	}
	if desc := e.SearchDescription(); desc != "" {
		if b.Len() > 0 {
			b.WriteString(" - ")
		}
		if len(desc) > summaryMaxLen {
			desc = desc[:summaryMaxLen-3] + "..."
		}
		b.WriteString(desc)
	}

	return b.String()
}

// Boost returns a ranking multiplier favoring recent and active entities
func Boost(e Searchable, now time.Time) float64 {
	boost := 1.0

	if e.SearchCreatedAt().After(now.AddDate(0, -1, 0)) {
		boost += 0.1
	}

	status := strings.ToUpper(e.SearchStatus())
	if status == "ACTIVE" || status == "PRIORITY" {
		boost += 0.2
	}

	return boost
}
