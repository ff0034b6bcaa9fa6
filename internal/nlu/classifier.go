// Package nlu implements deterministic intent detection over finalized
// transcripts: fuzzy keyword scoring plus a fixed set of entity patterns.
package nlu

import (
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Result is the outcome of intent detection for one utterance.
type Result struct {
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
}

// IntentUnknown is returned when no keyword phrase scores above zero.
const IntentUnknown = "unknown"

type intentEntry struct {
	name     string
	keywords []string
}

// Table order is significant: the first-seen intent wins score ties.
var intentTable = []intentEntry{
	{"navigate", []string{"navigate", "go to", "open", "enter"}},
	{"show", []string{"show", "list", "display"}},
	{"create", []string{"create", "new", "make"}},
	{"publish", []string{"publish", "push live"}},
	{"search", []string{"search", "find", "look for"}},
	{"move", []string{"move", "relocate", "archive"}},
	{"switch", []string{"switch", "change workspace"}},
}

var (
	categoryPattern  = regexp.MustCompile(`\b(blog|page|archive|draft)s?\b`)
	dateRangePattern = regexp.MustCompile(`last (week|month)`)
)

// minPartialScore is the floor below which a fuzzy score counts as no
// overlap at all. Partial-ratio scoring gives unrelated strings small
// nonzero scores from incidental character matches, so picking the best
// match alone would route gibberish to a real intent; anything under
// the floor maps to the unknown intent with zero confidence instead.
const minPartialScore = 60

// Classifier scores utterances against the intent table. It is stateless
// and safe for concurrent use.
type Classifier struct{}

// NewClassifier creates a new intent classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Detect scores text against every keyword phrase and returns the best
// intent, its normalized confidence, and any extracted entities. Entity
// extraction is independent of the intent decision.
func (c *Classifier) Detect(text string) Result {
	cleaned := strings.ToLower(strings.TrimSpace(text))

	bestIntent := ""
	bestScore := 0
	if cleaned != "" {
		for _, entry := range intentTable {
			for _, keyword := range entry.keywords {
				score := fuzzy.PartialRatio(cleaned, keyword)
				if score > bestScore {
					bestScore = score
					bestIntent = entry.name
				}
			}
		}
	}

	result := Result{
		Intent:     bestIntent,
		Confidence: float64(bestScore) / 100.0,
		Entities:   extractEntities(cleaned),
	}
	if result.Intent == "" || bestScore < minPartialScore {
		result.Intent = IntentUnknown
		result.Confidence = 0
	}
	return result
}

func extractEntities(cleaned string) map[string]string {
	entities := make(map[string]string)
	if m := categoryPattern.FindStringSubmatch(cleaned); m != nil {
		entities["category"] = m[1]
	}
	if m := dateRangePattern.FindString(cleaned); m != "" {
		entities["date_range"] = m
	}
	return entities
}
