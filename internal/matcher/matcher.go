// Package matcher maps a free-text prompt onto the built-in idea catalog.
package matcher

import (
	"strings"

	"artassist/internal/catalog"
	"artassist/internal/models"
)

// Limit is the maximum number of ideas returned for one prompt.
const Limit = models.MaxIdeasPerMessage

// Rule pairs a keyword group with the filter it selects.
type Rule struct {
	Name     string
	Keywords []string
	Keep     func(models.Idea) bool
}

func (r Rule) matches(prompt string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(prompt, kw) {
			return true
		}
	}
	return false
}

// Rules is evaluated in order; the first rule whose keywords appear in the prompt wins.
var Rules = []Rule{
	{
		Name:     "melancholy",
		Keywords: []string{"грус", "меланхол", "печал"},
		Keep: func(i models.Idea) bool {
			return strings.Contains(i.Title, "портрет") || strings.Contains(i.Title, "дождь") || i.Category == catalog.CategoryPainting
		},
	},
	{
		Name:     "urban",
		Keywords: []string{"город", "улиц", "современ"},
		Keep: func(i models.Idea) bool {
			return strings.Contains(i.Title, "город") || i.Category == catalog.CategoryPhotography
		},
	},
	{
		Name:     "beginner",
		Keywords: []string{"простой", "минимал", "начина"},
		Keep: func(i models.Idea) bool {
			return i.Difficulty == models.DifficultyEasy
		},
	},
	{
		Name:     "ecology",
		Keywords: []string{"эколог", "природ", "переработ"},
		Keep: func(i models.Idea) bool {
			return strings.Contains(i.Title, "переработанных") || i.Category == catalog.CategorySculpture
		},
	},
}

// Match selects up to Limit catalog ideas for the prompt.
func Match(prompt string) []models.Idea {
	return MatchIn(catalog.Ideas(), prompt)
}

// MatchIn runs the rules against the given ideas. An empty filtered set stays empty.
func MatchIn(ideas []models.Idea, prompt string) []models.Idea {
	candidates := ideas
	if rule, ok := RuleFor(prompt); ok {
		candidates = make([]models.Idea, 0, len(ideas))
		for _, idea := range ideas {
			if rule.Keep(idea) {
				candidates = append(candidates, idea)
			}
		}
	}
	if len(candidates) > Limit {
		candidates = candidates[:Limit]
	}
	return models.CloneIdeas(append([]models.Idea{}, candidates...))
}

// RuleFor reports the first rule triggered by the prompt.
func RuleFor(prompt string) (Rule, bool) {
	lower := strings.ToLower(prompt)
	for _, rule := range Rules {
		if rule.matches(lower) {
			return rule, true
		}
	}
	return Rule{}, false
}
