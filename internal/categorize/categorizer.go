// Weighted keyword scorer that assigns a business category to a posting.
//
// Scoring is deterministic: categories are evaluated in declaration order and
// ties resolve to the first declared category.

package categorize

import (
	"fmt"
	"strings"

	"go-jobharvest/internal/config"
	"go-jobharvest/internal/models"
	"go-jobharvest/internal/normalize"
)

// Only the head of the description participates in scoring; long postings
// would otherwise drown the title signal.
const descriptionSampleLen = 500

type Categorizer struct {
	categories []config.CategoryConfig
	rules      config.Rules
}

// New builds a categorizer from the shared global configuration.
func New(global *config.GlobalConfig) *Categorizer {
	return &Categorizer{
		categories: global.Categories,
		rules:      global.Rules,
	}
}

// Categorize scores every configured category against title, description and
// department and picks the best one. The result always carries a category;
// the catch-all stands in when nothing matches or confidence is too low.
func (c *Categorizer) Categorize(title, description, department string) models.CategorizationResult {
	titleText := normalize.Fold(title)
	descText := normalize.Fold(description)
	if len(descText) > descriptionSampleLen {
		descText = descText[:descriptionSampleLen]
	}
	deptText := normalize.Fold(department)

	scores := map[string]float64{}
	keywordMatches := map[string]int{}
	var winner *config.CategoryConfig
	var winnerScore float64

	for i := range c.categories {
		cat := &c.categories[i]
		var matched []string

		titleHits := findMatches(titleText, cat.Keywords)
		score := float64(len(titleHits)) * c.rules.TitleWeight
		matched = append(matched, titleHits...)

		descHits := findMatches(descText, cat.Keywords)
		score += float64(len(descHits)) * c.rules.DescriptionWeight * 0.5
		matched = append(matched, descHits...)

		deptHits := findMatches(deptText, cat.Departments)
		score += float64(len(deptHits)) * c.rules.DepartmentWeight
		matched = append(matched, deptHits...)

		//flat bonus per single-word match occurrence, whichever field it hit
		for _, m := range matched {
			if len(strings.Fields(m)) == 1 {
				score += c.rules.ExactMatchBonus
			}
		}

		if score > 0 {
			scores[cat.ID] = score
			keywordMatches[cat.ID] = len(matched)
			if winner == nil || score > winnerScore {
				winner = cat
				winnerScore = score
			}
		}
	}

	if winner == nil {
		return models.CategorizationResult{
			Category:       models.CategoryOther,
			Confidence:     0,
			KeywordMatches: keywordMatches,
			Reasoning:      "No category keywords found",
		}
	}

	confidence := 0.0
	if maxPossible := float64(len(winner.Keywords)) * c.rules.TitleWeight; maxPossible > 0 {
		confidence = winnerScore / maxPossible
		if confidence > 1 {
			confidence = 1
		}
	}

	if confidence < c.rules.MinConfidenceThreshold {
		return models.CategorizationResult{
			Category:       models.CategoryOther,
			Confidence:     confidence,
			KeywordMatches: keywordMatches,
			Reasoning:      fmt.Sprintf("Confidence %.2f below threshold %.2f", confidence, c.rules.MinConfidenceThreshold),
		}
	}

	departmentMatch := false
	if deptText != "" {
		for _, dept := range winner.Departments {
			if strings.Contains(deptText, normalize.Fold(dept)) {
				departmentMatch = true
				break
			}
		}
	}

	return models.CategorizationResult{
		Category:        winner.ID,
		Confidence:      confidence,
		KeywordMatches:  keywordMatches,
		DepartmentMatch: departmentMatch,
		Reasoning:       fmt.Sprintf("Best match with score %.2f", winnerScore),
	}
}

// findMatches reports which keywords occur in text. A keyword matches when it
// appears verbatim as a substring, or, for multi-word keywords, when every
// word of it appears somewhere in the text.
func findMatches(text string, keywords []string) []string {
	if text == "" {
		return nil
	}

	var matches []string
	for _, keyword := range keywords {
		kw := normalize.Fold(keyword)
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			matches = append(matches, keyword)
			continue
		}
		words := strings.Fields(kw)
		if len(words) > 1 {
			all := true
			for _, w := range words {
				if !strings.Contains(text, w) {
					all = false
					break
				}
			}
			if all {
				matches = append(matches, keyword)
			}
		}
	}
	return matches
}
