// Package ats implements the deterministic ATS scoring engine: a weighted
// keyword-coverage score, a heuristic document-format score, and the fixed
// blend that combines them. Nothing in this package calls the AI service.
package ats

import (
	"math"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// Weight matrix keyed by (category, importance).
var keywordWeights = map[models.KeywordCategory]map[models.KeywordImportance]int{
	models.KeywordRequired: {
		models.ImportanceHigh:   10,
		models.ImportanceMedium: 7,
		models.ImportanceLow:    4,
	},
	models.KeywordPreferred: {
		models.ImportanceHigh:   5,
		models.ImportanceMedium: 3,
		models.ImportanceLow:    2,
	},
	models.KeywordNiceToHave: {
		models.ImportanceHigh:   3,
		models.ImportanceMedium: 2,
		models.ImportanceLow:    1,
	},
}

// semanticMultiplier is the credit a semantic match earns relative to an
// exact match. Captures near-miss phrasing like "React Native" satisfying
// "React".
const semanticMultiplier = 0.7

// KeywordWeight returns the weight for a keyword's category/importance
// pair. Unknown combinations score as the lowest tier rather than zero so
// a sloppy extraction stage can't silently void a keyword.
func KeywordWeight(k models.ATSKeyword) int {
	if byImportance, ok := keywordWeights[k.Category]; ok {
		if w, ok := byImportance[k.Importance]; ok {
			return w
		}
	}
	return 1
}

func statusMultiplier(s models.MatchStatus) float64 {
	switch s {
	case models.MatchExact:
		return 1.0
	case models.MatchSemantic:
		return semanticMultiplier
	default:
		return 0
	}
}

// KeywordTally is the outcome of scoring a set of keyword matches.
type KeywordTally struct {
	Score           int
	RequiredMatched int
	RequiredTotal   int
	Matched         []models.KeywordMatch
	Semantic        []models.KeywordMatch
	Missing         []models.KeywordMatch
}

// ScoreKeywords computes the weighted coverage score over the matching
// stage's output: exact matches earn full weight, semantic matches 70%,
// missing keywords nothing. Score is round(100 * earned / total), floored
// at 0 when there are no keywords at all.
func ScoreKeywords(matches []models.KeywordMatch) KeywordTally {
	tally := KeywordTally{
		Matched:  []models.KeywordMatch{},
		Semantic: []models.KeywordMatch{},
		Missing:  []models.KeywordMatch{},
	}

	var earned, total float64
	var requiredEarned float64

	for _, m := range matches {
		weight := float64(KeywordWeight(m.Keyword))
		mult := statusMultiplier(m.Status)

		total += weight
		earned += weight * mult

		if m.Keyword.Category == models.KeywordRequired {
			tally.RequiredTotal++
			requiredEarned += mult
		}

		switch m.Status {
		case models.MatchExact:
			tally.Matched = append(tally.Matched, m)
		case models.MatchSemantic:
			tally.Semantic = append(tally.Semantic, m)
		default:
			tally.Missing = append(tally.Missing, m)
		}
	}

	if total > 0 {
		tally.Score = int(math.Round(100 * earned / total))
	}
	tally.RequiredMatched = int(math.Round(requiredEarned))

	return tally
}
