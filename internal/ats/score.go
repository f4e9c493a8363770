package ats

import (
	"fmt"
	"math"
	"sort"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// Blend weights combining the two sub-scores. Fixed design constants, not
// per-request configuration: keyword coverage dominates because it is what
// real ATS filters act on.
const (
	keywordBlendWeight = 0.8
	formatBlendWeight  = 0.2
)

// BlendScores combines the keyword and format scores into the overall ATS
// score.
func BlendScores(keywordScore, formatScore int) int {
	return int(math.Round(float64(keywordScore)*keywordBlendWeight + float64(formatScore)*formatBlendWeight))
}

// Score runs the full ATS assessment: keyword coverage, format heuristics,
// blend, prioritized recommendations and the optional company lookup.
func Score(matches []models.KeywordMatch, doc DocumentInfo, companyName string) *models.ATSScoreResult {
	tally := ScoreKeywords(matches)
	formatScore, issues := ScoreFormat(doc)

	result := &models.ATSScoreResult{
		OverallScore:    BlendScores(tally.Score, formatScore),
		KeywordScore:    tally.Score,
		FormatScore:     formatScore,
		RequiredMatched: tally.RequiredMatched,
		RequiredTotal:   tally.RequiredTotal,
		MatchedKeywords: tally.Matched,
		SemanticMatches: tally.Semantic,
		MissingKeywords: tally.Missing,
		FormatIssues:    issues,
		Recommendations: buildRecommendations(tally, issues),
		CompanyATS:      LookupCompanyATS(companyName),
	}

	return result
}

const maxRecommendations = 8

// buildRecommendations turns the scoring outcome into an ordered to-do
// list: heaviest missing keywords first, then critical format issues, then
// warnings.
func buildRecommendations(tally KeywordTally, issues []models.FormatIssue) []string {
	recs := []string{}

	missing := make([]models.KeywordMatch, len(tally.Missing))
	copy(missing, tally.Missing)
	sort.SliceStable(missing, func(i, j int) bool {
		return KeywordWeight(missing[i].Keyword) > KeywordWeight(missing[j].Keyword)
	})

	for _, m := range missing {
		if len(recs) >= maxRecommendations {
			return recs
		}
		if m.Keyword.Category == models.KeywordRequired {
			recs = append(recs, fmt.Sprintf("Add %q to your CV: the posting treats it as a must-have.", m.Keyword.Keyword))
		} else {
			recs = append(recs, fmt.Sprintf("Consider mentioning %q if you have experience with it.", m.Keyword.Keyword))
		}
	}

	for _, severity := range []models.IssueSeverity{models.SeverityCritical, models.SeverityWarning} {
		for _, issue := range issues {
			if len(recs) >= maxRecommendations {
				return recs
			}
			if issue.Severity == severity && issue.Check != "all_good" {
				recs = append(recs, issue.Message)
			}
		}
	}

	return recs
}
