package ats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/cv-analyzer/internal/models"
)

func kw(text string, cat models.KeywordCategory, imp models.KeywordImportance) models.ATSKeyword {
	return models.ATSKeyword{Keyword: text, Category: cat, Importance: imp}
}

func TestScoreKeywords_WorkedExample(t *testing.T) {
	// required/high exact (10) + preferred/medium missing (3):
	// 100 * 10 / 13 = 76.9 -> 77
	matches := []models.KeywordMatch{
		{Keyword: kw("Go", models.KeywordRequired, models.ImportanceHigh), Status: models.MatchExact},
		{Keyword: kw("GraphQL", models.KeywordPreferred, models.ImportanceMedium), Status: models.MatchMissing},
	}

	tally := ScoreKeywords(matches)

	assert.Equal(t, 77, tally.Score)
	assert.Equal(t, 1, tally.RequiredMatched)
	assert.Equal(t, 1, tally.RequiredTotal)
	assert.Len(t, tally.Matched, 1)
	assert.Len(t, tally.Missing, 1)
	assert.Empty(t, tally.Semantic)
}

func TestScoreKeywords_SemanticDiscount(t *testing.T) {
	keyword := kw("React", models.KeywordRequired, models.ImportanceHigh)

	exact := ScoreKeywords([]models.KeywordMatch{{Keyword: keyword, Status: models.MatchExact}})
	semantic := ScoreKeywords([]models.KeywordMatch{{Keyword: keyword, Status: models.MatchSemantic}})

	assert.Equal(t, 100, exact.Score)
	assert.Equal(t, 70, semantic.Score)
}

func TestScoreKeywords_Empty(t *testing.T) {
	tally := ScoreKeywords(nil)

	assert.Equal(t, 0, tally.Score)
	assert.Equal(t, 0, tally.RequiredTotal)
	assert.NotNil(t, tally.Matched)
	assert.NotNil(t, tally.Missing)
}

func TestScoreKeywords_AllMissing(t *testing.T) {
	matches := []models.KeywordMatch{
		{Keyword: kw("Go", models.KeywordRequired, models.ImportanceHigh), Status: models.MatchMissing},
		{Keyword: kw("Rust", models.KeywordNiceToHave, models.ImportanceLow), Status: models.MatchMissing},
	}

	tally := ScoreKeywords(matches)

	assert.Equal(t, 0, tally.Score)
	assert.Equal(t, 0, tally.RequiredMatched)
	assert.Equal(t, 1, tally.RequiredTotal)
}

func TestKeywordWeight_MonotonicInImportance(t *testing.T) {
	categories := []models.KeywordCategory{
		models.KeywordRequired,
		models.KeywordPreferred,
		models.KeywordNiceToHave,
	}

	for _, cat := range categories {
		low := KeywordWeight(kw("x", cat, models.ImportanceLow))
		medium := KeywordWeight(kw("x", cat, models.ImportanceMedium))
		high := KeywordWeight(kw("x", cat, models.ImportanceHigh))

		assert.GreaterOrEqual(t, medium, low, "category %s", cat)
		assert.GreaterOrEqual(t, high, medium, "category %s", cat)
	}
}

func TestKeywordWeight_Matrix(t *testing.T) {
	assert.Equal(t, 10, KeywordWeight(kw("x", models.KeywordRequired, models.ImportanceHigh)))
	assert.Equal(t, 7, KeywordWeight(kw("x", models.KeywordRequired, models.ImportanceMedium)))
	assert.Equal(t, 4, KeywordWeight(kw("x", models.KeywordRequired, models.ImportanceLow)))
	assert.Equal(t, 5, KeywordWeight(kw("x", models.KeywordPreferred, models.ImportanceHigh)))
	assert.Equal(t, 3, KeywordWeight(kw("x", models.KeywordPreferred, models.ImportanceMedium)))
	assert.Equal(t, 2, KeywordWeight(kw("x", models.KeywordPreferred, models.ImportanceLow)))
	assert.Equal(t, 3, KeywordWeight(kw("x", models.KeywordNiceToHave, models.ImportanceHigh)))
	assert.Equal(t, 2, KeywordWeight(kw("x", models.KeywordNiceToHave, models.ImportanceMedium)))
	assert.Equal(t, 1, KeywordWeight(kw("x", models.KeywordNiceToHave, models.ImportanceLow)))
}

func TestKeywordWeight_UnknownCombination(t *testing.T) {
	// A sloppy extraction can emit values outside the enums; those keywords
	// still count with the minimum weight.
	assert.Equal(t, 1, KeywordWeight(models.ATSKeyword{Keyword: "x", Category: "mandatory", Importance: "critical"}))
}
