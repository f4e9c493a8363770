package ats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// cleanCVText is long enough, has standard headers, an e-mail address and
// no layout artifacts, so it should score 100.
const cleanCVText = `John Doe
john.doe@example.com

Experience

Senior Backend Engineer at Acme Corp, 2019 to 2024. Designed and operated
a fleet of Go microservices handling payment traffic across three regions,
including the migration of the settlement pipeline from a nightly batch job
to a streaming architecture. Led a team of four engineers through two major
platform releases and introduced contract testing between services.

Backend Engineer at Widget GmbH, 2016 to 2019. Built REST and gRPC APIs in
Go and maintained the PostgreSQL schema migrations for the billing domain.

Skills

Go, PostgreSQL, Docker, Kubernetes, Kafka, Terraform, AWS, observability

Education

BSc Computer Science, Technical University of Munich, 2016`

func cleanDoc() DocumentInfo {
	return DocumentInfo{Text: cleanCVText, PageCount: 2, FileSize: 150_000, ImageCount: 0}
}

func findIssue(issues []models.FormatIssue, check string) *models.FormatIssue {
	for i := range issues {
		if issues[i].Check == check {
			return &issues[i]
		}
	}
	return nil
}

func TestScoreFormat_CleanDocument(t *testing.T) {
	score, issues := ScoreFormat(cleanDoc())

	assert.Equal(t, 100, score)
	require.Len(t, issues, 1)
	assert.Equal(t, "all_good", issues[0].Check)
	assert.Equal(t, models.SeverityInfo, issues[0].Severity)
}

func TestScoreFormat_MissingEmail(t *testing.T) {
	doc := cleanDoc()
	doc.Text = strings.Replace(doc.Text, "john.doe@example.com", "reach me on my website", 1)

	score, issues := ScoreFormat(doc)

	assert.Equal(t, 90, score)
	issue := findIssue(issues, "no_email")
	require.NotNil(t, issue)
	assert.Equal(t, models.SeverityCritical, issue.Severity)
	assert.Equal(t, 10, issue.Deduction)
}

func TestScoreFormat_PageDeductionsStack(t *testing.T) {
	doc := cleanDoc()
	doc.PageCount = 4
	score, issues := ScoreFormat(doc)
	assert.Equal(t, 90, score)
	assert.NotNil(t, findIssue(issues, "too_many_pages"))
	assert.Nil(t, findIssue(issues, "far_too_many_pages"))

	doc.PageCount = 6
	score, issues = ScoreFormat(doc)
	// both page checks apply: -10 and -20
	assert.Equal(t, 70, score)
	assert.NotNil(t, findIssue(issues, "too_many_pages"))
	assert.NotNil(t, findIssue(issues, "far_too_many_pages"))
}

func TestScoreFormat_ScannedImageDocument(t *testing.T) {
	doc := DocumentInfo{Text: "   ", PageCount: 1, FileSize: 900_000}

	score, issues := ScoreFormat(doc)

	issue := findIssue(issues, "no_extractable_text")
	require.NotNil(t, issue)
	assert.Equal(t, models.SeverityCritical, issue.Severity)
	// 100 - 40 text - 15 experience - 10 skills - 5 education - 10 email
	assert.Equal(t, 20, score)
}

func TestScoreFormat_FlooredAtZero(t *testing.T) {
	doc := DocumentInfo{
		Text:       "★☆★☆★☆",
		PageCount:  7,
		FileSize:   3 * 1024 * 1024,
		ImageCount: 5,
	}

	score, _ := ScoreFormat(doc)

	assert.Equal(t, 0, score)
}

func TestScoreFormat_MultiColumnLayout(t *testing.T) {
	// Many short lines plus internal gap runs, the artifact pattern of a
	// two-column PDF read in raster order.
	var b strings.Builder
	b.WriteString("john.doe@example.com\n")
	b.WriteString("Experience\nSkills\nEducation\n")
	for i := 0; i < 30; i++ {
		b.WriteString("Go dev     2019 now\n")
	}
	for len(b.String()) < 520 {
		b.WriteString("more     text\n")
	}

	_, issues := ScoreFormat(DocumentInfo{Text: b.String(), PageCount: 1, FileSize: 1_000})

	assert.NotNil(t, findIssue(issues, "multi_column_layout"))
}

func TestScoreFormat_NonStandardHeaders(t *testing.T) {
	doc := cleanDoc()
	doc.Text += "\n\nMy Journey\n\nIt all began with a Commodore 64 in the attic."

	_, issues := ScoreFormat(doc)

	assert.NotNil(t, findIssue(issues, "non_standard_headers"))
}

func TestHasAnyHeader(t *testing.T) {
	assert.True(t, hasAnyHeader("foo\nWork Experience:\nbar", experienceHeaders))
	assert.True(t, hasAnyHeader("foo\nTECHNICAL SKILLS\nbar", skillsHeaders))
	// header word inside running prose is not a header
	assert.False(t, hasAnyHeader("my experience with Go spans a decade of backend work on large systems", experienceHeaders))
}

func TestNonStandardCharRatio(t *testing.T) {
	assert.Equal(t, 0.0, nonStandardCharRatio("plain ascii text"))
	// accented Latin is fine
	assert.Equal(t, 0.0, nonStandardCharRatio("Métier: ingénieur"))
	assert.Greater(t, nonStandardCharRatio("★★★★★"), 0.05)
}
