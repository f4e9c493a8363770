package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	in := "  Jane Doe  \n\n\n  Backend Engineer\n   \nSkills: Go  \n"

	assert.Equal(t, "Jane Doe\nBackend Engineer\nSkills: Go", CleanText(in))
}

func TestCleanText_Empty(t *testing.T) {
	assert.Equal(t, "", CleanText("   \n \n"))
}

func TestExtractContent_MissingFile(t *testing.T) {
	parser := NewPDFParserService()

	_, err := parser.ExtractContent("/nonexistent/path/cv.pdf")

	assert.Error(t, err)
}
