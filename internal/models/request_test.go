package models

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestHasJobPosting(t *testing.T) {
	req := AnalysisRequest{}
	assert.False(t, req.HasJobPosting())

	req.Questionnaire.JobPostingText = "too short"
	assert.False(t, req.HasJobPosting())

	// exactly at the threshold still counts as absent
	req.Questionnaire.JobPostingText = strings.Repeat("x", MinJobPostingLength)
	assert.False(t, req.HasJobPosting())

	req.Questionnaire.JobPostingText = strings.Repeat("x", MinJobPostingLength+1)
	assert.True(t, req.HasJobPosting())
}

func TestQuestionnaireValidation(t *testing.T) {
	validate := validator.New()

	valid := Questionnaire{
		CurrentRole:     "Backend Engineer",
		TargetRole:      "Platform Engineer",
		YearsExperience: 6,
		Country:         "Germany",
		WorkPreference:  "remote",
	}
	assert.NoError(t, validate.Struct(valid))

	missingRole := valid
	missingRole.TargetRole = ""
	assert.Error(t, validate.Struct(missingRole))

	badPreference := valid
	badPreference.WorkPreference = "freelance"
	assert.Error(t, validate.Struct(badPreference))

	negativeYears := valid
	negativeYears.YearsExperience = -1
	assert.Error(t, validate.Struct(negativeYears))

	tooManyYears := valid
	tooManyYears.YearsExperience = 61
	assert.Error(t, validate.Struct(tooManyYears))

	// optional fields stay optional
	withExtras := valid
	withExtras.JobPostingText = strings.Repeat("x", 80)
	withExtras.TargetCompany = "Spotify"
	withExtras.TargetLanguage = "de"
	assert.NoError(t, validate.Struct(withExtras))
}
