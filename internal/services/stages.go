package services

import (
	"context"

	"go.uber.org/zap"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// Analyzer holds the stage functions of the pipeline. Every stage is a
// pure transformation through the AI gateway: typed input in, typed result
// out, statically defined fallback on failure. Stages never return errors;
// degradation is expressed through the fallback values.
type Analyzer struct {
	gen     TextGenerator
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewAnalyzer(gen TextGenerator, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		gen:     gen,
		prompts: NewPromptBuilder(),
		log:     log,
	}
}

// Fallbacks substituted when the model call fails. Always structurally
// valid so downstream stages and the UI have something to render.
func fallbackProfile() models.ExtractedProfile {
	return models.ExtractedProfile{
		SkillCategories: []models.SkillCategory{},
		Experience:      []models.ExperienceEntry{},
		Summary:         "Profile could not be fully extracted from the document.",
	}
}

func fallbackGapAnalysis() models.GapAnalysisResult {
	return models.GapAnalysisResult{
		Fit: models.FitScore{
			Score:   5.0,
			Label:   "moderate",
			Summary: "A detailed fit assessment was not available for this run; the score shown is a neutral default.",
		},
		Strengths: []models.Strength{
			{Title: "Experience on record", Detail: "Your CV documents relevant working history.", Tier: "solid"},
		},
		Gaps: []models.Gap{
			{Title: "Assessment incomplete", Detail: "We could not produce a detailed gap analysis. Re-running the analysis may give richer results.", Severity: "minor"},
		},
		RecommendedRoles: []models.RoleRecommendation{},
	}
}

func fallbackCareerPlan() models.CareerPlanResult {
	return models.CareerPlanResult{
		ShortTerm: []models.ActionItem{
			{Action: "Review the identified gaps", Detail: "Pick the most critical gap and plan targeted learning."},
		},
		MidTerm:  []models.ActionItem{},
		LongTerm: []models.ActionItem{},
	}
}

func fallbackJobMatch() models.JobMatch {
	return models.JobMatch{
		MatchScore:     0,
		MatchingSkills: []string{},
		MissingSkills:  []string{},
	}
}

// ExtractProfile runs the skill extraction stage.
func (a *Analyzer) ExtractProfile(ctx context.Context, cvText string) models.ExtractedProfile {
	system, user := a.prompts.BuildSkillExtractionPrompt(cvText)
	return Invoke(ctx, a.gen, a.log, Call{
		Stage:       "extraction",
		System:      system,
		User:        user,
		Temperature: 0.2,
		MaxTokens:   4096,
	}, fallbackProfile())
}

// AnalyzeGaps runs the gap analysis stage. marketContext may be empty.
func (a *Analyzer) AnalyzeGaps(ctx context.Context, profile models.ExtractedProfile, q models.Questionnaire, marketContext string) models.GapAnalysisResult {
	system, user := a.prompts.BuildGapAnalysisPrompt(profile, q, marketContext)
	return Invoke(ctx, a.gen, a.log, Call{
		Stage:       "gap_analysis",
		System:      system,
		User:        user,
		Temperature: 0.3,
		MaxTokens:   4096,
	}, fallbackGapAnalysis())
}

// BuildCareerPlan runs the career plan stage. Requires the gap analysis
// output as input.
func (a *Analyzer) BuildCareerPlan(ctx context.Context, gaps models.GapAnalysisResult, q models.Questionnaire, marketContext string) models.CareerPlanResult {
	system, user := a.prompts.BuildCareerPlanPrompt(gaps, q, marketContext)
	return Invoke(ctx, a.gen, a.log, Call{
		Stage:       "career_plan",
		System:      system,
		User:        user,
		Temperature: 0.5,
		MaxTokens:   4096,
	}, fallbackCareerPlan())
}

// MatchJobPosting runs the job match stage against a supplied posting.
func (a *Analyzer) MatchJobPosting(ctx context.Context, profile models.ExtractedProfile, jobPosting string) models.JobMatch {
	system, user := a.prompts.BuildJobMatchPrompt(profile, jobPosting)
	return Invoke(ctx, a.gen, a.log, Call{
		Stage:       "job_match",
		System:      system,
		User:        user,
		Temperature: 0.3,
		MaxTokens:   2048,
	}, fallbackJobMatch())
}

// ExtractKeywords runs the ATS keyword extraction stage. A nil result
// means the stage failed; callers skip ATS scoring in that case.
func (a *Analyzer) ExtractKeywords(ctx context.Context, jobPosting string) []models.ATSKeyword {
	system, user := a.prompts.BuildKeywordExtractionPrompt(jobPosting)
	return Invoke[[]models.ATSKeyword](ctx, a.gen, a.log, Call{
		Stage:       "ats_keywords",
		System:      system,
		User:        user,
		Temperature: 0.2,
		MaxTokens:   2048,
	}, nil)
}

// MatchKeywords runs the ATS keyword matching stage. A nil result means
// the stage failed; callers skip ATS scoring in that case.
func (a *Analyzer) MatchKeywords(ctx context.Context, keywords []models.ATSKeyword, cvText string) []models.KeywordMatch {
	system, user := a.prompts.BuildKeywordMatchingPrompt(keywords, cvText)
	return Invoke[[]models.KeywordMatch](ctx, a.gen, a.log, Call{
		Stage:       "ats_matching",
		System:      system,
		User:        user,
		Temperature: 0.1,
		MaxTokens:   4096,
	}, nil)
}

// Translate re-renders the result in the target language. The zero-value
// fallback deliberately fails the caller's structural sanity check, so a
// failed translation keeps the untranslated result.
func (a *Analyzer) Translate(ctx context.Context, result models.AnalysisResult, targetLanguage string) models.AnalysisResult {
	system, user := a.prompts.BuildTranslationPrompt(result, targetLanguage)
	return Invoke(ctx, a.gen, a.log, Call{
		Stage:       "translation",
		System:      system,
		User:        user,
		Temperature: 0.2,
		MaxTokens:   8192,
	}, models.AnalysisResult{})
}

// TranslationUsable is the structural sanity check applied to a translated
// payload before accepting it: the mandatory top-level fields must have
// survived the round trip.
func TranslationUsable(translated models.AnalysisResult) bool {
	return translated.Fit.Summary != "" &&
		len(translated.Strengths) > 0 &&
		len(translated.Gaps) > 0
}
