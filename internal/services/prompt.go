package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/cv-analyzer/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSkillExtractionPrompt asks the model to structure the raw CV text.
func (pb *PromptBuilder) BuildSkillExtractionPrompt(cvText string) (string, string) {
	system := `You are an expert CV parser. You read raw CV text and return structured JSON. Return ONLY valid JSON, no commentary.`

	user := fmt.Sprintf(`Extract the candidate's profile from the CV below.

CV TEXT:
%s

Return JSON in exactly this shape:
{
  "skill_categories": [{"name": "<category>", "skills": ["<skill>", ...]}],
  "experience": [{"title": "<role>", "company": "<company>", "duration": "<period>", "highlights": ["<achievement>", ...]}],
  "summary": "<2-3 sentence professional summary>"
}

Order skill categories from strongest to weakest. Keep skill names short and canonical (e.g. "PostgreSQL", not "postgres databases").`, cvText)

	return system, user
}

// BuildGapAnalysisPrompt scores fit for the target role and names gaps and
// strengths. Retrieved market context may be empty.
func (pb *PromptBuilder) BuildGapAnalysisPrompt(profile models.ExtractedProfile, q models.Questionnaire, marketContext string) (string, string) {
	system := `You are a senior career coach. You assess how well a candidate fits a target role and identify concrete strengths and gaps. Return ONLY valid JSON.`

	profileJSON, _ := json.Marshal(profile)

	user := fmt.Sprintf(`CANDIDATE PROFILE (extracted from CV):
%s

QUESTIONNAIRE:
- Current role: %s
- Target role: %s
- Years of experience: %d
- Country: %s
- Work preference: %s

MARKET CONTEXT:
%s

Assess the candidate's fit for the target role. Return JSON:
{
  "fit": {"score": <0-10>, "label": "<one of: excellent, strong, moderate, early>", "summary": "<2-3 sentences>"},
  "strengths": [{"title": "<short>", "detail": "<1-2 sentences>", "tier": "<standout|solid|developing>"}],
  "gaps": [{"title": "<short>", "detail": "<1-2 sentences>", "severity": "<critical|moderate|minor>"}],
  "recommended_roles": [{"title": "<role>", "rationale": "<why this fits>"}]
}

List recommended roles in order of best fit, at most 4.`,
		profileJSON, q.CurrentRole, q.TargetRole, q.YearsExperience, q.Country, q.WorkPreference, marketContext)

	return system, user
}

// BuildCareerPlanPrompt turns the gap analysis into an action roadmap with
// salary bands. The plan genuinely depends on the gaps and recommended
// roles, which is why this stage cannot run before gap analysis.
func (pb *PromptBuilder) BuildCareerPlanPrompt(gaps models.GapAnalysisResult, q models.Questionnaire, marketContext string) (string, string) {
	system := `You are a career strategist. You build concrete, time-boxed action plans and estimate salary ranges from market knowledge. Return ONLY valid JSON.`

	gapsJSON, _ := json.Marshal(gaps)

	user := fmt.Sprintf(`GAP ANALYSIS:
%s

CANDIDATE:
- Current role: %s
- Target role: %s
- Country: %s

MARKET CONTEXT:
%s

Build a career plan closing the identified gaps. Return JSON:
{
  "short_term": [{"action": "<0-3 months>", "detail": "<how>"}],
  "mid_term": [{"action": "<3-12 months>", "detail": "<how>"}],
  "long_term": [{"action": "<1-3 years>", "detail": "<how>"}],
  "current_role_market": {"low": <int>, "mid": <int>, "high": <int>, "currency": "<ISO code>", "region": "<region>"},
  "target_role_market": {"low": <int>, "mid": <int>, "high": <int>, "currency": "<ISO code>", "region": "<region>"}
}

Salary figures are gross annual amounts for the candidate's country.`,
		gapsJSON, q.CurrentRole, q.TargetRole, q.Country, marketContext)

	return system, user
}

// BuildJobMatchPrompt compares the profile against a concrete posting.
func (pb *PromptBuilder) BuildJobMatchPrompt(profile models.ExtractedProfile, jobPosting string) (string, string) {
	system := `You are a technical recruiter matching a candidate against a specific job posting. Return ONLY valid JSON.`

	profileJSON, _ := json.Marshal(profile)

	user := fmt.Sprintf(`CANDIDATE PROFILE:
%s

JOB POSTING:
%s

Return JSON:
{
  "match_score": <0-100>,
  "matching_skills": ["<skill the posting asks for and the candidate has>"],
  "missing_skills": ["<skill the posting asks for and the candidate lacks>"],
  "rewrite_suggestions": ["<concrete CV wording change to better match this posting>"]
}`, profileJSON, jobPosting)

	return system, user
}

// BuildKeywordExtractionPrompt pulls ATS keywords out of the posting.
func (pb *PromptBuilder) BuildKeywordExtractionPrompt(jobPosting string) (string, string) {
	system := `You are an ATS (applicant tracking system) analyst. You extract the keywords an ATS would screen for from a job posting. Return ONLY a valid JSON array.`

	user := fmt.Sprintf(`JOB POSTING:
%s

Extract the screening keywords. Return a JSON array:
[
  {"keyword": "<term>", "category": "<required|preferred|nice-to-have>", "importance": "<high|medium|low>", "variants": ["<alternate phrasing>", ...]}
]

Include at most 25 keywords. "required" means the posting treats it as a must-have.`, jobPosting)

	return system, user
}

// BuildKeywordMatchingPrompt checks each keyword against the CV text,
// allowing semantic matches for related-but-not-identical phrasing.
func (pb *PromptBuilder) BuildKeywordMatchingPrompt(keywords []models.ATSKeyword, cvText string) (string, string) {
	system := `You are an ATS matching engine. For each keyword you decide whether the CV contains it exactly, contains a semantically equivalent term, or misses it. Return ONLY a valid JSON array.`

	keywordsJSON, _ := json.Marshal(keywords)

	user := fmt.Sprintf(`KEYWORDS:
%s

CV TEXT:
%s

For every keyword return one entry, preserving the keyword object:
[
  {"keyword": <the keyword object unchanged>, "status": "<exact_match|semantic_match|missing>", "matched_text": "<text found in the CV, empty if missing>", "cv_section": "<section where it was found, empty if missing>"}
]

"semantic_match" means a related term satisfies the keyword (e.g. "React Native" satisfies "React").`, keywordsJSON, cvText)

	return system, user
}

// BuildTranslationPrompt re-renders the whole result in the target
// language without changing any numeric value or JSON key.
func (pb *PromptBuilder) BuildTranslationPrompt(result models.AnalysisResult, targetLanguage string) (string, string) {
	system := `You are a professional translator for structured career reports. Translate every human-readable string value; never change JSON keys, numbers, enum values (severity, tier, status, category, importance) or currency codes. Return ONLY valid JSON with the identical structure.`

	resultJSON, _ := json.Marshal(result)

	user := fmt.Sprintf(`Translate all text values in this report into %s:

%s`, targetLanguage, resultJSON)

	return system, user
}

// Helper to clean and format context from RAG results.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return "No relevant context found."
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
