package models

// Domain result types produced by the pipeline stages. All of these are
// immutable once produced, with the single exception of the salary bands
// on CareerPlanResult which the currency normalizer rewrites in place.

type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

type ExperienceEntry struct {
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Duration   string   `json:"duration"`
	Highlights []string `json:"highlights,omitempty"`
}

// ExtractedProfile is the structured view of the CV produced by the skill
// extraction stage and consumed by every downstream stage.
type ExtractedProfile struct {
	SkillCategories []SkillCategory   `json:"skill_categories"`
	Experience      []ExperienceEntry `json:"experience"`
	Summary         string            `json:"summary,omitempty"`
}

type FitScore struct {
	Score   float64 `json:"score"` // 0-10
	Label   string  `json:"label"`
	Summary string  `json:"summary"`
}

type Strength struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Tier   string `json:"tier"` // standout | solid | developing
}

type Gap struct {
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Severity string `json:"severity"` // critical | moderate | minor
}

type RoleRecommendation struct {
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
}

type GapAnalysisResult struct {
	Fit              FitScore             `json:"fit"`
	Strengths        []Strength           `json:"strengths"`
	Gaps             []Gap                `json:"gaps"`
	RecommendedRoles []RoleRecommendation `json:"recommended_roles"`
}

type ActionItem struct {
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
}

type SalaryBand struct {
	Low      int    `json:"low"`
	Mid      int    `json:"mid"`
	High     int    `json:"high"`
	Currency string `json:"currency"`
	Region   string `json:"region"`
}

type CareerPlanResult struct {
	ShortTerm         []ActionItem `json:"short_term"`
	MidTerm           []ActionItem `json:"mid_term"`
	LongTerm          []ActionItem `json:"long_term"`
	CurrentRoleMarket SalaryBand   `json:"current_role_market"`
	TargetRoleMarket  SalaryBand   `json:"target_role_market"`
}

// JobMatch compares the CV against a supplied job posting. It is genuinely
// optional: absent when no posting (or a too-short one) was provided.
type JobMatch struct {
	MatchScore         int      `json:"match_score"` // 0-100
	MatchingSkills     []string `json:"matching_skills"`
	MissingSkills      []string `json:"missing_skills"`
	RewriteSuggestions []string `json:"rewrite_suggestions,omitempty"`
}

type KeywordCategory string

const (
	KeywordRequired   KeywordCategory = "required"
	KeywordPreferred  KeywordCategory = "preferred"
	KeywordNiceToHave KeywordCategory = "nice-to-have"
)

type KeywordImportance string

const (
	ImportanceHigh   KeywordImportance = "high"
	ImportanceMedium KeywordImportance = "medium"
	ImportanceLow    KeywordImportance = "low"
)

type ATSKeyword struct {
	Keyword    string            `json:"keyword"`
	Category   KeywordCategory   `json:"category"`
	Importance KeywordImportance `json:"importance"`
	Variants   []string          `json:"variants,omitempty"`
}

type MatchStatus string

const (
	MatchExact    MatchStatus = "exact_match"
	MatchSemantic MatchStatus = "semantic_match"
	MatchMissing  MatchStatus = "missing"
)

type KeywordMatch struct {
	Keyword     ATSKeyword  `json:"keyword"`
	Status      MatchStatus `json:"status"`
	MatchedText string      `json:"matched_text,omitempty"`
	CVSection   string      `json:"cv_section,omitempty"`
}

type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityWarning  IssueSeverity = "warning"
	SeverityInfo     IssueSeverity = "info"
)

type FormatIssue struct {
	Check     string        `json:"check"`
	Severity  IssueSeverity `json:"severity"`
	Message   string        `json:"message"`
	Deduction int           `json:"deduction"`
}

// CompanyATSProfile is a curated entry about a specific employer's
// applicant tracking system.
type CompanyATSProfile struct {
	Company string   `json:"company"`
	System  string   `json:"system"`
	Tips    []string `json:"tips"`
}

type ATSScoreResult struct {
	OverallScore    int                `json:"overall_score"`
	KeywordScore    int                `json:"keyword_score"`
	FormatScore     int                `json:"format_score"`
	RequiredMatched int                `json:"required_matched"`
	RequiredTotal   int                `json:"required_total"`
	MatchedKeywords []KeywordMatch     `json:"matched_keywords"`
	SemanticMatches []KeywordMatch     `json:"semantic_matches"`
	MissingKeywords []KeywordMatch     `json:"missing_keywords"`
	FormatIssues    []FormatIssue      `json:"format_issues"`
	Recommendations []string           `json:"recommendations"`
	CompanyATS      *CompanyATSProfile `json:"company_ats,omitempty"`
}

// AnalysisResult is the full aggregate delivered to the caller. Fit,
// strengths and gaps are always present on a completed run; CareerPlan is
// always present; JobMatch and ATSScore only when a sufficient job posting
// was supplied.
type AnalysisResult struct {
	ID               string               `json:"id"`
	GeneratedAt      string               `json:"generated_at"`
	Language         string               `json:"language"`
	Profile          ExtractedProfile     `json:"profile"`
	Fit              FitScore             `json:"fit"`
	Strengths        []Strength           `json:"strengths"`
	Gaps             []Gap                `json:"gaps"`
	RecommendedRoles []RoleRecommendation `json:"recommended_roles"`
	CareerPlan       *CareerPlanResult    `json:"career_plan,omitempty"`
	JobMatch         *JobMatch            `json:"job_match,omitempty"`
	ATSScore         *ATSScoreResult      `json:"ats_score,omitempty"`
}

// Pipeline step names as they appear on the wire.
const (
	StepParsing     = "parsing"
	StepExtraction  = "extraction"
	StepGapAnalysis = "gap_analysis"
	StepGapDone     = "gap_done"
	StepCareerPlan  = "career_plan"
	StepPlanDone    = "plan_done"
	StepATS         = "ats"
	StepTranslating = "translating"
	StepComplete    = "complete"
	StepError       = "error"
)

// ProgressEvent is one frame of the streamed response. Progress values are
// non-decreasing in emission order and reach 100 on the complete event.
type ProgressEvent struct {
	Step      string `json:"step"`
	Progress  int    `json:"progress,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	TotalTime string `json:"totalTime,omitempty"`
}
