package models

// Questionnaire is the structured form submitted alongside the CV. The
// JSON arrives as a single multipart field and is validated before any
// pipeline stage runs.
type Questionnaire struct {
	CurrentRole     string `json:"current_role" validate:"required"`
	TargetRole      string `json:"target_role" validate:"required"`
	YearsExperience int    `json:"years_experience" validate:"gte=0,lte=60"`
	Country         string `json:"country" validate:"required"`
	WorkPreference  string `json:"work_preference" validate:"required,oneof=remote hybrid onsite"`
	JobPostingText  string `json:"job_posting_text,omitempty"`
	TargetCompany   string `json:"target_company,omitempty"`
	TargetLanguage  string `json:"target_language,omitempty"`
}

// AnalysisRequest carries one user submission through the pipeline. It is
// built at request entry and never mutated afterwards.
type AnalysisRequest struct {
	CVPath        string
	LinkedInPath  string
	CVFileSize    int64
	Questionnaire Questionnaire
}

// HasJobPosting reports whether the posting text is long enough to drive
// the job-match and ATS stages. Shorter strings are treated as absent,
// not invalid.
func (r AnalysisRequest) HasJobPosting() bool {
	return len(r.Questionnaire.JobPostingText) > MinJobPostingLength
}

// MinJobPostingLength is the threshold below which a supplied posting is
// ignored entirely.
const MinJobPostingLength = 50
