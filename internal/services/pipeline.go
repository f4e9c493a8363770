package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/cv-analyzer/internal/ats"
	"alfredoptarigan/cv-analyzer/internal/models"
)

// Progress percentages per checkpoint. Strictly non-decreasing in emission
// order.
const (
	progressParsing     = 5
	progressExtraction  = 15
	progressGapAnalysis = 35
	progressGapDone     = 55
	progressCareerPlan  = 60
	progressPlanDone    = 80
	progressATS         = 88
	progressTranslating = 94
	progressComplete    = 100
)

// Pipeline sequences the analysis stages, runs the independent ones
// concurrently, and streams checkpoint events to the caller. One instance
// serves all requests; per-request state lives on the stack of Run.
type Pipeline struct {
	analyzer        *Analyzer
	pdfParser       PDFParserService
	rag             RAGService // optional, nil disables context retrieval
	log             *zap.Logger
	defaultLanguage string
}

func NewPipeline(analyzer *Analyzer, pdfParser PDFParserService, rag RAGService, defaultLanguage string, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &Pipeline{
		analyzer:        analyzer,
		pdfParser:       pdfParser,
		rag:             rag,
		log:             log,
		defaultLanguage: defaultLanguage,
	}
}

// Run executes the full pipeline for one request and returns its event
// stream. The channel is closed exactly once, after the terminal complete
// or error event, regardless of how the run ends. When ctx is cancelled,
// pending emissions become no-ops and in-flight AI calls observe the
// cancellation.
func (p *Pipeline) Run(ctx context.Context, req models.AnalysisRequest) <-chan models.ProgressEvent {
	events := make(chan models.ProgressEvent, 16)
	go p.run(ctx, req, events)
	return events
}

func (p *Pipeline) run(ctx context.Context, req models.AnalysisRequest, events chan<- models.ProgressEvent) {
	defer close(events)

	emit := func(ev models.ProgressEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	// Tier-3 guard: anything escaping the fail-open stages terminates the
	// stream with a single sanitized error event.
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("pipeline panic", zap.Any("panic", r))
			emit(models.ProgressEvent{
				Step:    models.StepError,
				Message: "The analysis failed unexpectedly. Please try again.",
			})
		}
	}()

	start := time.Now()
	q := req.Questionnaire

	// parsing
	emit(models.ProgressEvent{Step: models.StepParsing, Progress: progressParsing, Message: "Reading your document"})

	cvContent, err := p.pdfParser.ExtractContent(req.CVPath)
	if err != nil {
		emit(models.ProgressEvent{Step: models.StepError, Message: parseErrorMessage(err)})
		return
	}

	cvText := CleanText(cvContent.Text)

	// The companion document is an enhancement: any failure is logged and
	// swallowed, never surfaced.
	if req.LinkedInPath != "" {
		if companion, err := p.pdfParser.ExtractContent(req.LinkedInPath); err == nil {
			cvText = cvText + "\n\n--- COMPANION PROFILE ---\n\n" + CleanText(companion.Text)
		} else {
			p.log.Warn("companion document skipped", zap.Error(err))
		}
	}

	// extraction
	emit(models.ProgressEvent{Step: models.StepExtraction, Progress: progressExtraction, Message: "Extracting skills and experience"})
	profile := p.analyzer.ExtractProfile(ctx, cvText)

	marketContext := p.retrieveMarketContext(ctx, q)

	// gap analysis gates the career plan: the plan prompt consumes the
	// gaps and role recommendations.
	emit(models.ProgressEvent{Step: models.StepGapAnalysis, Progress: progressGapAnalysis, Message: "Assessing fit for " + q.TargetRole})
	gaps := p.analyzer.AnalyzeGaps(ctx, profile, q, marketContext)

	emit(models.ProgressEvent{Step: models.StepGapDone, Progress: progressGapDone, Message: "Fit assessment ready", Data: gaps})

	if ctx.Err() != nil {
		emit(models.ProgressEvent{Step: models.StepError, Message: timeoutMessage(ctx)})
		return
	}

	// career plan and job match are independent of each other; dispatch
	// both and wait for both. Neither branch can fail the other, each
	// already fail-opened inside the gateway.
	emit(models.ProgressEvent{Step: models.StepCareerPlan, Progress: progressCareerPlan, Message: "Building your career plan"})

	var plan models.CareerPlanResult
	var jobMatch *models.JobMatch

	g := new(errgroup.Group)
	g.Go(func() error {
		plan = p.analyzer.BuildCareerPlan(ctx, gaps, q, marketContext)
		return nil
	})
	if req.HasJobPosting() {
		g.Go(func() error {
			jm := p.analyzer.MatchJobPosting(ctx, profile, q.JobPostingText)
			jobMatch = &jm
			return nil
		})
	}
	_ = g.Wait()

	NormalizeSalaryCurrencies(&plan)

	emit(models.ProgressEvent{
		Step:     models.StepPlanDone,
		Progress: progressPlanDone,
		Message:  "Career plan ready",
		Data: struct {
			CareerPlan models.CareerPlanResult `json:"career_plan"`
			JobMatch   *models.JobMatch        `json:"job_match,omitempty"`
		}{plan, jobMatch},
	})

	if ctx.Err() != nil {
		emit(models.ProgressEvent{Step: models.StepError, Message: timeoutMessage(ctx)})
		return
	}

	// ATS scoring is an enhancement tied to the job posting; any failure
	// inside it skips the stage without surfacing an error.
	var atsScore *models.ATSScoreResult
	if req.HasJobPosting() {
		emit(models.ProgressEvent{Step: models.StepATS, Progress: progressATS, Message: "Scoring against applicant tracking systems"})
		atsScore = p.scoreATS(ctx, cvText, cvContent, q)
	}

	result := models.AnalysisResult{
		ID:               uuid.New().String(),
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		Language:         p.defaultLanguage,
		Profile:          profile,
		Fit:              gaps.Fit,
		Strengths:        gaps.Strengths,
		Gaps:             gaps.Gaps,
		RecommendedRoles: gaps.RecommendedRoles,
		CareerPlan:       &plan,
		JobMatch:         jobMatch,
		ATSScore:         atsScore,
	}
	sanitizeResult(&result)

	if q.TargetLanguage != "" && q.TargetLanguage != p.defaultLanguage {
		emit(models.ProgressEvent{Step: models.StepTranslating, Progress: progressTranslating, Message: "Translating your report"})

		translated := p.analyzer.Translate(ctx, result, q.TargetLanguage)
		if TranslationUsable(translated) {
			translated.Language = q.TargetLanguage
			result = translated
		} else {
			p.log.Warn("translation rejected, keeping original language",
				zap.String("target_language", q.TargetLanguage))
		}
	}

	emit(models.ProgressEvent{
		Step:      models.StepComplete,
		Progress:  progressComplete,
		Message:   "Analysis complete",
		Data:      result,
		TotalTime: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
	})
}

// retrieveMarketContext enriches the gap/plan prompts with curated market
// snippets. Empty context on any failure; never fatal.
func (p *Pipeline) retrieveMarketContext(ctx context.Context, q models.Questionnaire) string {
	if p.rag == nil {
		return ""
	}

	query := fmt.Sprintf("%s to %s career transition in %s", q.CurrentRole, q.TargetRole, q.Country)
	context, err := p.rag.RetrieveContext(ctx, query, []string{"role_market", "salary_guide"})
	if err != nil {
		p.log.Warn("market context retrieval failed", zap.Error(err))
		return ""
	}
	return context
}

// scoreATS chains the two AI keyword stages into the deterministic scoring
// engine. A nil return means the stage was skipped.
func (p *Pipeline) scoreATS(ctx context.Context, cvText string, cvContent *DocumentContent, q models.Questionnaire) *models.ATSScoreResult {
	keywords := p.analyzer.ExtractKeywords(ctx, q.JobPostingText)
	if len(keywords) == 0 {
		p.log.Warn("ats scoring skipped: keyword extraction returned nothing")
		return nil
	}

	matches := p.analyzer.MatchKeywords(ctx, keywords, cvText)
	if matches == nil {
		p.log.Warn("ats scoring skipped: keyword matching failed")
		return nil
	}

	return ats.Score(matches, ats.DocumentInfo{
		Text:       cvContent.Text,
		PageCount:  cvContent.PageCount,
		FileSize:   cvContent.FileSize,
		ImageCount: cvContent.ImageCount,
	}, q.TargetCompany)
}

// sanitizeResult enforces the delivery invariants: mandatory collections
// are non-nil and the fit score stays inside its scale.
func sanitizeResult(result *models.AnalysisResult) {
	if result.Strengths == nil {
		result.Strengths = []models.Strength{}
	}
	if result.Gaps == nil {
		result.Gaps = []models.Gap{}
	}
	if result.RecommendedRoles == nil {
		result.RecommendedRoles = []models.RoleRecommendation{}
	}
	if result.Profile.SkillCategories == nil {
		result.Profile.SkillCategories = []models.SkillCategory{}
	}
	if result.Profile.Experience == nil {
		result.Profile.Experience = []models.ExperienceEntry{}
	}

	if result.Fit.Score < 0 {
		result.Fit.Score = 0
	}
	if result.Fit.Score > 10 {
		result.Fit.Score = 10
	}
}

func parseErrorMessage(err error) string {
	if errors.Is(err, ErrNoTextContent) {
		return "We could not read any text from your file — it may be a scanned image. Please upload a text-based PDF."
	}
	return "We could not read your document. Please check the file and try again."
}

func timeoutMessage(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "The analysis took too long and was stopped. Please try again."
	}
	return "The analysis was cancelled."
}
