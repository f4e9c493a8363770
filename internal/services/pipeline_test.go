package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// scriptedGenerator plays back canned stage responses, identifying the
// stage from the system prompt. It records invocation order and can inject
// latency or a broken response per stage.
type scriptedGenerator struct {
	mu       sync.Mutex
	order    []string
	users    map[string]string
	override map[string]string
	latency  map[string]time.Duration
}

func newScriptedGenerator() *scriptedGenerator {
	return &scriptedGenerator{
		users:    map[string]string{},
		override: map[string]string{},
		latency:  map[string]time.Duration{},
	}
}

func stageForPrompt(system string) string {
	switch {
	case strings.Contains(system, "expert CV parser"):
		return "extraction"
	case strings.Contains(system, "senior career coach"):
		return "gap_analysis"
	case strings.Contains(system, "career strategist"):
		return "career_plan"
	case strings.Contains(system, "technical recruiter"):
		return "job_match"
	case strings.Contains(system, "applicant tracking system) analyst"):
		return "ats_keywords"
	case strings.Contains(system, "ATS matching engine"):
		return "ats_matching"
	case strings.Contains(system, "professional translator"):
		return "translation"
	}
	return "unknown"
}

const (
	cannedProfile = `{"skill_categories":[{"name":"Languages","skills":["Go","SQL"]}],"experience":[{"title":"Backend Engineer","company":"Acme","duration":"2019-2024","highlights":["Migrated billing to Go services"]}],"summary":"Backend engineer with a Go focus."}`

	cannedGaps = `{"fit":{"score":7.5,"label":"strong","summary":"Solid base for the move."},"strengths":[{"title":"Go depth","detail":"Years of production Go.","tier":"standout"}],"gaps":[{"title":"Kubernetes","detail":"Little hands-on exposure.","severity":"moderate"}],"recommended_roles":[{"title":"Platform Engineer","rationale":"Closest to current skills."}]}`

	cannedPlan = `{"short_term":[{"action":"Ship a Kubernetes side project","detail":"Re-deploy an existing service."}],"mid_term":[{"action":"Take on-call for a platform team"}],"long_term":[{"action":"Lead a platform migration"}],"current_role_market":{"low":60000,"mid":70000,"high":80000,"currency":"EUR","region":"Germany"},"target_role_market":{"low":70000,"mid":82000,"high":95000,"currency":"EUR","region":"Germany"}}`

	cannedJobMatch = `{"match_score":78,"matching_skills":["Go"],"missing_skills":["Kubernetes"],"rewrite_suggestions":["Name your container tooling explicitly."]}`

	cannedKeywords = `[{"keyword":"Go","category":"required","importance":"high"},{"keyword":"GraphQL","category":"preferred","importance":"medium"}]`

	cannedMatches = `[{"keyword":{"keyword":"Go","category":"required","importance":"high"},"status":"exact_match","matched_text":"Go","cv_section":"Skills"},{"keyword":{"keyword":"GraphQL","category":"preferred","importance":"medium"},"status":"missing"}]`

	cannedTranslation = `{"id":"t1","generated_at":"2026-01-01T00:00:00Z","language":"en","profile":{"skill_categories":[],"experience":[]},"fit":{"score":7.5,"label":"strong","summary":"Solide Basis."},"strengths":[{"title":"Go-Tiefe","detail":"Jahre produktives Go.","tier":"standout"}],"gaps":[{"title":"Kubernetes","detail":"Wenig Praxis.","severity":"moderate"}],"recommended_roles":[]}`
)

var cannedResponses = map[string]string{
	"extraction":   cannedProfile,
	"gap_analysis": cannedGaps,
	"career_plan":  cannedPlan,
	"job_match":    cannedJobMatch,
	"ats_keywords": cannedKeywords,
	"ats_matching": cannedMatches,
	"translation":  cannedTranslation,
}

func (g *scriptedGenerator) GenerateText(_ context.Context, system, user string, _ float32, _ int32) (string, error) {
	stage := stageForPrompt(system)

	g.mu.Lock()
	g.order = append(g.order, stage)
	g.users[stage] = user
	delay := g.latency[stage]
	response, overridden := g.override[stage]
	g.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if overridden {
		return response, nil
	}
	return cannedResponses[stage], nil
}

func (g *scriptedGenerator) stages() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}

func (g *scriptedGenerator) userPrompt(stage string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.users[stage]
}

// stubParser returns fixed document content without touching the
// filesystem.
type stubParser struct {
	content *DocumentContent
	err     error
}

func (s *stubParser) ExtractText(string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.content.Text, nil
}

func (s *stubParser) ExtractContent(string) (*DocumentContent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.content, nil
}

const parsedCVText = `Jane Doe
jane.doe@example.com

Experience

Backend Engineer at Acme Corp, 2019 to 2024. Designed and operated Go
microservices for the billing domain, including a migration from nightly
batch settlement to a streaming pipeline processing events in near real
time. Mentored two junior engineers and ran the service's on-call rota.

Junior Developer at Widget GmbH, 2016 to 2019. Built REST APIs in Go and
maintained the PostgreSQL schema migrations for the ordering domain, and
introduced integration tests that cut production incidents by a third.

Skills

Go, SQL, PostgreSQL, Docker, Kafka, Terraform, gRPC, distributed systems

Education

BSc Computer Science, Technical University of Munich, 2016`

func cleanParsedDoc() *DocumentContent {
	return &DocumentContent{
		Text:      parsedCVText,
		PageCount: 2,
		FileSize:  150_000,
		FilePath:  "/tmp/cv_test.pdf",
	}
}

const testJobPosting = "We are hiring a Platform Engineer with strong Go and Kubernetes experience to build our internal developer platform."

func baseRequest() models.AnalysisRequest {
	return models.AnalysisRequest{
		CVPath:     "/tmp/cv_test.pdf",
		CVFileSize: 150_000,
		Questionnaire: models.Questionnaire{
			CurrentRole:     "Backend Engineer",
			TargetRole:      "Platform Engineer",
			YearsExperience: 6,
			Country:         "Germany",
			WorkPreference:  "remote",
		},
	}
}

func newTestPipeline(gen TextGenerator, parser PDFParserService) *Pipeline {
	return NewPipeline(NewAnalyzer(gen, nil), parser, nil, "en", nil)
}

func collectEvents(t *testing.T, events <-chan models.ProgressEvent) []models.ProgressEvent {
	t.Helper()

	var collected []models.ProgressEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatal("timed out waiting for the event channel to close")
		}
	}
}

func stepsOf(events []models.ProgressEvent) []string {
	steps := make([]string, 0, len(events))
	for _, ev := range events {
		steps = append(steps, ev.Step)
	}
	return steps
}

func finalResult(t *testing.T, events []models.ProgressEvent) models.AnalysisResult {
	t.Helper()
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	require.Equal(t, models.StepComplete, last.Step)
	result, ok := last.Data.(models.AnalysisResult)
	require.True(t, ok, "complete event carries the result")
	return result
}

func TestPipeline_FullRunWithJobPosting(t *testing.T) {
	gen := newScriptedGenerator()
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	req := baseRequest()
	req.Questionnaire.JobPostingText = testJobPosting
	req.Questionnaire.TargetCompany = "Spotify"

	events := collectEvents(t, pipeline.Run(context.Background(), req))

	assert.Equal(t, []string{
		models.StepParsing,
		models.StepExtraction,
		models.StepGapAnalysis,
		models.StepGapDone,
		models.StepCareerPlan,
		models.StepPlanDone,
		models.StepATS,
		models.StepComplete,
	}, stepsOf(events))

	result := finalResult(t, events)
	assert.NotEmpty(t, result.ID)
	assert.NotEmpty(t, result.GeneratedAt)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, 7.5, result.Fit.Score)
	assert.Equal(t, "strong", result.Fit.Label)

	require.NotNil(t, result.CareerPlan)
	assert.Equal(t, "EUR", result.CareerPlan.TargetRoleMarket.Currency)

	require.NotNil(t, result.JobMatch)
	assert.Equal(t, 78, result.JobMatch.MatchScore)

	require.NotNil(t, result.ATSScore)
	assert.Equal(t, 77, result.ATSScore.KeywordScore)
	assert.Equal(t, 100, result.ATSScore.FormatScore)
	assert.Equal(t, 82, result.ATSScore.OverallScore)
	require.NotNil(t, result.ATSScore.CompanyATS)
	assert.Equal(t, "Spotify", result.ATSScore.CompanyATS.Company)

	assert.NotEmpty(t, events[len(events)-1].TotalTime)
}

func TestPipeline_ProgressMonotonic(t *testing.T) {
	gen := newScriptedGenerator()
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	req := baseRequest()
	req.Questionnaire.JobPostingText = testJobPosting

	events := collectEvents(t, pipeline.Run(context.Background(), req))

	previous := 0
	for _, ev := range events {
		if ev.Progress == 0 {
			continue
		}
		assert.GreaterOrEqual(t, ev.Progress, previous, "step %s", ev.Step)
		previous = ev.Progress
	}
	assert.Equal(t, 100, previous)
}

func TestPipeline_GapAnalysisGatesCareerPlan(t *testing.T) {
	gen := newScriptedGenerator()
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	collectEvents(t, pipeline.Run(context.Background(), baseRequest()))

	stages := gen.stages()
	gapIdx := indexOf(stages, "gap_analysis")
	planIdx := indexOf(stages, "career_plan")
	require.NotEqual(t, -1, gapIdx)
	require.NotEqual(t, -1, planIdx)
	assert.Less(t, gapIdx, planIdx)

	// the plan prompt consumes the gap analysis output
	planPrompt := gen.userPrompt("career_plan")
	assert.Contains(t, planPrompt, "Kubernetes")
	assert.Contains(t, planPrompt, `"label":"strong"`)
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

func TestPipeline_PlanAndJobMatchRunConcurrently(t *testing.T) {
	gen := newScriptedGenerator()
	const stageLatency = 200 * time.Millisecond
	gen.latency["career_plan"] = stageLatency
	gen.latency["job_match"] = stageLatency

	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	req := baseRequest()
	req.Questionnaire.JobPostingText = testJobPosting

	start := time.Now()
	collectEvents(t, pipeline.Run(context.Background(), req))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, stageLatency)
	assert.Less(t, elapsed, 2*stageLatency, "plan and job match ran back to back instead of in parallel")
}

func TestPipeline_SkipsOptionalStagesWithoutPosting(t *testing.T) {
	gen := newScriptedGenerator()
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	req := baseRequest()
	req.Questionnaire.JobPostingText = "short posting" // under the threshold

	events := collectEvents(t, pipeline.Run(context.Background(), req))

	assert.NotContains(t, stepsOf(events), models.StepATS)
	assert.NotContains(t, gen.stages(), "job_match")
	assert.NotContains(t, gen.stages(), "ats_keywords")

	result := finalResult(t, events)
	assert.Nil(t, result.JobMatch)
	assert.Nil(t, result.ATSScore)
	require.NotNil(t, result.CareerPlan)
}

func TestPipeline_UnreadableDocument(t *testing.T) {
	gen := newScriptedGenerator()
	pipeline := newTestPipeline(gen, &stubParser{err: ErrNoTextContent})

	events := collectEvents(t, pipeline.Run(context.Background(), baseRequest()))

	require.Len(t, events, 2)
	assert.Equal(t, models.StepParsing, events[0].Step)
	assert.Equal(t, models.StepError, events[1].Step)
	assert.Contains(t, events[1].Message, "scanned image")
	assert.Empty(t, gen.stages(), "no AI stage runs after a parse failure")
}

func TestPipeline_GapStageFallsBackOpen(t *testing.T) {
	gen := newScriptedGenerator()
	gen.override["gap_analysis"] = "the model rambled instead of returning JSON"
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	events := collectEvents(t, pipeline.Run(context.Background(), baseRequest()))

	assert.NotContains(t, stepsOf(events), models.StepError)

	result := finalResult(t, events)
	assert.Equal(t, 5.0, result.Fit.Score)
	assert.Equal(t, "moderate", result.Fit.Label)
	assert.NotEmpty(t, result.Strengths)
	assert.NotEmpty(t, result.Gaps)
}

func TestPipeline_ATSSkippedWhenKeywordStageFails(t *testing.T) {
	gen := newScriptedGenerator()
	gen.override["ats_keywords"] = "no json here"
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	req := baseRequest()
	req.Questionnaire.JobPostingText = testJobPosting

	events := collectEvents(t, pipeline.Run(context.Background(), req))

	result := finalResult(t, events)
	assert.Nil(t, result.ATSScore)
	require.NotNil(t, result.JobMatch, "job match is independent of the ATS stages")
}

func TestPipeline_TranslationApplied(t *testing.T) {
	gen := newScriptedGenerator()
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	req := baseRequest()
	req.Questionnaire.TargetLanguage = "de"

	events := collectEvents(t, pipeline.Run(context.Background(), req))

	assert.Contains(t, stepsOf(events), models.StepTranslating)

	result := finalResult(t, events)
	assert.Equal(t, "de", result.Language)
	assert.Equal(t, "Solide Basis.", result.Fit.Summary)
}

func TestPipeline_BrokenTranslationKeepsOriginal(t *testing.T) {
	gen := newScriptedGenerator()
	gen.override["translation"] = "Entschuldigung, das kann ich nicht."
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	req := baseRequest()
	req.Questionnaire.TargetLanguage = "de"

	events := collectEvents(t, pipeline.Run(context.Background(), req))

	assert.Contains(t, stepsOf(events), models.StepTranslating)

	result := finalResult(t, events)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, "Solid base for the move.", result.Fit.Summary)
}

func TestPipeline_DefaultLanguageNeedsNoTranslation(t *testing.T) {
	gen := newScriptedGenerator()
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	req := baseRequest()
	req.Questionnaire.TargetLanguage = "en"

	events := collectEvents(t, pipeline.Run(context.Background(), req))

	assert.NotContains(t, stepsOf(events), models.StepTranslating)
	assert.NotContains(t, gen.stages(), "translation")
}

func TestPipeline_CancelledContextEndsStream(t *testing.T) {
	gen := newScriptedGenerator()
	pipeline := newTestPipeline(gen, &stubParser{content: cleanParsedDoc()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := collectEvents(t, pipeline.Run(ctx, baseRequest()))

	// the channel closes without a terminal complete event
	assert.NotContains(t, stepsOf(events), models.StepComplete)
}

func TestTranslationUsable(t *testing.T) {
	usable := models.AnalysisResult{
		Fit:       models.FitScore{Summary: "ok"},
		Strengths: []models.Strength{{Title: "x"}},
		Gaps:      []models.Gap{{Title: "y"}},
	}
	assert.True(t, TranslationUsable(usable))

	assert.False(t, TranslationUsable(models.AnalysisResult{}))

	noGaps := usable
	noGaps.Gaps = nil
	assert.False(t, TranslationUsable(noGaps))
}
