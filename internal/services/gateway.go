package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-analyzer/internal/logger"
)

// Call describes one model invocation: the prompt pair plus generation
// parameters.
type Call struct {
	Stage       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int32
}

// Invoke sends the call to the model service and deserializes the response
// into T, tolerating markdown code-fence wrappers. On any failure (transport,
// timeout, unparseable output) it returns the provided fallback so a bad AI
// response degrades the report instead of failing the whole request. Single
// attempt, no retries.
func Invoke[T any](ctx context.Context, gen TextGenerator, log *zap.Logger, call Call, fallback T) T {
	if log == nil {
		log = zap.NewNop()
	}

	raw, err := gen.GenerateText(ctx, call.System, call.User, call.Temperature, call.MaxTokens)
	if err != nil {
		log.Warn("AI call failed, using fallback",
			zap.String("stage", call.Stage),
			zap.Error(err))
		return fallback
	}

	var result T
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		log.Warn("AI response unparseable, using fallback",
			zap.String("stage", call.Stage),
			zap.String("response", logger.Truncate(raw, 300)),
			zap.Error(err))
		return fallback
	}

	return result
}

// extractJSON tries to extract JSON from text that might contain markdown
// or other formatting.
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	// Find JSON object or array boundaries
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
