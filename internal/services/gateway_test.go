package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type funcGenerator func(ctx context.Context, system, user string, temperature float32, maxTokens int32) (string, error)

func (f funcGenerator) GenerateText(ctx context.Context, system, user string, temperature float32, maxTokens int32) (string, error) {
	return f(ctx, system, user, temperature, maxTokens)
}

type testPayload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func staticGen(response string, err error) funcGenerator {
	return func(context.Context, string, string, float32, int32) (string, error) {
		return response, err
	}
}

func TestInvoke_ParsesPlainJSON(t *testing.T) {
	gen := staticGen(`{"name":"go","score":9}`, nil)

	got := Invoke(context.Background(), gen, nil, Call{Stage: "test"}, testPayload{Name: "fallback"})

	assert.Equal(t, testPayload{Name: "go", Score: 9}, got)
}

func TestInvoke_ToleratesCodeFences(t *testing.T) {
	gen := staticGen("Here is the result:\n```json\n{\"name\":\"go\",\"score\":9}\n```\nLet me know if you need anything else.", nil)

	got := Invoke(context.Background(), gen, nil, Call{Stage: "test"}, testPayload{})

	assert.Equal(t, testPayload{Name: "go", Score: 9}, got)
}

func TestInvoke_FallbackOnTransportError(t *testing.T) {
	gen := staticGen("", errors.New("connection reset"))
	fallback := testPayload{Name: "fallback", Score: 1}

	got := Invoke(context.Background(), gen, nil, Call{Stage: "test"}, fallback)

	assert.Equal(t, fallback, got)
}

func TestInvoke_FallbackOnUnparseableResponse(t *testing.T) {
	gen := staticGen("I'm sorry, I can't produce JSON for that.", nil)
	fallback := testPayload{Name: "fallback"}

	got := Invoke(context.Background(), gen, nil, Call{Stage: "test"}, fallback)

	assert.Equal(t, fallback, got)
}

func TestInvoke_NilFallbackForSlices(t *testing.T) {
	gen := staticGen("not json at all", nil)

	got := Invoke[[]testPayload](context.Background(), gen, nil, Call{Stage: "test"}, nil)

	assert.Nil(t, got)
}

func TestInvoke_SliceResponse(t *testing.T) {
	gen := staticGen("```json\n[{\"name\":\"a\",\"score\":1},{\"name\":\"b\",\"score\":2}]\n```", nil)

	got := Invoke[[]testPayload](context.Background(), gen, nil, Call{Stage: "test"}, nil)

	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Name)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced object", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Sure! {"a":1} Hope that helps.`, `{"a":1}`},
		{"bare array", `[1,2,3]`, `[1,2,3]`},
		{"no json at all", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}
