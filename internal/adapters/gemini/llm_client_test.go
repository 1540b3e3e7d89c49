package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
)

type fakeModel struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func candidate(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGeminiClient_Generate(t *testing.T) {
	model := &fakeModel{resp: candidate(genai.Text("Risk Level: HIGH\n"), genai.Text("Warning Signs: x"))}
	client := &GeminiClient{model: model, modelName: "gemini-1.5-flash", logger: zap.NewNop()}

	text, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Risk Level: HIGH\nWarning Signs: x", text)
	assert.Equal(t, []genai.Part{genai.Text("prompt")}, model.parts)
	assert.Equal(t, "gemini/gemini-1.5-flash", client.Name())
	assert.NoError(t, client.Close())
}

func TestGeminiClient_GenerateEmpty(t *testing.T) {
	for _, resp := range []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
		candidate(genai.Blob{MIMEType: "image/png", Data: []byte{1}}),
	} {
		client := &GeminiClient{model: &fakeModel{resp: resp}, logger: zap.NewNop()}
		_, err := client.Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.ErrorIs(t, err, core.ErrEmptyResponse)
	}
}

func TestGeminiClient_GenerateError(t *testing.T) {
	client := &GeminiClient{model: &fakeModel{err: errors.New("quota exceeded")}, logger: zap.NewNop()}
	_, err := client.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestFactory_RequiresAPIKey(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	_, err := NewFactory(cfg, zap.NewNop()).CreateGenerator()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
