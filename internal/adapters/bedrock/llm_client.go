package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

// ErrEmptyResponse is returned when the model body carries no text.
var ErrEmptyResponse = fmt.Errorf("%w from Bedrock model", core.ErrEmptyResponse)

// InvokeModelAPI is the subset of the Bedrock runtime client used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type modelFamily int

const (
	familyGeneric modelFamily = iota
	familyLlama
	familyAnthropic
	familyTitan
)

func familyOf(modelID string) modelFamily {
	// Cross-region inference profiles prefix the model with a geography, e.g. "us.meta.llama3...".
	id := modelID
	if i := strings.IndexByte(id, '.'); i == 2 {
		id = id[i+1:]
	}
	switch {
	case strings.HasPrefix(id, "meta.llama"):
		return familyLlama
	case strings.HasPrefix(id, "anthropic.claude"):
		return familyAnthropic
	case strings.HasPrefix(id, "amazon.titan"):
		return familyTitan
	default:
		return familyGeneric
	}
}

// BedrockClient generates analyses with InvokeModel, shaping the payload for
// the model family.
type BedrockClient struct {
	client      InvokeModelAPI
	modelID     string
	family      modelFamily
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

func NewBedrockClient(
	client InvokeModelAPI,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *BedrockClient {
	return &BedrockClient{
		client:      client,
		modelID:     modelID,
		family:      familyOf(modelID),
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

func (c *BedrockClient) Name() string {
	return "bedrock/" + c.modelID
}

func (c *BedrockClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := c.buildPayload(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, err := c.parseResponse(resp.Body)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Bedrock completion received",
		zap.String("model", c.modelID),
		zap.Int("response_bytes", len(resp.Body)))

	return text, nil
}

func (c *BedrockClient) buildPayload(prompt string) ([]byte, error) {
	switch c.family {
	case familyLlama:
		return json.Marshal(map[string]interface{}{
			"prompt":      llamaPrompt(prompt),
			"max_gen_len": c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	case familyAnthropic:
		return json.Marshal(map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        c.maxTokens,
			"temperature":       c.temperature,
			"top_p":             c.topP,
			"messages": []map[string]interface{}{
				{"role": "user", "content": []map[string]string{{"type": "text", "text": prompt}}},
			},
		})
	case familyTitan:
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
}

func (c *BedrockClient) parseResponse(body []byte) (string, error) {
	switch c.family {
	case familyLlama:
		var llamaResp struct {
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(body, &llamaResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Llama response: %w", err)
		}
		return llamaResp.Generation, nil

	case familyAnthropic:
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		var b strings.Builder
		for _, part := range claudeResp.Content {
			if part.Type == "text" {
				b.WriteString(part.Text)
			}
		}
		return b.String(), nil

	case familyTitan:
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", ErrEmptyResponse
		}
		return titanResp.Results[0].OutputText, nil

	default:
		var genericResp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Response   string `json:"response"`
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, candidate := range []string{genericResp.Output, genericResp.Text, genericResp.Response, genericResp.Completion} {
			if candidate != "" {
				return candidate, nil
			}
		}
		return "", ErrEmptyResponse
	}
}

func llamaPrompt(prompt string) string {
	return "<|begin_of_text|><|start_header_id|>user<|end_header_id|>\n\n" +
		prompt +
		"<|eot_id|><|start_header_id|>assistant<|end_header_id|>\n\n"
}
