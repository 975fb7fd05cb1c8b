// Package ai calls the language model that writes variant O/X questions.
// The rest of the app only sees the Generator interface; everything about
// prompts, schemas, and the Responses API stays in here.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/utils"
)

// Sentinel errors for the ai package.
var (
	ErrNotConfigured = errors.New("ai: OPENAI_API_KEY is not configured")
	ErrEmptyPrompt   = errors.New("ai: prompt is required")
	ErrEmptyOutput   = errors.New("ai: model returned no output text")
)

// VariantRequest carries the missed card that variants are generated from.
type VariantRequest struct {
	N           int
	Prompt      string
	Answer      models.Answer
	Explanation string
	Tags        []string
	Language    string // "ko" or "en"
}

// Generator produces variant questions for a missed card. It returns the
// cleaned variants and the model name that produced them.
type Generator interface {
	GenerateVariants(ctx context.Context, req VariantRequest) ([]models.VariantDraft, string, error)
}

// Client is a Generator backed by the OpenAI Responses API with a strict
// JSON-schema structured output.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	httpc   *http.Client
}

// NewClient builds a client. baseURL is the API origin without a trailing
// slash; model defaults to gpt-4o-mini when empty.
func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

type responsesReq struct {
	Model       string         `json:"model"`
	Input       []inputMessage `json:"input"`
	Temperature float64        `json:"temperature"`
	Text        textFormat     `json:"text"`
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type textFormat struct {
	Format formatSpec `json:"format"`
}

type formatSpec struct {
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type responsesResp struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// variantSchema constrains the model to the exact response shape.
func variantSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"variants"},
		"properties": map[string]any{
			"variants": map[string]any{
				"type":     "array",
				"minItems": models.MinVariants,
				"maxItems": models.MaxVariants,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"prompt", "answer", "explanation"},
					"properties": map[string]any{
						"prompt":      map[string]any{"type": "string", "description": "영문 문장(문제). 1~2문장 이내."},
						"answer":      map[string]any{"type": "string", "enum": []string{"O", "X"}},
						"explanation": map[string]any{"type": "string", "description": "짧은 해설(한국어/영어)."},
					},
				},
			},
		},
	}
}

func systemPrompt(lang string, n int) string {
	if lang == "en" {
		return fmt.Sprintf(`You are an expert writer of English grammar TRUE/FALSE (O/X) questions.
Generate variant questions that test the SAME grammar point as the original.
Rules:
- Output MUST match the given JSON schema only.
- Create exactly %d variants.
- Each variant is 1 sentence (or at most 2 short sentences).
- Do NOT copy the original sentence; change vocabulary and structure while keeping the same grammar point.
- Include both O and X at least once when n >= 2.
- Explanations must be concise (1-2 sentences), written in English.
- Avoid sensitive topics (violence, hate, sexual content, real-person allegations, politics).`, n)
	}
	return fmt.Sprintf(`너는 한국어로 해설하는 영어 문법 OX(참/거짓) 문제 출제자야.
원문과 같은 문법 포인트를 테스트하는 변형문제를 만들어.
규칙:
- 출력은 반드시 주어진 JSON 스키마만 따라야 함(다른 텍스트 금지).
- 변형문제는 정확히 %d개.
- 각 문제는 1문장(최대 2문장)으로 간결하게.
- 원문 문장을 그대로 베끼지 말고 어휘/구조를 바꿔서 새 문장으로 작성.
- n>=2면 O와 X가 최소 1번씩 포함되게.
- 해설은 한국어로 1~2문장, 규칙/근거만 짧게.
- 폭력/혐오/선정/실존인 비방/정치 선동 등 민감 주제는 피할 것.`, n)
}

// GenerateVariants sanitizes the request, calls the Responses API, and
// returns the cleaned variants capped at n. Any failure is returned with
// enough of the upstream message to show the user.
func (c *Client) GenerateVariants(ctx context.Context, req VariantRequest) ([]models.VariantDraft, string, error) {
	if c.apiKey == "" {
		return nil, "", ErrNotConfigured
	}

	n := utils.Clamp(req.N, models.MinVariants, models.MaxVariants)
	prompt := utils.Truncate(req.Prompt, models.MaxPrompt)
	if prompt == "" {
		return nil, "", ErrEmptyPrompt
	}
	lang := "ko"
	if strings.ToLower(req.Language) == "en" {
		lang = "en"
	}

	userContent, err := json.Marshal(map[string]any{
		"original": map[string]any{
			"prompt":      prompt,
			"answer":      models.CoerceAnswer(string(req.Answer)),
			"explanation": utils.Truncate(req.Explanation, models.MaxExplanation),
			"tags":        models.CleanTags(req.Tags),
		},
		"request": map[string]any{
			"count": n,
			"goal":  "오답 개념을 교정하기 위한 변형 OX 문제",
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("ai: marshal request: %w", err)
	}

	payload := responsesReq{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: systemPrompt(lang, n)},
			{Role: "user", Content: string(userContent)},
		},
		Temperature: 0.7,
		Text: textFormat{Format: formatSpec{
			Type:   "json_schema",
			Name:   "ox_variants",
			Schema: variantSchema(),
			Strict: true,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("ai: marshal payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("ai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("ai: call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("ai: model error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed responsesResp
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, "", fmt.Errorf("ai: decode response: %w", err)
	}
	outText := extractOutputText(parsed)
	if outText == "" {
		return nil, "", ErrEmptyOutput
	}

	var out struct {
		Variants []models.VariantDraft `json:"variants"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(outText)), &out); err != nil {
		return nil, "", fmt.Errorf("ai: parse model output: %w", err)
	}

	cleaned := make([]models.VariantDraft, 0, n)
	for _, v := range out.Variants {
		v.Prompt = utils.Truncate(v.Prompt, models.MaxVariantPrompt)
		if v.Prompt == "" {
			continue
		}
		v.Answer = string(models.CoerceAnswer(v.Answer))
		v.Explanation = utils.Truncate(v.Explanation, models.MaxVariantExplanation)
		cleaned = append(cleaned, v)
		if len(cleaned) == n {
			break
		}
	}
	return cleaned, c.model, nil
}

// extractOutputText pulls the assistant's output_text out of the
// Responses API envelope.
func extractOutputText(resp responsesResp) string {
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		if item.Role != "" && item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" && c.Text != "" {
				return c.Text
			}
		}
	}
	return ""
}

// cleanJSON strips markdown fences some models wrap around JSON output.
func cleanJSON(content string) string {
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
