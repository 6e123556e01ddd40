package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// VisionService is the single boundary to the vision LLM. Both pipeline
// stages (recognition and claim analysis) and the text-only feedback
// evaluator go through it; there is deliberately no second provider path.
type VisionService struct {
	client    *resty.Client
	model     string
	evalModel string
	apiKey    string
	endpoint  string
}

// VisionConfig holds configuration for the vision service.
type VisionConfig struct {
	Model     string
	EvalModel string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
}

// NewVisionService creates a new vision LLM client.
// Parameters:
//   - cfg: model names, API key, base URL, and request timeout.
//
// Returns:
//   - *VisionService: initialized client wrapper.
func NewVisionService(cfg *VisionConfig) *VisionService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.x.ai/v1"
	}

	return &VisionService{
		client:    client,
		model:     cfg.Model,
		evalModel: cfg.EvalModel,
		apiKey:    cfg.APIKey,
		endpoint:  baseURL + "/chat/completions",
	}
}

// Model returns the vision model name being used.
func (s *VisionService) Model() string {
	return s.model
}

// OpenAI-compatible chat completion request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string or []interface{} with image parts
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageContent struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// CallOptions bounds a single LLM call.
type CallOptions struct {
	MaxTokens   int
	Temperature float32
}

// CompleteVision sends a prompt plus one inline image and returns the raw
// response text. imageData accepts a data URL or a plain https URL.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - prompt: full prompt text including format instructions.
//   - imageData: data URL or https URL of the image.
//   - opts: sampling bounds.
//
// Returns:
//   - string: raw model output.
//   - error: *PipelineError with a mapped category on failure.
func (s *VisionService) CompleteVision(ctx context.Context, prompt, imageData string, opts CallOptions) (string, error) {
	if s.apiKey == "" {
		return "", newPipelineError(CategoryServiceNotConfigured,
			"AI service is not configured",
			"The XAI_API_KEY environment variable is missing. Please contact the administrator.", nil)
	}

	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []interface{}{
					textContent{Type: "text", Text: prompt},
					imageContent{Type: "image_url", ImageURL: imageURL{URL: normalizeImageRef(imageData)}},
				},
			},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	return s.send(ctx, req)
}

// CompleteText sends a text-only prompt to the eval model and returns the
// raw response text. Used by the feedback evaluation stage.
func (s *VisionService) CompleteText(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	if s.apiKey == "" {
		return "", newPipelineError(CategoryServiceNotConfigured,
			"AI service is not configured",
			"The XAI_API_KEY environment variable is missing. Please contact the administrator.", nil)
	}

	model := s.evalModel
	if model == "" {
		model = s.model
	}

	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	return s.send(ctx, req)
}

func (s *VisionService) send(ctx context.Context, req chatRequest) (string, error) {
	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return "", newPipelineError(CategoryNetworkError,
			"Unable to reach the AI service",
			"Please check connectivity to the LLM API and try again.", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return "", s.mapHTTPError(httpResp.StatusCode(), &resp, httpResp.Body())
	}

	if resp.Error != nil {
		return "", newPipelineError(CategoryInvalidResponse,
			"AI service returned an error", resp.Error.Message, nil)
	}

	if len(resp.Choices) == 0 {
		return "", newPipelineError(CategoryInvalidResponse,
			"No response from AI service",
			fmt.Sprintf("empty choices (status %d)", httpResp.StatusCode()), nil)
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *VisionService) mapHTTPError(status int, resp *chatResponse, body []byte) error {
	detail := fmt.Sprintf("HTTP %d", status)
	if resp.Error != nil {
		detail = fmt.Sprintf("HTTP %d: %s", status, resp.Error.Message)
	} else if len(body) > 0 {
		detail = fmt.Sprintf("HTTP %d: %s", status, truncate(string(body), 300))
	}

	switch status {
	case 429:
		return newPipelineError(CategoryRateLimited,
			"Rate limit exceeded",
			"Too many requests. Please wait a moment and try again.", nil)
	case 401, 403:
		return newPipelineError(CategoryServiceNotConfigured,
			"Invalid API key", detail, nil)
	case 400:
		return newPipelineError(CategoryInvalidImage,
			"Invalid request to AI service", detail, nil)
	default:
		return newPipelineError(CategoryUnknown,
			"AI service request failed", detail, nil)
	}
}

// normalizeImageRef passes through data URLs and http(s) URLs, and wraps bare
// base64 payloads as a jpeg data URL.
func normalizeImageRef(imageData string) string {
	if strings.HasPrefix(imageData, "data:") || strings.HasPrefix(imageData, "http") {
		return imageData
	}
	return "data:image/jpeg;base64," + imageData
}
