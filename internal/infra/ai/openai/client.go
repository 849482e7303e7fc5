package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/infra/ai/prompt"
	"github.com/bryanwahyu/visiai/internal/infra/breaker"
)

const (
	maxTokens = 1024

	DefaultModel    = "gpt-4o-mini"
	DefaultProvider = "OpenAI"
	DefaultTimeout  = 30 * time.Second
)

// Config for the vision client. BaseURL may point at any OpenAI-compatible
// endpoint.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Timeout  time.Duration
	Breaker  breaker.Settings
}

// VisionClient scores screenshots with a vision-capable chat model.
type VisionClient struct {
	*openai.Client
	Model    string
	provider string
	timeout  time.Duration
	enabled  bool
	cb       *gobreaker.CircuitBreaker
}

func NewVisionClient(cfg Config, httpClient *http.Client) *VisionClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &VisionClient{
		Client:   openai.NewClientWithConfig(oc),
		Model:    cfg.Model,
		provider: cfg.Provider,
		timeout:  cfg.Timeout,
		enabled:  cfg.APIKey != "",
		cb:       breaker.New("vision", cfg.Breaker),
	}
}

// Analyze never fails: every problem yields the default vision record.
func (c *VisionClient) Analyze(ctx context.Context, screenshot string) providers.VisionResult {
	log := logrus.WithField("provider", "vision")
	if !c.enabled {
		log.Warn("vision api key not configured, using default analysis")
		return providers.DefaultVision(providers.ReasonMissingKey)
	}
	image := StripDataURI(screenshot)
	if image == "" {
		log.Warn("no screenshot to analyze, using default analysis")
		return providers.DefaultVision(providers.ReasonNoScreenshot)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.complete(ctx, image)
	})
	if err != nil {
		reason := breaker.Reason(err, providers.ReasonUnavailable)
		log.WithError(err).WithField("reason", reason).Warn("vision call failed, using default analysis")
		return providers.DefaultVision(reason)
	}

	text := out.(string)
	if strings.TrimSpace(text) == "" {
		log.Warn("vision model returned no content, using default analysis")
		return providers.DefaultVision(providers.ReasonEmptyResponse)
	}
	res, err := prompt.ParseVision(text)
	if err != nil {
		preview := text
		if len(preview) > 300 {
			preview = preview[:300]
		}
		log.WithError(err).WithField("raw", preview).Warn("failed to parse vision response, using default analysis")
		return providers.DefaultVision(providers.ReasonMalformed)
	}
	res.Provider = c.provider
	res.Outcome = providers.Live()
	log.WithField("clarity", res.ClarityScore).Debug("vision analysis completed")
	return res
}

func (c *VisionClient) complete(ctx context.Context, image string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/jpeg;base64," + image,
							Detail: openai.ImageURLDetailAuto,
						},
					},
					{Type: openai.ChatMessagePartTypeText, Text: prompt.VisionPrompt},
				},
			},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(c.Model, "o1") || strings.HasPrefix(c.Model, "o3") || strings.HasPrefix(c.Model, "o4") || strings.HasPrefix(c.Model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	// An empty answer is still a healthy upstream.
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// StripDataURI drops everything up to and including "base64,".
func StripDataURI(s string) string {
	if i := strings.Index(s, "base64,"); i >= 0 {
		s = s[i+len("base64,"):]
	}
	return strings.TrimSpace(s)
}
