// Package oracle talks to the external recommendation, duplicate-judgment
// and date-normalization service over an OpenAI-compatible chat-completions
// API. Every answer must be a JSON document of the expected shape; anything
// else is reported as ErrMalformed so the engine can take its fallback.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/itinerary"
)

// ErrMalformed is returned when the oracle answers with something other than
// the requested JSON shape.
var ErrMalformed = errors.New("oracle: malformed response")

// Config holds the connection settings for the oracle endpoint.
type Config struct {
	// Endpoint is the API base URL, e.g. "https://api.openai.com/v1".
	Endpoint string
	APIKey   string
	Model    string
	// RequestsPerSecond throttles outgoing calls. Zero or less disables throttling.
	RequestsPerSecond float64
	// HTTPClient defaults to the SDK's client; callers bound each call
	// through its context.
	HTTPClient *http.Client
}

// Client implements itinerary.RecommendationOracle, itinerary.JudgmentOracle
// and itinerary.DateParser.
type Client struct {
	cfg     Config
	api     *openai.Client
	limiter *rate.Limiter
}

var (
	_ itinerary.RecommendationOracle = (*Client)(nil)
	_ itinerary.JudgmentOracle       = (*Client)(nil)
	_ itinerary.DateParser           = (*Client)(nil)
)

// New constructs a Client.
func New(cfg Config) *Client {
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.Endpoint
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSecond))
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Client{cfg: cfg, api: openai.NewClientWithConfig(apiCfg), limiter: limiter}
}

// Arrange asks for a re-ordered day that includes newItem.
func (c *Client) Arrange(ctx context.Context, tc itinerary.TripContext, existing []domain.Activity, newItem domain.Activity) ([]domain.Activity, error) {
	payload := map[string]any{
		"trip":     tc,
		"existing": existing,
		"newItem":  newItem,
	}
	content, err := c.complete(ctx, arrangePrompt, payload)
	if err != nil {
		return nil, fmt.Errorf("oracle.Client.Arrange: %w", err)
	}
	acts, err := decodeActivities(content)
	if err != nil {
		return nil, fmt.Errorf("oracle.Client.Arrange: %w", err)
	}
	return acts, nil
}

// Regenerate asks for a full replacement day that keeps the fixed activities
// and avoids the excluded names.
func (c *Client) Regenerate(ctx context.Context, tc itinerary.TripContext, keep []domain.Activity, excludedNames []string) ([]domain.Activity, error) {
	payload := map[string]any{
		"trip":          tc,
		"keep":          keep,
		"excludedNames": excludedNames,
	}
	content, err := c.complete(ctx, regeneratePrompt, payload)
	if err != nil {
		return nil, fmt.Errorf("oracle.Client.Regenerate: %w", err)
	}
	acts, err := decodeActivities(content)
	if err != nil {
		return nil, fmt.Errorf("oracle.Client.Regenerate: %w", err)
	}
	return acts, nil
}

// Judge asks whether candidate duplicates any of existing.
func (c *Client) Judge(ctx context.Context, candidate itinerary.BookingSummary, existing []itinerary.BookingSummary) (itinerary.Judgment, error) {
	payload := map[string]any{
		"candidate": candidate,
		"existing":  existing,
	}
	content, err := c.complete(ctx, judgePrompt, payload)
	if err != nil {
		return itinerary.Judgment{}, fmt.Errorf("oracle.Client.Judge: %w", err)
	}
	var j struct {
		IsDuplicate  *bool    `json:"isDuplicate"`
		DuplicateIDs []string `json:"duplicateIds"`
	}
	if err := decodeObject(content, &j); err != nil {
		return itinerary.Judgment{}, fmt.Errorf("oracle.Client.Judge: %w", err)
	}
	if j.IsDuplicate == nil {
		return itinerary.Judgment{}, fmt.Errorf("oracle.Client.Judge: %w: isDuplicate missing", ErrMalformed)
	}
	return itinerary.Judgment{IsDuplicate: *j.IsDuplicate, DuplicateIDs: j.DuplicateIDs}, nil
}

// ParseDate normalizes raw to "2006-01-02". An empty string means the oracle
// found no date.
func (c *Client) ParseDate(ctx context.Context, raw string) (string, error) {
	content, err := c.complete(ctx, parseDatePrompt, map[string]any{"text": raw})
	if err != nil {
		return "", fmt.Errorf("oracle.Client.ParseDate: %w", err)
	}
	var d struct {
		Date *string `json:"date"`
	}
	if err := decodeObject(content, &d); err != nil {
		return "", fmt.Errorf("oracle.Client.ParseDate: %w", err)
	}
	if d.Date == nil {
		return "", nil
	}
	return strings.TrimSpace(*d.Date), nil
}

// complete sends one system + user exchange and returns the assistant text.
func (c *Client) complete(ctx context.Context, system string, payload any) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", itinerary.ErrOracleUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	user, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: string(user)},
		},
		Temperature: 0.4,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("unexpected status %d: %w", apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", fmt.Errorf("unexpected status %d: %w", reqErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("send request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformed)
	}
	return resp.Choices[0].Message.Content, nil
}

// decodeActivities requires content to be a JSON array of objects.
func decodeActivities(content string) ([]domain.Activity, error) {
	s := stripFences(content)
	if !strings.HasPrefix(s, "[") {
		return nil, fmt.Errorf("%w: expected JSON array", ErrMalformed)
	}
	var acts []domain.Activity
	if err := json.Unmarshal([]byte(s), &acts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return acts, nil
}

func decodeObject(content string, v any) error {
	s := stripFences(content)
	if !strings.HasPrefix(s, "{") {
		return fmt.Errorf("%w: expected JSON object", ErrMalformed)
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// stripFences removes a surrounding ```json ... ``` block, which chat models
// add even when told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
