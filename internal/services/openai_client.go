package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/types"
	"github.com/yungbote/cardfolio-backend/internal/utils"
)

// openAIEnrichmentClient implements EnrichmentClient against an OpenAI-style
// structured-output endpoint. A missing API key is not a constructor error:
// it surfaces as ErrMissingCredential at call time so the orchestrator can
// report the dedicated outcome.
type openAIEnrichmentClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
	prompts    EnrichmentPrompts
}

// EnrichmentPrompts is the tunable prompt text, optionally overridden by a
// YAML file pointed at by ENRICHMENT_PROMPTS_PATH.
type EnrichmentPrompts struct {
	OrganizationSystem string `yaml:"organization_system"`
	PersonSystem       string `yaml:"person_system"`
}

func defaultEnrichmentPrompts() EnrichmentPrompts {
	return EnrichmentPrompts{
		OrganizationSystem: "You are a research assistant enriching a company record in a personal contact directory. " +
			"Use the provided context and tag vocabulary. Respond only with fields you are confident about; leave unknown fields empty. " +
			"Provide both an English and a Japanese summary. Tags must be single words without whitespace.",
		PersonSystem: "You are a research assistant enriching a person record in a personal contact directory. " +
			"Use the provided context and tag vocabulary. Respond only with fields you are confident about; leave unknown fields empty. " +
			"Provide both an English and a Japanese summary. Tags must be single words without whitespace.",
	}
}

func loadEnrichmentPrompts(path string, log *logger.Logger) EnrichmentPrompts {
	prompts := defaultEnrichmentPrompts()
	if strings.TrimSpace(path) == "" {
		return prompts
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Could not read enrichment prompts file, using defaults", "path", path, "error", err)
		return prompts
	}
	if err := yaml.Unmarshal(raw, &prompts); err != nil {
		log.Warn("Could not parse enrichment prompts file, using defaults", "path", path, "error", err)
		return defaultEnrichmentPrompts()
	}
	return prompts
}

func NewOpenAIEnrichmentClient(log *logger.Logger) EnrichmentClient {
	clientLog := log.With("service", "OpenAIEnrichmentClient")

	baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", clientLog)
	model := utils.GetEnv("OPENAI_MODEL", "gpt-4o", clientLog)
	timeoutSec := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 120, clientLog)
	maxRetries := utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 3, clientLog)
	promptsPath := utils.GetEnv("ENRICHMENT_PROMPTS_PATH", "", clientLog)

	return &openAIEnrichmentClient{
		log:        clientLog,
		baseURL:    baseURL,
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
		prompts:    loadEnrichmentPrompts(promptsPath, clientLog),
	}
}

func (c *openAIEnrichmentClient) Enrich(ctx context.Context, req *types.EnrichmentRequest) (*types.EnrichmentResult, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errs.ErrMissingCredential
	}
	if req == nil {
		return nil, errs.ErrInvalidArgument
	}

	system := c.prompts.PersonSystem
	schema := personResultSchema()
	if req.Kind == types.RecordKindOrganization {
		system = c.prompts.OrganizationSystem
		schema = organizationResultSchema()
	}

	userPayload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	obj, err := c.generateJSON(ctx, system, string(userPayload), "enrichment_result", schema)
	if err != nil {
		return nil, err
	}
	return decodeEnrichmentResult(obj)
}

func enrichableStringProps(fields []string) map[string]any {
	props := map[string]any{
		"summary_en": map[string]any{"type": "string"},
		"summary_ja": map[string]any{"type": "string"},
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	}
	fieldProps := map[string]any{}
	for _, f := range fields {
		fieldProps[f] = map[string]any{"type": "string"}
	}
	props["fields"] = map[string]any{
		"type":                 "object",
		"properties":           fieldProps,
		"additionalProperties": false,
	}
	return props
}

func organizationResultSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": enrichableStringProps([]string{
			FieldWebsite, FieldLinkedIn, FieldPhone, FieldAddress,
			FieldIndustry, FieldSizeBand, FieldRevenueBand,
			FieldFoundedYear, FieldHeadquarters,
		}),
		"additionalProperties": false,
	}
}

func personResultSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": enrichableStringProps([]string{
			FieldTitle, FieldDepartment, FieldLocation, FieldPhone,
			FieldEmail, FieldWebsite, FieldLinkedIn,
		}),
		"additionalProperties": false,
	}
}

func decodeEnrichmentResult(obj map[string]any) (*types.EnrichmentResult, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var res types.EnrichmentResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode enrichment result: %w", err)
	}
	return &res, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *openAIHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	// +/- 20%
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	v := low + rand.Float64()*2*delta
	return time.Duration(v * float64(time.Second))
}

func (c *openAIEnrichmentClient) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *openAIEnrichmentClient) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !isRetryableErr(err) || attempt == c.maxRetries {
			return err
		}

		// Respect Retry-After when present
		sleepFor := backoff
		if resp != nil {
			if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"input"`
	Text struct {
		Format map[string]any `json:"format"`
	} `json:"text"`
	Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func (c *openAIEnrichmentClient) generateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
		return nil, err
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", resp.Refusal)
	}

	var jsonText string
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, part := range item.Content {
				if part.Type == "output_text" && part.Text != "" {
					jsonText += part.Text
				}
			}
		}
	}
	if jsonText == "" {
		return nil, fmt.Errorf("no output_text found in response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w; text=%s", err, jsonText)
	}
	return obj, nil
}
