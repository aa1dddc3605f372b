package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-docrouter-be/pkg/llm"

	"github.com/go-playground/validator/v10"
)

// ErrServiceUnavailable covers every way a structured inference can fail:
// no backend configured, transport errors, timeouts and unusable responses.
// Callers treat it as the signal to take their deterministic path.
var ErrServiceUnavailable = errors.New("inference service unavailable")

const DefaultTimeout = 30 * time.Second

// DefaultMaxTokens bounds a structured reply; the JSON objects agents ask for are small.
const DefaultMaxTokens = 512

// Client asks an LLM for a JSON object and decodes it into a typed schema.
// A nil *Client is valid and always reports ErrServiceUnavailable.
type Client struct {
	provider llm.LLMProvider
	validate *validator.Validate
	timeout  time.Duration
}

func NewClient(provider llm.LLMProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		provider: provider,
		validate: validator.New(),
		timeout:  timeout,
	}
}

// Available reports whether a backend is configured at all.
func (c *Client) Available() bool {
	return c != nil && c.provider != nil
}

// Infer sends prompt and decodes the reply into T. Struct tags on T are
// enforced with the validator, so a reply missing a required field or
// carrying a value outside a closed vocabulary is rejected.
func Infer[T any](ctx context.Context, c *Client, prompt string) (*T, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: no provider configured", ErrServiceUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.1), llm.WithMaxTokens(DefaultMaxTokens), llm.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	var out T
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrServiceUnavailable, err)
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrServiceUnavailable, err)
	}

	return &out, nil
}

// ExtractJSONObject strips markdown fences and any prose around the outermost
// JSON object in a model reply.
func ExtractJSONObject(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return response[start : end+1]
	}
	return response
}
