package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openRouterURL = "https://openrouter.ai/api/v1/"

// openRouter talks to OpenRouter's OpenAI-compatible endpoint.
type openRouter struct {
	baseURL   string
	providers []string
}

func (o *openRouter) name() string { return ProviderOpenRouter }

func (o *openRouter) complete(ctx context.Context, model, prompt, credential string) (string, error) {
	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = openRouterURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(credential),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHeader("HTTP-Referer", "https://github.com/fixtext/fixtext"),
		option.WithHeader("X-Title", "FixText"),
	}
	if len(o.providers) > 0 {
		opts = append(opts, option.WithJSONSet("provider", map[string]any{
			"order":           o.providers,
			"allow_fallbacks": false,
		}))
	}
	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			body := apiErr.Message
			if body == "" {
				body = apiErr.RawJSON()
			}
			return "", &HTTPError{StatusCode: apiErr.StatusCode, Body: body}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoCandidates
	}
	return resp.Choices[0].Message.Content, nil
}
