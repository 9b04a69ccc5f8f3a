package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

type gemini struct {
	baseURL string
}

func (g *gemini) name() string { return ProviderGemini }

func (g *gemini) complete(ctx context.Context, model, prompt, credential string) (string, error) {
	cc := &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &HTTPError{StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	return resp.Text(), nil
}
