package services

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

	"github.com/yeremiapane/campus-canteen/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrRecommenderDisabled = errors.New("recommendations are not configured")

const recommendationPrompt = `You are a food recommendation expert. Given the current items in the user's cart, suggest additional items that would complement their meal.

Cart Items: %s

Reply with JSON only, in the form {"recommendations": ["item name", ...]}.`

// AIRecommender asks an OpenAI-compatible chat completions endpoint.
type AIRecommender struct {
	APIKey     string
	BaseURL    string
	Model      string
	httpClient *http.Client
}

func NewAIRecommender(apiKey, baseURL, model string) *AIRecommender {
	return &AIRecommender{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (r *AIRecommender) Recommend(ctx context.Context, cartItemNames []string) ([]string, error) {
	if r.APIKey == "" {
		return nil, ErrRecommenderDisabled
	}
	if len(cartItemNames) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(chatRequest{
		Model: r.Model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(recommendationPrompt, strings.Join(cartItemNames, ", "))},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.APIKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		utils.ErrorLogger.Printf("Recommendation API error (status %d): %s", resp.StatusCode, respBody)
		return nil, fmt.Errorf("recommendation API returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, errors.New("recommendation API returned no choices")
	}
	return parseRecommendations(chat.Choices[0].Message.Content), nil
}

// parseRecommendations reads {"recommendations": [...]} and falls back to one
// name per line when the model ignored the format.
func parseRecommendations(content string) []string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var out struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(content), &out); err == nil {
		return out.Recommendations
	}

	var recs []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789. ")
		if line != "" {
			recs = append(recs, line)
		}
	}
	return recs
}
