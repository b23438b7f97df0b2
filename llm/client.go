// Package llm wraps the Gemini client for structured JSON generation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// Client issues model calls against a fixed model name. Build one at
// startup and inject it; handlers and the engine never construct clients.
type Client struct {
	genai *genai.Client
	model string
}

// NewClient creates a Gemini-backed client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	return &Client{genai: gc, model: model}, nil
}

// GenerateStructured sends a prompt with a response schema and unmarshals
// the model's JSON output into out. Any transport or decode failure is
// returned as-is; callers decide how to categorize it.
func (c *Client) GenerateStructured(ctx context.Context, systemPrompt, prompt string, schema *genai.Schema, out any) error {
	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if systemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		genConfig)
	if err != nil {
		return err
	}

	text := resp.Text()
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("malformed model output: %v (response was: %.200s)", err, text)
	}
	return nil
}
