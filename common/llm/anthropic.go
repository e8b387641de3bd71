package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicClient struct {
	client anthropic.Client
	model  string
}

func newAnthropicClient(cfg Config) (Client, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5-20250514"
	}

	return &anthropicClient{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Chat implements structured output by forcing a single tool call whose input
// schema is the requested response schema. Anthropic has no native JSON-schema
// response format, so the tool input is the structured result.
func (c *anthropicClient) Chat(ctx context.Context, req Request, result any) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	schemaProps := extractProperties(req.Schema)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(req.UserPrompt),
				},
			},
		},
		Tools: []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        req.SchemaName,
					Description: anthropic.String("Record the structured analysis result"),
					InputSchema: anthropic.ToolInputSchemaParam{
						Type:       "object",
						Properties: schemaProps,
					},
				},
			},
		},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{
				Type: "tool",
				Name: req.SchemaName,
			},
		},
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}

	slog.DebugContext(ctx, "llm chat completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)

	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == req.SchemaName {
			if err := json.Unmarshal(block.Input, result); err != nil {
				return nil, fmt.Errorf("unmarshal tool input: %w", err)
			}
			return &Response{
				PromptTokens:     int(resp.Usage.InputTokens),
				CompletionTokens: int(resp.Usage.OutputTokens),
			}, nil
		}
	}

	return nil, fmt.Errorf("no %s tool call in response", req.SchemaName)
}

func (c *anthropicClient) Complete(ctx context.Context, req CompleteRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 300
	}

	var system []anthropic.TextBlockParam
	if req.SystemPrompt != "" {
		system = append(system, anthropic.TextBlockParam{Type: "text", Text: req.SystemPrompt})
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := anthropic.MessageParamRoleUser
		if m.Role == "assistant" {
			role = anthropic.MessageParamRoleAssistant
		}
		if m.Role == "system" {
			system = append(system, anthropic.TextBlockParam{Type: "text", Text: m.Content})
			continue
		}
		messages = append(messages, anthropic.MessageParam{
			Role: role,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(m.Content),
			},
		})
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: %w", err)
	}

	slog.DebugContext(ctx, "llm completion finished",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

func (c *anthropicClient) Model() string {
	return c.model
}

// extractProperties pulls the properties map out of a reflected JSON schema so
// it can be used as an Anthropic tool input schema.
func extractProperties(schema any) any {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	props, ok := m["properties"]
	if !ok {
		return nil
	}
	var out any
	if err := json.Unmarshal(props, &out); err != nil {
		return nil
	}
	return out
}
