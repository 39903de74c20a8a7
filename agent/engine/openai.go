// Package engine adapts an OpenAI-compatible chat completion endpoint to
// the reasoning engine contract: one completion call per turn, tool calls
// surfaced as data rather than executed here.
package engine

import (
	"context"
	"encoding/json"
	"fmt"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/taskwire/taskwire/agent/contract"
	toolx "github.com/taskwire/taskwire/agent/tool"
	"github.com/taskwire/taskwire/pkg/openrouter"
)

const systemPrompt = "You are a helpful assistant that helps users manage their tasks. " +
	"You have access to tools that allow you to add, list, complete, delete, and update tasks. " +
	"The user's identity is attached to every tool call automatically, so never ask for it. " +
	"Be friendly and conversational in your responses."

const defaultReply = "I processed your request."

type OpenAI struct {
	client *openaisdk.Client
	cfg    openrouter.Config
	tools  []openaisdk.ChatCompletionToolParam
}

var _ contractx.Engine = (*OpenAI)(nil)

// New builds an engine over an SDK client. A nil client is allowed and
// yields an engine that reports unavailable on every run, which keeps the
// caller's fallback branch uniform.
func New(client *openaisdk.Client, cfg openrouter.Config, reg *toolx.Registry) *OpenAI {
	defs := reg.List()
	tools := make([]openaisdk.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		tools[i] = openaisdk.ChatCompletionToolParam{
			Type: "function",
			Function: openaisdk.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openaisdk.String(def.Description),
				Parameters:  openaisdk.FunctionParameters(def.InputSchema),
			},
		}
	}
	return &OpenAI{client: client, cfg: cfg, tools: tools}
}

func (e *OpenAI) Run(ctx context.Context, message string, history []contractx.Message) (contractx.EngineResult, error) {
	if e.client == nil {
		return contractx.EngineResult{}, contractx.ErrEngineUnavailable
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openaisdk.SystemMessage(systemPrompt))
	for _, msg := range history {
		switch msg.Role {
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openaisdk.UserMessage(message))

	params := openaisdk.ChatCompletionNewParams{
		Messages:            messages,
		Model:               e.cfg.Model,
		Temperature:         openaisdk.Float(e.cfg.Temperature),
		MaxCompletionTokens: openaisdk.Int(e.cfg.MaxCompletionToken),
		Tools:               e.tools,
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.EngineResult{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return contractx.EngineResult{}, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0].Message
	result := contractx.EngineResult{Reply: choice.Content}

	for _, call := range choice.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return contractx.EngineResult{}, fmt.Errorf("tool call %q: decode arguments: %w", call.Function.Name, err)
			}
		}
		result.ToolCalls = append(result.ToolCalls, contractx.ToolCall{
			Tool:   call.Function.Name,
			Params: args,
		})
	}

	if result.Reply == "" {
		result.Reply = defaultReply
	}
	return result, nil
}
