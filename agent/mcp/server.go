package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/taskwire/taskwire/agent/contract"
	toolx "github.com/taskwire/taskwire/agent/tool"
)

const (
	serverName      = "taskwire"
	serverVersion   = "1.0.0"
	protocolVersion = "2024-11-05"

	methodInitialize = "initialize"
	methodToolsList  = "tools/list"
	methodChatSend   = "chat/send"
	toolCallPrefix   = "tools/call/"
)

// ChatService is the native conversational surface. It is optional; a
// server without one rejects chat/send as method not found.
type ChatService interface {
	Send(ctx context.Context, ownerID string, req contractx.ChatRequest) (contractx.ChatResponse, error)
}

// Server routes envelopes to tool dispatch and chat. It holds no
// per-request state, so one instance serves a whole session.
type Server struct {
	invoker *toolx.Invoker
	chat    ChatService
	logger  zerolog.Logger
}

type ServerOption func(*Server)

func WithChat(chat ChatService) ServerOption {
	return func(s *Server) { s.chat = chat }
}

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

func NewServer(invoker *toolx.Invoker, opts ...ServerOption) (*Server, error) {
	if invoker == nil {
		return nil, fmt.Errorf("mcp: invoker is required")
	}
	s := &Server{
		invoker: invoker,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// HandleRequest processes one raw envelope and always returns a response
// line, even for malformed input.
func (s *Server) HandleRequest(ctx context.Context, raw []byte) []byte {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.logger.Warn().Err(err).Msg("unparseable request")
		return marshalResponse(errorResponse(nil, CodeParseError, "parse error: invalid JSON"))
	}

	s.logger.Info().Str("method", req.Method).Msg("handling request")
	return marshalResponse(s.dispatch(ctx, req))
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch {
	case req.Method == methodInitialize:
		return resultResponse(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"serverInfo": map[string]any{
				"name":    serverName,
				"version": serverVersion,
			},
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
		})

	case req.Method == methodToolsList:
		return resultResponse(req.ID, map[string]any{
			"tools": s.invoker.Registry().Descriptors(),
		})

	case strings.HasPrefix(req.Method, toolCallPrefix):
		return s.handleToolCall(ctx, req)

	case req.Method == methodChatSend:
		return s.handleChatSend(ctx, req)

	default:
		return errorResponse(req.ID, CodeMethodNotFound,
			fmt.Sprintf("Method '%s' not supported", req.Method))
	}
}

func (s *Server) handleToolCall(ctx context.Context, req Request) Response {
	name := strings.TrimPrefix(req.Method, toolCallPrefix)

	args := map[string]any{}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &args); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, "params must be an object")
		}
	}

	out, err := s.invoker.Invoke(ctx, name, args)
	if err != nil {
		return errorResponse(req.ID, codeForError(err), err.Error())
	}
	return resultResponse(req.ID, map[string]any{"content": out})
}

type chatParams struct {
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	ConversationID *int64 `json:"conversation_id"`
}

func (s *Server) handleChatSend(ctx context.Context, req Request) Response {
	if s.chat == nil {
		return errorResponse(req.ID, CodeMethodNotFound,
			fmt.Sprintf("Method '%s' not supported", methodChatSend))
	}

	var params chatParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, "params must be an object")
		}
	}
	if params.UserID == "" {
		return errorResponse(req.ID, CodeInvalidParams, "missing required parameter \"user_id\"")
	}

	resp, err := s.chat.Send(ctx, params.UserID, contractx.ChatRequest{
		ConversationID: params.ConversationID,
		Message:        params.Message,
	})
	if err != nil {
		return errorResponse(req.ID, codeForError(err), err.Error())
	}

	outcomes := make([]map[string]any, len(resp.ToolCalls))
	for i, call := range resp.ToolCalls {
		outcome := map[string]any{
			"tool_name":  call.Tool,
			"parameters": call.Params,
		}
		if call.Error != "" {
			outcome["error"] = call.Error
		} else {
			outcome["result"] = call.Result
		}
		outcomes[i] = outcome
	}

	return resultResponse(req.ID, map[string]any{
		"conversation_id": resp.ConversationID,
		"response":        resp.Reply,
		"tool_calls":      outcomes,
	})
}

// codeForError maps domain sentinels onto wire codes. Caller mistakes are
// invalid_params, an unknown tool is method_not_found, everything else is
// internal.
func codeForError(err error) int {
	switch {
	case errors.Is(err, contractx.ErrUnknownTool):
		return CodeMethodNotFound
	case errors.Is(err, contractx.ErrValidation),
		errors.Is(err, contractx.ErrUserNotFound),
		errors.Is(err, contractx.ErrTaskNotFound),
		errors.Is(err, contractx.ErrConversationNotFound):
		return CodeInvalidParams
	default:
		return CodeInternalError
	}
}

func marshalResponse(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Result maps are built from JSON-safe values, so this only fires
		// on a programming error.
		fallback := errorResponse(resp.ID, CodeInternalError, "failed to encode response")
		data, _ = json.Marshal(fallback)
	}
	return data
}
