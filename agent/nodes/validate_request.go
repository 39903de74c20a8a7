package chatnode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// Both sentinels wrap ErrValidation: a blank owner or message is a caller
// mistake and must surface as invalid params on the wire.
var (
	ErrInvalidMessage = fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	ErrInvalidOwner   = fmt.Errorf("%w: owner id is empty", contractx.ErrValidation)
)

type GraphInput struct {
	OwnerID        string
	ConversationID *int64
	Message        string
}

type GraphOutput struct {
	ConversationID int64
	Reply          string
	ToolCalls      []contractx.ToolOutcome
}

// GraphState is the single value threaded through the chat turn. Nothing in
// it survives the request; every turn reconstructs what it needs from the
// store.
type GraphState struct {
	OwnerID               string
	RequestedConversation *int64
	Message               string
	Now                   time.Time

	Conversation *contractx.Conversation
	History      []contractx.Message

	Reply        string
	PlannedCalls []contractx.ToolCall
	Outcomes     []contractx.ToolOutcome
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		return nil, ErrInvalidOwner
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		OwnerID:               ownerID,
		RequestedConversation: in.ConversationID,
		Message:               message,
		Now:                   nowFn().UTC(),
	}, nil
}
