package chatnode

import (
	"fmt"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Conversation == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	return GraphOutput{
		ConversationID: in.Conversation.ID,
		Reply:          in.Reply,
		ToolCalls:      in.Outcomes,
	}, nil
}
