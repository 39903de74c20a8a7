package chatnode

import (
	"context"
	"fmt"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

func PersistReply(ctx context.Context, in *GraphState, store contractx.ConversationStore) (*GraphState, error) {
	if _, err := store.AppendMessage(ctx, in.Conversation.ID, in.OwnerID, contractx.RoleAssistant, in.Reply); err != nil {
		return nil, fmt.Errorf("persist assistant reply: %w", err)
	}
	return in, nil
}
