package chatnode

import (
	"context"
	"fmt"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// PersistUserMessage stores the incoming message before any reply is
// generated, so a crash mid-turn can leave a dangling user message but
// never a lost one.
func PersistUserMessage(ctx context.Context, in *GraphState, store contractx.ConversationStore) (*GraphState, error) {
	if _, err := store.AppendMessage(ctx, in.Conversation.ID, in.OwnerID, contractx.RoleUser, in.Message); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}
	return in, nil
}
