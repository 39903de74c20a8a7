package chatnode

import (
	"context"
	"fmt"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// LoadHistory fetches the ordered message history. A failure here is fatal
// to the turn; the orchestrator never fabricates a partial history.
func LoadHistory(ctx context.Context, in *GraphState, store contractx.ConversationStore) (*GraphState, error) {
	history, err := store.ListMessages(ctx, in.Conversation.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	in.History = history
	return in, nil
}
