package chatnode

import (
	"context"
	"fmt"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// ResolveConversation verifies the owner exists, then loads the requested
// conversation or creates a fresh one. A conversation owned by someone else
// reports plain not-found so ids never leak across owners.
func ResolveConversation(ctx context.Context, in *GraphState, store contractx.Store) (*GraphState, error) {
	if _, err := store.GetUser(ctx, in.OwnerID); err != nil {
		return nil, err
	}

	if in.RequestedConversation == nil {
		conv, err := store.CreateConversation(ctx, in.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		in.Conversation = conv
		return in, nil
	}

	conv, err := store.GetConversation(ctx, *in.RequestedConversation)
	if err != nil {
		return nil, err
	}
	if conv.UserID != in.OwnerID {
		return nil, fmt.Errorf("%w: id=%d", contractx.ErrConversationNotFound, conv.ID)
	}
	in.Conversation = conv
	return in, nil
}
