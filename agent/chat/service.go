// Package chat runs the per-request conversation turn. The orchestrator
// holds no state between requests; everything a turn needs is rebuilt from
// the store.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/taskwire/taskwire/agent/contract"
	chatnode "github.com/taskwire/taskwire/agent/nodes"
)

var (
	ErrInvalidMessage = chatnode.ErrInvalidMessage
	ErrInvalidOwner   = chatnode.ErrInvalidOwner
)

type Orchestrator struct {
	store      contractx.Store
	dispatcher contractx.ToolDispatcher
	engine     contractx.Engine

	graphRunner compose.Runnable[chatnode.GraphInput, chatnode.GraphOutput]

	now func() time.Time
}

type Option func(*Orchestrator)

// WithEngine attaches an optional reasoning engine. Without one, every
// turn is served by the rule-based extractor.
func WithEngine(eng contractx.Engine) Option {
	return func(o *Orchestrator) { o.engine = eng }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(store contractx.Store, dispatcher contractx.ToolDispatcher, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if dispatcher == nil {
		return nil, errors.New("tool dispatcher is required")
	}

	o := &Orchestrator{
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Send runs one chat turn for the authenticated owner. The owner identity
// comes from the caller's auth layer; it is trusted here and injected into
// every dispatched tool call.
func (o *Orchestrator) Send(ctx context.Context, ownerID string, req contractx.ChatRequest) (contractx.ChatResponse, error) {
	out, err := o.graphRunner.Invoke(ctx, chatnode.GraphInput{
		OwnerID:        ownerID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		return contractx.ChatResponse{}, err
	}

	return contractx.ChatResponse{
		ConversationID: out.ConversationID,
		Reply:          out.Reply,
		ToolCalls:      out.ToolCalls,
	}, nil
}
