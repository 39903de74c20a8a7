package chat

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	chatnode "github.com/taskwire/taskwire/agent/nodes"
)

func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[chatnode.GraphInput, chatnode.GraphOutput], error) {
	graph := compose.NewGraph[chatnode.GraphInput, chatnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in chatnode.GraphInput) (*chatnode.GraphState, error) {
			return chatnode.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_conversation",
		compose.InvokableLambda(func(ctx context.Context, in *chatnode.GraphState) (*chatnode.GraphState, error) {
			return chatnode.ResolveConversation(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_conversation: %w", err)
	}

	if err := graph.AddLambdaNode("load_history",
		compose.InvokableLambda(func(ctx context.Context, in *chatnode.GraphState) (*chatnode.GraphState, error) {
			return chatnode.LoadHistory(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_history: %w", err)
	}

	if err := graph.AddLambdaNode("persist_user_message",
		compose.InvokableLambda(func(ctx context.Context, in *chatnode.GraphState) (*chatnode.GraphState, error) {
			return chatnode.PersistUserMessage(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_user_message: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_reply",
		compose.InvokableLambda(func(ctx context.Context, in *chatnode.GraphState) (*chatnode.GraphState, error) {
			return chatnode.ResolveReply(ctx, in, o.engine)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_reply: %w", err)
	}

	if err := graph.AddLambdaNode("execute_tool_calls",
		compose.InvokableLambda(func(ctx context.Context, in *chatnode.GraphState) (*chatnode.GraphState, error) {
			return chatnode.ExecuteToolCalls(ctx, in, o.dispatcher)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tool_calls: %w", err)
	}

	if err := graph.AddLambdaNode("persist_reply",
		compose.InvokableLambda(func(ctx context.Context, in *chatnode.GraphState) (*chatnode.GraphState, error) {
			return chatnode.PersistReply(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_reply: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *chatnode.GraphState) (chatnode.GraphOutput, error) {
			return chatnode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "resolve_conversation"},
		{"resolve_conversation", "load_history"},
		{"load_history", "persist_user_message"},
		{"persist_user_message", "resolve_reply"},
		{"resolve_reply", "execute_tool_calls"},
		{"execute_tool_calls", "persist_reply"},
		{"persist_reply", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("chat.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile chat graph: %w", err)
	}
	return runner, nil
}
