package chatnode

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// ExecuteToolCalls dispatches the planned calls sequentially, in order,
// with the authenticated owner injected into every argument set. Owner
// injection happens here and nowhere else: neither the engine nor the
// extractor is trusted to name the caller. One failed call is recorded and
// does not stop the rest.
func ExecuteToolCalls(ctx context.Context, in *GraphState, dispatcher contractx.ToolDispatcher) (*GraphState, error) {
	if len(in.PlannedCalls) == 0 {
		return in, nil
	}

	in.Outcomes = make([]contractx.ToolOutcome, 0, len(in.PlannedCalls))
	for _, call := range in.PlannedCalls {
		args := make(map[string]any, len(call.Params)+1)
		for k, v := range call.Params {
			args[k] = v
		}
		args["user_id"] = in.OwnerID

		outcome := contractx.ToolOutcome{Tool: call.Tool, Params: args}
		result, err := dispatcher.Invoke(ctx, call.Tool, args)
		if err != nil {
			log.Warn().Str("tool", call.Tool).Err(err).Msg("tool call failed mid-turn")
			outcome.Error = err.Error()
		} else {
			outcome.Result = result
		}
		in.Outcomes = append(in.Outcomes, outcome)
	}
	return in, nil
}
