package chatnode

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/taskwire/taskwire/agent/contract"
	"github.com/taskwire/taskwire/agent/intent"
)

type engineOutcome int

const (
	engineSuccess engineOutcome = iota
	engineUnavailable
	engineFailed
)

// ResolveReply obtains the reply and planned tool calls. The engine attempt
// resolves to exactly one of success, unavailable, or failed; anything but
// success routes the same message through the rule-based extractor, which
// cannot fail.
func ResolveReply(ctx context.Context, in *GraphState, eng contractx.Engine) (*GraphState, error) {
	outcome, result := runEngine(ctx, in, eng)
	if outcome == engineSuccess {
		in.Reply = result.Reply
		in.PlannedCalls = result.ToolCalls
		return in, nil
	}

	extracted := intent.Extract(in.Message)
	in.Reply = extracted.Reply
	in.PlannedCalls = extracted.ToolCalls
	return in, nil
}

func runEngine(ctx context.Context, in *GraphState, eng contractx.Engine) (engineOutcome, contractx.EngineResult) {
	if eng == nil {
		return engineUnavailable, contractx.EngineResult{}
	}

	result, err := eng.Run(ctx, in.Message, in.History)
	if err != nil {
		if errors.Is(err, contractx.ErrEngineUnavailable) {
			return engineUnavailable, contractx.EngineResult{}
		}
		log.Warn().Err(err).Msg("reasoning engine failed, using extractor")
		return engineFailed, contractx.EngineResult{}
	}
	return engineSuccess, result
}
