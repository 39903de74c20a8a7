package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// Invoker is the single dispatch path for tool execution: the protocol
// server and the conversation orchestrator both go through it, so schema
// validation and error mapping behave identically on either route.
type Invoker struct {
	reg *Registry
}

var _ contractx.ToolDispatcher = (*Invoker)(nil)

func NewInvoker(reg *Registry) *Invoker {
	return &Invoker{reg: reg}
}

func (inv *Invoker) Registry() *Registry {
	return inv.reg
}

func (inv *Invoker) Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	def, ok := inv.reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", contractx.ErrUnknownTool, name)
	}

	if err := ValidateArgs(args, def.InputSchema); err != nil {
		log.Warn().Str("tool", name).Err(err).Msg("tool arguments rejected")
		return nil, err
	}

	start := time.Now()
	out, err := def.Handler(ctx, args)
	if err != nil {
		log.Warn().Str("tool", name).Err(err).Msg("tool call failed")
		return nil, err
	}

	if def.OutputSchema != nil {
		if err := ValidateArgs(out, def.OutputSchema); err != nil {
			// An output that violates its own schema is a handler bug,
			// not a caller mistake.
			return nil, fmt.Errorf("tool %q returned invalid output: %v", name, err)
		}
	}

	log.Debug().Str("tool", name).Dur("duration", time.Since(start)).Msg("tool call succeeded")
	return out, nil
}
