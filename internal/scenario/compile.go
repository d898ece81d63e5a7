package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/hotpath/internal/guard"
	"github.com/roach88/hotpath/internal/kernel"
	"github.com/roach88/hotpath/internal/pattern"
	"github.com/roach88/hotpath/internal/sched"
)

// Built-in handler behaviors. Scenarios pick from a closed set so a
// scenario file is data, never code.
var handlers = map[string]sched.HandlerFunc{
	"noop": func(*kernel.ExecutionContext) (any, error) {
		return nil, nil
	},
	"echo": func(ctx *kernel.ExecutionContext) (any, error) {
		if ctx == nil {
			return "", nil
		}
		return ctx.TaskID, nil
	},
	"fail": func(*kernel.ExecutionContext) (any, error) {
		return nil, errors.New("scenario handler failed")
	},
	"panic": func(*kernel.ExecutionContext) (any, error) {
		panic("scenario handler panic")
	},
	// spin burns a little wall time so imbalance scenarios actually
	// exercise stealing.
	"spin": func(*kernel.ExecutionContext) (any, error) {
		deadline := time.Now().Add(20 * time.Microsecond)
		for time.Now().Before(deadline) {
		}
		return nil, nil
	},
}

// CompileTask turns a task spec into a runnable task.
func CompileTask(spec TaskSpec) (*sched.Task, error) {
	id, ok := pattern.FromString(spec.Pattern)
	if !ok {
		return nil, fmt.Errorf("task %q: unknown pattern %q", spec.ID, spec.Pattern)
	}

	name := spec.Handler
	if name == "" {
		name = "noop"
	}
	handler, ok := handlers[name]
	if !ok {
		return nil, fmt.Errorf("task %q: unknown handler %q", spec.ID, name)
	}

	t := &sched.Task{
		ID:      spec.ID,
		Pattern: id,
		Handler: handler,
	}

	if spec.Guard != nil {
		g, err := CompileGuard(*spec.Guard)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", spec.ID, err)
		}
		t.Guard = g
	}
	if spec.Context != nil {
		ctx, err := CompileContext(spec.ID, *spec.Context)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", spec.ID, err)
		}
		t.Context = ctx
	}
	return t, nil
}

// CompileGuard turns a guard spec tree into a guard value.
func CompileGuard(spec GuardSpec) (guard.Guard, error) {
	switch spec.Kind {
	case "predicate":
		op, ok := guard.PredicateOpFromString(spec.Op)
		if !ok {
			return nil, fmt.Errorf("unknown predicate op %q", spec.Op)
		}
		p := guard.Predicate{Op: op, Index: spec.Index, Value: spec.Value}
		if op == guard.OpInRange {
			if spec.Upper == nil {
				return nil, fmt.Errorf("in_range predicate requires upper")
			}
			p.Upper = *spec.Upper
		}
		return p, nil

	case "resource":
		rt, ok := kernel.ResourceTypeFromString(spec.Resource)
		if !ok {
			return nil, fmt.Errorf("unknown resource type %q", spec.Resource)
		}
		return guard.Resource{Type: rt, Threshold: spec.Threshold}, nil

	case "state":
		var required kernel.StateFlags
		for _, name := range spec.Flags {
			flag, ok := kernel.StateFlagFromString(name)
			if !ok {
				return nil, fmt.Errorf("unknown state flag %q", name)
			}
			required |= flag
		}
		return guard.State{Required: required}, nil

	case "and", "or":
		children := make([]guard.Guard, 0, len(spec.Guards))
		for i, child := range spec.Guards {
			g, err := CompileGuard(child)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", spec.Kind, i, err)
			}
			children = append(children, g)
		}
		if len(children) == 0 {
			return nil, fmt.Errorf("%s guard requires children", spec.Kind)
		}
		if spec.Kind == "and" {
			return guard.And{Guards: children}, nil
		}
		return guard.Or{Guards: children}, nil

	case "not":
		if spec.Guard == nil {
			return nil, fmt.Errorf("not guard requires a child")
		}
		inner, err := CompileGuard(*spec.Guard)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return guard.Not{Guard: inner}, nil

	default:
		return nil, fmt.Errorf("unknown guard kind %q", spec.Kind)
	}
}

// CompileContext turns a context spec into an execution context.
func CompileContext(taskID string, spec ContextSpec) (*kernel.ExecutionContext, error) {
	ctx := &kernel.ExecutionContext{
		TaskID:    taskID,
		Timestamp: time.Now(),
		Resources: kernel.NewResourceSnapshot(spec.CPU, spec.Memory, spec.IO, spec.QueueDepth),
	}

	if len(spec.Observations) > kernel.MaxObservations {
		return nil, fmt.Errorf("%d observations exceed capacity %d",
			len(spec.Observations), kernel.MaxObservations)
	}
	for _, v := range spec.Observations {
		ctx.Observations.Push(v)
	}

	for _, name := range spec.Flags {
		flag, ok := kernel.StateFlagFromString(name)
		if !ok {
			return nil, fmt.Errorf("unknown state flag %q", name)
		}
		ctx.StateFlags |= flag
	}
	return ctx, nil
}
