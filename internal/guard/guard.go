package guard

import "github.com/roach88/hotpath/internal/kernel"

// Guard is a boolean condition over an ExecutionContext.
//
// The union is closed: Predicate, Resource, State, And, Or, Not. Guards are
// immutable values; evaluation never mutates them, and the same guard may be
// evaluated concurrently against different contexts.
type Guard interface {
	isGuard()
}

// PredicateOp selects the comparison applied by a Predicate guard.
type PredicateOp uint8

const (
	// OpEqual passes when the observation equals Value.
	OpEqual PredicateOp = iota
	// OpNotEqual passes when the observation differs from Value.
	OpNotEqual
	// OpGreaterThan passes when the observation exceeds Value.
	OpGreaterThan
	// OpInRange passes when Value <= observation <= Upper.
	OpInRange
)

// String returns the snake_case operator name used in scenario files.
func (op PredicateOp) String() string {
	switch op {
	case OpEqual:
		return "equal"
	case OpNotEqual:
		return "not_equal"
	case OpGreaterThan:
		return "greater_than"
	case OpInRange:
		return "in_range"
	default:
		return "unknown"
	}
}

// PredicateOpFromString parses an operator name.
// Returns (0, false) for unknown names.
func PredicateOpFromString(s string) (PredicateOp, bool) {
	switch s {
	case "equal":
		return OpEqual, true
	case "not_equal":
		return OpNotEqual, true
	case "greater_than":
		return OpGreaterThan, true
	case "in_range":
		return OpInRange, true
	default:
		return 0, false
	}
}

// Predicate compares one observation against a constant.
// Index addresses the context's observation buffer; an out-of-range index
// evaluates to false.
type Predicate struct {
	Op    PredicateOp
	Index int
	Value float64
	Upper float64 // upper bound, OpInRange only
}

// Resource passes when the context's availability for Type is at least
// Threshold. An out-of-range resource type evaluates to false.
type Resource struct {
	Type      kernel.ResourceType
	Threshold float64
}

// State passes when every bit of Required is set in the context's state
// flags.
type State struct {
	Required kernel.StateFlags
}

// And passes when every operand passes. Evaluation is left to right and
// stops at the first false. And with no operands passes.
type And struct {
	Guards []Guard
}

// Or passes when any operand passes. Evaluation is left to right and stops
// at the first true. Or with no operands fails.
type Or struct {
	Guards []Guard
}

// Not negates its operand. Not of a nil operand evaluates to false, not
// true: fail-closed beats double negation on absent input.
type Not struct {
	Guard Guard
}

func (Predicate) isGuard() {}
func (Resource) isGuard()  {}
func (State) isGuard()     {}
func (And) isGuard()       {}
func (Or) isGuard()        {}
func (Not) isGuard()       {}

// probe is a test-only guard that reports whether the evaluator reached it.
// It is not part of the public union and cannot appear in scenario files.
type probe struct {
	fn func(*kernel.ExecutionContext) bool
}

func (probe) isGuard() {}

// Evaluate evaluates a guard against a context.
//
// Evaluation is total and deterministic: for any guard and context the
// result is a boolean, the same boolean every time, with no error path.
// A nil guard or nil context evaluates to false.
func Evaluate(g Guard, ctx *kernel.ExecutionContext) bool {
	if g == nil || ctx == nil {
		return false
	}

	switch gv := g.(type) {
	case Predicate:
		return evalPredicate(gv, ctx)
	case Resource:
		avail, ok := ctx.Resources.Available(gv.Type)
		if !ok {
			return false
		}
		return avail >= gv.Threshold
	case State:
		return ctx.StateFlags.Has(gv.Required)
	case And:
		for _, sub := range gv.Guards {
			if !Evaluate(sub, ctx) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range gv.Guards {
			if Evaluate(sub, ctx) {
				return true
			}
		}
		return false
	case Not:
		if gv.Guard == nil {
			return false
		}
		return !Evaluate(gv.Guard, ctx)
	case probe:
		return gv.fn(ctx)
	default:
		// Unknown guard kinds fail closed.
		return false
	}
}

func evalPredicate(p Predicate, ctx *kernel.ExecutionContext) bool {
	obs, ok := ctx.Observations.At(p.Index)
	if !ok {
		return false
	}

	switch p.Op {
	case OpEqual:
		return obs == p.Value
	case OpNotEqual:
		return obs != p.Value
	case OpGreaterThan:
		return obs > p.Value
	case OpInRange:
		return obs >= p.Value && obs <= p.Upper
	default:
		return false
	}
}

// Kind bits classify a guard for dispatch-table guard bitmaps.
const (
	KindPredicate uint32 = 1 << iota
	KindResource
	KindState
	KindCompound
)

// KindMask returns the bitmask of primitive kinds a guard can touch.
// Compound guards contribute KindCompound plus the union of their operands.
func KindMask(g Guard) uint32 {
	switch gv := g.(type) {
	case Predicate:
		return KindPredicate
	case Resource:
		return KindResource
	case State:
		return KindState
	case And:
		mask := KindCompound
		for _, sub := range gv.Guards {
			mask |= KindMask(sub)
		}
		return mask
	case Or:
		mask := KindCompound
		for _, sub := range gv.Guards {
			mask |= KindMask(sub)
		}
		return mask
	case Not:
		return KindCompound | KindMask(gv.Guard)
	default:
		return 0
	}
}
