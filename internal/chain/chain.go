package chain

import (
	"fmt"
	"regexp"
	"strings"
)

// StepKind classifies the role of a step inside the protocol's mandatory
// select → modify → persist sequence.
type StepKind int

const (
	StepSelecting StepKind = iota
	StepModifying
	StepPersisting
)

func (k StepKind) String() string {
	switch k {
	case StepSelecting:
		return "selecting"
	case StepModifying:
		return "modifying"
	case StepPersisting:
		return "persisting"
	default:
		return "unknown"
	}
}

// Step is one atomic group of action tokens.
type Step struct {
	Kind    StepKind
	Actions []string
}

// Chain is a complete, executable action chain. It can only be constructed
// through Builder.Persist, which guarantees the structural invariant: at
// least one step, exactly one persistence step, and the persistence step
// last. A chain missing its terminal persist silently discards all effect in
// the external tool, so such a chain is unrepresentable here.
type Chain struct {
	steps []Step
}

// Steps returns the ordered step list.
func (c Chain) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// ActionString renders the chain as the tool's semicolon-delimited action
// list for a single batch invocation.
func (c Chain) ActionString() string {
	var tokens []string
	for _, step := range c.steps {
		tokens = append(tokens, step.Actions...)
	}
	return strings.Join(tokens, ";")
}

// Args returns the full command-line arguments realizing this chain against
// the given input document.
func (c Chain) Args(inputPath string) []string {
	return []string{"--batch-process", "--actions=" + c.ActionString(), inputPath}
}

// objectIDPattern is the addressing format for object identifiers in the
// document. Anything else is rejected before it can reach the external
// process, catching invented or mangled identifiers early.
var objectIDPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*$`)

// ValidIdentifier reports whether id matches the expected addressing format.
func ValidIdentifier(id string) bool {
	return objectIDPattern.MatchString(id)
}

// InvalidTargetError reports a target identifier that does not match the
// expected addressing format.
type InvalidTargetError struct {
	ID string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("target identifier %q does not match the document addressing format", e.ID)
}

// BuildError reports an attempt to assemble a chain that violates the
// protocol's ordering rules.
type BuildError struct {
	Reason string
}

func (e *BuildError) Error() string {
	return "invalid action chain: " + e.Reason
}

// Builder assembles a chain step by step. It is single-use: Persist finishes
// the chain and returns it. Errors are latched so call sites can chain
// builder calls and check once at Persist.
type Builder struct {
	steps             []Step
	selected          bool
	targetIndependent bool
	err               error
}

// NewBuilder starts an empty chain for an operation that addresses objects.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewTargetIndependentBuilder starts a chain for a whole-document operation
// that needs no object selection.
func NewTargetIndependentBuilder() *Builder {
	return &Builder{targetIndependent: true}
}

// Select emits one selection step per identifier. Identifiers are validated
// against the addressing format.
func (b *Builder) Select(ids ...string) *Builder {
	if b.err != nil {
		return b
	}
	if len(ids) == 0 {
		b.err = &BuildError{Reason: "selection without target identifiers"}
		return b
	}
	for _, id := range ids {
		if !ValidIdentifier(id) {
			b.err = &InvalidTargetError{ID: id}
			return b
		}
		b.steps = append(b.steps, Step{Kind: StepSelecting, Actions: []string{"select-by-id:" + id}})
	}
	b.selected = true
	return b
}

// SelectAll emits a whole-document selection step.
func (b *Builder) SelectAll() *Builder {
	if b.err != nil {
		return b
	}
	b.steps = append(b.steps, Step{Kind: StepSelecting, Actions: []string{"select-all"}})
	b.selected = true
	return b
}

// Modify emits one modification step with the given action tokens. A
// modification without a prior selection is only legal for target-independent
// operations.
func (b *Builder) Modify(actions ...string) *Builder {
	if b.err != nil {
		return b
	}
	if !b.selected && !b.targetIndependent {
		b.err = &BuildError{Reason: "modification before selection; the tool would silently no-op"}
		return b
	}
	if len(actions) == 0 {
		b.err = &BuildError{Reason: "modification step without actions"}
		return b
	}
	b.steps = append(b.steps, Step{Kind: StepModifying, Actions: actions})
	return b
}

// Persist finishes the chain with the mandatory terminal persistence step:
// the export instruction plus the sentinel emission the normalizer checks
// for. Only Persist can produce a Chain value.
func (b *Builder) Persist(outputPath, sentinel string) (Chain, error) {
	if b.err != nil {
		return Chain{}, b.err
	}
	if len(b.steps) == 0 {
		return Chain{}, &BuildError{Reason: "chain has no steps before persistence"}
	}
	if !b.targetIndependent && !b.selected {
		return Chain{}, &BuildError{Reason: "identifier-requiring chain persisted without selection"}
	}
	if outputPath == "" {
		return Chain{}, &BuildError{Reason: "persistence step requires an output path"}
	}
	actions := []string{"export-filename:" + outputPath, "export-do"}
	if sentinel != "" {
		actions = append(actions, "message:"+sentinel)
	}
	steps := append(b.steps, Step{Kind: StepPersisting, Actions: actions})
	return Chain{steps: steps}, nil
}
