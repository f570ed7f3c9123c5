package chain

import (
	"fmt"
	"sort"
	"strconv"
)

// Request is a high-level operation request the compiler turns into an
// ordered action chain. It is treated as immutable.
type Request struct {
	Operation  string
	Targets    []string
	Parameters map[string]interface{}
	OutputPath string
}

// UnknownOperationError reports an operation kind the catalog does not know.
type UnknownOperationError struct {
	Kind string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation kind: %s", e.Kind)
}

// ArgumentError reports a request argument that fails the operation's
// requirements (wrong target count, missing or mistyped parameter).
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Reason)
}

// Operation describes one built-in operation kind of the external tool's
// action vocabulary.
type Operation struct {
	Kind        string
	Description string
	// MinTargets is the minimum number of object identifiers the operation
	// needs. Zero with SelectAllFallback means the operation applies to the
	// whole document when no targets are given.
	MinTargets int
	// SelectAllFallback selects every object when no targets are supplied.
	SelectAllFallback bool
	// TargetIndependent operations act on the document itself and emit no
	// selection step at all.
	TargetIndependent bool
	// Parameters names the parameters the operation reads, for schema
	// exposure on the agent surface.
	Parameters []string

	modify func(req Request) ([][]string, error)
}

// RequiresDiscovery reports whether dispatching this operation requires
// object identifiers obtained from a prior discovery call.
func (o Operation) RequiresDiscovery() bool {
	return o.MinTargets > 0
}

func singleAction(action string) func(Request) ([][]string, error) {
	return func(Request) ([][]string, error) {
		return [][]string{{action}}, nil
	}
}

var catalog = map[string]Operation{
	"union": {
		Kind:        "union",
		Description: "Boolean union of the selected paths",
		MinTargets:  2,
		modify:      singleAction("path-union"),
	},
	"difference": {
		Kind:        "difference",
		Description: "Subtract the top path from the bottom path",
		MinTargets:  2,
		modify:      singleAction("path-difference"),
	},
	"intersection": {
		Kind:        "intersection",
		Description: "Keep only the overlap of the selected paths",
		MinTargets:  2,
		modify:      singleAction("path-intersection"),
	},
	"exclusion": {
		Kind:        "exclusion",
		Description: "Keep everything but the overlap of the selected paths",
		MinTargets:  2,
		modify:      singleAction("path-exclusion"),
	},
	"division": {
		Kind:        "division",
		Description: "Cut the bottom path along the top path",
		MinTargets:  2,
		modify:      singleAction("path-division"),
	},
	"cut": {
		Kind:        "cut",
		Description: "Cut the bottom path's stroke along the top path",
		MinTargets:  2,
		modify:      singleAction("path-cut"),
	},
	"combine": {
		Kind:              "combine",
		Description:       "Combine the selected paths into one compound path",
		MinTargets:        1,
		SelectAllFallback: true,
		modify:            singleAction("path-combine"),
	},
	"break-apart": {
		Kind:              "break-apart",
		Description:       "Break a compound path into its subpaths",
		MinTargets:        1,
		SelectAllFallback: true,
		modify:            singleAction("path-break-apart"),
	},
	"object-to-path": {
		Kind:              "object-to-path",
		Description:       "Convert shapes and text to literal paths",
		SelectAllFallback: true,
		modify:            singleAction("object-to-path"),
	},
	"inset": {
		Kind:              "inset",
		Description:       "Shrink the selected paths inward",
		MinTargets:        1,
		SelectAllFallback: true,
		Parameters:        []string{"offset"},
		modify: func(req Request) ([][]string, error) {
			offset, err := floatParam(req.Parameters, "offset")
			if err != nil {
				return nil, err
			}
			return [][]string{{"path-inset", "offset:" + formatFloat(offset)}}, nil
		},
	},
	"outset": {
		Kind:              "outset",
		Description:       "Grow the selected paths outward",
		MinTargets:        1,
		SelectAllFallback: true,
		Parameters:        []string{"offset"},
		modify: func(req Request) ([][]string, error) {
			offset, err := floatParam(req.Parameters, "offset")
			if err != nil {
				return nil, err
			}
			return [][]string{{"path-outset", "offset:" + formatFloat(offset)}}, nil
		},
	},
	"translate": {
		Kind:        "translate",
		Description: "Move the selected objects by dx/dy",
		MinTargets:  1,
		Parameters:  []string{"dx", "dy"},
		modify: func(req Request) ([][]string, error) {
			dx, err := floatParam(req.Parameters, "dx")
			if err != nil {
				return nil, err
			}
			dy, err := floatParam(req.Parameters, "dy")
			if err != nil {
				return nil, err
			}
			return [][]string{{fmt.Sprintf("transform-translate:%s,%s", formatFloat(dx), formatFloat(dy))}}, nil
		},
	},
	"rotate": {
		Kind:        "rotate",
		Description: "Rotate the selected objects by an angle in degrees",
		MinTargets:  1,
		Parameters:  []string{"angle"},
		modify: func(req Request) ([][]string, error) {
			angle, err := floatParam(req.Parameters, "angle")
			if err != nil {
				return nil, err
			}
			return [][]string{{"transform-rotate:" + formatFloat(angle)}}, nil
		},
	},
	"scale": {
		Kind:        "scale",
		Description: "Scale the selected objects by a factor",
		MinTargets:  1,
		Parameters:  []string{"factor"},
		modify: func(req Request) ([][]string, error) {
			factor, err := floatParam(req.Parameters, "factor")
			if err != nil {
				return nil, err
			}
			if factor <= 0 {
				return nil, &ArgumentError{Name: "factor", Reason: "must be positive"}
			}
			return [][]string{{"transform-scale:" + formatFloat(factor)}}, nil
		},
	},
	"document-cleanup": {
		Kind:              "document-cleanup",
		Description:       "Vacuum unused definitions and tidy the document",
		TargetIndependent: true,
		modify: func(Request) ([][]string, error) {
			return [][]string{{"file-vacuum-defs"}, {"file-cleanup"}}, nil
		},
	},
}

// Lookup returns the catalog entry for an operation kind.
func Lookup(kind string) (Operation, bool) {
	op, ok := catalog[kind]
	return op, ok
}

// Operations returns all built-in operations ordered by kind.
func Operations() []Operation {
	out := make([]Operation, 0, len(catalog))
	for _, op := range catalog {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Compile turns a request into a complete chain ending in the mandatory
// persistence step. The sentinel is the completion marker the tool is asked
// to emit; the normalizer requires it before declaring success.
func Compile(req Request, sentinel string) (Chain, error) {
	op, ok := catalog[req.Operation]
	if !ok {
		return Chain{}, &UnknownOperationError{Kind: req.Operation}
	}

	if len(req.Targets) < op.MinTargets && !(len(req.Targets) == 0 && op.SelectAllFallback) {
		return Chain{}, &ArgumentError{
			Name:   "targets",
			Reason: fmt.Sprintf("operation %s needs at least %d target identifiers, got %d", op.Kind, op.MinTargets, len(req.Targets)),
		}
	}

	var b *Builder
	switch {
	case op.TargetIndependent:
		b = NewTargetIndependentBuilder()
	case len(req.Targets) == 0:
		b = NewBuilder().SelectAll()
	default:
		b = NewBuilder().Select(req.Targets...)
	}

	steps, err := op.modify(req)
	if err != nil {
		return Chain{}, err
	}
	for _, actions := range steps {
		b = b.Modify(actions...)
	}

	return b.Persist(req.OutputPath, sentinel)
}

func floatParam(params map[string]interface{}, name string) (float64, error) {
	value, ok := params[name]
	if !ok {
		return 0, &ArgumentError{Name: name, Reason: "required parameter is missing"}
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, &ArgumentError{Name: name, Reason: fmt.Sprintf("expected a number, got %T", value)}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
