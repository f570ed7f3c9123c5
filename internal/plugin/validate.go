package plugin

import (
	"fmt"
	"strconv"
)

// InvalidParameterError reports a supplied parameter that violates the
// descriptor's declared schema. It is raised before any process is spawned.
type InvalidParameterError struct {
	Plugin string
	Name   string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q for plugin %s: %s", e.Name, e.Plugin, e.Reason)
}

// CommandArgs validates the supplied parameters against the descriptor's
// schema and encodes them as command-line flags in declared order. Missing
// parameters fall back to their defaults; parameters the descriptor does not
// declare, or values outside their declared type or bounds, fail fast.
func (d *Descriptor) CommandArgs(supplied map[string]interface{}) ([]string, error) {
	declared := make(map[string]bool, len(d.Parameters))
	for _, p := range d.Parameters {
		declared[p.Name] = true
	}
	for name := range supplied {
		if !declared[name] {
			return nil, &InvalidParameterError{Plugin: d.ID, Name: name, Reason: "not declared by the plugin manifest"}
		}
	}

	var args []string
	for _, p := range d.Parameters {
		value, ok := supplied[p.Name]
		if !ok {
			if p.Default == nil {
				continue
			}
			value = p.Default
		}
		encoded, err := p.encode(value)
		if err != nil {
			return nil, &InvalidParameterError{Plugin: d.ID, Name: p.Name, Reason: err.Error()}
		}
		args = append(args, "--"+p.Name, encoded)
	}
	return args, nil
}

// encode checks one value against the parameter's declared type and bounds
// and renders it for the command line.
func (p Parameter) encode(value interface{}) (string, error) {
	switch p.Type {
	case TypeInteger:
		n, ok := asInt(value)
		if !ok {
			return "", fmt.Errorf("expected integer, got %T", value)
		}
		if err := p.checkBounds(float64(n)); err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil

	case TypeFloat:
		f, ok := asFloat(value)
		if !ok {
			return "", fmt.Errorf("expected float, got %T", value)
		}
		if err := p.checkBounds(f); err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("expected boolean, got %T", value)
		}
		return strconv.FormatBool(b), nil

	case TypeEnum:
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("expected string, got %T", value)
		}
		for _, allowed := range p.Allowed {
			if s == allowed {
				return s, nil
			}
		}
		return "", fmt.Errorf("value %q is not in the allowed set %v", s, p.Allowed)

	default: // TypeString
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("expected string, got %T", value)
		}
		return s, nil
	}
}

func (p Parameter) checkBounds(v float64) error {
	if p.Min != nil && v < *p.Min {
		return fmt.Errorf("value %v is below the declared minimum %v", v, *p.Min)
	}
	if p.Max != nil && v > *p.Max {
		return fmt.Errorf("value %v is above the declared maximum %v", v, *p.Max)
	}
	return nil
}

// asInt accepts the integer shapes seen from YAML and JSON decoding.
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
