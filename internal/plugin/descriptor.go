package plugin

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// ParamType is the declared type of a plugin parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeFloat   ParamType = "float"
	TypeBoolean ParamType = "boolean"
	TypeEnum    ParamType = "enum"
)

// Parameter is one declared parameter of a plugin, with its type, default
// and optional bounds or allowed values.
type Parameter struct {
	Name        string      `json:"name"`
	Type        ParamType   `json:"type"`
	Default     interface{} `json:"default,omitempty"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Allowed     []string    `json:"allowed,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Descriptor is the parsed representation of one plugin manifest. Descriptors
// are created at scan time and replaced wholesale on re-scan; they are never
// mutated afterwards.
type Descriptor struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Command     string      `json:"command"`
	Interpreter string      `json:"interpreter,omitempty"`
	Parameters  []Parameter `json:"parameters"`

	// ManifestPath is the backing file; set by the registry, empty when the
	// descriptor was parsed directly from bytes.
	ManifestPath string `json:"-"`
}

// ParseError reports a structurally invalid manifest, naming the offending
// field so a manifest author can fix it without guessing.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed manifest: field %q: %s", e.Field, e.Reason)
}

// inx* types mirror the manifest XML shape. The manifest format is the
// external tool's extension descriptor: a top-level id and name, a flat param
// list, a menu placement used as category, and a script invocation block.
type inxManifest struct {
	XMLName xml.Name   `xml:"inkscape-extension"`
	ID      string     `xml:"id"`
	Name    string     `xml:"name"`
	Params  []inxParam `xml:"param"`
	Effect  struct {
		Menu struct {
			Submenu struct {
				Name string `xml:"name,attr"`
			} `xml:"submenu"`
		} `xml:"effects-menu"`
	} `xml:"effect"`
	Script struct {
		Command struct {
			Interpreter string `xml:"interpreter,attr"`
			Value       string `xml:",chardata"`
		} `xml:"command"`
	} `xml:"script"`
}

type inxParam struct {
	Name    string `xml:"name,attr"`
	Type    string `xml:"type,attr"`
	Min     string `xml:"min,attr"`
	Max     string `xml:"max,attr"`
	GuiText string `xml:"gui-text,attr"`
	Default string `xml:",chardata"`
	Options []struct {
		Value string `xml:"value,attr"`
	} `xml:"option"`
}

// Parse reads one manifest document into a typed Descriptor. It is a pure
// function: no file access, no registry state.
func Parse(manifest []byte) (*Descriptor, error) {
	var raw inxManifest
	if err := xml.Unmarshal(manifest, &raw); err != nil {
		return nil, &ParseError{Field: "document", Reason: fmt.Sprintf("not a valid manifest: %v", err)}
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return nil, &ParseError{Field: "id", Reason: "required identifier is missing or empty"}
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, &ParseError{Field: "name", Reason: "required display name is missing or empty"}
	}
	command := strings.TrimSpace(raw.Script.Command.Value)
	if command == "" {
		return nil, &ParseError{Field: "script.command", Reason: "invocation command is missing"}
	}

	desc := &Descriptor{
		ID:          id,
		Name:        name,
		Category:    categoryFromMenu(raw.Effect.Menu.Submenu.Name),
		Command:     command,
		Interpreter: strings.TrimSpace(raw.Script.Command.Interpreter),
	}

	for _, p := range raw.Params {
		param, err := parseParam(p)
		if err != nil {
			return nil, err
		}
		desc.Parameters = append(desc.Parameters, param)
	}

	return desc, nil
}

func categoryFromMenu(submenu string) string {
	submenu = strings.TrimSpace(submenu)
	if submenu == "" {
		return "general"
	}
	return strings.ReplaceAll(strings.ToLower(submenu), " ", "_")
}

func parseParam(p inxParam) (Parameter, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Parameter{}, &ParseError{Field: "param.name", Reason: "parameter without a name"}
	}

	paramType, err := mapParamType(p.Type)
	if err != nil {
		return Parameter{}, &ParseError{Field: "param." + p.Name, Reason: err.Error()}
	}

	param := Parameter{
		Name:        p.Name,
		Type:        paramType,
		Description: p.GuiText,
	}

	if paramType == TypeEnum {
		for _, opt := range p.Options {
			if opt.Value != "" {
				param.Allowed = append(param.Allowed, opt.Value)
			}
		}
		if len(param.Allowed) == 0 {
			return Parameter{}, &ParseError{Field: "param." + p.Name, Reason: "enumeration parameter declares no options"}
		}
	}

	rawDefault := strings.TrimSpace(p.Default)
	if rawDefault != "" {
		def, err := convertDefault(paramType, rawDefault)
		if err != nil {
			return Parameter{}, &ParseError{Field: "param." + p.Name, Reason: err.Error()}
		}
		param.Default = def
	}

	if p.Min != "" {
		min, err := strconv.ParseFloat(p.Min, 64)
		if err != nil {
			return Parameter{}, &ParseError{Field: "param." + p.Name, Reason: fmt.Sprintf("invalid min bound %q", p.Min)}
		}
		param.Min = &min
	}
	if p.Max != "" {
		max, err := strconv.ParseFloat(p.Max, 64)
		if err != nil {
			return Parameter{}, &ParseError{Field: "param." + p.Name, Reason: fmt.Sprintf("invalid max bound %q", p.Max)}
		}
		param.Max = &max
	}

	return param, nil
}

// mapParamType translates the manifest's type vocabulary into the declared
// parameter types. Unknown types are rejected rather than passed through.
func mapParamType(t string) (ParamType, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "string", "": // manifests omit type for plain string params
		return TypeString, nil
	case "int":
		return TypeInteger, nil
	case "float":
		return TypeFloat, nil
	case "bool", "boolean":
		return TypeBoolean, nil
	case "enum", "optiongroup":
		return TypeEnum, nil
	default:
		return "", fmt.Errorf("unrecognized parameter type %q", t)
	}
}

func convertDefault(t ParamType, raw string) (interface{}, error) {
	switch t {
	case TypeInteger:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q is not an integer", raw)
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a float", raw)
		}
		return v, nil
	case TypeBoolean:
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return nil, fmt.Errorf("default %q is not a boolean", raw)
	default:
		return raw, nil
	}
}
