// Package formatting renders registry and discovery data for the CLI.
//
// Every renderer supports table, JSON and YAML output; the table format is
// the human default, the structured formats exist for scripting.
package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"easel/internal/chain"
	"easel/internal/dispatch"
	"easel/internal/normalize"
	"easel/internal/plugin"
	pkgstrings "easel/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how a renderer serializes its data.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", s)
}

// Formatter renders catalog and execution data to a writer in one of the
// supported formats.
type Formatter struct {
	out    io.Writer
	format OutputFormat
}

// NewFormatter creates a formatter writing to out.
func NewFormatter(out io.Writer, format OutputFormat) *Formatter {
	return &Formatter{out: out, format: format}
}

func (f *Formatter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	return t
}

// structured emits v as JSON or YAML depending on the configured format.
func (f *Formatter) structured(v interface{}) error {
	switch f.format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(f.out, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = f.out.Write(data)
		return err
	}
	return fmt.Errorf("no structured encoding for format %q", f.format)
}

// PluginList renders the descriptor catalog.
func (f *Formatter) PluginList(descriptors []*plugin.Descriptor) error {
	if f.format != FormatTable {
		return f.structured(descriptors)
	}
	if len(descriptors) == 0 {
		_, err := fmt.Fprintln(f.out, text.FgYellow.Sprint("No plugins found"))
		return err
	}

	t := f.newTable()
	t.AppendHeader(table.Row{"ID", "NAME", "CATEGORY", "PARAMETERS"})
	for _, d := range descriptors {
		names := make([]string, 0, len(d.Parameters))
		for _, p := range d.Parameters {
			names = append(names, p.Name)
		}
		t.AppendRow(table.Row{d.ID, d.Name, d.Category, strings.Join(names, ", ")})
	}
	t.Render()
	return nil
}

// PluginDetail renders one descriptor with its full parameter schema.
func (f *Formatter) PluginDetail(d *plugin.Descriptor) error {
	if f.format != FormatTable {
		return f.structured(d)
	}

	fmt.Fprintf(f.out, "%s %s\n", text.FgHiCyan.Sprint("Plugin:"), d.ID)
	fmt.Fprintf(f.out, "%s %s\n", text.FgHiCyan.Sprint("Name:"), d.Name)
	if d.Category != "" {
		fmt.Fprintf(f.out, "%s %s\n", text.FgHiCyan.Sprint("Category:"), d.Category)
	}

	if len(d.Parameters) == 0 {
		fmt.Fprintln(f.out, "No parameters")
		return nil
	}
	t := f.newTable()
	t.AppendHeader(table.Row{"PARAMETER", "TYPE", "DEFAULT", "CONSTRAINTS"})
	for _, p := range d.Parameters {
		t.AppendRow(table.Row{p.Name, string(p.Type), defaultString(p.Default), constraintString(p)})
	}
	t.Render()
	return nil
}

// ObjectList renders discovered objects with their bounding boxes.
func (f *Formatter) ObjectList(objects []normalize.Object) error {
	if f.format != FormatTable {
		return f.structured(objects)
	}
	if len(objects) == 0 {
		_, err := fmt.Fprintln(f.out, text.FgYellow.Sprint("No objects found"))
		return err
	}

	t := f.newTable()
	t.AppendHeader(table.Row{"ID", "X", "Y", "WIDTH", "HEIGHT"})
	for _, obj := range objects {
		t.AppendRow(table.Row{obj.ID, obj.X, obj.Y, obj.Width, obj.Height})
	}
	t.Render()
	return nil
}

// OperationList renders the built-in operation catalog.
func (f *Formatter) OperationList(ops []chain.Operation) error {
	if f.format != FormatTable {
		type entry struct {
			Kind        string   `json:"kind" yaml:"kind"`
			Description string   `json:"description" yaml:"description"`
			MinTargets  int      `json:"min_targets" yaml:"min_targets"`
			Parameters  []string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
		}
		entries := make([]entry, 0, len(ops))
		for _, op := range ops {
			entries = append(entries, entry{op.Kind, op.Description, op.MinTargets, op.Parameters})
		}
		return f.structured(entries)
	}

	t := f.newTable()
	t.AppendHeader(table.Row{"KIND", "MIN TARGETS", "PARAMETERS", "DESCRIPTION"})
	for _, op := range ops {
		desc := pkgstrings.Truncate(op.Description, pkgstrings.DefaultDescriptionMaxLen)
		t.AppendRow(table.Row{op.Kind, op.MinTargets, strings.Join(op.Parameters, ", "), desc})
	}
	t.Render()
	return nil
}

// History renders recent executions, newest first.
func (f *Formatter) History(records []dispatch.ExecutionRecord) error {
	if f.format != FormatTable {
		return f.structured(records)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(f.out, text.FgYellow.Sprint("No executions recorded"))
		return err
	}

	t := f.newTable()
	t.AppendHeader(table.Row{"ID", "OPERATION", "OUTCOME", "DURATION"})
	for _, rec := range records {
		outcome := text.FgGreen.Sprint("ok")
		if !rec.Success {
			outcome = text.FgRed.Sprint(string(rec.Classification))
		}
		t.AppendRow(table.Row{rec.ID, rec.Operation, outcome, rec.Duration.Round(time.Millisecond).String()})
	}
	t.Render()
	return nil
}

func defaultString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func constraintString(p plugin.Parameter) string {
	var parts []string
	if p.Min != nil {
		parts = append(parts, fmt.Sprintf("min %v", *p.Min))
	}
	if p.Max != nil {
		parts = append(parts, fmt.Sprintf("max %v", *p.Max))
	}
	if len(p.Allowed) > 0 {
		parts = append(parts, "one of "+strings.Join(p.Allowed, "/"))
	}
	return strings.Join(parts, ", ")
}
