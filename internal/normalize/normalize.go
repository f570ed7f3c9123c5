package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"easel/internal/runner"
)

// Classification identifies why an operation failed. An empty classification
// means success.
type Classification string

const (
	ClassNone                Classification = ""
	ClassExecutableNotFound  Classification = "executable_not_found"
	ClassSpawnFailed         Classification = "spawn_failed"
	ClassTimedOut            Classification = "timed_out"
	ClassNonZeroExit         Classification = "non_zero_exit"
	ClassSilentFailure       Classification = "silent_failure"
	ClassInvalidParameter    Classification = "invalid_parameter"
	ClassMissingPrerequisite Classification = "missing_prerequisite"
	ClassMalformedManifest   Classification = "malformed_manifest"
	ClassOverloaded          Classification = "overloaded"
)

// Result is the structured outcome returned to the calling agent. It never
// carries raw tool noise; stderr chatter is filtered before classification.
type Result struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	Classification Classification         `json:"classification,omitempty"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	Duration       string                 `json:"duration,omitempty"`
}

// Failure builds a failed Result for errors raised before or outside process
// execution (invalid parameters, missing prerequisites, overload).
func Failure(class Classification, format string, args ...interface{}) Result {
	return Result{
		Success:        false,
		Classification: class,
		Message:        fmt.Sprintf(format, args...),
	}
}

// defaultNoisePatterns match stderr lines the external tool emits in headless
// mode that carry no signal: toolkit warnings, font chatter, dbus probing.
var defaultNoisePatterns = []string{
	"Gtk-WARNING",
	"Gtk-Message",
	"Gtk-CRITICAL",
	"GLib-GObject",
	"Pango-WARNING",
	"dbind-WARNING",
	"Fontconfig warning",
	"Fontconfig error",
	"Unable to init server",
	"Failed to get connection",
	"ALSA lib",
}

// Normalizer converts raw process results into structured agent results.
type Normalizer struct {
	noisePatterns []string
}

// NewNormalizer creates a normalizer. Extra patterns from configuration are
// matched in addition to the built-in noise list.
func NewNormalizer(extraNoise ...string) *Normalizer {
	patterns := make([]string, 0, len(defaultNoisePatterns)+len(extraNoise))
	patterns = append(patterns, defaultNoisePatterns...)
	patterns = append(patterns, extraNoise...)
	return &Normalizer{noisePatterns: patterns}
}

// FilterNoise removes known noise lines from tool output, keeping only lines
// that may carry genuine error information.
func (n *Normalizer) FilterNoise(output string) string {
	if output == "" {
		return ""
	}
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if n.isNoise(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n")
}

func (n *Normalizer) isNoise(line string) bool {
	for _, pattern := range n.noisePatterns {
		if strings.Contains(line, pattern) {
			return true
		}
	}
	return false
}

// Normalize classifies a finished process. Success requires all three of:
// exit code zero, no timeout, and the expected sentinel present in stdout.
// A zero exit without the sentinel is a silent failure: the tool accepted the
// command but produced no observable effect. This is the protocol's known
// defect and the reason the exit code alone is never trusted.
//
// An empty expectedSentinel disables the sentinel check; it is used for query
// operations whose payload is the output itself.
func (n *Normalizer) Normalize(res runner.ProcessResult, expectedSentinel string) Result {
	result := Result{Duration: res.Duration.String()}

	cleanStderr := n.FilterNoise(res.Stderr)

	if res.TimedOut {
		result.Classification = ClassTimedOut
		result.Message = fmt.Sprintf("operation timed out after %s; process terminated", res.Duration)
		if cleanStderr != "" {
			result.Payload = map[string]interface{}{"stderr": excerpt(cleanStderr)}
		}
		return result
	}

	if res.ExitCode != 0 {
		result.Classification = ClassNonZeroExit
		result.Message = fmt.Sprintf("tool exited with code %d", res.ExitCode)
		if cleanStderr != "" {
			result.Message = fmt.Sprintf("tool exited with code %d: %s", res.ExitCode, excerpt(cleanStderr))
		}
		return result
	}

	if expectedSentinel != "" && !strings.Contains(res.Stdout, expectedSentinel) {
		result.Classification = ClassSilentFailure
		result.Message = "tool exited cleanly but the completion marker is missing; the operation had no observable effect"
		if cleanStderr != "" {
			result.Payload = map[string]interface{}{"stderr": excerpt(cleanStderr)}
		}
		return result
	}

	result.Success = true
	result.Message = "operation completed"
	if payload := ExtractPayload(res.Stdout); len(payload) > 0 {
		result.Payload = payload
	}
	return result
}

// excerpt bounds stderr carried in results so a chatty tool cannot flood the
// agent transport.
func excerpt(s string) string {
	const maxLen = 2000
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ExtractPayload pulls structured key/value excerpts from stdout. The tool is
// asked to report values as pipe-delimited pairs on a single line, e.g.
// "WIDTH:1920|HEIGHT:1080". Numeric values are converted.
func ExtractPayload(stdout string) map[string]interface{} {
	payload := make(map[string]interface{})
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ":") || !strings.Contains(line, "|") {
			continue
		}
		for _, pair := range strings.Split(line, "|") {
			key, value, ok := strings.Cut(pair, ":")
			if !ok || key == "" {
				continue
			}
			payload[strings.ToLower(strings.TrimSpace(key))] = convertValue(strings.TrimSpace(value))
		}
	}
	if len(payload) == 0 {
		return nil
	}
	return payload
}

func convertValue(value string) interface{} {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// Object is one addressable object reported by the tool's whole-document
// query output.
type Object struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ParseObjectList parses the tool's --query-all output, one object per line
// in "id,x,y,width,height" form. Lines that do not fit the shape are skipped;
// the tool mixes its banner output into the same stream.
func ParseObjectList(stdout string) []Object {
	var objects []Object
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		parts := strings.Split(line, ",")
		if len(parts) < 5 {
			continue
		}
		x, errX := strconv.ParseFloat(parts[1], 64)
		y, errY := strconv.ParseFloat(parts[2], 64)
		w, errW := strconv.ParseFloat(parts[3], 64)
		h, errH := strconv.ParseFloat(parts[4], 64)
		if errX != nil || errY != nil || errW != nil || errH != nil {
			continue
		}
		objects = append(objects, Object{ID: parts[0], X: x, Y: y, Width: w, Height: h})
	}
	return objects
}
