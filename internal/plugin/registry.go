package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"easel/internal/normalize"
	"easel/internal/runner"
	"easel/pkg/logging"
)

// NotFoundError reports a lookup for a plugin identifier the catalog does not
// contain.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plugin not found: %s", e.ID)
}

// ScanError wraps a per-file failure during a catalog scan. A single bad
// manifest never aborts the scan; its error is collected instead.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// ExecConfig carries what the registry needs to invoke the external tool for
// plugin execution.
type ExecConfig struct {
	Executable string
	Timeout    time.Duration
}

// catalog is one immutable snapshot of the plugin set. Scans build a fresh
// catalog and swap it in atomically; readers holding the previous snapshot
// keep using it unchanged.
type catalog struct {
	byID    map[string]*Descriptor
	ordered []*Descriptor
}

var emptyCatalog = &catalog{byID: map[string]*Descriptor{}}

// Registry owns the plugin descriptor catalog. It is safe for concurrent use:
// lookups and listings never block on an in-flight scan.
type Registry struct {
	dirs    []string
	execCfg ExecConfig
	run     runner.Runner
	norm    *normalize.Normalizer

	snapshot atomic.Pointer[catalog]
}

// NewRegistry creates a registry over the given manifest directories. The
// catalog starts empty; call Scan to populate it.
func NewRegistry(dirs []string, execCfg ExecConfig, run runner.Runner, norm *normalize.Normalizer) *Registry {
	r := &Registry{
		dirs:    dirs,
		execCfg: execCfg,
		run:     run,
		norm:    norm,
	}
	r.snapshot.Store(emptyCatalog)
	return r
}

// Scan enumerates manifest files across all configured directories, parses
// each, and atomically replaces the catalog. Per-file parse errors are
// collected and returned alongside the count of successfully loaded plugins.
// Scanning is idempotent and may run at any time.
func (r *Registry) Scan() (int, []error) {
	byID := make(map[string]*Descriptor)
	var errs []error

	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				logging.Debug("Registry", "Manifest directory not found, skipping: %s", dir)
				continue
			}
			errs = append(errs, &ScanError{Path: dir, Err: err})
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".inx") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				errs = append(errs, &ScanError{Path: path, Err: err})
				continue
			}
			desc, err := Parse(data)
			if err != nil {
				errs = append(errs, &ScanError{Path: path, Err: err})
				continue
			}
			desc.ManifestPath = path
			if existing, dup := byID[desc.ID]; dup {
				logging.Warn("Registry", "Duplicate plugin id %s (%s shadows %s)", desc.ID, path, existing.ManifestPath)
			}
			byID[desc.ID] = desc
		}
	}

	ordered := make([]*Descriptor, 0, len(byID))
	for _, desc := range byID {
		ordered = append(ordered, desc)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	r.snapshot.Store(&catalog{byID: byID, ordered: ordered})
	logging.Info("Registry", "Catalog replaced: %d plugins, %d manifest errors", len(ordered), len(errs))
	return len(ordered), errs
}

// Lookup returns the descriptor for the given identifier.
func (r *Registry) Lookup(id string) (*Descriptor, error) {
	desc, ok := r.snapshot.Load().byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return desc, nil
}

// List returns all descriptors ordered by identifier, ascending. A non-empty
// category restricts the listing.
func (r *Registry) List(category string) []*Descriptor {
	ordered := r.snapshot.Load().ordered
	if category == "" {
		out := make([]*Descriptor, len(ordered))
		copy(out, ordered)
		return out
	}
	var out []*Descriptor
	for _, desc := range ordered {
		if desc.Category == category {
			out = append(out, desc)
		}
	}
	return out
}

// Execute validates the supplied parameters against the plugin's declared
// schema and invokes the external tool with the plugin's identifier and the
// encoded parameter flags. Parameter violations fail before any process is
// spawned. The caller is responsible for concurrency slots.
func (r *Registry) Execute(ctx context.Context, id string, params map[string]interface{}, inputPath, outputPath string) (normalize.Result, error) {
	desc, err := r.Lookup(id)
	if err != nil {
		return normalize.Result{}, err
	}

	flags, err := desc.CommandArgs(params)
	if err != nil {
		return normalize.Result{}, err
	}

	var args []string
	if inputPath != "" {
		args = append(args, inputPath)
	}
	args = append(args, "--extension", desc.ID)
	args = append(args, flags...)
	if outputPath != "" {
		args = append(args, "--export-filename", outputPath, "--export-do")
	}

	logging.Debug("Registry", "Executing plugin %s (%s)", desc.ID, desc.Name)

	res, err := r.run.Run(ctx, runner.Spec{
		Command: r.execCfg.Executable,
		Args:    args,
		Timeout: r.execCfg.Timeout,
	})
	if err != nil {
		return normalize.Result{}, err
	}

	// Plugin invocations have no action chain to carry a sentinel through,
	// so the exit code is the only completion signal available here.
	result := r.norm.Normalize(res, "")
	if result.Success {
		result.Message = fmt.Sprintf("plugin %s completed", desc.ID)
	}
	return result, nil
}
