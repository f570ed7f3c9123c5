package dispatch

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"easel/internal/chain"
	"easel/internal/normalize"
	"easel/internal/plugin"
	"easel/internal/runner"
	"easel/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Request is one agent-facing operation request. Immutable once submitted.
type Request struct {
	Operation  string
	Parameters map[string]interface{}
	Targets    []string
	InputPath  string
	OutputPath string
}

// Options configures a Dispatcher.
type Options struct {
	Executable  string
	Timeout     time.Duration
	Concurrency int
	AcquireWait time.Duration
	HistorySize int
}

// Dispatcher is the top-level entry point: it validates requests, routes them
// to the chain compiler or the plugin registry, bounds concurrent external
// processes with a slot pool, and returns normalized results.
type Dispatcher struct {
	run      runner.Runner
	norm     *normalize.Normalizer
	registry *plugin.Registry
	opts     Options

	slots   *semaphore.Weighted
	ledger  *discoveryLedger
	history *history
}

// New creates a Dispatcher. The registry may be nil when plugin execution is
// not needed (e.g. one-shot CLI discovery).
func New(run runner.Runner, norm *normalize.Normalizer, registry *plugin.Registry, opts Options) *Dispatcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 1
	}
	return &Dispatcher{
		run:      run,
		norm:     norm,
		registry: registry,
		opts:     opts,
		slots:    semaphore.NewWeighted(int64(opts.Concurrency)),
		ledger:   newDiscoveryLedger(),
		history:  newHistory(opts.HistorySize),
	}
}

// Recent returns the bounded execution history, newest first.
func (d *Dispatcher) Recent() []ExecutionRecord {
	return d.history.Recent()
}

// acquireSlot takes one execution slot, waiting at most the configured bound.
// The returned release function must be called exactly once.
func (d *Dispatcher) acquireSlot(ctx context.Context) (func(), error) {
	acquireCtx := ctx
	if d.opts.AcquireWait > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, d.opts.AcquireWait)
		defer cancel()
	}
	if err := d.slots.Acquire(acquireCtx, 1); err != nil {
		if ctx.Err() != nil {
			// The caller's own context ended; propagate the cancellation.
			return nil, ctx.Err()
		}
		return nil, err
	}
	return func() { d.slots.Release(1) }, nil
}

// Dispatch validates and executes one built-in operation. Exactly one
// external process is spawned per successful validation; there are no hidden
// retries. The returned error is non-nil only for caller cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (normalize.Result, error) {
	if req.InputPath == "" {
		return normalize.Failure(normalize.ClassInvalidParameter, "input document path is required"), nil
	}

	op, ok := chain.Lookup(req.Operation)
	if !ok {
		return normalize.Failure(normalize.ClassInvalidParameter, "unknown operation kind: %s", req.Operation), nil
	}

	// Identifier-requiring operations must address objects a discovery call
	// actually returned. This is checked before compilation so a fabricated
	// identifier fails the same way regardless of its format.
	if op.RequiresDiscovery() {
		if len(req.Targets) == 0 && !op.SelectAllFallback {
			return normalize.Failure(normalize.ClassMissingPrerequisite,
				"operation %s requires target identifiers from a prior discovery call", req.Operation), nil
		}
		for _, id := range req.Targets {
			if !d.ledger.Discovered(req.InputPath, id) {
				return normalize.Failure(normalize.ClassMissingPrerequisite,
					"identifier %q was not returned by a discovery call for %s", id, req.InputPath), nil
			}
		}
	}

	executionID := uuid.NewString()
	sentinel := "EASEL-OK:" + executionID

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = req.InputPath
	}

	compiled, err := chain.Compile(chain.Request{
		Operation:  req.Operation,
		Targets:    req.Targets,
		Parameters: req.Parameters,
		OutputPath: outputPath,
	}, sentinel)
	if err != nil {
		return classifyCompileError(err), nil
	}

	release, err := d.acquireSlot(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return normalize.Failure(normalize.ClassOverloaded,
				"no execution slot available within %s", d.opts.AcquireWait), nil
		}
		return normalize.Result{}, err
	}
	defer release()

	started := time.Now()
	logging.Info("Dispatcher", "Executing %s on %s (execution %s)", req.Operation, req.InputPath, executionID)

	procRes, err := d.run.Run(ctx, runner.Spec{
		Command: d.opts.Executable,
		Args:    compiled.Args(req.InputPath),
		Timeout: d.opts.Timeout,
	})
	if err != nil {
		result, ctxErr := classifyRunError(ctx, err)
		if ctxErr != nil {
			return normalize.Result{}, ctxErr
		}
		d.record(executionID, req.Operation, result, started)
		return result, nil
	}

	result := d.norm.Normalize(procRes, sentinel)
	attachExecutionID(&result, executionID)
	if !result.Success {
		logging.Warn("Dispatcher", "Operation %s failed: %s (%s)", req.Operation, result.Message, result.Classification)
	}
	d.record(executionID, req.Operation, result, started)
	return result, nil
}

// Discover queries the document for all addressable objects and records their
// identifiers in the ledger, satisfying the prerequisite for subsequent
// identifier-requiring operations.
func (d *Dispatcher) Discover(ctx context.Context, inputPath string) (normalize.Result, error) {
	if inputPath == "" {
		return normalize.Failure(normalize.ClassInvalidParameter, "input document path is required"), nil
	}

	release, err := d.acquireSlot(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return normalize.Failure(normalize.ClassOverloaded,
				"no execution slot available within %s", d.opts.AcquireWait), nil
		}
		return normalize.Result{}, err
	}
	defer release()

	executionID := uuid.NewString()
	started := time.Now()

	procRes, err := d.run.Run(ctx, runner.Spec{
		Command: d.opts.Executable,
		Args:    []string{"--query-all", inputPath},
		Timeout: d.opts.Timeout,
	})
	if err != nil {
		result, ctxErr := classifyRunError(ctx, err)
		if ctxErr != nil {
			return normalize.Result{}, ctxErr
		}
		d.record(executionID, "discover", result, started)
		return result, nil
	}

	// Discovery success is judged by exit status alone: its observable
	// effect is the object list itself, not a persisted document.
	result := d.norm.Normalize(procRes, "")
	if result.Success {
		objects := normalize.ParseObjectList(procRes.Stdout)
		ids := make([]string, 0, len(objects))
		for _, obj := range objects {
			ids = append(ids, obj.ID)
		}
		d.ledger.Record(inputPath, ids)

		result.Message = "document discovered"
		result.Payload = map[string]interface{}{
			"object_count": len(objects),
			"objects":      objects,
		}
		logging.Info("Dispatcher", "Discovered %d objects in %s", len(objects), inputPath)
	}
	attachExecutionID(&result, executionID)
	d.record(executionID, "discover", result, started)
	return result, nil
}

// measurements maps a measurement name to the tool's query flag.
var measurements = map[string]string{
	"x":      "--query-x",
	"y":      "--query-y",
	"width":  "--query-width",
	"height": "--query-height",
}

// Measure queries one geometric property of a single object. The identifier
// must come from a prior discovery of the document, like any other
// identifier-addressing operation.
func (d *Dispatcher) Measure(ctx context.Context, inputPath, objectID, measurement string) (normalize.Result, error) {
	if inputPath == "" {
		return normalize.Failure(normalize.ClassInvalidParameter, "input document path is required"), nil
	}
	flag, ok := measurements[measurement]
	if !ok {
		return normalize.Failure(normalize.ClassInvalidParameter,
			"unknown measurement %q (expected x, y, width or height)", measurement), nil
	}
	if !d.ledger.Discovered(inputPath, objectID) {
		return normalize.Failure(normalize.ClassMissingPrerequisite,
			"identifier %q was not returned by a discovery call for %s", objectID, inputPath), nil
	}

	release, err := d.acquireSlot(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return normalize.Failure(normalize.ClassOverloaded,
				"no execution slot available within %s", d.opts.AcquireWait), nil
		}
		return normalize.Result{}, err
	}
	defer release()

	executionID := uuid.NewString()
	started := time.Now()

	procRes, err := d.run.Run(ctx, runner.Spec{
		Command: d.opts.Executable,
		Args:    []string{flag, "--query-id=" + objectID, inputPath},
		Timeout: d.opts.Timeout,
	})
	if err != nil {
		result, ctxErr := classifyRunError(ctx, err)
		if ctxErr != nil {
			return normalize.Result{}, ctxErr
		}
		d.record(executionID, "measure", result, started)
		return result, nil
	}

	result := d.norm.Normalize(procRes, "")
	if result.Success {
		value, parseErr := strconv.ParseFloat(strings.TrimSpace(procRes.Stdout), 64)
		if parseErr != nil {
			result = normalize.Failure(normalize.ClassSilentFailure,
				"measurement query produced no numeric value for %q", objectID)
		} else {
			result.Message = "object measured"
			result.Payload = map[string]interface{}{
				"object_id":   objectID,
				"measurement": measurement,
				"value":       value,
			}
		}
	}
	attachExecutionID(&result, executionID)
	d.record(executionID, "measure", result, started)
	return result, nil
}

// ExecutePlugin validates and runs one plugin under the same slot pool as
// built-in operations.
func (d *Dispatcher) ExecutePlugin(ctx context.Context, id string, params map[string]interface{}, inputPath, outputPath string) (normalize.Result, error) {
	if d.registry == nil {
		return normalize.Failure(normalize.ClassInvalidParameter, "plugin execution is not configured"), nil
	}

	release, err := d.acquireSlot(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return normalize.Failure(normalize.ClassOverloaded,
				"no execution slot available within %s", d.opts.AcquireWait), nil
		}
		return normalize.Result{}, err
	}
	defer release()

	executionID := uuid.NewString()
	started := time.Now()

	result, err := d.registry.Execute(ctx, id, params, inputPath, outputPath)
	if err != nil {
		classified, ctxErr := classifyRunError(ctx, err)
		if ctxErr != nil {
			return normalize.Result{}, ctxErr
		}
		d.record(executionID, "plugin:"+id, classified, started)
		return classified, nil
	}

	attachExecutionID(&result, executionID)
	d.record(executionID, "plugin:"+id, result, started)
	return result, nil
}

func (d *Dispatcher) record(id, operation string, result normalize.Result, started time.Time) {
	d.history.Add(ExecutionRecord{
		ID:             id,
		Operation:      operation,
		Success:        result.Success,
		Classification: result.Classification,
		Duration:       time.Since(started),
		StartedAt:      started,
	})
}

func attachExecutionID(result *normalize.Result, id string) {
	if result.Payload == nil {
		result.Payload = make(map[string]interface{})
	}
	result.Payload["execution_id"] = id
}

// classifyCompileError maps compiler rejections onto the failure taxonomy.
func classifyCompileError(err error) normalize.Result {
	var invalidTarget *chain.InvalidTargetError
	if errors.As(err, &invalidTarget) {
		return normalize.Failure(normalize.ClassInvalidParameter, "%v", err)
	}
	var argErr *chain.ArgumentError
	if errors.As(err, &argErr) {
		return normalize.Failure(normalize.ClassInvalidParameter, "%v", err)
	}
	var unknown *chain.UnknownOperationError
	if errors.As(err, &unknown) {
		return normalize.Failure(normalize.ClassInvalidParameter, "%v", err)
	}
	var buildErr *chain.BuildError
	if errors.As(err, &buildErr) {
		return normalize.Failure(normalize.ClassInvalidParameter, "%v", err)
	}
	return normalize.Failure(normalize.ClassInvalidParameter, "request rejected: %v", err)
}

// classifyRunError maps pre-execution and spawn failures onto the taxonomy.
// A context error is returned as-is: cancellation belongs to the caller.
func classifyRunError(ctx context.Context, err error) (normalize.Result, error) {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return normalize.Result{}, err
	}

	var notFound *runner.ExecutableNotFoundError
	if errors.As(err, &notFound) {
		return normalize.Failure(normalize.ClassExecutableNotFound, "%v", err), nil
	}
	var spawn *runner.SpawnError
	if errors.As(err, &spawn) {
		return normalize.Failure(normalize.ClassSpawnFailed, "%v", err), nil
	}
	var pluginNotFound *plugin.NotFoundError
	if errors.As(err, &pluginNotFound) {
		return normalize.Failure(normalize.ClassInvalidParameter, "%v", err), nil
	}
	var invalidParam *plugin.InvalidParameterError
	if errors.As(err, &invalidParam) {
		return normalize.Failure(normalize.ClassInvalidParameter, "%v", err), nil
	}
	return normalize.Failure(normalize.ClassSpawnFailed, "execution failed: %v", err), nil
}
