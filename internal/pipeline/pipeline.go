// Package pipeline drives one request from prompt to written asset:
// Received → Generating → Executing → Exporting → Completed, or Failed with
// the stage and error kind that stopped it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"scenegen/internal/export"
	"scenegen/internal/logging"
	"scenegen/internal/perception"
	"scenegen/internal/sandbox"
	"scenegen/internal/three"
	"scenegen/internal/types"
)

// Stage is a pipeline state.
type Stage string

const (
	StageReceived   Stage = "received"
	StageGenerating Stage = "generating"
	StageExecuting  Stage = "executing"
	StageExporting  Stage = "exporting"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// defaultKinds classifies untyped errors by the stage they surfaced in.
var defaultKinds = map[Stage]types.ErrorKind{
	StageReceived:   types.KindInvalidRequest,
	StageGenerating: types.KindProviderError,
	StageExecuting:  types.KindScriptRuntime,
	StageExporting:  types.KindExportError,
}

// Failure is the terminal Failed(stage, kind) state.
type Failure struct {
	Stage Stage
	Kind  types.ErrorKind
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", f.Stage, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// ScriptGenerator produces script envelopes.
type ScriptGenerator interface {
	ResolveModel(modelID string) perception.ModelInfo
	GenerateFromPrompt(ctx context.Context, prompt, modelID string) (*types.Envelope, error)
	RefineFromPriorScript(ctx context.Context, priorScript, refinement, modelID string) (*types.Envelope, error)
}

// ScriptExecutor runs scripts against a capability.
type ScriptExecutor interface {
	Execute(script string, capability sandbox.Capability) (any, error)
}

// SceneExporter writes scenes to disk.
type SceneExporter interface {
	Export(scene *three.Scene, desiredPath string) (*export.Artifact, error)
}

// TargetFunc decides where the asset for env is written.
type TargetFunc func(env *types.Envelope) (string, error)

// Result describes a completed run.
type Result struct {
	Mode     types.Mode
	Model    perception.ModelInfo
	Envelope *types.Envelope
	Artifact *export.Artifact
	Trace    []Stage
	Duration time.Duration
}

// Pipeline is stateless between runs and safe for concurrent use.
type Pipeline struct {
	generator  ScriptGenerator
	executor   ScriptExecutor
	exporter   SceneExporter
	capability sandbox.Capability
	metrics    *Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records runs into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCapability replaces the scene capability handed to the executor.
func WithCapability(c sandbox.Capability) Option {
	return func(p *Pipeline) { p.capability = c }
}

// New wires the stages together.
func New(generator ScriptGenerator, executor ScriptExecutor, exporter SceneExporter, opts ...Option) *Pipeline {
	p := &Pipeline{
		generator:  generator,
		executor:   executor,
		exporter:   exporter,
		capability: sandbox.SceneCapability(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run tracks the state of one request.
type run struct {
	p       *Pipeline
	res     *Result
	stage   Stage
	entered time.Time
	started time.Time
}

func (r *run) enter(stage Stage) {
	now := time.Now()
	if r.stage != "" {
		r.p.metrics.observeStage(r.stage, now.Sub(r.entered))
	}
	logging.PipelineDebug("%s -> %s", r.stage, stage)
	r.stage = stage
	r.entered = now
	r.res.Trace = append(r.res.Trace, stage)
}

func (r *run) fail(err error) error {
	kind := types.KindOf(err)
	if kind == types.KindNone {
		kind = defaultKinds[r.stage]
	}
	f := &Failure{Stage: r.stage, Kind: kind, Err: err}
	r.enter(StageFailed)
	r.res.Duration = time.Since(r.started)
	r.p.metrics.observeRun(r.res.Mode, f)
	logging.PipelineError("%s request failed after %v: %v", r.res.Mode, r.res.Duration, f)
	if raw := types.RawOf(err); raw != "" {
		logging.PipelineDebug("offending reply: %s", raw)
	}
	return f
}

// Run executes req. target is consulted once the envelope is known. Errors
// are always *Failure.
func (p *Pipeline) Run(ctx context.Context, req types.GenerationRequest, target TargetFunc) (*Result, error) {
	if req.Mode == "" {
		req.Mode = types.ModeCreate
	}
	r := &run{p: p, res: &Result{Mode: req.Mode}, started: time.Now()}
	r.enter(StageReceived)

	if err := req.Validate(); err != nil {
		return nil, r.fail(err)
	}
	if target == nil {
		return nil, r.fail(fmt.Errorf("no export target"))
	}
	r.res.Model = p.generator.ResolveModel(req.ModelID)
	logging.Pipeline("%s request using model %s", req.Mode, r.res.Model.ID)

	r.enter(StageGenerating)
	var (
		env *types.Envelope
		err error
	)
	if req.Mode == types.ModeRefine {
		env, err = p.generator.RefineFromPriorScript(ctx, req.PriorScript, req.RefinementText, r.res.Model.ID)
	} else {
		env, err = p.generator.GenerateFromPrompt(ctx, req.Prompt, r.res.Model.ID)
	}
	if err != nil {
		return nil, r.fail(err)
	}
	r.res.Envelope = env
	// An expired request lifetime is charged to the provider wait it ended in.
	if err := ctx.Err(); err != nil {
		return nil, r.fail(types.NewError(types.KindProviderError, "pipeline.Run", err))
	}

	r.enter(StageExecuting)
	root, err := p.executor.Execute(env.Script, p.capability)
	if err != nil {
		return nil, r.fail(err)
	}
	scene, ok := root.(*three.Scene)
	if !ok || scene == nil {
		return nil, r.fail(types.NewError(types.KindScriptContract, "pipeline.Run",
			fmt.Errorf("script returned %T, not a scene", root)))
	}

	r.enter(StageExporting)
	path, err := target(env)
	if err != nil {
		return nil, r.fail(types.NewError(types.KindExportError, "pipeline.Run", err))
	}
	art, err := p.exporter.Export(scene, path)
	if err != nil {
		return nil, r.fail(err)
	}
	r.res.Artifact = art
	p.metrics.observeExport(art.Size)

	r.enter(StageCompleted)
	r.res.Duration = time.Since(r.started)
	p.metrics.observeRun(req.Mode, nil)
	logging.Pipeline("%s request completed in %v: %s", req.Mode, r.res.Duration, art.Path)
	return r.res, nil
}

// KindOf returns the failure kind of err, or KindNone.
func KindOf(err error) types.ErrorKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return types.KindOf(err)
}

// StageOf returns the stage err failed in, or "".
func StageOf(err error) Stage {
	var f *Failure
	if errors.As(err, &f) {
		return f.Stage
	}
	return ""
}

// ExitCode maps a run error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// HTTPStatus maps a run error to a response status. Only invalid requests
// are the caller's fault.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case KindOf(err) == types.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
