// Package teacalc implements a techno-economic analysis engine for
// sustainable-fuel production pathways. Callers hand it a loosely-typed
// plant/feedstock/utility/product/economics description, the engine
// normalizes every quantity to a canonical unit system, runs the capital and
// operating cost models, decomposes the levelized cost of production and
// projects the discounted cash flow. The engine is pure: it keeps no state
// between calls and performs no I/O beyond the reference-data provider the
// resolver is constructed with.
package teacalc

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/greenfuels/teacalc/internal/must"
)

// InputResolver turns a raw, caller-supplied input document into a fully
// normalized model. Alternate field spellings and unit strings are only
// accepted here, never further down the pipeline.
type InputResolver interface {
	Resolve(ctx context.Context, source map[string]any) (*ResolvedInput, []Warning, error)
}

// Calculator computes the techno-economic result from a resolved input.
type Calculator interface {
	Compute(in *ResolvedInput) (*TechnoEconomicResult, error)
}

// Projector derives the discounted cash-flow schedule and the investment
// appraisal metrics from a techno-economic result.
type Projector interface {
	Project(tea *TechnoEconomicResult, in *ResolvedInput) (*FinancialResult, []Warning, error)
}

// Result is the full outcome of one calculation request.
type Result struct {
	// ID identifies this calculation in logs and audit trails.
	ID              string                `json:"id"`
	TechnoEconomics *TechnoEconomicResult `json:"techno_economics"`
	Financials      *FinancialResult      `json:"financials"`
	ResolvedInputs  *ResolvedInput        `json:"resolved_inputs"`
	Warnings        []Warning             `json:"warnings,omitempty"`
}

type EngineOption func(e *Engine)

func WithResolver(resolver InputResolver) EngineOption {
	return func(e *Engine) {
		e.resolver = resolver
	}
}

func WithCalculator(calculator Calculator) EngineOption {
	return func(e *Engine) {
		e.calculator = calculator
	}
}

func WithProjector(projector Projector) EngineOption {
	return func(e *Engine) {
		e.projector = projector
	}
}

// Engine chains resolver, calculator and projector into the single logical
// calculate operation. Engines are safe for concurrent use: every call
// builds its own input and result graph.
type Engine struct {
	resolver   InputResolver
	calculator Calculator
	projector  Projector
}

func NewEngine(opts ...EngineOption) *Engine {
	engine := new(Engine)
	for _, option := range opts {
		option(engine)
	}

	must.Assert(engine.resolver != nil, "engine requires a resolver")
	must.Assert(engine.calculator != nil, "engine requires a calculator")
	must.Assert(engine.projector != nil, "engine requires a projector")

	return engine
}

// Calculate runs the full pipeline on one raw input document. Hard errors
// (unknown units, structural validation, degenerate math) abort the call;
// soft conditions are returned as warnings on the successful result.
func (e *Engine) Calculate(ctx context.Context, source map[string]any) (*Result, error) {
	start := time.Now()
	id := ulid.Make().String()

	resolved, warnings, err := e.resolver.Resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	tea, err := e.calculator.Compute(resolved)
	if err != nil {
		return nil, err
	}

	financials, finWarnings, err := e.projector.Project(tea, resolved)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, finWarnings...)

	tea.LCOP.SetMetadata("calculation", id)
	tea.TCI.SetMetadata("calculation", id)
	tea.TotalOpex.SetMetadata("calculation", id)

	slog.Debug("calculation completed",
		"calculation", id,
		"process_type", resolved.Plant.ProcessType,
		"duration_ms", time.Since(start).Milliseconds(),
		"warnings", len(warnings))

	return &Result{
		ID:              id,
		TechnoEconomics: tea,
		Financials:      financials,
		ResolvedInputs:  resolved,
		Warnings:        warnings,
	}, nil
}
