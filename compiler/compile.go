package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/graph"
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/passes"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/schedule"
)

// Compiler runs the ordered pass pipeline (§4, §5) over a NormalizedPatch.
// Build one with Builder rather than constructing it directly.
type Compiler struct {
	registry *registry.Registry
	flags    diagnostics.FlagTable
	logger   *slog.Logger
}

// Result is everything a successful compile produces: the populated IR
// builder and the final render-reachable step list (§4.12), plus the full
// diagnostics report (including warnings a caller may still want to see).
type Result struct {
	SessionID string
	IR        *ir.Builder
	Schedule  []schedule.Step
	Report    *diagnostics.Report
}

// Failure wraps a Report with at least one hard error (§6, §7): the error
// Compile returns when compilation cannot produce a usable Result.
type Failure struct {
	SessionID string
	Report    *diagnostics.Report
}

func (f *Failure) Error() string {
	if len(f.Report.Errors) == 1 {
		return f.Report.Errors[0].Error()
	}
	return fmt.Sprintf("compile failed with %d errors", len(f.Report.Errors))
}

func (c *Compiler) trace(msg string, args ...any) {
	c.logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Compile runs passes 0 through 6, time topology, SCC validation, and
// schedule construction over p in order, accumulating diagnostics as it
// goes (§7: "collect all errors, then report one aggregate"). A phase
// whose output later phases cannot proceed without (payload/type
// resolution, the dependency graph, SCC validation) halts the pipeline on
// its first hard error; findings that resolve to warn severity under the
// flag table (conflicting units, by default) do not halt it.
func (c *Compiler) Compile(p *patch.NormalizedPatch) (*Result, error) {
	var findings []*diagnostics.CompileError
	sessionID := xid.New().String()

	c.trace("compile: starting session", "session", sessionID, "blocks", len(p.Blocks))
	if err := passes.ResolvePayloads(p, c.registry); err != nil {
		return c.fail(sessionID, append(findings, flatten(err)...))
	}

	table, err := passes.InferTypes(p, c.registry)
	findings = append(findings, flatten(err)...)
	if hasHardError(findings, c.flags) {
		return c.fail(sessionID, findings)
	}

	c.trace("compile: validating type graph")
	if err := passes.ValidateTypeGraph(p, c.registry, table); err != nil {
		findings = append(findings, flatten(err)...)
	}
	if hasHardError(findings, c.flags) {
		return c.fail(sessionID, findings)
	}

	b := ir.NewBuilder()
	c.trace("compile: resolving time topology")
	if _, _, _, err := passes.ResolveTimeTopology(p, c.registry, b); err != nil {
		return c.fail(sessionID, append(findings, flatten(err)...))
	}

	c.trace("compile: building dependency graph")
	g, err := passes.BuildDependencyGraph(p, c.registry)
	if err != nil {
		return c.fail(sessionID, append(findings, flatten(err)...))
	}

	sccs, err := validateSCCs(p, c.registry, g)
	findings = append(findings, flatten(err)...)
	if hasHardError(findings, c.flags) {
		return c.fail(sessionID, findings)
	}

	c.trace("compile: lowering blocks", "sccs", len(sccs))
	outputs, _, blockInputs, err := passes.LowerBlocks(p, c.registry, b, table, sccs)
	findings = append(findings, flatten(err)...)
	if hasHardError(findings, c.flags) {
		return c.fail(sessionID, findings)
	}

	reachable, err := schedule.Reachable(p, c.registry)
	if err != nil {
		return c.fail(sessionID, append(findings, flatten(err)...))
	}

	c.trace("compile: assembling schedule", "reachableBlocks", len(reachable))
	steps, err := schedule.Build(p, c.registry, b, outputs, blockInputs, reachable)
	if err != nil {
		return c.fail(sessionID, append(findings, flatten(err)...))
	}

	findings = diagnostics.FilterUnreachable(findings, reachableBlockIDs(p, reachable))

	report := diagnostics.NewReport(findings, c.flags)
	if !report.OK() {
		return nil, &Failure{SessionID: sessionID, Report: report}
	}

	c.trace("compile: done", "steps", len(steps), "warnings", len(report.Warnings))
	return &Result{SessionID: sessionID, IR: b, Schedule: steps, Report: report}, nil
}

func (c *Compiler) fail(sessionID string, findings []*diagnostics.CompileError) (*Result, error) {
	report := diagnostics.NewReport(findings, c.flags)
	return nil, &Failure{SessionID: sessionID, Report: report}
}

// validateSCCs is a thin pass-through to passes.ValidateSCCs, named for
// symmetry with the other phase helpers above.
func validateSCCs(p *patch.NormalizedPatch, reg *registry.Registry, g *graph.Graph) ([]graph.SCC, error) {
	return passes.ValidateSCCs(p, reg, g)
}

// hasHardError reports whether findings contains anything that resolves to
// SeverityError under flags — a warn-only finding list lets the pipeline
// continue.
func hasHardError(findings []*diagnostics.CompileError, flags diagnostics.FlagTable) bool {
	for _, f := range findings {
		if flags.Severity(f.Code) == diagnostics.SeverityError {
			return true
		}
	}
	return false
}

// flatten normalizes any pass's returned error (nil, a single
// CompileError, or an Aggregate) into a slice.
func flatten(err error) []*diagnostics.CompileError {
	if err == nil {
		return nil
	}
	if agg, ok := err.(*diagnostics.Aggregate); ok {
		return agg.Errors
	}
	if ce, ok := err.(*diagnostics.CompileError); ok {
		return []*diagnostics.CompileError{ce}
	}
	return []*diagnostics.CompileError{diagnostics.New(diagnostics.NotImplemented, err.Error())}
}

func reachableBlockIDs(p *patch.NormalizedPatch, reachable map[patch.BlockIndex]bool) map[string]bool {
	out := make(map[string]bool, len(reachable))
	for i, blk := range p.Blocks {
		if reachable[patch.BlockIndex(i)] {
			out[blk.ID] = true
		}
	}
	return out
}
