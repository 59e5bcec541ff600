// Package passes implements the ordered compilation pipeline (§4.4-§4.11):
// payload resolution, unit/cardinality inference, the type graph, time
// topology, dependency-graph construction, SCC validation, and block
// lowering with writer resolution.
package passes

import (
	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
)

const payloadTypeParam = "payloadType"

// ResolvePayloads runs pass 0 (§4.4): validates every block's type is
// registered, then assigns a concrete payloadType param to each
// payload-generic block by forward then backward resolution, in a single
// sweep over the patch's block list. It mutates p in place and is
// idempotent: a second invocation changes no block params, since a block
// with payloadType already set is left untouched.
func ResolvePayloads(p *patch.NormalizedPatch, reg *registry.Registry) error {
	defs := make([]*registry.BlockDefinition, len(p.Blocks))
	var errs []*diagnostics.CompileError
	for i, b := range p.Blocks {
		def, err := reg.Require(b.Type)
		if err != nil {
			errs = append(errs, err.(*diagnostics.CompileError))
			continue
		}
		defs[i] = def
	}
	if len(errs) > 0 {
		return diagnostics.NewAggregate(errs)
	}

	for i := range p.Blocks {
		b := &p.Blocks[i]
		def := defs[i]
		if b.ParamString(payloadTypeParam) != "" {
			continue
		}
		if payload, ok := forwardResolve(p, defs, patch.BlockIndex(i), def); ok {
			b.SetParam(payloadTypeParam, payload)
			continue
		}
		if payload, ok := backwardResolve(p, defs, patch.BlockIndex(i), def); ok {
			b.SetParam(payloadTypeParam, payload)
		}
	}
	return nil
}

// forwardResolve implements §4.4 rule 1: if a payload-generic output port
// feeds a target input whose allowed-payload set is fixed (size 1), adopt
// that payload.
func forwardResolve(p *patch.NormalizedPatch, defs []*registry.BlockDefinition, idx patch.BlockIndex, def *registry.BlockDefinition) (string, bool) {
	for _, out := range def.OutputPorts {
		if len(out.AllowedPayloads) <= 1 {
			continue
		}
		for _, e := range p.EdgesFrom(idx, out.Name) {
			targetDef := defs[e.ToBlock]
			if targetDef == nil {
				continue
			}
			in, ok := targetDef.InputPort(e.ToPort)
			if !ok || len(in.AllowedPayloads) != 1 {
				continue
			}
			return in.AllowedPayloads[0], true
		}
	}
	return "", false
}

// backwardResolve implements §4.4 rule 2: if a payload-generic exposed
// input port is wired from a source whose payload is fixed — or is itself
// generic and already resolved earlier in this sweep — adopt that payload.
// Config-only inputs (ExposedAsPort = false) never participate.
func backwardResolve(p *patch.NormalizedPatch, defs []*registry.BlockDefinition, idx patch.BlockIndex, def *registry.BlockDefinition) (string, bool) {
	for _, in := range def.InputPorts {
		if !in.ExposedAsPort || len(in.AllowedPayloads) <= 1 {
			continue
		}
		for _, e := range p.EdgesInto(idx, in.Name) {
			sourceDef := defs[e.FromBlock]
			if sourceDef == nil {
				continue
			}
			out, ok := sourceDef.OutputPort(e.FromPort)
			if !ok {
				continue
			}
			if len(out.AllowedPayloads) == 1 {
				return out.AllowedPayloads[0], true
			}
			if len(out.AllowedPayloads) > 1 {
				if sourceBlock, ok := p.BlockAt(e.FromBlock); ok {
					if payload := sourceBlock.ParamString(payloadTypeParam); payload != "" {
						return payload, true
					}
				}
			}
		}
	}
	return "", false
}
