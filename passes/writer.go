package passes

import (
	"fmt"
	"sort"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

// Writer is one edge feeding an input port, carrying the deterministic
// sort key that is the sole source of order for order-sensitive combine
// modes (§4.11, §5).
type Writer struct {
	FromBlock patch.BlockIndex
	FromPort  string
	ConnID    string
	SortKey   string
}

// EnumerateWriters returns every writer targeting (blockIdx, portName),
// sorted ascending by the key "0:{fromBlockId}:{fromPort}:{connId}"
// (§4.11).
func EnumerateWriters(p *patch.NormalizedPatch, blockIdx patch.BlockIndex, portName string) []Writer {
	edges := p.EdgesInto(blockIdx, portName)
	writers := make([]Writer, 0, len(edges))
	for _, e := range edges {
		fromBlock, _ := p.BlockAt(e.FromBlock)
		writers = append(writers, Writer{
			FromBlock: e.FromBlock,
			FromPort:  e.FromPort,
			ConnID:    e.ID,
			SortKey:   fmt.Sprintf("0:%s:%s:%s", fromBlock.ID, e.FromPort, e.ID),
		})
	}
	sort.Slice(writers, func(i, j int) bool { return writers[i].SortKey < writers[j].SortKey })
	return writers
}

// BlockOutputs is the block-indexed map of already-lowered output refs
// used for downstream resolution (§4.10 step 5).
type BlockOutputs map[patch.BlockIndex]map[string]ir.ValueRefExpr

// ResolveInput implements §4.11 end to end for one exposed input port:
// enumerate writers, validate the combine policy against the resolved
// payload, and either leave the input unresolved, bind a single writer
// directly, or emit a combine node.
func ResolveInput(
	p *patch.NormalizedPatch,
	b *ir.Builder,
	blockIdx patch.BlockIndex,
	blockID string,
	port registry.PortDecl,
	portType types.CanonicalType,
	outputs BlockOutputs,
) (ir.ValueRefExpr, bool, error) {
	writers := EnumerateWriters(p, blockIdx, port.Name)

	if len(writers) == 0 {
		if port.Optional {
			return ir.ValueRefExpr{}, false, nil
		}
		return ir.ValueRefExpr{}, false, diagnostics.At(
			diagnostics.UpstreamError,
			fmt.Sprintf("required input %q on block %s has no writer", port.Name, blockID),
			blockID, port.Name,
		)
	}

	if err := validateCombineMode(port, portType, len(writers)); err != nil {
		return ir.ValueRefExpr{}, false, err
	}

	refs := make([]ir.ValueRefExpr, 0, len(writers))
	for _, w := range writers {
		byPort, ok := outputs[w.FromBlock]
		if !ok {
			return ir.ValueRefExpr{}, false, diagnostics.At(
				diagnostics.MissingOutputRegistration,
				fmt.Sprintf("writer block %d for port %q on block %s has no registered outputs", w.FromBlock, port.Name, blockID),
				blockID, port.Name,
			)
		}
		ref, ok := byPort[w.FromPort]
		if !ok {
			return ir.ValueRefExpr{}, false, diagnostics.At(
				diagnostics.MissingOutputRegistration,
				fmt.Sprintf("writer port %q on block %d was never registered", w.FromPort, w.FromBlock),
				blockID, port.Name,
			)
		}
		refs = append(refs, ref)
	}

	if len(writers) == 1 && port.CombinePolicy.When == registry.CombineWhenMulti {
		return refs[0], true, nil
	}

	if portType.Extent.Temporality == types.Discrete {
		return emitCombine(b, refs, ir.CombineAny, portType), true, nil
	}

	mode := port.CombinePolicy.Mode
	if mode == registry.CombineFirst {
		// first is realized by reversing the sorted writer list and
		// emitting last (§4.11, §9 open question).
		for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
			refs[i], refs[j] = refs[j], refs[i]
		}
		return emitCombine(b, refs, ir.CombineLast, portType), true, nil
	}

	return emitCombine(b, refs, toIRCombineMode(mode), portType), true, nil
}

func emitCombine(b *ir.Builder, refs []ir.ValueRefExpr, mode ir.CombineMode, t types.CanonicalType) ir.ValueRefExpr {
	ids := make([]ir.ValueExprId, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	combinedID := b.Combine(ids, mode, t)
	return b.AllocSlot(combinedID, t, 0)
}

// toIRCombineMode reduces a registry.CombineMode to its IR-level
// equivalent. CombineFirst is handled by the caller via list reversal;
// CombineLayer reduces to last with no distinct IR representation
// (§4.11); CombineError never reaches here (validated away above).
func toIRCombineMode(mode registry.CombineMode) ir.CombineMode {
	switch mode {
	case registry.CombineSum:
		return ir.CombineSum
	case registry.CombineAverage:
		return ir.CombineAverage
	case registry.CombineMin:
		return ir.CombineMin
	case registry.CombineMax:
		return ir.CombineMax
	case registry.CombineProduct:
		return ir.CombineProduct
	case registry.CombineLayer:
		return ir.CombineLast
	default:
		return ir.CombineLast
	}
}

// validateCombineMode implements §4.11's validation rules: error mode
// forbids multiple writers outright, scalar-world ports forbid multiple
// writers regardless of mode, and each payload family admits only its
// documented subset of modes.
func validateCombineMode(port registry.PortDecl, portType types.CanonicalType, writerCount int) *diagnostics.CompileError {
	mode := port.CombinePolicy.Mode

	if port.ScalarWorld && writerCount > 1 {
		return diagnostics.New(diagnostics.PortTypeMismatch, fmt.Sprintf("port %q forbids multiple writers (scalar-world)", port.Name))
	}
	if mode == registry.CombineError && writerCount > 1 {
		return diagnostics.New(diagnostics.PortTypeMismatch, fmt.Sprintf("port %q forbids multiple writers", port.Name))
	}
	if writerCount <= 1 {
		return nil
	}

	switch portType.Payload.Kind() {
	case types.PayloadFloat, types.PayloadInt, types.PayloadVec2, types.PayloadVec3:
		return nil // numeric payloads admit all modes
	case types.PayloadColor, types.PayloadShape:
		if mode == registry.CombineLast || mode == registry.CombineFirst || mode == registry.CombineLayer {
			return nil
		}
		return diagnostics.New(diagnostics.PortTypeMismatch, fmt.Sprintf("port %q: color/shape payloads admit only last, first, or layer combine modes", port.Name))
	default:
		if mode == registry.CombineLast || mode == registry.CombineFirst {
			return nil
		}
		return diagnostics.New(diagnostics.PortTypeMismatch, fmt.Sprintf("port %q: this payload admits only last or first combine modes", port.Name))
	}
}
