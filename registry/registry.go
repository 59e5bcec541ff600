package registry

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sarchlab/patchc/diagnostics"
)

// titleCaser normalizes block label/category strings the same way the
// teacher's core/emu.go normalizes direction names with toTitleCase.
var titleCaser = cases.Title(language.English)

// Registry is the process-wide, effectively read-only catalog of block
// definitions (§4.1). Definitions carry no mutable state, so concurrent
// compiles reading the same Registry are safe (§5).
type Registry struct {
	byType map[string]*BlockDefinition
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byType: make(map[string]*BlockDefinition)}
}

// Register adds or replaces the definition for def.Type. Registration is
// idempotent by design: a later call with the same type string replaces
// the earlier entry so test scaffolding can re-register fixtures (§4.1).
func (r *Registry) Register(def *BlockDefinition) {
	normalized := *def
	normalized.Label = titleCaser.String(normalized.Label)
	normalized.Category = titleCaser.String(normalized.Category)
	_, replaced := r.byType[def.Type]
	r.byType[def.Type] = &normalized
	slog.Debug("registry: block registered", "type", def.Type, "replaced", replaced)
}

// Get returns the definition for typ, or nil if unregistered.
func (r *Registry) Get(typ string) *BlockDefinition {
	return r.byType[typ]
}

// Require returns the definition for typ or fails with UnknownBlockType,
// the error message carrying the exact quoted type string per §4.1.
func (r *Registry) Require(typ string) (*BlockDefinition, error) {
	def, ok := r.byType[typ]
	if !ok {
		return nil, diagnostics.New(
			diagnostics.UnknownBlockType,
			fmt.Sprintf("Unknown block type: %q is not registered", typ),
		)
	}
	return def, nil
}

// Count returns the number of currently registered block types.
func (r *Registry) Count() int { return len(r.byType) }

// IsPayloadGeneric reports whether any declared port on typ lists more
// than one allowed payload (§4.1).
func (r *Registry) IsPayloadGeneric(typ string) (bool, error) {
	def, err := r.Require(typ)
	if err != nil {
		return false, err
	}
	for _, p := range def.InputPorts {
		if len(p.AllowedPayloads) > 1 {
			return true, nil
		}
	}
	for _, p := range def.OutputPorts {
		if len(p.AllowedPayloads) > 1 {
			return true, nil
		}
	}
	return false, nil
}

// IsCardinalityGeneric reports whether typ's cardinality mode is preserve
// and its lane-coupling is laneLocal (§4.1).
func (r *Registry) IsCardinalityGeneric(typ string) (bool, error) {
	def, err := r.Require(typ)
	if err != nil {
		return false, err
	}
	return def.Cardinality.Mode == CardinalityPreserve && def.Cardinality.LaneCoupling == LaneLocal, nil
}

// GetPayloadCombinations returns typ's explicit combination table, or nil
// if the block declares none.
func (r *Registry) GetPayloadCombinations(typ string) ([]PayloadCombination, error) {
	def, err := r.Require(typ)
	if err != nil {
		return nil, err
	}
	return def.Payload.Combinations, nil
}

// FindPayloadCombination finds an allowed (inputPayloads -> outputPayload)
// tuple by structural match against typ's combination table. Returns
// false if typ has no table or no entry matches.
func (r *Registry) FindPayloadCombination(typ string, inputs []string) (PayloadCombination, bool, error) {
	combos, err := r.GetPayloadCombinations(typ)
	if err != nil {
		return PayloadCombination{}, false, err
	}
	for _, c := range combos {
		if sameInputs(c.Inputs, inputs) {
			return c, true, nil
		}
	}
	return PayloadCombination{}, false, nil
}

func sameInputs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
