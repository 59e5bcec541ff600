// Package patch defines the compiler's upstream input: the
// NormalizedPatch produced by graph normalization (out of scope here) and
// consumed by pass 0 onward (§3, §6).
package patch

// BlockIndex is the zero-based, dense position of a block in the patch's
// ordered block list. All cross-references elsewhere in the compiler are
// by BlockIndex, never by Block.ID directly (§3).
type BlockIndex int

// InputPortConfig carries the user-set configuration for one input port:
// an optional multi-writer combine mode override and any vararg wiring
// already materialized as ordinary edges by upstream normalization.
type InputPortConfig struct {
	CombineMode       string   `yaml:"combineMode,omitempty" json:"combineMode,omitempty"`
	VarargConnections []string `yaml:"varargConnections,omitempty" json:"varargConnections,omitempty"`
}

// Block is one node in the patch (§3). Params is the block's
// configuration map; PayloadType (when present under the conventional key
// "payloadType") is preserved across pass 0 if already set.
type Block struct {
	ID         string                     `yaml:"id" json:"id"`
	Type       string                     `yaml:"type" json:"type"`
	Params     map[string]interface{}     `yaml:"params,omitempty" json:"params,omitempty"`
	InputPorts map[string]InputPortConfig `yaml:"inputPorts,omitempty" json:"inputPorts,omitempty"`
}

// ParamString returns a string-valued param, or "" if absent or not a
// string.
func (b *Block) ParamString(key string) string {
	if b.Params == nil {
		return ""
	}
	v, ok := b.Params[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// SetParam writes (or overwrites) a param, creating the map if necessary.
// Used by pass 0 to write back an inferred payloadType.
func (b *Block) SetParam(key string, value interface{}) {
	if b.Params == nil {
		b.Params = make(map[string]interface{})
	}
	b.Params[key] = value
}

// Edge is a directed port-to-port wire between two blocks, addressed by
// BlockIndex (§3). No default-source edges exist at this layer: upstream
// normalization has already materialized default sources as hidden
// constant-producing blocks wired to their destination.
type Edge struct {
	FromBlock BlockIndex `yaml:"fromBlock" json:"fromBlock"`
	FromPort  string     `yaml:"fromPort" json:"fromPort"`
	ToBlock   BlockIndex `yaml:"toBlock" json:"toBlock"`
	ToPort    string     `yaml:"toPort" json:"toPort"`
	SortKey   string     `yaml:"sortKey,omitempty" json:"sortKey,omitempty"`

	// ID is a stable identifier for this edge, synthesized from its
	// position if the patch source doesn't supply one. It is used only
	// for diagnostics and for the writer sort key (§4.11).
	ID string `yaml:"id,omitempty" json:"id,omitempty"`
}

// NormalizedPatch is the compiler's entire input (§3, §6).
type NormalizedPatch struct {
	Blocks   []Block `yaml:"blocks" json:"blocks"`
	Edges    []Edge  `yaml:"edges" json:"edges"`
	Revision int     `yaml:"revision" json:"revision"`
}

// Normalize fills in synthesized edge ids where absent, so every edge has
// a stable identity for diagnostics and writer sorting regardless of
// whether the source patch supplied one.
func (p *NormalizedPatch) Normalize() {
	for i := range p.Edges {
		if p.Edges[i].ID == "" {
			p.Edges[i].ID = syntheticEdgeID(i)
		}
	}
}

func syntheticEdgeID(i int) string {
	const hex = "0123456789abcdef"
	if i == 0 {
		return "e0"
	}
	buf := make([]byte, 0, 8)
	for i > 0 {
		buf = append([]byte{hex[i%16]}, buf...)
		i /= 16
	}
	return "e" + string(buf)
}

// BlockAt returns the block at index i, or false if i is out of range.
func (p *NormalizedPatch) BlockAt(i BlockIndex) (Block, bool) {
	if i < 0 || int(i) >= len(p.Blocks) {
		return Block{}, false
	}
	return p.Blocks[i], true
}

// EdgesInto returns every edge targeting (toBlock, toPort), in patch
// order — the enumeration order writer resolution re-sorts before use
// (§4.11, §5).
func (p *NormalizedPatch) EdgesInto(toBlock BlockIndex, toPort string) []Edge {
	var out []Edge
	for _, e := range p.Edges {
		if e.ToBlock == toBlock && e.ToPort == toPort {
			out = append(out, e)
		}
	}
	return out
}

// EdgesFrom returns every edge sourced from (fromBlock, fromPort), in
// patch order.
func (p *NormalizedPatch) EdgesFrom(fromBlock BlockIndex, fromPort string) []Edge {
	var out []Edge
	for _, e := range p.Edges {
		if e.FromBlock == fromBlock && e.FromPort == fromPort {
			out = append(out, e)
		}
	}
	return out
}
