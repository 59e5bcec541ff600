package compiler

import (
	"log/slog"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/registry"
)

// Builder configures a Compiler the same way the teacher's
// config.DeviceBuilder configures a CGRA device: a value receiver fluent
// chain ending in Build.
type Builder struct {
	registry *registry.Registry
	flags    diagnostics.FlagTable
	logger   *slog.Logger
}

// NewBuilder returns a Builder defaulting to the process-wide block
// registry and the documented default diagnostic severities.
func NewBuilder() Builder {
	return Builder{
		registry: registry.Default,
		flags:    diagnostics.DefaultFlagTable(),
	}
}

// WithRegistry overrides the block registry a Compiler resolves block
// types against.
func (b Builder) WithRegistry(reg *registry.Registry) Builder {
	b.registry = reg
	return b
}

// WithDiagnosticFlags overrides the severity table findings are
// partitioned against (§6).
func (b Builder) WithDiagnosticFlags(flags diagnostics.FlagTable) Builder {
	b.flags = flags
	return b
}

// WithLogger overrides the logger Compile traces through; omitted, Compile
// logs through the package-level logger installed by SetLogger.
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

// Build finalizes the Compiler. A nil registry falls back to
// registry.Default and a nil flag table to diagnostics.DefaultFlagTable,
// so a zero-value Builder is still usable.
func (b Builder) Build() *Compiler {
	reg := b.registry
	if reg == nil {
		reg = registry.Default
	}
	flags := b.flags
	if flags == nil {
		flags = diagnostics.DefaultFlagTable()
	}
	logger := b.logger
	if logger == nil {
		logger = defaultLogger
	}
	return &Compiler{registry: reg, flags: flags, logger: logger}
}
