package target

import "fmt"

// DefaultGCFlags maximizes inlining.
const DefaultGCFlags = "all:-l=4"

// stripFlags drop the symbol table, DWARF data and build ID.
const stripFlags = "-s -w -buildid="

// CompileFlags are the user-facing compiler options.
type CompileFlags struct {
	GCFlags string
	// LDFlags overrides the derived link flags when non-nil.
	LDFlags *string
}

// ResolvedFlags are the final flag strings handed to the toolchain.
type ResolvedFlags struct {
	GCFlags string
	LDFlags string
}

// Resolve computes the final flags once the build identifier is known.
func (f CompileFlags) Resolve(t BuildTarget, identifier string) ResolvedFlags {
	gc := f.GCFlags
	if gc == "" {
		gc = DefaultGCFlags
	}
	return ResolvedFlags{
		GCFlags: gc,
		LDFlags: f.resolveLDFlags(t, identifier),
	}
}

func (f CompileFlags) resolveLDFlags(t BuildTarget, identifier string) string {
	if f.LDFlags != nil {
		return *f.LDFlags
	}
	symbol := t.Info().BuildSymbol
	if symbol == "" {
		return stripFlags
	}
	return fmt.Sprintf("-X %s=%s %s", symbol, identifier, stripFlags)
}
