// Package flags provides a configuration-backed feature flag adapter.
// Flags are static for the lifetime of the process; flipping one means
// a config change and a restart.
package flags

import (
	"context"

	"github.com/aqwal-app/aqwal/internal/ports"
)

// StaticFlags implements ports.FeatureFlags from a config map.
// Flags missing from the map are treated as enabled.
type StaticFlags struct {
	values map[string]bool
}

// New creates a flag set from the given config map. A nil map enables
// everything.
func New(values map[string]bool) *StaticFlags {
	copied := make(map[string]bool, len(values))
	for k, v := range values {
		copied[k] = v
	}

	return &StaticFlags{values: copied}
}

// Enabled reports whether the flag is on.
func (f *StaticFlags) Enabled(_ context.Context, flag string) bool {
	enabled, ok := f.values[flag]
	if !ok {
		return true
	}

	return enabled
}

var _ ports.FeatureFlags = (*StaticFlags)(nil)
