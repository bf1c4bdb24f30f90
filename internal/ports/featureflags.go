package ports

import "context"

// FeatureFlags exposes runtime feature toggles. The current
// implementation is config-backed and static for the process lifetime,
// but the port keeps callers ready for a dynamic provider.
type FeatureFlags interface {
	// Enabled reports whether the named flag is on. Flags absent
	// from configuration are on.
	Enabled(ctx context.Context, flag string) bool
}

// Feature flag names understood by the application.
const (
	// FlagAdminAPI gates the mutating admin route group
	// (quote creation, bulk import).
	FlagAdminAPI = "admin_api"

	// FlagPosterExport gates the poster rendering endpoint.
	FlagPosterExport = "poster_export"
)
