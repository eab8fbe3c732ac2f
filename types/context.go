package types

// DefaultVersion is the fallback version when AppContext is nil
const DefaultVersion = "dev"

// AppContext holds application-wide context information passed to commands
type AppContext struct {
	Version string

	// ConfigPaths are the configuration files consulted, lowest priority first
	ConfigPaths []string
}

// VersionOf returns the version carried by ctx, or DefaultVersion
func VersionOf(ctx *AppContext) string {
	if ctx == nil || ctx.Version == "" {
		return DefaultVersion
	}
	return ctx.Version
}
