package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/Nexus-Mods/extension-modtype-harmony-patcher/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/Nexus-Mods/extension-modtype-harmony-patcher/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/Nexus-Mods/extension-modtype-harmony-patcher/internal/version.Date={{.Date}}
)
