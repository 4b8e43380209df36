// Package patchtarget decides whether a game is a patch target and
// normalizes the vendor supplied patch configuration attached to it.
//
// Game extensions opt in by registering details under DetailsKey, e.g.
//
//	details:
//	  harmonyPatchDetails:
//	    dataPath: Game_Data/Managed
//	    entryPoint: Mod.Loader::Init
//	    modsPath: Mods
//	    injectVIGO: true
package patchtarget

import (
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

const (
	// DetailsKey is the game details key holding the patch configuration
	DetailsKey = "harmonyPatchDetails"

	// DefaultAssembly is appended to data paths that name a directory
	DefaultAssembly = "Assembly-CSharp.dll"

	// AssemblyExt is the extension of runtime assemblies
	AssemblyExt = ".dll"
)

// Config is the resolved patch configuration of a game.
type Config struct {
	// DataPath is relative to the game's discovery path and always names
	// an assembly file.
	DataPath      string `mapstructure:"dataPath" json:"dataPath"`
	EntryPoint    string `mapstructure:"entryPoint" json:"entryPoint"`
	ModsPath      string `mapstructure:"modsPath" json:"modsPath"`
	InjectRuntime bool   `mapstructure:"injectVIGO" json:"injectVIGO"`
}

// Resolve extracts the patch configuration of game. The second result is
// false when the game declares none or the declaration cannot be decoded;
// the latter is logged and otherwise treated the same way.
func Resolve(game types.Game) (*Config, bool) {
	raw, ok := game.Details[DetailsKey]
	if !ok || raw == nil {
		return nil, false
	}

	logger := logging.GetLogger("patchtarget")

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: false,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build patch details decoder")
		return nil, false
	}
	if err := decoder.Decode(raw); err != nil {
		logger.Error().Err(err).Str("game", game.ID).Msg("Invalid patcher details provided")
		return nil, false
	}
	if cfg.DataPath == "" {
		logger.Error().Str("game", game.ID).Msg("Invalid patcher details provided: dataPath is empty")
		return nil, false
	}

	if !IsAssembly(cfg.DataPath) {
		cfg.DataPath = filepath.Join(cfg.DataPath, DefaultAssembly)
	}

	return &cfg, true
}

// IsTarget reports whether game has a usable patch configuration.
func IsTarget(game types.Game) bool {
	_, ok := Resolve(game)
	return ok
}

// IsAssembly reports whether name carries the assembly extension.
func IsAssembly(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), AssemblyExt)
}

// AssemblyDir returns the directory containing p when p names an assembly,
// and p itself otherwise.
func AssemblyDir(p string) string {
	if IsAssembly(p) {
		return filepath.Dir(p)
	}
	return p
}
