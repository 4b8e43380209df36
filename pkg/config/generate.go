package config

import (
	"github.com/pelletier/go-toml/v2"

	perrors "github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
)

// Generate renders cfg as a TOML document suitable for the user config file.
func Generate(cfg *Config) (string, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return "", perrors.Wrap(err, perrors.ErrInternal, "failed to render configuration")
	}
	return "# harmony patcher configuration\n\n" + string(out), nil
}
