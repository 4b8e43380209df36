package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	perrors "github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/paths"
)

// EnvPrefix is the prefix of environment variables read into the config.
// A double underscore separates section and key: HARMONY_PATCHER_PATCHER__COMMAND.
const EnvPrefix = "HARMONY_PATCHER_"

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist when set.
	// When empty the default file in the config dir is used if present.
	ConfigFile string
	// EnvFile is a dotenv file loaded before the environment is read.
	// Missing files are ignored. Empty means ".env".
	EnvFile string
	// Overrides are applied last, keyed by dotted path.
	Overrides map[string]interface{}
	// Paths resolves defaults; nil means paths.New().
	Paths *paths.Paths
}

// Load builds the effective configuration
func Load(opts LoadOptions) (*Config, error) {
	p := opts.Paths
	if p == nil {
		p = paths.New()
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, perrors.Wrapf(err, perrors.ErrConfigLoad, "failed to load env file %s", envFile)
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file
	configFile := opts.ConfigFile
	if configFile == "" {
		if _, err := os.Stat(p.ConfigFile()); err == nil {
			configFile = p.ConfigFile()
		}
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, perrors.Wrapf(err, perrors.ErrConfigLoad, "config file %s", configFile)
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, perrors.Wrapf(err, perrors.ErrConfigParse, "failed to load config from %s", configFile)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Explicit overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, perrors.Wrap(err, perrors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrConfigParse, "failed to unmarshal configuration")
	}

	postProcessConfig(&cfg, p)

	return &cfg, nil
}

// envKey maps HARMONY_PATCHER_PATCHER__MODULE_PATH to patcher.module_path.
// Variables without a section separator map to top-level keys, which the
// Config struct ignores.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}
