package assembly

import (
	"strings"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patchtarget"
)

const (
	// systemPrefix marks framework assemblies the game provides itself
	systemPrefix = "System"

	// SerializationAssembly is the one system assembly the patcher brings along
	SerializationAssembly = "System.Runtime.Serialization.dll"
)

// FilterBundled keeps the entries of a module listing that may be deployed:
// non-system assemblies and the serialization assembly.
func FilterBundled(listing []string) []string {
	var out []string
	for _, name := range listing {
		if name == SerializationAssembly ||
			(patchtarget.IsAssembly(name) && !strings.HasPrefix(name, systemPrefix)) {
			out = append(out, name)
		}
	}
	return out
}

// Diff returns the deployable entries of bundled that are neither in
// existing nor in gameOwned, in the order they appear in bundled.
// gameOwned must not contain symlinks.
func Diff(bundled, existing, gameOwned []string) []string {
	skip := make(map[string]struct{}, len(existing)+len(gameOwned))
	for _, name := range existing {
		skip[name] = struct{}{}
	}
	for _, name := range gameOwned {
		skip[name] = struct{}{}
	}

	diff := []string{}
	for _, name := range FilterBundled(bundled) {
		if _, ok := skip[name]; ok {
			continue
		}
		diff = append(diff, name)
	}
	return diff
}
