// Package patcher invokes the external harmony patcher that injects the
// mod loader into a game assembly.
package patcher

import (
	"context"
	stderrors "errors"
)

// ErrUserCanceled is returned when the user aborted the patcher. Callers
// treat it as a successful, terminal outcome.
var ErrUserCanceled = stderrors.New("patching canceled by user")

// Invocation carries everything the patcher needs for one run.
type Invocation struct {
	// ExtensionRoot is the directory the patcher modules are resolved from
	ExtensionRoot string
	// TargetAssembly is the staged assembly to patch
	TargetAssembly string
	// EntryPoint is the method the loader hooks into, e.g. "Namespace.Class::Method"
	EntryPoint string
	DryRun     bool
	// ModsPath is the directory the injected loader scans for mods
	ModsPath string
	// Context is an opaque handle identifying the host session
	Context       string
	InjectRuntime bool
	RuntimeDir    string
}

// Patcher runs the patcher for one invocation.
type Patcher interface {
	Run(ctx context.Context, inv Invocation) error
}

// Func adapts an ordinary function to the Patcher interface.
type Func func(ctx context.Context, inv Invocation) error

// Run calls f(ctx, inv)
func (f Func) Run(ctx context.Context, inv Invocation) error {
	return f(ctx, inv)
}
