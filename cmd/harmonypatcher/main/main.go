package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/cmd/harmonypatcher"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := harmonypatcher.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		format := ui.Detect(os.Stderr)
		fmt.Fprintln(os.Stderr, ui.Render(format, "Error", fmt.Sprintf("Error: %v", err)))
		stop()
		os.Exit(1)
	}
}
