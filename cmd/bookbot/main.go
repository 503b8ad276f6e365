// Command bookbot is the bookstore assistant.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/bookbot/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is fine; the environment may already hold the key.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(&cli.Bootstrap{
		Settings: openSettings,
		Services: buildServices,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
