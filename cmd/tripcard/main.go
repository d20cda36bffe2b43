// Command tripcard plans trips from the terminal and manages the saved trip
// cards. Upstream lookups go either straight to the providers (credentials
// from the environment) or, with --server, through a running API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional.
	_ = godotenv.Load()

	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
