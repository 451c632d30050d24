// Command fanchat is the entry point for the fifa.com chat-widget backend.
// It provides a CLI interface (via Cobra) and an HTTP server exposing the
// streaming chat API consumed by the site widget.
package main

import (
	"fmt"
	"os"

	"github.com/fanzone/fanchat-go/cmd/fanchat/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
