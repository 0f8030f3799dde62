package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sadopc/studyr/internal/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(context.Background(), version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
