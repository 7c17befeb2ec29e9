package main

import (
	"context"
	"fmt"
	"os"

	"mood-journal-backend/internal/commands"
)

func main() {
	if err := commands.New().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "moodjournal:", err)
		os.Exit(1)
	}
}
