package main

import (
	"context"
	"log"

	"tableflip.dev/apptcal/pkg/commands"
)

func main() {
	if err := commands.New().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
