// Package main is the entry point for the planner command line tool.
package main

import (
	"log"

	"github.com/pkordes/trip-planner/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
