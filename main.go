// main.go
//
// Entry point for wordle-analysis. Commands, config and logging setup live
// in internal/cli.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/kbfreder/wordle-analysis/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal().Err(err).Msg("wordle-analysis")
	}
}
