// Package main is the entry point for the tacet application.
package main

import (
	"github.com/samber/lo"
	"github.com/tacet-cli/tacet/cmd"
	"github.com/tacet-cli/tacet/config"
	"github.com/tacet-cli/tacet/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
