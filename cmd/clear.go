package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/tacet-cli/tacet/color"
	"github.com/tacet-cli/tacet/filesystem"
	"github.com/tacet-cli/tacet/icon"
	"github.com/tacet-cli/tacet/style"
	"github.com/tacet-cli/tacet/util"
	"github.com/tacet-cli/tacet/where"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

// clearTargets registry of all application artifacts that can be selectively cleared.
var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"logs directory", "logs", mo.Some("l"), where.Logs},
	{"browser profile", "browser-profile", mo.Some("b"), where.BrowserProfile},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes cached and generated application artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached and generated application artifacts",
	Long: `Clear cached and generated application artifacts.
The browser profile holds the sessions of the browser launched by "watch".`,
	Run: func(cmd *cobra.Command, args []string) {
		targets := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(t.argLong))
		})

		if len(targets) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, target := range targets {
			name := strings.ToUpper(target.name[:1]) + target.name[1:]
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := filesystem.API().RemoveAll(target.location())
			erase()
			handleErr(err)

			fmt.Printf("%s %s cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)), name)
		}
	},
}
