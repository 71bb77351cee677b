package version

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/color"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/icon"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/style"
	"github.com/tacet-cli/tacet/util"
)

// Notify prints a terminal alert when a newer release is available.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	latest, err := Latest()
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint(fmt.Sprintf("https://github.com/%s/releases/tag/v%s", constant.Repository, latest)),
	)
}
