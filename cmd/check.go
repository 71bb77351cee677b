package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/icon"
	"github.com/tacet-cli/tacet/style"
)

// focusTools lists, per platform, the programs the window sampler can use.
// One of them is enough.
var focusTools = map[string][]string{
	constant.Linux:  {"xdotool", "xprop"},
	constant.Darwin: {"osascript"},
}

var focusInstall = map[string]string{
	constant.Linux:  "sudo apt install xdotool",
	constant.Darwin: "xcode-select --install",
}

// CheckDependencies verifies that the foreground window can be sampled.
// Windows samples through the system API and needs nothing.
func CheckDependencies() {
	tools, ok := focusTools[runtime.GOOS]
	if !ok {
		return
	}

	_, found := lo.Find(tools, func(tool string) bool {
		_, err := exec.LookPath(tool)
		return err == nil
	})
	if found {
		return
	}

	printMissingDependencyError(strings.Join(tools, " or "), focusInstall[runtime.GOOS])
	os.Exit(1)
}

func printMissingDependencyError(dep, installCmd string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("Focus detection needs %s in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
