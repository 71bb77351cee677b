// Package cmd implements the command-line interface for tacet.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/color"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/icon"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/spotify"
	"github.com/tacet-cli/tacet/style"
	"github.com/tacet-cli/tacet/version"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

// rootCmd defines the entry point for the tacet application.
var rootCmd = &cobra.Command{
	Use:   constant.Tacet,
	Short: "Pause Spotify while a video plays and resume it when the video stops",
	Long: style.New().Bold(true).Foreground(color.Spotify).Render(constant.Tacet) + "\n" +
		style.New().Italic(true).Foreground(color.HiGreen).Render("    - Pause Spotify while a video plays and resume it when the video stops"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiGreen + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

// handleControlErr is handleErr for playback commands. A missing active
// device is not fatal: it is reported and the command exits normally.
func handleControlErr(err error) {
	if errors.Is(err, spotify.ErrNoActiveDevice) {
		_, _ = fmt.Fprintf(
			os.Stderr,
			"%s %s\n",
			style.Fg(color.Yellow)(icon.Get(icon.Warn)),
			"No active Spotify device. Start playback on a device and try again.",
		)
		return
	}

	handleErr(err)
}
