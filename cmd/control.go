package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tacet-cli/tacet/color"
	"github.com/tacet-cli/tacet/dispatch"
	"github.com/tacet-cli/tacet/icon"
	"github.com/tacet-cli/tacet/spotify"
	"github.com/tacet-cli/tacet/style"
	"github.com/tacet-cli/tacet/util"
)

var controlShort = map[dispatch.Action]string{
	dispatch.Pause:    "Pause playback on the active Spotify device",
	dispatch.Resume:   "Resume playback on the active Spotify device",
	dispatch.Devices:  "List the Spotify devices available for playback",
	dispatch.Next:     "Skip to the next track",
	dispatch.Previous: "Go back to the previous track",
}

func init() {
	for _, action := range dispatch.Actions {
		rootCmd.AddCommand(newControlCmd(action))
	}
}

// newControlCmd builds the one-shot command running action against the player.
func newControlCmd(action dispatch.Action) *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(action),
		Aliases: action.Aliases(),
		Short:   controlShort[action],
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(cmd.Context(), dispatch.DefaultCommandTimeout)
			defer cancel()

			eraser := util.PrintErasable(fmt.Sprintf("%s %s...", icon.Get(icon.Progress), action))
			result, err := newDispatcher().Run(ctx, action)
			eraser()

			if err != nil {
				handleControlErr(err)
				return
			}

			if action == dispatch.Devices {
				printDevices(cmd, result.Devices)
				return
			}

			cmd.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), action)
		},
	}

	cmd.SetOut(os.Stdout)
	return cmd
}

func printDevices(cmd *cobra.Command, devices []spotify.Device) {
	if len(devices) == 0 {
		cmd.Println("No active devices found. Make sure Spotify is running.")
		return
	}

	for _, d := range devices {
		line := fmt.Sprintf("- %s", d)
		if d.Active {
			line += " " + style.Active("active")
		}
		cmd.Println(line)
	}
}
