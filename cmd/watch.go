package cmd

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/bridge"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/watcher"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("debugger-url", "d", "", "DevTools endpoint of a running Chromium")
	lo.Must0(viper.BindPFlag(key.WatcherDebuggerURL, watchCmd.Flags().Lookup("debugger-url")))

	watchCmd.Flags().Bool("headless", false, "Run the launched browser headless")
	lo.Must0(viper.BindPFlag(key.WatcherHeadless, watchCmd.Flags().Lookup("headless")))

	watchCmd.Flags().StringP("bridge", "b", "", "Base URL of the notification server")
	lo.Must0(viper.BindPFlag(key.WatcherBridgeURL, watchCmd.Flags().Lookup("bridge")))
}

// watchCmd follows video elements in a browser and reports them to the notification server.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow video playback in a browser and notify the server",
	Long: `Attach to a Chromium browser over the DevTools protocol and follow every
video element of every tab. Playback changes are sent to the notification
server started with "serve".

A brief pause followed by seeking is not reported.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		notifier := bridge.NewNotifier(viper.GetString(key.WatcherBridgeURL), nil)
		err := watcher.New(watcher.ConfigFromViper(), notifier).Run(ctx)

		if !notifier.Close(shutdownGrace) {
			log.Warn("exiting with notifications in flight")
		}

		if errors.Is(err, context.Canceled) {
			return
		}
		handleErr(err)
	},
}
