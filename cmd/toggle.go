package cmd

import (
	"context"
	"errors"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/config"
	"github.com/tacet-cli/tacet/dispatch"
	"github.com/tacet-cli/tacet/icon"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/poller"
	"github.com/tacet-cli/tacet/reconcile"
	"github.com/tacet-cli/tacet/style"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(toggleVideoCmd)

	toggleVideoCmd.Flags().IntP("interval", "i", 0, "Sampling interval in milliseconds")
	lo.Must0(viper.BindPFlag(key.DetectInterval, toggleVideoCmd.Flags().Lookup("interval")))

	toggleVideoCmd.Flags().StringSliceP("keyword", "k", nil, "Keywords marking a window as video")
	lo.Must0(viper.BindPFlag(key.DetectKeywords, toggleVideoCmd.Flags().Lookup("keyword")))
}

// toggleVideoCmd pauses Spotify while the focused window shows a video.
var toggleVideoCmd = &cobra.Command{
	Use:   "toggle-video",
	Short: "Pause Spotify while the focused window shows a video",
	Long: `Sample the foreground window periodically and pause Spotify while its title
or application matches a video keyword. Playback resumes when focus moves away.

The interval and keywords are reloaded when the config file changes.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		ctx, stop := signalContext()
		defer stop()

		handleErr(requireCredential(ctx))

		async := dispatch.NewAsync(newDispatcher(), dispatch.DefaultCommandTimeout)
		loop := reconcile.NewLoop(reconcile.New(async, reconcile.WithName("focus")))

		p := poller.New(
			poller.NewSampler(),
			loop.Send,
			poller.WithInterval(config.Millis(key.DetectInterval)),
			poller.WithKeywords(config.List(key.DetectKeywords)),
		)

		if viper.ConfigFileUsed() != "" {
			viper.OnConfigChange(func(fsnotify.Event) {
				p.Reload(config.Millis(key.DetectInterval), config.List(key.DetectKeywords))
			})
			viper.WatchConfig()
		}

		cmd.Printf("%s watching the focused window, press Ctrl+C to stop\n", style.Active(icon.Get(icon.Video)))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return loop.Run(gctx) })
		g.Go(func() error { return p.Run(gctx) })

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(err)
		}

		if !async.Close(shutdownGrace) {
			log.Warn("exiting before Spotify confirmed the last command")
		}
	},
}
