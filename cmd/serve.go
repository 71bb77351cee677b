package cmd

import (
	"encoding/json"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/bridge"
	"github.com/tacet-cli/tacet/dispatch"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/reconcile"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Address to bind to")
	lo.Must0(viper.BindPFlag(key.ServerHost, serveCmd.Flags().Lookup("host")))

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on")
	lo.Must0(viper.BindPFlag(key.ServerPort, serveCmd.Flags().Lookup("port")))

	serveCmd.Flags().Bool("schema", false, "Print the JSON schema of the notification payload and exit")
	serveCmd.Flags().Bool("response", false, "With --schema, print the schema of the response instead")

	serveCmd.SetOut(os.Stdout)
}

// serveCmd receives browser playback notifications and controls Spotify accordingly.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive browser playback notifications and control Spotify",
	Long: `Start the local notification server. Browser watchers (or any other client)
announce playback with POST /video {"action": "play" | "pause"}.

GET /state reports the current state and GET /healthz reports liveness.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			schema := bridge.Schema(lo.Must(cmd.Flags().GetBool("response")))
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(schema))
			return
		}

		ctx, stop := signalContext()
		defer stop()

		handleErr(requireCredential(ctx))

		async := dispatch.NewAsync(newDispatcher(), dispatch.DefaultCommandTimeout)
		loop := reconcile.NewLoop(reconcile.New(async, reconcile.WithName("bridge")))
		go func() { _ = loop.Run(ctx) }()

		server := bridge.NewServer(loop)
		server.StateLogInterval = time.Duration(viper.GetInt(key.ServerStateLogInterval)) * time.Second

		addr := net.JoinHostPort(viper.GetString(key.ServerHost), strconv.Itoa(viper.GetInt(key.ServerPort)))
		err := server.ListenAndServe(ctx, addr)

		stop()
		<-loop.Done()
		if !async.Close(shutdownGrace) {
			log.Warn("exiting before Spotify confirmed the last command")
		}

		handleErr(err)
	},
}
