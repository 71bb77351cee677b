package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/auth"
	"github.com/tacet-cli/tacet/color"
	"github.com/tacet-cli/tacet/icon"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/open"
	"github.com/tacet-cli/tacet/style"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	authCmd.PersistentFlags().Bool("no-browser", false, "Print the authorization URL instead of opening a browser")

	authStatusCmd.SetOut(os.Stdout)
}

// authCmd groups the Spotify account commands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Spotify account used for playback control",
}

// authLoginCmd runs the authorization flow and stores the resulting credential.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize tacet to control Spotify playback",
	Long: `Open the Spotify authorization page and store the granted credential in the
system keyring. The redirect URI must be registered for the client ID.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if viper.GetString(key.SpotifyClientID) == "" {
			input := survey.Input{
				Message: "Spotify client ID is not set. Please enter it:",
				Help:    "Create an application at https://developer.spotify.com/dashboard and copy its client ID",
			}
			var response string
			handleErr(survey.AskOne(&input, &response))

			if response == "" {
				handleErr(errors.New("client ID is required"))
			}

			viper.Set(key.SpotifyClientID, response)
			handleErr(writeConfig())
		}

		openBrowser := open.Start
		if noBrowser, _ := cmd.Flags().GetBool("no-browser"); noBrowser {
			openBrowser = func(string) error { return errors.New("browser disabled") }
		}

		browse := func(u string) error {
			if err := openBrowser(u); err != nil {
				log.Debugf("browser not opened: %s", err)
				fmt.Println("Please open the following URL in your browser:")
				fmt.Println(u)
			}
			return nil
		}

		credential, err := auth.Login(cmd.Context(), auth.OAuthFromConfig(), browse)
		handleErr(err)
		handleErr(auth.NewStore().Save(credential))

		fmt.Printf("%s logged in to Spotify\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

// authLogoutCmd removes the stored credential.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Spotify credential",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.NewStore().Delete())
		fmt.Printf("%s logged out\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

// authStatusCmd reports whether a credential is stored.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a Spotify credential is stored",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		credential, err := auth.NewStore().Load()
		if errors.Is(err, auth.ErrNotAuthenticated) {
			cmd.Printf("%s %s\n", style.Idle("logged out"), style.Faint("run `tacet auth login`"))
			return
		}
		handleErr(err)

		cmd.Println(style.Active("logged in"))
		if credential.Scope != "" {
			cmd.Printf("%s %s\n", style.Fg(color.Blue)("Scope:"), credential.Scope)
		}
		if !credential.Expiry.IsZero() {
			state := style.Fg(color.Green)(credential.Expiry.Local().Format(time.RFC1123))
			if credential.Expired(time.Now()) {
				state = style.Fg(color.Yellow)("expired, refreshed on next use")
			}
			cmd.Printf("%s %s\n", style.Fg(color.Blue)("Token:"), state)
		}
	},
}
