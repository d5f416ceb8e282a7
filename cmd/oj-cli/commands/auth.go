package commands

import (
	"errors"
	"fmt"
	"log"

	"ojassist/lib/scrapers/openjudge/core"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	cookieLocale  string
)

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	loginCookieCmd.Flags().StringVar(&cookieLocale, "locale", "", "locale to apply, e.g. en_US")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(loginCookieCmd)
	rootCmd.AddCommand(langCmd)
	rootCmd.AddCommand(logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs in with email and password; falls back to saved credentials when no flags are given.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		var err error
		if loginEmail == "" && loginPassword == "" {
			err = client.AutoLogin(ctx)
			if errors.Is(err, core.ErrNoSavedCredentials) {
				log.Fatal("no saved credentials, pass --email and --password")
			}
		} else {
			err = client.LoginEmailPassword(ctx, loginEmail, loginPassword)
		}
		if err != nil {
			log.Fatal(err)
		}

		session, _ := client.Session()
		fmt.Printf("logged in, locale %s\n", session.Locale)
	},
}

var loginCookieCmd = &cobra.Command{
	Use:   "login-cookie <cookie string>",
	Short: "Establishes a session from a cookie header copied out of a browser.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := client.LoginCookieString(cmd.Context(), args[0], cookieLocale)
		if err != nil {
			log.Fatal(err)
		}

		session, _ := client.Session()
		fmt.Printf("session imported, locale %s\n", session.Locale)
	},
}

var langCmd = &cobra.Command{
	Use:   "lang <locale>",
	Short: "Switches the judge's response language, e.g. en_US or zh_CN.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := client.SwitchLanguage(cmd.Context(), args[0]); err != nil {
			log.Fatal(err)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clears the session, cookie jar and saved credentials.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := client.ClearSession(cmd.Context()); err != nil {
			log.Fatal(err)
		}
		fmt.Println("logged out")
	},
}
