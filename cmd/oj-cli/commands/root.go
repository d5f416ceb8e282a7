package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ojassist/lib/configutil"
	"ojassist/lib/scrapers/openjudge/browse"
	"ojassist/lib/scrapers/openjudge/core"
	"ojassist/lib/scrapers/openjudge/submit"
	"ojassist/lib/sessionstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type cliConfig struct {
	Judge core.Config `json:"judge"`
	// StorePath overrides where the session database lives.
	StorePath string `json:"store_path"`
}

var (
	client       *core.Client
	browseClient browse.Client
	submitClient submit.Client
)

var rootCmd = &cobra.Command{
	Use:   "oj-cli",
	Short: "oj-cli browses and submits to an OpenJudge deployment from the terminal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := configutil.ReadRecursively[cliConfig]("ojassist.json5")
		if err != nil && !os.IsNotExist(err) {
			return err
		}

		storePath := config.StorePath
		if storePath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			storePath = filepath.Join(home, ".ojassist", "session.db")
		}
		if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
			return err
		}
		store, err := sessionstore.NewSqliteStore(storePath)
		if err != nil {
			return err
		}

		client = core.NewClient(store, config.Judge)
		browseClient = browse.NewClient(client)
		submitClient = submit.NewClient(client)

		_, err = client.RestoreSession(cmd.Context())
		return err
	},
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
