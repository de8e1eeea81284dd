package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zianiwarhead/MyMusicApp/server"
)

var rootCmd = &cobra.Command{
	Use:   "mymusicapp",
	Short: "MyMusicApp is a headless music player daemon.",
	Run: func(cmd *cobra.Command, args []string) {
		// Running without a subcommand starts the server, same as `server`.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
