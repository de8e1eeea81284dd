package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Zianiwarhead/MyMusicApp/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the player daemon",
	Long:  `Start the MyMusicApp HTTP server: library API, player transport control and the WebSocket media bridge.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
