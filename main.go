package main

import (
	"log"

	"github.com/Zianiwarhead/MyMusicApp/cmd"
)

func main() {
	cmd.Execute()
	// If Execute() had a problem, Cobra would have called os.Exit.
	// Reaching here means the command completed or the server shut down cleanly.
	log.Println("Command execution finished.")
}
