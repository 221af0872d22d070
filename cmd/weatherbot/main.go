package main

import (
	"fmt"
	"os"

	"github.com/m3rciful/weatherbot/core/cmd"
	"github.com/m3rciful/weatherbot/internal/app"
)

func main() {
	if err := cmd.Run(cmd.Options{Services: app.Services}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
