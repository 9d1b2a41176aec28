package main

import (
	"os"

	"github.com/ZhangYouJie-Major/AskIt/cmd/askit-mock/app"
)

var version string

func main() {
	cmd := app.NewCommand(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
