package main

import (
	"os"

	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/urfave/cli"
)

func main() {
	logger.Init()

	if err := newApp().Run(os.Args); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "athan"
	app.Usage = "live prayer times countdown for any city"
	app.UsageText = "athan <command> [arguments...]"
	app.Version = "1.0.0"
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Aliases:   []string{"r"},
			Usage:     "show a live clock and countdown to the next prayer",
			ArgsUsage: " ",
			Flags:     append(cityFlags, logFileFlag),
			Action:    run,
		},
		{
			Name:      "next",
			Aliases:   []string{"n"},
			Usage:     "print the next prayer for a city and exit",
			ArgsUsage: " ",
			Flags:     cityFlags,
			Action:    next,
		},
		{
			Name:      "search",
			Aliases:   []string{"s"},
			Usage:     "look up cities by name",
			ArgsUsage: "<query>",
			Action:    search,
		},
		{
			Name:   "recent",
			Usage:  "list recently selected cities",
			Action: recent,
		},
		{
			Name:   "clear-cache",
			Usage:  "drop cached lookups and recent cities",
			Action: clearCache,
		},
	}
	return app
}
