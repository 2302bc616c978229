// Command lsroutectl is a small CLI client for a running lsrouted
// instance's loopback admin API.
package main

import (
	"os"

	"github.com/lsrouted/lsrouted/util/log"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "lsroutectl"
	app.Usage = "inspect a running lsrouted instance"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "admin",
			Value: "127.0.0.1:8080",
			Usage: "address of the target daemon's admin API",
		},
	}
	app.Commands = []cli.Command{
		NewDumpLSDBCommand(),
		NewDumpRoutesCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
