package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/lsrouted/lsrouted/util/log"
	"github.com/urfave/cli"
)

// NewDumpRoutesCommand creates a new dump-routes command.
func NewDumpRoutesCommand() cli.Command {
	cmd := cli.Command{
		Name:  "dump-routes",
		Usage: "dump the computed route set (destination -> first hop)",
	}

	cmd.Action = func(c *cli.Context) error {
		resp, err := http.Get(fmt.Sprintf("http://%s/routes", c.GlobalString("admin")))
		if err != nil {
			log.Errorf("request failed: %v", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		var routes map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&routes); err != nil {
			log.Errorf("decoding response failed: %v", err)
			os.Exit(1)
		}

		for dest, hop := range routes {
			fmt.Printf("%s via %s\n", dest, hop)
		}

		return nil
	}

	return cmd
}
