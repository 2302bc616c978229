package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/lsrouted/lsrouted/util/log"
	"github.com/urfave/cli"
)

// NewDumpLSDBCommand creates a new dump-lsdb command.
func NewDumpLSDBCommand() cli.Command {
	cmd := cli.Command{
		Name:  "dump-lsdb",
		Usage: "dump the link-state database",
	}

	cmd.Action = func(c *cli.Context) error {
		resp, err := http.Get(fmt.Sprintf("http://%s/lsdb", c.GlobalString("admin")))
		if err != nil {
			log.Errorf("request failed: %v", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		var lsdb map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&lsdb); err != nil {
			log.Errorf("decoding response failed: %v", err)
			os.Exit(1)
		}

		out, err := json.MarshalIndent(lsdb, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(out))
		return nil
	}

	return cmd
}
