package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "aexpr",
		Usage: "Exercise the active expression engine",
		Flags: logFlags,
		Commands: []*cli.Command{
			benchCommand(),
			statsCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
