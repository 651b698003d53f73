package main

import (
	"context"
	"fmt"
	"go/format"
	"log"
	"os"
	"time"

	"github.com/delaneyj/aexpr/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	outKey               = "out"
	genericParamCountKey = "count"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the typed WatchN helpers for aexpr",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  outKey,
				Usage: "File to write the generated helpers to",
				Value: "aexpr/watch_gen.go",
			},
			&cli.IntFlag{
				Name:  genericParamCountKey,
				Usage: "Number of bound instance arities to generate",
				Value: 8,
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Codegen for aexpr started !")
	defer func() {
		log.Printf("Codegen for aexpr finished in %v", time.Since(start))
	}()

	count := int(cmd.Int(genericParamCountKey))
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}

	contents, err := format.Source([]byte(templates.WatchGen(count)))
	if err != nil {
		return fmt.Errorf("format generated code: %w", err)
	}
	return os.WriteFile(cmd.String(outKey), contents, 0644)
}
