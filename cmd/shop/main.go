// Command shop runs the catalog service and its maintenance tasks.
//
//	shop serve    start the HTTP API
//	shop migrate  create or update the schema
//	shop seed     insert sample catalog data
//	shop derive   derive image variants left pending or failed
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "shop",
		Usage: "Product catalog service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file read before the environment",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Run database migration",
				Action: migrate,
			},
			{
				Name:   "seed",
				Usage:  "Insert sample categories, properties and products",
				Action: seed,
			},
			{
				Name:   "derive",
				Usage:  "Derive image variants of products left pending or failed",
				Action: derive,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
