package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/pricegate/internal/app"
	"github.com/dmitrijs2005/pricegate/internal/config"
	"github.com/spf13/pflag"
)

func main() {

	cfg, err := config.LoadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	a, err := app.NewApp(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
