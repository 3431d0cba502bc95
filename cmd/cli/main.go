package main

import (
	"context"
	"log"
	"os"

	"github.com/akarpov87/authkeeper/internal/buildinfo"
	"github.com/akarpov87/authkeeper/internal/client/cli"
	"github.com/akarpov87/authkeeper/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
