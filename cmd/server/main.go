package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/reservations/cmd/server/internal/commands"
	"github.com/wolfeidau/reservations/internal/config"
)

var (
	version = "dev"
	cli     struct {
		Version kong.VersionFlag
		Server  commands.ServerCmd `cmd:"" default:"withargs" help:"Start the reservation API server"`
	}
)

func main() {
	// .env values must be in the environment before kong resolves env tags.
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	options := append(config.ParserOptions(),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	cmd := kong.Parse(&cli, options...)
	err := cmd.Run(&commands.Globals{Version: version})
	cmd.FatalIfErrorf(err)
}
