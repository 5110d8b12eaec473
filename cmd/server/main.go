// Command matchcore-server runs a single matchcore engine behind a TCP
// listener. Adapted from the teacher's cmd/server/server.go: same
// signal-driven shutdown shape, wired onto the new engine/server
// packages instead of fenrir's.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saiputravu/matchcore/internal/common"
	"github.com/saiputravu/matchcore/internal/engine"
	"github.com/saiputravu/matchcore/internal/server"
)

func main() {
	address := flag.String("address", "0.0.0.0", "listen address")
	port := flag.Int("port", 9001, "listen port")
	orderAsset := flag.String("order-asset", "BTC", "traded order asset symbol")
	priceAsset := flag.String("price-asset", "USD", "quoting price asset symbol")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := server.New(*address, *port, common.Symbol(*orderAsset), common.Symbol(*priceAsset), engine.Config{})
	srv.Run(ctx)
}
