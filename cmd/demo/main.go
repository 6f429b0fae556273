package main

import (
	"context"
	"crypto/rand"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avoskres/salondesk/internal/buildinfo"
	"github.com/avoskres/salondesk/internal/demoserver"
	"github.com/avoskres/salondesk/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	addr := flag.String("a", ":8080", "address and port to listen on")
	flag.Parse()

	// Fresh secret per process: demo tokens do not survive a restart.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	app, err := demoserver.NewApp(demoserver.Config{Addr: *addr, Secret: secret}, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
