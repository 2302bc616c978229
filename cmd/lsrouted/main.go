// Command lsrouted is the link-state routing daemon entrypoint: it
// resolves configuration from the environment, binds the UDP socket,
// and runs the origination/listener/admin loops until signaled to stop.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lsrouted/lsrouted/config"
	"github.com/lsrouted/lsrouted/kernel"
	"github.com/lsrouted/lsrouted/metrics"
	"github.com/lsrouted/lsrouted/protocols/lsr/server"
	"github.com/lsrouted/lsrouted/util/log"
	btime "github.com/lsrouted/lsrouted/util/time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Errorf("configuration error: %v", err)
		os.Exit(1)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := log.SetLevel(v); err != nil {
			log.Warnf("invalid LOG_LEVEL %q: %v", v, err)
		}
	}

	m := metrics.New(nil)

	srv := server.New(server.Config{
		Name:              cfg.Name,
		IP:                cfg.IP,
		Neighbors:         cfg.Neighbors,
		OriginateInterval: cfg.OriginateInterval,
		ArtifactDir:       cfg.ArtifactDir,
	}, kernel.ExecPinger{}, kernel.ExecRouteManipulator{}, m)

	if err := srv.Bind(); err != nil {
		log.Errorf("bind failed: %v", err)
		os.Exit(1)
	}
	defer srv.Close()

	http.Handle("/metrics", metrics.Handler())
	go func() {
		if err := srv.ServeAdmin(cfg.AdminAddr); err != nil {
			log.Warnf("admin API stopped: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.Start(ctx, btime.NewTicker(cfg.OriginateInterval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Infof("shutting down")
	cancel()
}
