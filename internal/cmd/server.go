package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/phonepad/phonepad/device"
	"github.com/phonepad/phonepad/internal/discovery"
	"github.com/phonepad/phonepad/internal/log"
	"github.com/phonepad/phonepad/internal/metrics"
	"github.com/phonepad/phonepad/internal/server/ws"
	"github.com/phonepad/phonepad/internal/session"
	"github.com/phonepad/phonepad/internal/util"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

type Server struct {
	WS              ws.Config        `embed:"" prefix:"ws."`
	Session         session.Config   `embed:"" prefix:"session."`
	Device          device.Config    `embed:"" prefix:"device."`
	Discovery       discovery.Config `embed:"" prefix:"discovery."`
	ShutdownTimeout time.Duration    `help:"Grace period for closing client sessions on shutdown" default:"5s" env:"PHONEPAD_SHUTDOWN_TIMEOUT"`
}

// Run is called by Kong when the server command is executed.
func (s *Server) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := s.StartServer(ctx, logger, rawLogger, nil)
	if err != nil {
		logger.Error("server failed", "error", err)
		util.PauseOnExit(os.Stdin, os.Stdout)
	}
	return err
}

// StartServer runs until ctx is cancelled. ready, when non-nil, receives the
// bound WebSocket server once it accepts connections.
func (s *Server) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, ready chan<- *ws.Server) error {
	logger.Info("Starting PhonePad server", "version", Version, "backend", s.Device.Backend)

	factory, err := device.NewFactory(s.Device, logger)
	if err != nil {
		return fmt.Errorf("device backend: %w", err)
	}

	if s.Discovery.Enabled && s.Discovery.IP == "" {
		ip, err := discovery.LANAddress()
		if err != nil {
			return fmt.Errorf("cannot determine LAN address (set --discovery.ip or --no-discovery.enabled): %w", err)
		}
		s.Discovery.IP = ip
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := ws.New(s.WS, ws.Options{
		Factory:  factory,
		Session:  s.Session,
		Logger:   logger,
		Raw:      rawLogger,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Backend:  s.Device.Backend,
		Version:  Version,
	})
	if err := srv.Start(); err != nil {
		return err
	}

	var announcer *discovery.Announcer
	if s.Discovery.Enabled {
		announcer, err = discovery.Announce(s.Discovery, srv.Port(), logger)
		if err != nil {
			logger.Warn("service discovery unavailable, clients must connect by address", "error", err)
		}
	}

	if ready != nil {
		ready <- srv
	}

	<-ctx.Done()
	logger.Info("Shutting down")

	announcer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	if err := srv.Close(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	return nil
}
