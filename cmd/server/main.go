package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Technochips/chipscraft/internal/config"
	"github.com/Technochips/chipscraft/internal/heartbeat"
	"github.com/Technochips/chipscraft/internal/level"
	"github.com/Technochips/chipscraft/internal/logging"
	"github.com/Technochips/chipscraft/internal/protocol"
	"github.com/Technochips/chipscraft/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (defaults to config.yaml in . or /etc/chipscraft)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootstrapLogger().Error("load config: %v", err)
		os.Exit(1)
	}

	lists, err := config.LoadUserLists(cfg)
	if err != nil {
		bootstrapLogger().Error("load user lists: %v", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Enabled:    true,
		FilePath:   "chipscraft.log",
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 28,
		Compress:   true,
	})
	defer logger.Close()

	lvl := level.New(cfg.LevelName)
	if err := lvl.Load(); err != nil {
		logger.Info("no existing level %q found, generating a fresh one: %v", cfg.LevelName, err)
		if err := lvl.Generate(cfg.LevelSizeX, cfg.LevelSizeY, cfg.LevelSizeZ, cfg.LevelType, cfg.LevelSeed); err != nil {
			logger.Error("generate level: %v", err)
			os.Exit(1)
		}
		lvl.Changed = true
	}

	s := server.New(cfg, lists, lvl, logger)
	s.ConfigPath = *configPath

	var beat *heartbeat.Scheduler
	if cfg.Heartbeat {
		beat = heartbeat.New(cfg.HeartbeatAddress, s, logger)
		if err := beat.Start(); err != nil {
			logger.Error("heartbeat: %v", err)
		}
	}

	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		logger.Error("listen on %s: %v", cfg.Address, err)
		os.Exit(1)
	}
	logger.Info("chipscraft listening on %s", cfg.Address)

	go acceptLoop(listener, s, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal %v, shutting down", sig)

	shutdown(listener, s, beat, logger)
}

// bootstrapLogger gives config/user-list load failures somewhere to go
// before the real, possibly file-backed, logger can be built.
func bootstrapLogger() *logging.Logger {
	return logging.New(logging.Config{})
}

func acceptLoop(listener net.Listener, s *server.Server, logger *logging.Logger) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if !s.Running() {
				return
			}
			logger.Warn("accept: %v", err)
			continue
		}
		go server.Serve(s, conn, logger)
	}
}

// shutdown runs the warn/sleep/disconnect/save sequence: players get a
// warning, three seconds to react, a final disconnect, then the level is
// saved.
func shutdown(listener net.Listener, s *server.Server, beat *heartbeat.Scheduler, logger *logging.Logger) {
	s.Stop()
	listener.Close()
	if beat != nil {
		beat.Stop()
	}

	s.BroadcastSystemMessage(-1, "Server is stopping in a few seconds...")
	time.Sleep(3 * time.Second)
	s.BroadcastPacket(-1, protocol.Disconnect{Reason: "Stopping server"})
	time.Sleep(1 * time.Second)

	s.Level.Changed = true
	if err := s.Level.Save(); err != nil {
		logger.Error("save level on shutdown: %v", err)
	}
	logger.Info("shutdown complete")
}
