package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gossip_chat/internal/config"
	"gossip_chat/internal/console"
	"gossip_chat/internal/dataType"
	"gossip_chat/internal/node"
	"gossip_chat/internal/registry"
	"gossip_chat/internal/telemetry"
	"gossip_chat/internal/utils"
)

func main() {
	var basePath string
	flag.StringVar(&basePath, "prefix", "", "Config file base path")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-prefix path] <team name> <port>\n", os.Args[0])
		os.Exit(1)
	}
	teamName := flag.Arg(0)
	port, err := strconv.ParseUint(flag.Arg(1), 10, 16)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Usage: %s [-prefix path] <team name> <port>\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.LoadMainConfig(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load config failed: %v\n", err)
		os.Exit(1)
	}
	cfg.TeamName = teamName
	cfg.Port = uint16(port)

	logger := utils.NewLogger(cfg.LogPath, cfg.Debug).
		With(zap.String("session", uuid.New().String()))
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := telemetry.Serve(cfg.MetricsAddr); err != nil {
				logger.Warn("metrics listener failed", zap.Error(err))
			}
		}()
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("node failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.MainConfig, logger *zap.Logger) error {
	client := registry.NewClient(cfg.RegistryAddr, cfg.Port, logger)
	session := registry.NewSession(cfg.TeamName, cfg.CodePath)

	logger.Info("getting initial peers", zap.String("registry", cfg.RegistryAddr))
	if err := client.Run(session); err != nil {
		return fmt.Errorf("bootstrap session: %w", err)
	}

	self, err := dataType.ParseEndpoint(session.LocalAddr)
	if err != nil {
		return fmt.Errorf("own endpoint: %w", err)
	}

	opts := node.Options{
		KeepaliveInterval: cfg.Keepalive(),
		PeerTimeout:       cfg.Timeout(),
		BroadcastPoll:     cfg.Poll(),
	}
	if limit, window, ok := cfg.RateLimit(); ok {
		opts.RateLimit = limit
		opts.RateWindow = window
	}

	mailbox := dataType.NewMailbox()
	gossip, err := node.New(self, cfg.RegistryAddr, session.Peers, mailbox, logger, opts)
	if err != nil {
		return err
	}

	term := console.New(mailbox, os.Stdin, os.Stdout, logger)
	term.Run()

	// Blocks until a stop datagram arrives.
	if err := gossip.Run(); err != nil {
		return err
	}
	term.Close()

	logger.Info("sending report", zap.String("registry", cfg.RegistryAddr))
	session.Report = gossip.Log().Report()
	if err := client.Run(session); err != nil {
		return fmt.Errorf("report session: %w", err)
	}
	return nil
}
