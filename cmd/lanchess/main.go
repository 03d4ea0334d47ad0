package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/justinabrahms/lanchess/internal/chess"
	"github.com/justinabrahms/lanchess/internal/config"
	"github.com/justinabrahms/lanchess/internal/match"
	"github.com/justinabrahms/lanchess/internal/spectate"
	"github.com/justinabrahms/lanchess/internal/transport"
	"github.com/justinabrahms/lanchess/internal/tui"
	"github.com/justinabrahms/lanchess/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if len(os.Args) < 2 {
		showHelpMessage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		showHelpMessage()
		return
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "host":
		err = runHost(ctx, cfg, args)
	case "join":
		err = runJoin(ctx, cfg, args)
	case "local":
		err = runLocal(ctx, cfg, args)
	case "watch":
		err = runWatch(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		showHelpMessage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("lanchess exited with error")
		os.Exit(1)
	}
}

// commonFlags registers the flags every subcommand shares and returns a
// function that applies them once parsed.
func commonFlags(fs *flag.FlagSet, cfg *config.Config) func() error {
	debug := fs.Bool("debug", cfg.Development.Debug, "Enable debug logging")
	name := fs.String("name", cfg.Player.Name, "Player name")
	spectateOn := fs.Bool("spectate", cfg.Spectator.Enabled, "Serve the board to spectators over HTTP")
	spectatePort := fs.Int("spectate-port", cfg.Spectator.Port, "Spectator server port")

	return func() error {
		cfg.Development.Debug = *debug
		cfg.Player.Name = *name
		cfg.Spectator.Enabled = *spectateOn
		cfg.Spectator.Port = *spectatePort
		setupLogging(cfg)
		return cfg.Validate()
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.Development.Debug {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(cfg.Development.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func runHost(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	port := fs.Int("port", cfg.Network.Port, "Port to listen on (1024-65535)")
	apply := commonFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Network.Port = *port
	if err := apply(); err != nil {
		return err
	}

	host, err := transport.NewHost(cfg.Network.Port,
		transport.WithLogger(log.Logger),
		transport.WithQueueSize(cfg.Network.QueueSize),
	)
	if err != nil {
		return err
	}
	defer host.Close()

	if err := host.Listen(); err != nil {
		return err
	}

	ips, err := transport.LocalIPv4s()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list local addresses")
	}
	fmt.Printf("Hosting on port %d. Your opponent can join with one of:\n", cfg.Network.Port)
	for _, ip := range ips {
		fmt.Printf("    lanchess join -host %s -port %d\n", ip, cfg.Network.Port)
	}
	fmt.Println("Waiting for an opponent...")

	session, err := host.Accept(ctx)
	if err != nil {
		return err
	}
	return play(ctx, cfg, session, true, nil)
}

func runJoin(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	hostname := fs.String("host", cfg.Network.Host, "Address of the hosting player")
	port := fs.Int("port", cfg.Network.Port, "Port the host listens on")
	timeout := fs.Duration("timeout", cfg.Network.ConnectTimeout, "Connect timeout")
	apply := commonFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Network.Host = *hostname
	cfg.Network.Port = *port
	cfg.Network.ConnectTimeout = *timeout
	if err := apply(); err != nil {
		return err
	}

	session, err := transport.Dial(ctx, cfg.Network.Host, cfg.Network.Port,
		transport.WithLogger(log.Logger),
		transport.WithConnectTimeout(cfg.Network.ConnectTimeout),
		transport.WithQueueSize(cfg.Network.QueueSize),
	)
	if err != nil {
		var derr *transport.DialError
		if errors.As(err, &derr) {
			fmt.Fprintf(os.Stderr, "Could not reach %s: %s.\n", derr.Addr, derr.Reason)
		}
		return err
	}
	return play(ctx, cfg, session, false, nil)
}

func runLocal(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("local", flag.ExitOnError)
	fen := fs.String("fen", "", "Start from this FEN position")
	black := fs.Bool("black", false, "Draw the board with black at the bottom")
	apply := commonFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}

	var game *chess.Game
	if *fen != "" {
		g, err := chess.NewGameFromFEN(*fen, !*black)
		if err != nil {
			return err
		}
		game = g
	}
	return play(ctx, cfg, nil, !*black, game)
}

// play runs a match with the terminal UI until the player quits. session is
// nil for hot-seat play.
func play(ctx context.Context, cfg *config.Config, session *transport.Session, isWhite bool, game *chess.Game) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := log.Logger.With().Str("player", cfg.Player.Name).Logger()

	var opts []match.Option
	opts = append(opts, match.WithLogger(logger))
	if game != nil {
		opts = append(opts, match.WithGame(game))
	}
	if session != nil {
		defer session.Close()
		opts = append(opts, match.WithLink(session))
		go watchSession(ctx, session)
	}

	// The UI and hub are publishers, so they must exist before the controller.
	var ui *tui.UI
	var hub *web.Hub
	if cfg.Spectator.Enabled {
		hub = web.NewHub(web.WithHubLogger(logger))
		opts = append(opts, match.WithPublisher(hub))
	}
	uiPublisher := match.PublisherFunc(func(u match.Update) { ui.Publish(u) })
	opts = append(opts, match.WithPublisher(uiPublisher))

	controller := match.New(isWhite, opts...)
	ui = tui.New(controller, os.Stdin, os.Stdout, cfg.Player.Name, logger)

	if hub != nil {
		svc := web.NewService(controller, hub, cfg.Player.Name, logger)
		srv := web.NewServer(cfg.Spectator.Host, cfg.Spectator.Port, svc)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				logger.Error().Err(err).Msg("Spectator server failed")
			}
		}()
		fmt.Printf("Spectators can watch with: lanchess watch -host <this machine> -port %d\n", cfg.Spectator.Port)
	}

	go func() {
		if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Match controller stopped")
		}
	}()

	return ui.Run(ctx)
}

func watchSession(ctx context.Context, session *transport.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-session.Events():
			if !ok {
				return
			}
			switch ev.Kind {
			case transport.EventConnected:
				fmt.Printf("Connected to %s.\n", ev.Remote)
			case transport.EventError:
				fmt.Printf("Connection error: %v\n", ev.Err)
			case transport.EventDisconnected:
				fmt.Println("Your opponent has disconnected. Type \"quit\" to leave.")
			}
		}
	}
}

func runWatch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	hostname := fs.String("host", cfg.Spectator.Host, "Host serving the spectator stream")
	port := fs.Int("port", cfg.Spectator.Port, "Spectator server port")
	debug := fs.Bool("debug", cfg.Development.Debug, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Development.Debug = *debug
	setupLogging(cfg)

	handler := func(u match.Update) error {
		if u.LastMove != nil {
			fmt.Printf("%s\n", strings.ToLower(u.LastMove.String()))
		}
		tui.Render(os.Stdout, u.Snapshot, nil)
		return nil
	}

	w := spectate.NewWatcher(spectate.URLFor(*hostname, *port), handler, spectate.WithLogger(log.Logger))
	return w.Run(ctx)
}

func showHelpMessage() {
	fmt.Println(`lanchess - two-player chess over a local network

USAGE:
    lanchess <command> [OPTIONS]

COMMANDS:
    host     Wait for an opponent and play white
    join     Connect to a host and play black
    local    Play both sides at one terminal
    watch    Follow a game served with -spectate

OPTIONS (host, join, local):
    -name string          Player name (default: generated)
    -spectate             Serve the board to spectators over HTTP
    -spectate-port int    Spectator server port (default 8090)
    -debug                Enable debug logging

    host:  -port int      Port to listen on (default 5000)
    join:  -host string   Address of the hosting player
           -port int      Port the host listens on (default 5000)
           -timeout dur   Connect timeout (default 5s)
    local: -fen string    Start from a FEN position
           -black         Draw the board with black at the bottom

CONFIGURATION:
    Settings are read from config.yaml in the current directory or ./config,
    and from LANCHESS_* environment variables, e.g. LANCHESS_NETWORK_PORT.

    Example config.yaml:
        network:
          port: 5000
          connect_timeout: 5s
        spectator:
          enabled: false
          port: 8090
        player:
          name: alice
        development:
          debug: false
          log_level: info

SPECTATOR API:
    GET /api/health    - Service health check
    GET /api/board     - Current position
    GET /api/moves     - Moves played so far
    GET /ws            - Live stream of updates

EXAMPLES:
    lanchess host -port 5000
    lanchess join -host 192.168.1.20 -port 5000
    lanchess local -fen "4k3/8/8/8/8/8/8/r3K3 w - - 0 1"
    lanchess watch -host 192.168.1.20`)
}
