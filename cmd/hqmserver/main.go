// Command hqmserver runs one dedicated ice-hockey game server: a single UDP
// socket speaking the wire protocol in internal/protocol, driven by the
// 100Hz tick loop in internal/gameserver, plus a small read-only HTTP
// surface for health checks and stats. One process is one rink (spec §1):
// running multiple instances side by side is how an operator hosts several
// simultaneous game modes, the same way the teacher's cmd/gameserver bound
// one GameServer per process.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/migomipo/hqmgo/config"
	"github.com/migomipo/hqmgo/internal/ban"
	"github.com/migomipo/hqmgo/internal/gameserver"
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/modes"
	"github.com/migomipo/hqmgo/internal/replay"
	"github.com/migomipo/hqmgo/internal/rules"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg := loadConfig()
	mode := buildMode(cfg)

	banChecker, err := buildBanChecker()
	if err != nil {
		logger.Fatal().Err(err).Msg("ban list init failed")
	}
	if closer, ok := banChecker.(interface{ Close() }); ok {
		defer closer.Close()
	}

	replaySink := buildReplaySink()

	addr := &net.UDPAddr{Port: udpPort(), IP: net.IPv4zero}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("udp listen failed")
	}
	defer conn.Close()

	srv := gameserver.New(cfg, conn, mode, banChecker, replaySink, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// errgroup supervises the two long-running tasks — the tick loop and
	// the ops HTTP listener — so either one's exit (or a ^C) tears the
	// other down too (spec §5's "auxiliary tasks share the server's
	// lifetime" requirement).
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx)
	})

	httpSrv := &http.Server{Addr: opsAddr(), Handler: srv.OpsHandler()}
	g.Go(func() error {
		logger.Info().Str("addr", httpSrv.Addr).Msg("ops endpoint listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return httpSrv.Close()
	})

	logger.Info().
		Str("server_name", cfg.ServerName).
		Str("mode", cfg.ModeParams.Mode).
		Int("udp_port", addr.Port).
		Msg("server starting")

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("server stopped")
	}
}

func loadConfig() config.ServerConfiguration {
	cfg := config.DefaultServerConfiguration()
	if name := os.Getenv("HQM_SERVER_NAME"); name != "" {
		cfg.ServerName = name
	}
	if pw := os.Getenv("HQM_PASSWORD"); pw != "" {
		cfg.Password = pw
	}
	if mode := os.Getenv("HQM_MODE"); mode != "" {
		cfg.ModeParams.Mode = mode
	}
	if max, err := strconv.Atoi(os.Getenv("HQM_PLAYER_MAX")); err == nil && max > 0 {
		cfg.PlayerMax = max
	}
	if teamMax, err := strconv.Atoi(os.Getenv("HQM_TEAM_MAX")); err == nil && teamMax > 0 {
		cfg.TeamMax = teamMax
		cfg.ModeParams.TeamMax = teamMax
	}
	return cfg
}

func udpPort() int {
	if p, err := strconv.Atoi(os.Getenv("HQM_PORT")); err == nil && p > 0 {
		return p
	}
	return 27585
}

func opsAddr() string {
	if a := os.Getenv("HQM_OPS_ADDR"); a != "" {
		return a
	}
	return ":8080"
}

func buildMode(cfg config.ServerConfiguration) modes.Mode {
	rulesCfg := rules.DefaultConfig()
	rulesCfg.Mercy = cfg.ModeParams.Mercy
	rulesCfg.FirstTo = cfg.ModeParams.FirstTo

	switch cfg.ModeParams.Mode {
	case "warmup":
		pucks := cfg.ModeParams.WarmupPucks
		if pucks <= 0 {
			pucks = 1
		}
		return modes.NewWarmup(pucks, mathutil.Vec3{X: 15.0, Y: 1.5, Z: 30.5})
	case "shootout":
		attempts := cfg.ModeParams.ShootoutAttempts
		if attempts == 0 {
			attempts = 5
		}
		return modes.NewShootout(attempts)
	case "russian":
		attempts := cfg.ModeParams.RussianAttempts
		if attempts <= 0 {
			attempts = 10
		}
		return modes.NewRussian(attempts)
	case "practice":
		return modes.NewFaceoffPractice()
	default:
		return modes.NewMatch(rulesCfg, cfg.ModeParams.TeamMax)
	}
}

func buildBanChecker() (ban.Checker, error) {
	path := os.Getenv("HQM_BAN_FILE")
	if path == "" {
		return ban.NewInMemory(), nil
	}
	return ban.NewFile(path)
}

func buildReplaySink() replay.Sink {
	if url := os.Getenv("HQM_REPLAY_URL"); url != "" {
		return replay.NewHTTPSink(url)
	}
	dir := os.Getenv("HQM_REPLAY_DIR")
	if dir == "" {
		dir = "replays"
	}
	return replay.NewFileSink(dir)
}
