package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cremewhiz/internal/config"
	"github.com/robalobadob/cremewhiz/internal/game"
	"github.com/robalobadob/cremewhiz/internal/httpserver"
	"github.com/robalobadob/cremewhiz/internal/leaderboard"
	"github.com/robalobadob/cremewhiz/internal/store"
	"github.com/robalobadob/cremewhiz/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	bank, err := loadBank(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word bank")
	}
	cats, wordCount := bank.Stats()
	log.Info().Int("categories", cats).Int("words", wordCount).Msg("word bank loaded")

	ctx := context.Background()
	lbStore, closeStore, err := openLeaderboard(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open leaderboard store")
	}
	defer closeStore()

	entries, err := lbStore.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load leaderboard")
	}
	board := leaderboard.NewBoard(entries)
	log.Info().Int("players", board.Len()).Str("backend", cfg.LeaderboardBackend).Msg("leaderboard loaded")

	engine := game.NewEngine(bank, store.NewMemoryStore(), board, lbStore)
	srv := httpserver.New(engine, httpserver.Options{
		Secret:          []byte(cfg.BotSecret),
		LeaderboardSize: cfg.LeaderboardSize,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
	})

	log.Info().Str("port", cfg.Port).Msg("starting cremewhiz")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
}

// loadBank reads WORDS_FILE when set, else the embedded catalog.
func loadBank(cfg config.Config) (*words.Bank, error) {
	if cfg.WordsFile != "" {
		return words.LoadFile(cfg.WordsFile)
	}
	return words.Default()
}

// openLeaderboard returns the configured store and its cleanup func.
func openLeaderboard(ctx context.Context, cfg config.Config) (leaderboard.Store, func(), error) {
	if cfg.LeaderboardBackend == config.BackendSQLite {
		s, err := leaderboard.OpenSQLite(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	fs := leaderboard.NewFileStore(cfg.LeaderboardFile)
	log.Info().Str("path", fs.Path()).Msg("leaderboard file")
	return fs, func() {}, nil
}
