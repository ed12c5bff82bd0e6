package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"tablut/config"
	"tablut/engine"
	"tablut/experiments"
	"tablut/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	configPath string
	mode       string
	save       string
}

func main() {
	cfg, opts, err := parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch opts.mode {
	case "game":
		err = runGame(ctx, cfg, opts.save)
	case "configured":
		err = runExperiment(ctx, experiments.ConfiguredExperiment(cfg), cfg.OutputDir)
	case "difficulty":
		err = runExperiment(ctx, experiments.DifficultyExperiment(cfg), cfg.OutputDir)
	default:
		err = fmt.Errorf("unknown mode %q", opts.mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

// parse loads the configuration and lets explicitly set flags override it.
func parse(args []string) (config.Config, options, error) {
	fs := flag.NewFlagSet("tablut", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.mode, "mode", "game", "game, configured or difficulty")
	fs.StringVar(&opts.save, "save", "", "write the final position of a single game to this file")
	attacker := fs.String("attacker", "", "attacker agent: search or random")
	defender := fs.String("defender", "", "defender agent: search or random")
	attackerDifficulty := fs.Int("attacker-difficulty", 0, "attacker difficulty, 0 to 3")
	defenderDifficulty := fs.Int("defender-difficulty", 0, "defender difficulty, 0 to 3")
	games := fs.Int("games", 0, "games per match up")
	maxTurns := fs.Int("max-turns", 0, "turn limit per game")
	level := fs.String("log-level", "", "log level")
	output := fs.String("output", "", "experiment output directory")
	seed := fs.Uint64("seed", 0, "seed for random agents")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, options{}, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, options{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "attacker":
			cfg.Attacker.Kind = *attacker
		case "defender":
			cfg.Defender.Kind = *defender
		case "attacker-difficulty":
			cfg.Attacker.Difficulty = *attackerDifficulty
		case "defender-difficulty":
			cfg.Defender.Difficulty = *defenderDifficulty
		case "games":
			cfg.Games = *games
		case "max-turns":
			cfg.MaxTurns = *maxTurns
		case "log-level":
			cfg.LogLevel = *level
		case "output":
			cfg.OutputDir = *output
		case "seed":
			cfg.Seed = *seed
		}
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, options{}, err
	}
	return cfg, opts, nil
}

func runGame(ctx context.Context, cfg config.Config, save string) error {
	e := engine.LocalEngine(
		engine.Player{Agent: config.NewAgent(cfg.Attacker, cfg.Seed), Difficulty: cfg.Attacker.Difficulty},
		engine.Player{Agent: config.NewAgent(cfg.Defender, cfg.Seed+1), Difficulty: cfg.Defender.Difficulty},
		cfg.Rules(),
		engine.WithMaxTurns(cfg.MaxTurns),
	)
	result, err := e.Run(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Str("session", e.Session().ID).
		Int("winner", int(result.Winner)).
		Bool("draw", result.Draw).
		Str("reason", string(result.Reason)).
		Int("turns", result.Turns).
		Dur("duration", result.Game.Duration).
		Msg("game over")
	fmt.Print(e.Session().Referee().Board())

	if save == "" {
		return nil
	}
	data, err := game.EncodeSnapshot(e.Session().Snapshot())
	if err != nil {
		return err
	}
	if err := os.WriteFile(save, data, 0644); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	log.Info().Msgf("saved game to %s", save)
	return nil
}

func runExperiment(ctx context.Context, x experiments.Experiment, outputDir string) error {
	summary, err := x.Run(ctx, outputDir)
	if err != nil {
		return err
	}
	log.Info().
		Int("games", summary.Games).
		Int("attackers", summary.Attackers).
		Int("defenders", summary.Defenders).
		Int("draws", summary.Draws).
		Int("unfinished", summary.Unfinished).
		Str("dir", summary.Dir).
		Msgf("%s experiment finished", x.Name)
	return nil
}
