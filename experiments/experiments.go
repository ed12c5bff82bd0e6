package experiments

import (
	"context"
	"fmt"

	"tablut/config"
	"tablut/engine"
	"tablut/experiments/metrics"
	"tablut/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MatchUp pairs the agent playing the attackers with the one playing the defenders.
type MatchUp struct {
	Attacker metrics.AgentConfig
	Defender metrics.AgentConfig
}

// Summary tallies the outcomes of an experiment.
type Summary struct {
	Games      int
	Attackers  int // Games won by the attackers
	Defenders  int // Games won by the defenders
	Draws      int
	Unfinished int
	Dir        string // Where the records were written, empty when nothing was written
}

type Experiment struct {
	Name     string
	Configs  []metrics.AgentConfig
	MatchUps []MatchUp
	Games    int // Per match up
	MaxTurns int
	Rules    game.Rules
}

// DifficultyExperiment pairs every difficulty level against every other one,
// each side playing both roles.
func DifficultyExperiment(cfg config.Config) Experiment {
	configs := []metrics.AgentConfig{}
	for d := 0; d <= 3; d++ {
		configs = append(configs, metrics.AgentConfig{ID: d + 1, Kind: config.SearchAgent, Difficulty: d})
	}

	matchUps := []MatchUp{}
	for _, attacker := range configs {
		for _, defender := range configs {
			matchUps = append(matchUps, MatchUp{Attacker: attacker, Defender: defender})
		}
	}

	return Experiment{
		Name:     "difficulty",
		Configs:  configs,
		MatchUps: matchUps,
		Games:    1, // Search agents are deterministic
		MaxTurns: cfg.MaxTurns,
		Rules:    cfg.Rules(),
	}
}

// ConfiguredExperiment plays the configured attacker against the configured defender.
func ConfiguredExperiment(cfg config.Config) Experiment {
	attacker := metrics.AgentConfig{ID: 1, Kind: cfg.Attacker.Kind, Difficulty: cfg.Attacker.Difficulty, Seed: cfg.Seed}
	defender := metrics.AgentConfig{ID: 2, Kind: cfg.Defender.Kind, Difficulty: cfg.Defender.Difficulty, Seed: cfg.Seed + 1}
	return Experiment{
		Name:     "configured",
		Configs:  []metrics.AgentConfig{attacker, defender},
		MatchUps: []MatchUp{{Attacker: attacker, Defender: defender}},
		Games:    cfg.Games,
		MaxTurns: cfg.MaxTurns,
		Rules:    cfg.Rules(),
	}
}

// Run plays every match up and writes the records below outputDir. Nothing is
// written when outputDir is empty.
func (x Experiment) Run(ctx context.Context, outputDir string) (Summary, error) {
	summary := Summary{}
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", x.Name)

	for mi, matchUp := range x.MatchUps {
		log.Info().Msgf("starting matchup %d of %d between attacker=%+v and defender=%+v...", mi+1, len(x.MatchUps), matchUp.Attacker, matchUp.Defender)

		for i := 0; i < x.Games; i++ {
			log.Info().Msgf("starting matchup %d of %d game %d of %d...", mi+1, len(x.MatchUps), i+1, x.Games)

			id := uuid.NewString()
			result, err := x.runGame(ctx, matchUp, uint64(i))
			if err != nil {
				return summary, fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			summary.add(result)

			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         id,
				Attacker:   matchUp.Attacker.ID,
				Defender:   matchUp.Defender.ID,
				GameMetric: result.Game,
			})
			for _, mm := range result.Moves {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       id,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with result: %s", mi+1, len(x.MatchUps), i+1, describe(result))
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(x.MatchUps))
	}

	log.Info().Msgf("completed %s experiment", x.Name)

	if outputDir == "" {
		return summary, nil
	}
	dir, err := x.store(outputDir, gameRecords, moveRecords)
	summary.Dir = dir
	return summary, err
}

func (x Experiment) store(outputDir string, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(outputDir, x.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	err = writer.WriteAgentConfigs(x.Configs)
	if err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	err = writer.WriteGameRecords(gameRecords)
	if err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	err = writer.WriteMoveRecords(moveRecords)
	if err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")

	return writer.Dir(), nil
}

// runGame plays a single game between two agents. Random agents get a
// different seed for every game of a match up.
func (x Experiment) runGame(ctx context.Context, matchUp MatchUp, index uint64) (engine.Result, error) {
	attacker := engine.Player{
		Agent:      config.NewAgent(config.AgentSpec{Kind: matchUp.Attacker.Kind, Difficulty: matchUp.Attacker.Difficulty}, matchUp.Attacker.Seed+index),
		Difficulty: matchUp.Attacker.Difficulty,
	}
	defender := engine.Player{
		Agent:      config.NewAgent(config.AgentSpec{Kind: matchUp.Defender.Kind, Difficulty: matchUp.Defender.Difficulty}, matchUp.Defender.Seed+index),
		Difficulty: matchUp.Defender.Difficulty,
	}
	e := engine.LocalEngine(attacker, defender, x.Rules, engine.WithMaxTurns(x.MaxTurns))
	return e.Run(ctx)
}

func (s *Summary) add(result engine.Result) {
	s.Games++
	switch {
	case result.Draw:
		s.Draws++
	case result.Winner == game.Attackers:
		s.Attackers++
	case result.Winner == game.Defenders:
		s.Defenders++
	default:
		s.Unfinished++
	}
}

func describe(result engine.Result) string {
	switch {
	case result.Draw:
		return fmt.Sprintf("draw (%s) after %d turns", result.Reason, result.Turns)
	case result.Winner != 0:
		return fmt.Sprintf("%s won (%s) after %d turns", result.Winner, result.Reason, result.Turns)
	default:
		return fmt.Sprintf("no winner (%s) after %d turns", result.Reason, result.Turns)
	}
}
