package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tablut/game"
	"tablut/meta"
	"tablut/searcher/agent"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	SearchAgent = "search"
	RandomAgent = "random"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type AgentSpec struct {
	Kind       string `yaml:"kind"`
	Difficulty int    `yaml:"difficulty"`
}

type Config struct {
	Attacker        AgentSpec `yaml:"attacker"`
	Defender        AgentSpec `yaml:"defender"`
	Games           int       `yaml:"games"`
	MaxTurns        int       `yaml:"max_turns"`
	BlindMoveLimit  int       `yaml:"blind_move_limit"`
	KingEdgeCapture bool      `yaml:"king_edge_capture"`
	LogLevel        string    `yaml:"log_level"`
	OutputDir       string    `yaml:"output_dir"`
	Seed            uint64    `yaml:"seed"`
}

func Default() Config {
	return Config{
		Attacker:        AgentSpec{Kind: meta.AGENT_KIND, Difficulty: meta.DIFFICULTY},
		Defender:        AgentSpec{Kind: meta.AGENT_KIND, Difficulty: meta.DIFFICULTY},
		Games:           meta.GAMES,
		MaxTurns:        meta.MAX_TURNS,
		BlindMoveLimit:  meta.BLIND_MOVE_LIMIT,
		KingEdgeCapture: meta.KING_EDGE_CAPTURE,
		LogLevel:        meta.LOG_LEVEL,
		OutputDir:       meta.OUTPUT_DIR,
		Seed:            meta.SEED,
	}
}

// Load starts from the defaults, applies the YAML file at path when one is
// given, then the environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	cfg, err := cfg.withEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withEnv applies the TABLUT_* overrides. A set variable that does not parse is
// an invalid configuration.
func (c Config) withEnv() (Config, error) {
	var err error
	c.Attacker.Kind = getenvString("ATTACKER_KIND", c.Attacker.Kind)
	c.Defender.Kind = getenvString("DEFENDER_KIND", c.Defender.Kind)
	c.LogLevel = getenvString("LOG_LEVEL", c.LogLevel)
	c.OutputDir = getenvString("OUTPUT_DIR", c.OutputDir)
	if c.Attacker.Difficulty, err = getenvInt("ATTACKER_DIFFICULTY", c.Attacker.Difficulty); err != nil {
		return Config{}, err
	}
	if c.Defender.Difficulty, err = getenvInt("DEFENDER_DIFFICULTY", c.Defender.Difficulty); err != nil {
		return Config{}, err
	}
	if c.Games, err = getenvInt("GAMES", c.Games); err != nil {
		return Config{}, err
	}
	if c.MaxTurns, err = getenvInt("MAX_TURNS", c.MaxTurns); err != nil {
		return Config{}, err
	}
	if c.BlindMoveLimit, err = getenvInt("BLIND_MOVE_LIMIT", c.BlindMoveLimit); err != nil {
		return Config{}, err
	}
	if c.KingEdgeCapture, err = getenvBool("KING_EDGE_CAPTURE", c.KingEdgeCapture); err != nil {
		return Config{}, err
	}
	if c.Seed, err = getenvUint("SEED", c.Seed); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	for name, spec := range map[string]AgentSpec{"attacker": c.Attacker, "defender": c.Defender} {
		if spec.Kind != SearchAgent && spec.Kind != RandomAgent {
			return fmt.Errorf("%w: %s agent kind %q", ErrInvalidConfig, name, spec.Kind)
		}
		if spec.Difficulty < agent.MinDifficulty || spec.Difficulty > agent.MaxDifficulty {
			return fmt.Errorf("%w: %s difficulty %d not in [%d, %d]", ErrInvalidConfig, name, spec.Difficulty, agent.MinDifficulty, agent.MaxDifficulty)
		}
	}
	if c.Games <= 0 {
		return fmt.Errorf("%w: games must be positive", ErrInvalidConfig)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("%w: max turns must be positive", ErrInvalidConfig)
	}
	if c.BlindMoveLimit <= 0 {
		return fmt.Errorf("%w: blind move limit must be positive", ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

func (c Config) Rules() game.Rules {
	return game.Rules{BlindMoveLimit: c.BlindMoveLimit, KingEdgeCapture: c.KingEdgeCapture}
}

// Level returns the parsed log level, info when it does not parse.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// NewAgent builds the agent a spec describes. Random agents draw from seed.
func NewAgent(spec AgentSpec, seed uint64) agent.Agent {
	if spec.Kind == RandomAgent {
		return agent.NewRandomAgent(seed)
	}
	return agent.NewDifficultyAgent(spec.Difficulty)
}

func getenv(key string) (string, bool) {
	v := os.Getenv(meta.ENV_PREFIX + key)
	return strings.TrimSpace(v), v != ""
}

func getenvString(key, def string) string {
	if v, ok := getenv(key); ok {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v, ok := getenv(key)
	if !ok {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, meta.ENV_PREFIX, key, v)
	}
	return i, nil
}

func getenvUint(key string, def uint64) (uint64, error) {
	v, ok := getenv(key)
	if !ok {
		return def, nil
	}
	i, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s%s=%q is not an unsigned integer", ErrInvalidConfig, meta.ENV_PREFIX, key, v)
	}
	return i, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v, ok := getenv(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalidConfig, meta.ENV_PREFIX, key, v)
	}
	return b, nil
}
