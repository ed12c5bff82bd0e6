package main

import (
	"testing"

	"tablut/config"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, opts, err := parse(nil)

		require.NoError(t, err)
		require.Equal(t, "game", opts.mode)
		require.Equal(t, config.Default(), cfg)
	})

	t.Run("set flags override the configuration", func(t *testing.T) {
		cfg, opts, err := parse([]string{"-mode", "configured", "-attacker", "random", "-defender-difficulty", "3", "-games", "2"})

		require.NoError(t, err)
		require.Equal(t, "configured", opts.mode)
		require.Equal(t, config.RandomAgent, cfg.Attacker.Kind)
		require.Equal(t, 3, cfg.Defender.Difficulty)
		require.Equal(t, 2, cfg.Games)
		require.Equal(t, config.Default().Attacker.Difficulty, cfg.Attacker.Difficulty, "Unset flags keep the loaded value")
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, _, err := parse([]string{"-attacker-difficulty", "7"})
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}
