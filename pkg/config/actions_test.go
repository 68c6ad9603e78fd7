package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/pkg/action"
	"github.com/Sumatoshi-tech/pegkit/pkg/config"
)

func TestEvaluator(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		config.ActionsRegistry: "registry",
		config.ActionsExpr:     "expr",
		config.ActionsChain:    "chain(registry,expr)",
		config.ActionsNone:     "none",
		"":                     "chain(registry,expr)",
	}

	for mode, want := range tests {
		eval, err := config.Evaluator(mode)
		require.NoError(t, err, mode)
		assert.Equal(t, want, action.NameOf(eval), mode)
	}

	_, err := config.ActionsConfig{Mode: "lua"}.Evaluator()
	require.ErrorIs(t, err, config.ErrInvalidActionsMode)
}

func TestEvaluator_Shared(t *testing.T) {
	t.Parallel()

	first, err := config.Evaluator(config.ActionsChain)
	require.NoError(t, err)

	second, err := config.Evaluator("")
	require.NoError(t, err)

	assert.Same(t, first, second)
}
