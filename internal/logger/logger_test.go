package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("development config", func(t *testing.T) {
		t.Setenv(EnvVar, "dev")
		require.NotNil(t, New())
	})

	t.Run("production config", func(t *testing.T) {
		t.Setenv(EnvVar, "prod")
		require.NotNil(t, New())
	})
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, OrNop(nil))

	log := NewNop()
	require.Same(t, log, OrNop(log))
}
