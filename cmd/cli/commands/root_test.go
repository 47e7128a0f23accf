package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	attribution "attributionengine/cmd"

	"github.com/stretchr/testify/require"
)

func Test_parseWeights(t *testing.T) {
	t.Run("name value pairs", func(t *testing.T) {
		weights, err := parseWeights("Gold=-0.2, Platinum=-0.15,Real Estate=0.1")
		require.NoError(t, err)
		require.Equal(t, map[string]float64{
			"Gold":        -0.2,
			"Platinum":    -0.15,
			"Real Estate": 0.1,
		}, weights)
	})

	t.Run("empty", func(t *testing.T) {
		weights, err := parseWeights("")
		require.NoError(t, err)
		require.Empty(t, weights)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := parseWeights("Gold")
		require.Error(t, err)
		_, err = parseWeights("Gold=lots")
		require.Error(t, err)
	})
}

func Test_writeFile(t *testing.T) {
	t.Run("writes the encoded report", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		require.NoError(t, writeFile(path, map[string]int{"sectors": 3}, attribution.FormatJSON))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		out := map[string]int{}
		require.NoError(t, json.Unmarshal(data, &out))
		require.Equal(t, 3, out["sectors"])
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "report.json")
		err := writeFile(path, map[string]int{}, attribution.FormatJSON)
		require.ErrorContains(t, err, "failed to create")
	})

	t.Run("write failure is returned", func(t *testing.T) {
		if _, err := os.Stat("/dev/full"); err != nil {
			t.Skip("needs /dev/full")
		}
		err := writeFile("/dev/full", map[string]int{"sectors": 3}, attribution.FormatJSON)
		require.Error(t, err)
	})
}
