package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/signatrust/internal/testutil"
)

func TestRunCreateClusterKey(t *testing.T) {
	ctx := context.Background()
	logger := testutil.DiscardLogger()

	t.Run("success-text", func(t *testing.T) {
		engine := testutil.NewEngine(t)
		var out bytes.Buffer

		err := RunCreateClusterKey(ctx, engine, logger, &out, "text")
		require.NoError(t, err)

		id, _, ok := engine.ActiveKey()
		require.True(t, ok)
		assert.Contains(t, out.String(), "Cluster key ID: "+id.String())
	})

	t.Run("idempotent", func(t *testing.T) {
		engine := testutil.NewEngine(t)

		require.NoError(t, RunCreateClusterKey(ctx, engine, logger, &bytes.Buffer{}, "text"))
		first, _, _ := engine.ActiveKey()
		require.NoError(t, RunCreateClusterKey(ctx, engine, logger, &bytes.Buffer{}, "text"))
		second, _, _ := engine.ActiveKey()

		assert.Equal(t, first, second)
	})

	t.Run("invalid-format", func(t *testing.T) {
		engine := testutil.NewEngine(t)

		err := RunCreateClusterKey(ctx, engine, logger, &bytes.Buffer{}, "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})
}

func TestRunRotateClusterKey(t *testing.T) {
	ctx := context.Background()
	engine := testutil.NewInitializedEngine(t)
	before, _, _ := engine.ActiveKey()

	var out bytes.Buffer
	err := RunRotateClusterKey(ctx, engine, testutil.DiscardLogger(), &out, "json")
	require.NoError(t, err)

	var output clusterKeyOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &output))

	after, _, _ := engine.ActiveKey()
	assert.NotEqual(t, before, after)
	assert.Equal(t, after.String(), output.ID)
}
