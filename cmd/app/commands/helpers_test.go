package commands

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput(t *testing.T) {
	value := map[string]string{"id": "42"}
	text := func(w io.Writer) error {
		_, err := io.WriteString(w, "id=42\n")
		return err
	}

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeOutput(&out, "json", value, text))
		assert.JSONEq(t, `{"id":"42"}`, out.String())
	})

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeOutput(&out, "text", value, text))
		assert.Equal(t, "id=42\n", out.String())
	})

	t.Run("invalid", func(t *testing.T) {
		err := writeOutput(&bytes.Buffer{}, "xml", value, text)
		require.Error(t, err)
	})
}

func TestParseAttributes(t *testing.T) {
	attributes, err := parseAttributes([]string{"key_length=4096", " digest = sha512 ", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key_length": "4096", "digest": "sha512", "empty": ""}, attributes)

	_, err = parseAttributes([]string{"=value"})
	require.Error(t, err)
}
