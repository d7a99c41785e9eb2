package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, charmlog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, charmlog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, charmlog.InfoLevel, ParseLevel("nonsense"))
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, JSON: true, Level: "info"}).With("run", "abc")
	l.Debug("hidden")
	l.Info("skipped score", "path", "x.mid")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "skipped score", line["msg"])
	assert.Equal(t, "x.mid", line["path"])
	assert.Equal(t, "abc", line["run"])
}
