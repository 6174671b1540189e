package logging

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "recommender-api", "debug", "json")
	log.WithField("games", 3).Debug("model loaded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "recommender-api", line["service"])
	assert.Equal(t, "model loaded", line["msg"])
	assert.Equal(t, float64(3), line["games"])
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log := NewWithOutput(&bytes.Buffer{}, "x", "chatty", "text")
	assert.Equal(t, logrus.InfoLevel, log.Logger.GetLevel())
}
