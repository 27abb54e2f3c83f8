package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOutput(&buf, "warn", true)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l.Info("dropped")
	l.WithField("env_id", "abc").Warn("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "abc", line["env_id"])
	assert.Equal(t, "warning", line["level"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOutput(&buf, "debug", false)
	require.NoError(t, err)
	l.Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing") })
}
