package common

import (
	"bytes"
	"encoding/json"
	"testing"

	logging "github.com/inconshreveable/log15"
	"github.com/stretchr/testify/require"

	"boscoin.io/govern/lib/errors"
)

func TestJsonFormatEx(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New("module", "test")
	SetLogging(logger, logging.LvlDebug, logging.StreamHandler(&buf, JsonFormatEx(false, true)))

	addr := NamedAddress("alice")
	logger.Debug(
		"voted",
		"voter", addr,
		"weight", Tokens(10),
		"error", errors.VotingClosed,
		"nil", (*errors.Error)(nil),
	)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, "voted", m["msg"])
	require.Equal(t, "test", m["module"])
	require.Equal(t, addr.Hex(), m["voter"])
	require.Equal(t, Tokens(10).String(), m["weight"])
	require.Equal(t, float64(errors.VotingClosed.Code), m["error"].(map[string]interface{})["code"])
}

func TestLogLevelFilter(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New()
	SetLogging(logger, logging.LvlInfo, logging.StreamHandler(&buf, JsonFormatEx(false, true)))

	logger.Debug("hidden")
	require.Equal(t, 0, buf.Len())

	logger.Info("shown")
	require.NotEqual(t, 0, buf.Len())
}

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer

	for _, format := range []string{"", "auto", "json", "terminal"} {
		_, err := NewLogHandler(&buf, format)
		require.NoError(t, err)
	}

	_, err := NewLogHandler(&buf, "xml")
	require.Error(t, err)
}
