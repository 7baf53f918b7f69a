// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRoot(t *testing.T, h func(*bytes.Buffer) slog.Handler) *bytes.Buffer {
	old := Root()
	t.Cleanup(func() { SetDefault(old) })

	buf := new(bytes.Buffer)
	SetDefault(NewLogger(h(buf)))
	return buf
}

func TestWithContextFollowsRoot(t *testing.T) {
	pkgLogger := WithContext("pkg", "test")

	buf := captureRoot(t, func(b *bytes.Buffer) slog.Handler {
		return LogfmtHandlerWithLevel(b, new(slog.LevelVar))
	})
	pkgLogger.Info("settled", "amount", uint256.NewInt(500))

	out := buf.String()
	assert.Contains(t, out, "lvl=info")
	assert.Contains(t, out, "pkg=test")
	assert.Contains(t, out, "msg=settled")
	assert.Contains(t, out, "amount=500")
}

func TestJSONHandler(t *testing.T) {
	buf := captureRoot(t, func(b *bytes.Buffer) slog.Handler {
		return JSONHandler(b)
	})
	Root().With("op", "deposit").Debug("merged", "total", big.NewInt(7), "nilAmount", (*uint256.Int)(nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "debug", rec["lvl"])
	assert.Equal(t, "deposit", rec["op"])
	assert.Equal(t, "7", rec["total"])
	assert.Equal(t, "<nil>", rec["nilAmount"])
	assert.Contains(t, rec, "t")
}

func TestLevelFiltering(t *testing.T) {
	var lvl slog.LevelVar
	lvl.Set(FromLegacyLevel(LegacyLevelWarn))
	buf := captureRoot(t, func(b *bytes.Buffer) slog.Handler {
		return LogfmtHandlerWithLevel(b, &lvl)
	})

	Info("hidden")
	Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, WithContext("pkg", "x").Enabled(context.Background(), LevelDebug))
}

func TestOddArguments(t *testing.T) {
	buf := captureRoot(t, func(b *bytes.Buffer) slog.Handler {
		return LogfmtHandlerWithLevel(b, new(slog.LevelVar))
	})
	Info("odd", "key")
	assert.Contains(t, buf.String(), errorKey)
}

func TestFromLegacyLevel(t *testing.T) {
	tests := []struct {
		in   int
		want slog.Level
	}{
		{LegacyLevelCrit, LevelCrit},
		{LegacyLevelError, LevelError},
		{LegacyLevelWarn, LevelWarn},
		{LegacyLevelInfo, LevelInfo},
		{LegacyLevelDebug, LevelDebug},
		{LegacyLevelTrace, LevelTrace},
		{9, levelMaxVerbosity},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromLegacyLevel(tt.in))
	}
	assert.Equal(t, "crit", LevelString(LevelCrit))
	assert.Equal(t, "trace", LevelString(LevelTrace))
}

func TestDiscardHandler(t *testing.T) {
	l := NewLogger(DiscardHandler())
	assert.False(t, l.Enabled(context.Background(), LevelCrit))
	l.With("a", 1).Error("nothing")
}
