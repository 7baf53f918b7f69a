// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"time"

	"github.com/holiman/uint256"
)

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler {
	return slog.DiscardHandler
}

// JSONHandler writes every record, whatever its level, as one JSON object per line.
func JSONHandler(wr io.Writer) slog.Handler {
	var level slog.LevelVar
	level.Set(levelMaxVerbosity)
	return JSONHandlerWithLevel(wr, &level)
}

// JSONHandlerWithLevel is JSONHandler filtered by level, which may be changed at runtime.
func JSONHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr(false),
	})
}

// LogfmtHandler writes key=value lines at info level and above.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceAttr(true),
	})
}

// LogfmtHandlerWithLevel is LogfmtHandler filtered by level.
func LogfmtHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr(true),
	})
}

// replaceAttr shortens the builtin keys to t and lvl and renders amounts in
// decimal. Time values are preformatted for logfmt only, JSON keeps RFC3339.
func replaceAttr(logfmt bool) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, attr slog.Attr) slog.Attr {
		switch attr.Key {
		case slog.TimeKey:
			if attr.Value.Kind() == slog.KindTime {
				if logfmt {
					return slog.String("t", attr.Value.Time().Format(timeFormat))
				}
				return slog.Attr{Key: "t", Value: attr.Value}
			}
		case slog.LevelKey:
			if l, ok := attr.Value.Any().(slog.Level); ok {
				return slog.String("lvl", LevelString(l))
			}
		}

		switch v := attr.Value.Any().(type) {
		case time.Time:
			if logfmt {
				attr.Value = slog.StringValue(v.Format(timeFormat))
			}
		case *big.Int:
			attr.Value = stringOrNil(v == nil, v)
		case *uint256.Int:
			if v == nil {
				attr.Value = slog.StringValue("<nil>")
			} else {
				attr.Value = slog.StringValue(v.Dec())
			}
		case fmt.Stringer:
			isNil := v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil())
			attr.Value = stringOrNil(isNil, v)
		}
		return attr
	}
}

func stringOrNil(isNil bool, v fmt.Stringer) slog.Value {
	if isNil {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(v.String())
}
