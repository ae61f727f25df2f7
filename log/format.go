// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"
)

const (
	termTimeFormat = "01-02|15:04:05.000"
	termMsgJust    = 40
)

func (h *TerminalHandler) format(buf []byte, r slog.Record, usecolor bool) []byte {
	b := bytes.NewBuffer(buf)

	var color string
	if usecolor {
		switch r.Level {
		case LevelCrit:
			color = "\x1b[35m"
		case slog.LevelError:
			color = "\x1b[31m"
		case slog.LevelWarn:
			color = "\x1b[33m"
		case slog.LevelInfo:
			color = "\x1b[32m"
		case slog.LevelDebug:
			color = "\x1b[36m"
		case LevelTrace:
			color = "\x1b[34m"
		}
	}

	if color != "" {
		b.WriteString(color)
		b.WriteString(LevelAlignedString(r.Level))
		b.WriteString("\x1b[0m")
	} else {
		b.WriteString(LevelAlignedString(r.Level))
	}
	b.WriteString("[")
	b.WriteString(r.Time.Format(termTimeFormat))
	b.WriteString("] ")
	b.WriteString(r.Message)

	// try to justify the log output for short messages
	if n := utf8.RuneCountInString(r.Message); n < termMsgJust && (len(h.attrs) > 0 || r.NumAttrs() > 0) {
		b.Write(bytes.Repeat([]byte{' '}, termMsgJust-n))
	}

	writeAttr := func(attr slog.Attr) {
		b.WriteByte(' ')
		if color != "" {
			b.WriteString(color)
			b.WriteString(attr.Key)
			b.WriteString("\x1b[0m=")
		} else {
			b.WriteString(attr.Key)
			b.WriteByte('=')
		}
		b.WriteString(formatValue(attr.Value))
	}
	for _, attr := range h.attrs {
		writeAttr(attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(attr)
		return true
	})
	b.WriteByte('\n')
	return b.Bytes()
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return quote(v.String())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(timeFormat)
	}
	if v.Any() == nil {
		return "<nil>"
	}
	if s, ok := stringValue(v.Any()); ok {
		return quote(s)
	}
	return quote(fmt.Sprintf("%+v", v.Any()))
}

// quote wraps s in quotes when it would otherwise break the key=value layout.
func quote(s string) string {
	for _, r := range s {
		if r == ' ' || r == '=' || r == '"' || r < ' ' {
			return strconv.Quote(s)
		}
	}
	return s
}
