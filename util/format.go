package util

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ListSeparator joins flattened credit and genre lists.
const ListSeparator = ", "

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatMillis formats a millisecond count as m:ss.
func FormatMillis(ms int64) string {
	return FormatDuration(time.Duration(ms) * time.Millisecond)
}

// JoinList flattens values, dropping blanks.
func JoinList(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, ListSeparator)
}

// SplitList reads a comma-delimited list. It cannot tell a comma inside a
// value from a separator; use EncodeList and DecodeList to round-trip.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EncodeList flattens values for storage. Lists whose values contain no comma
// are stored as JoinList would display them; otherwise as a JSON array.
func EncodeList(values []string) string {
	out := make([]string, 0, len(values))
	quoted := false
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
			quoted = quoted || strings.Contains(v, ",")
		}
	}
	if !quoted {
		return strings.Join(out, ListSeparator)
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return strings.Join(out, ListSeparator)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// DecodeList is the inverse of EncodeList. Plain comma-delimited text is
// read with SplitList.
func DecodeList(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var values []string
		if err := json.Unmarshal([]byte(s), &values); err == nil {
			out := make([]string, 0, len(values))
			for _, v := range values {
				if v = strings.TrimSpace(v); v != "" {
					out = append(out, v)
				}
			}
			if len(out) == 0 {
				return nil
			}
			return out
		}
	}
	return SplitList(s)
}
