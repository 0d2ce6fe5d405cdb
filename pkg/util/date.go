package util

import (
	"fmt"
	"strings"
	"time"
)

// dateTplReplacer maps template placeholders to Go layout tokens. YYYY is listed
// before YY so the longer placeholder wins at the same position.
var dateTplReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDateTpl formats t using a template with placeholders
// (YYYY, YY, MM, DD, hh, mm, ss). A zero time yields an empty string.
//
//	FormatDateTpl(t, "YYYY-MM-DD hh:mm") // "2023-11-10 00:00"
func FormatDateTpl(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTplReplacer.Replace(tpl))
}

// DiscordTimestamp renders t as a Discord timestamp markdown tag, e.g. <t:1700000000:F>.
// Style is one of t, T, d, D, f, F, R; empty means the client default.
func DiscordTimestamp(t time.Time, style string) string {
	if style == "" {
		return fmt.Sprintf("<t:%d>", t.Unix())
	}
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
