package telegram

import (
	"html"
	"strings"
	"unicode/utf8"
)

// escapable are the characters a backslash makes literal outside code spans
const escapable = "\\*`_~|"

// render turns **bold** and `code` markup into Telegram HTML. Code spans are
// literal and tags left open at the end are closed, so the output always
// nests properly.
func render(text string) string {
	var (
		out  strings.Builder
		bold bool
		code bool
	)
	for i := 0; i < len(text); {
		switch {
		case code:
			if text[i] == '`' {
				out.WriteString("</code>")
				code = false
				i++
				continue
			}
		case text[i] == '\\' && i+1 < len(text) && strings.IndexByte(escapable, text[i+1]) >= 0:
			out.WriteString(html.EscapeString(text[i+1 : i+2]))
			i += 2
			continue
		case text[i] == '`':
			out.WriteString("<code>")
			code = true
			i++
			continue
		case strings.HasPrefix(text[i:], "**"):
			if bold {
				out.WriteString("</b>")
			} else {
				out.WriteString("<b>")
			}
			bold = !bold
			i += 2
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		out.WriteString(html.EscapeString(text[i : i+size]))
		i += size
	}
	if code {
		out.WriteString("</code>")
	}
	if bold {
		out.WriteString("</b>")
	}
	return out.String()
}
