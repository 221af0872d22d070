// Package format prepares user-supplied text for Telegram parse modes.
package format

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
// Quotes are left alone; they are only special inside tag attributes.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
