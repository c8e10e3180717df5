// Package strutil holds small stateless string helpers.
package strutil

// Reverse returns text with its code points in reverse order.
// Invalid UTF-8 bytes come back as U+FFFD.
func Reverse(text string) string {
	if text == "" {
		return text
	}
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
