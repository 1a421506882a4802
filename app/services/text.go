package services

// Ellipsis marks a truncated body.
const Ellipsis = "…"

// Truncate shortens text to at most maxLength characters followed by
// Ellipsis. Text that already fits is returned unchanged; maxLength <= 0
// yields only the marker.
func Truncate(text string, maxLength int) string {
	if maxLength <= 0 {
		return Ellipsis
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + Ellipsis
}
