// Package tokens provides a crude fallback token estimate, used only when
// the AI gateway does not report usage for a call.
package tokens

// Estimate approximates the token count of text as ceil(len/4), roughly
// four characters per token for most models.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
