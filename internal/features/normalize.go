package features

import "strings"

// NormalizeVideoID converts a downloaded video filename into the
// URL-like identifier used by the outcome table. Download tooling
// substitutes characters that are illegal in filenames; this reverses
// those substitutions and drops the container extension.
func NormalizeVideoID(filename string) string {
	id := strings.ReplaceAll(filename, "：", ":") // fullwidth colon
	id = strings.ReplaceAll(id, "⧸", "/")        // big solidus
	id = strings.ReplaceAll(id, ".mp4", "")
	return id
}
