package markdown

import "strings"

// ExtractTitle returns the text of the first heading of any level, or "" when
// src has none. Lines inside fenced code are ignored.
func ExtractTitle(src string) string {
	src = strings.ReplaceAll(strings.ReplaceAll(src, "\r\n", "\n"), "\r", "\n")

	var fence string
	for _, line := range strings.Split(src, "\n") {
		if fence != "" {
			if isClosingFence(line, fence) {
				fence = ""
			}
			continue
		}
		if isFenceOpen(line) {
			fence = fenceOpenPattern.FindStringSubmatch(line)[1]
			continue
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			if title := headingText(m[2]); title != "" {
				return title
			}
		}
	}
	return ""
}
