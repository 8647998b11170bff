package edit

import "strings"

// bodyBounds locates the insertable body range within container, a chunk's
// verbatim source text, and returns it as (startOffset, endOffset) relative
// to the start of container. It also reports the indentation to apply to
// inserted code, taken from the body's first existing child when one
// exists.
//
// Brace-delimited grammars (Go, Java, C#, Rust, JS/TS, C, PHP) are handled by
// locating the container's opening and closing braces. Indentation-delimited
// grammars (Python) have no body node to anchor to; the body is taken to
// start immediately after the first line (the header, ending in ':') and run
// to the end of the container.
func bodyBounds(container string) (start, end int, indent string) {
	if i := strings.IndexByte(container, '{'); i >= 0 {
		if j := strings.LastIndexByte(container, '}'); j > i {
			start = i + 1
			end = j
			return start, end, firstChildIndent(container[start:end])
		}
	}

	if nl := strings.IndexByte(container, '\n'); nl >= 0 {
		start = nl + 1
		end = len(strings.TrimRight(container, "\n"))
		if end < start {
			end = start
		}
		return start, end, firstChildIndent(container[start:end])
	}

	return len(container), len(container), ""
}

// firstChildIndent returns the leading whitespace of the first non-blank
// line of a body's interior text.
func firstChildIndent(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		return line[:len(line)-len(trimmed)]
	}
	return ""
}
