package stacktrace

import "strings"

// InternalPaths extracts the internal package frames from a raw stack trace,
// each reported as a short "internal/..." path with a line number. Frames from
// the runtime and third-party code are skipped.
func InternalPaths(stack []byte) []string {
	var paths []string

	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		end := idx + len(".go:")
		for end < len(line) && line[end] >= '0' && line[end] <= '9' {
			end++
		}

		internalIdx := strings.Index(line[:idx], "/internal/")
		if internalIdx == -1 {
			continue
		}

		paths = append(paths, line[internalIdx+1:end])
	}

	return paths
}
