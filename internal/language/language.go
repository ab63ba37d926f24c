// Package language maps file extensions to the programming language
// they are most commonly written in.
package language

import (
	"path"
	"strings"
)

// Unknown is returned by Classify when an extension has no language.
const Unknown = "unknown"

// excluded holds extensions that never count as code, even when the table
// below knows about them. They tend to be huge and generated.
var excluded = map[string]struct{}{
	"exe":  {},
	"bin":  {},
	"json": {},
	"sum":  {},
	"mod":  {},
}

// IsExcluded reports whether ext is one of the hard-coded non-code extensions.
func IsExcluded(ext string) bool {
	_, ok := excluded[strings.ToLower(ext)]
	return ok
}

// Extension returns the text after the last dot of the file's base name.
// Only names without a dot have no extension; the extension of a dotfile
// such as ".gitignore" is "gitignore".
func Extension(filename string) (string, bool) {
	base := path.Base(filename)
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return "", false
	}
	return base[i+1:], true
}

// Classify returns the language for ext. When the table lists several
// candidates the first one wins.
func Classify(ext string) (string, bool) {
	ext = strings.ToLower(ext)
	if IsExcluded(ext) {
		return Unknown, false
	}
	candidates, ok := extensions[ext]
	if !ok || len(candidates) == 0 {
		return Unknown, false
	}
	return candidates[0], true
}

// Candidates returns every language registered for ext, in priority order.
func Candidates(ext string) []string {
	c := extensions[strings.ToLower(ext)]
	out := make([]string, len(c))
	copy(out, c)
	return out
}
