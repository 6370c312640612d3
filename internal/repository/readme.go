package repository

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// RootReadmeNames are the README file names checked before a run.
var RootReadmeNames = []string{"README.md", "Readme.md", "readme.md"}

// HasPopulatedReadme reports whether the repository root already holds a
// README with non-whitespace content.
func HasPopulatedReadme(repoPath string) (bool, string) {
	for _, name := range RootReadmeNames {
		p := filepath.Join(repoPath, name)
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) != "" {
			return true, p
		}
	}
	return false, ""
}

// isReadmePath reports whether a repository-relative path is README-like.
func isReadmePath(rel string) bool {
	lower := strings.ToLower(rel)
	switch path.Base(lower) {
	case "readme", "read.me":
		return !strings.Contains(lower, "/")
	case "readme.md":
		return true
	}
	return false
}
