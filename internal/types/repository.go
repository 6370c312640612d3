// Package types provides type definitions for structured data used throughout the readme-generator system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"path"
	"strings"
)

// RepositoryContext is a normalized snapshot of facts about an analyzed repository.
// It is built once per run and treated as read-only afterwards.
type RepositoryContext struct {
	Name               string            `json:"name"`
	Path               string            `json:"path,omitempty"`
	PrimaryLanguage    string            `json:"primary_language"`
	TotalFiles         int               `json:"total_files"`
	Files              []FileInfo        `json:"files,omitempty"` // sorted by importance, highest first
	EntryPoints        []string          `json:"entry_points,omitempty"`
	ConfigFiles        []string          `json:"config_files,omitempty"`
	ExampleConfigFiles []string          `json:"example_config_files,omitempty"`
	KeyProjectFiles    []string          `json:"key_project_files,omitempty"`
	FileContents       map[string]string `json:"file_contents,omitempty"`
	FileBreakdown      map[string]int    `json:"file_breakdown,omitempty"`
	BuildSystem        BuildSystem       `json:"build_system"`
	Dependencies       []string          `json:"dependencies,omitempty"`
	HasFramework       bool              `json:"has_framework"`
	FrameworkName      string            `json:"framework_name,omitempty"`
	ComposeServices    []string          `json:"compose_services,omitempty"`
	ReadmeContents     map[string]string `json:"readme_contents,omitempty"`
	ShellScripts       []string          `json:"shell_scripts,omitempty"`      // nested and deploy-tool scripts
	RootShellScripts   []string          `json:"root_shell_scripts,omitempty"` // scripts at the repository root
	FormattedAnalysis  string            `json:"formatted_analysis,omitempty"`
}

// FileInfo describes one analyzed file.
type FileInfo struct {
	Path         string `json:"path"`
	Language     string `json:"language"`
	Size         int64  `json:"size"`
	IsEntryPoint bool   `json:"is_entry_point,omitempty"`
	IsConfig     bool   `json:"is_config,omitempty"`
	IsKeyFile    bool   `json:"is_key_file,omitempty"`
	Score        int    `json:"importance_score"`
}

// BuildSystem describes how the repository is built and run.
type BuildSystem struct {
	Type       string              `json:"type"`
	HasWrapper bool                `json:"has_wrapper,omitempty"`
	Files      []string            `json:"files,omitempty"`
	Plugins    []string            `json:"plugins,omitempty"`
	Commands   map[string][]string `json:"commands,omitempty"`
}

// Build system types recognized by the analyzer.
const (
	BuildSystemUnknown = "unknown"
	BuildSystemGradle  = "gradle"
	BuildSystemMaven   = "maven"
	BuildSystemNPM     = "npm"
	BuildSystemPython  = "python"
	BuildSystemGo      = "go"
	BuildSystemMake    = "make"
)

// primaryBuildFiles lists root build descriptors per build system, in preference order.
var primaryBuildFiles = map[string][]string{
	BuildSystemGradle: {"build.gradle", "build.gradle.kts"},
	BuildSystemMaven:  {"pom.xml"},
	BuildSystemNPM:    {"package.json"},
	BuildSystemPython: {"pyproject.toml", "setup.py", "requirements.txt"},
	BuildSystemGo:     {"go.mod"},
	BuildSystemMake:   {"Makefile"},
}

// Content returns the content of a file, or "" when it was not loaded.
func (r *RepositoryContext) Content(p string) string {
	if r == nil || r.FileContents == nil {
		return ""
	}
	return r.FileContents[p]
}

// TopFiles returns the paths of the n most important files.
func (r *RepositoryContext) TopFiles(n int) []string {
	if r == nil {
		return nil
	}
	if n > len(r.Files) {
		n = len(r.Files)
	}
	paths := make([]string, 0, n)
	for _, f := range r.Files[:n] {
		paths = append(paths, f.Path)
	}
	return paths
}

// PrimaryBuildFile returns the root build descriptor for the detected build
// system, or "" when none was found.
func (r *RepositoryContext) PrimaryBuildFile() string {
	if r == nil {
		return ""
	}
	for _, name := range primaryBuildFiles[r.BuildSystem.Type] {
		if _, ok := r.FileContents[name]; ok {
			return name
		}
		for _, f := range r.BuildSystem.Files {
			if f == name {
				return name
			}
		}
	}
	return ""
}

// OriginalReadme finds the repository's existing README. Keys are matched
// case-insensitively against readme.md, readme and read.me first, then any
// path ending in /readme.md.
func (r *RepositoryContext) OriginalReadme() (string, bool) {
	if r == nil || len(r.ReadmeContents) == 0 {
		return "", false
	}
	for _, want := range []string{"readme.md", "readme", "read.me"} {
		for key, content := range r.ReadmeContents {
			if strings.EqualFold(key, want) {
				return content, true
			}
		}
	}

	var keys []string
	for key := range r.ReadmeContents {
		if strings.HasSuffix(strings.ToLower(key), "/readme.md") {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	// Prefer the shallowest match for a stable result
	best := keys[0]
	for _, k := range keys[1:] {
		if depth(k) < depth(best) || (depth(k) == depth(best) && k < best) {
			best = k
		}
	}
	return r.ReadmeContents[best], true
}

// WithoutContents returns a shallow copy that omits file contents, for
// debug dumps where the full text would dwarf the metadata.
func (r *RepositoryContext) WithoutContents() *RepositoryContext {
	if r == nil {
		return nil
	}
	c := *r
	c.FileContents = nil
	c.ReadmeContents = nil
	return &c
}

// IsRootPath reports whether a repository-relative path sits at the root.
func IsRootPath(p string) bool {
	return path.Dir(p) == "."
}

func depth(p string) int {
	return strings.Count(p, "/")
}
