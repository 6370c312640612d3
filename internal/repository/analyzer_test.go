package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/readme-generator/internal/types"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func newTestAnalyzer(t *testing.T, opts Options) *Analyzer {
	t.Helper()
	opts.Logger = zerolog.Nop()
	a, err := NewAnalyzer(opts)
	require.NoError(t, err)
	return a
}

const springApp = `package com.example;

@SpringBootApplication
public class DemoApplication {
    public static void main(String[] args) {
        SpringApplication.run(DemoApplication.class, args);
    }
}
`

const buildGradle = `plugins {
    id 'java'
    id 'org.springframework.boot' version '3.2.0'
}

dependencies {
    implementation 'org.springframework.boot:spring-boot-starter-web'
    implementation group: 'com.google.guava', name: 'guava', version: '33.0.0-jre'
    testImplementation("org.junit.jupiter:junit-jupiter")
}
`

func TestAnalyze_SpringBootProject(t *testing.T) {
	root := writeTree(t, map[string]string{
		"build.gradle":                                      buildGradle,
		"gradlew":                                           "#!/bin/sh\n",
		"src/main/java/com/example/DemoApplication.java":    springApp,
		"src/main/java/com/example/web/UserController.java": "@RestController\nclass UserController {\n@GetMapping(\"/u\")\nvoid get() {}\n}\n",
		"src/main/resources/application.yml":                "server:\n  port: 8080\n",
		"src/main/resources/application.yml.example":        "server:\n  port: 8080\n",
		"start.sh":                                          "#!/bin/sh\n./gradlew bootRun\n",
		"hobo/deploy.sh":                                    "#!/bin/sh\n",
		"docker-compose.yml":                                "services:\n  db:\n    image: postgres\n  app:\n    build: .\n",
		"node_modules/x/index.js":                           "ignored",
		".gitlab-ci.yml":                                    "stages: []\n",
		"README.md":                                         "# Demo\n",
	})

	repo, err := newTestAnalyzer(t, Options{}).Analyze(context.Background(), root, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(root), repo.Name)
	assert.Equal(t, "Java", repo.PrimaryLanguage)
	assert.True(t, repo.HasFramework)
	assert.Equal(t, "Spring Boot", repo.FrameworkName)
	assert.Contains(t, repo.EntryPoints, "src/main/java/com/example/DemoApplication.java")
	assert.Contains(t, repo.EntryPoints, "build.gradle")
	assert.Contains(t, repo.ExampleConfigFiles, "src/main/resources/application.yml.example")
	assert.Equal(t, []string{"start.sh"}, repo.RootShellScripts)
	assert.Equal(t, []string{"hobo/deploy.sh"}, repo.ShellScripts)
	assert.Equal(t, []string{"app", "db"}, repo.ComposeServices)

	assert.Equal(t, types.BuildSystemGradle, repo.BuildSystem.Type)
	assert.True(t, repo.BuildSystem.HasWrapper)
	assert.Contains(t, repo.BuildSystem.Plugins, "org.springframework.boot")
	assert.Contains(t, repo.BuildSystem.Commands["run"], "./gradlew bootRun")
	assert.Contains(t, repo.BuildSystem.Commands["run"], "./start.sh")
	assert.Equal(t, []string{"docker compose up"}, repo.BuildSystem.Commands["docker"])

	assert.Contains(t, repo.Dependencies, "org.springframework.boot:spring-boot-starter-web")
	assert.Contains(t, repo.Dependencies, "com.google.guava:guava:33.0.0-jre")
	assert.Contains(t, repo.Dependencies, "org.junit.jupiter:junit-jupiter")

	for _, f := range repo.Files {
		assert.False(t, strings.HasPrefix(f.Path, "node_modules/"), f.Path)
		assert.NotEqual(t, ".gitlab-ci.yml", f.Path)
	}
	assert.Equal(t, "# Demo\n", repo.ReadmeContents["README.md"])
	assert.Contains(t, repo.FormattedAnalysis, "Build system: gradle (wrapper)")
}

func TestAnalyze_FilesSortedByScore(t *testing.T) {
	root := writeTree(t, map[string]string{
		"build.gradle":                                   buildGradle,
		"src/main/java/com/example/DemoApplication.java": springApp,
		"src/util/StringHelper.java":                     "class StringHelper {}\n",
	})

	repo, err := newTestAnalyzer(t, Options{}).Analyze(context.Background(), root, false)
	require.NoError(t, err)
	require.NotEmpty(t, repo.Files)

	assert.Equal(t, "src/main/java/com/example/DemoApplication.java", repo.Files[0].Path)
	for i := 1; i < len(repo.Files); i++ {
		prev, cur := repo.Files[i-1], repo.Files[i]
		if prev.Score == cur.Score {
			assert.Less(t, prev.Path, cur.Path)
		} else {
			assert.Greater(t, prev.Score, cur.Score)
		}
	}
}

func TestAnalyze_LargeFilesListedWithoutContent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":  "module example.com/demo\n\ngo 1.22\n",
		"main.go": "package main\n\nfunc main() {}\n",
		"big.go":  "package main\n// " + strings.Repeat("x", 200) + "\n",
	})

	repo, err := newTestAnalyzer(t, Options{MaxFileSize: 100}).Analyze(context.Background(), root, false)
	require.NoError(t, err)

	var paths []string
	for _, f := range repo.Files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "big.go")
	assert.Empty(t, repo.Content("big.go"))
	assert.NotEmpty(t, repo.Content("main.go"))
}

func TestAnalyze_GoProject(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod": `module example.com/demo

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	golang.org/x/text v0.14.0 // indirect
)
`,
		"cmd/demo/main.go": "package main\n\nfunc main() {}\n",
		"internal/lib.go":  "package internal\n",
		"Makefile":         ".PHONY: build\nbuild:\n\tgo build ./...\nVERSION := 1\n",
	})

	repo, err := newTestAnalyzer(t, Options{}).Analyze(context.Background(), root, false)
	require.NoError(t, err)

	assert.Equal(t, "Go", repo.PrimaryLanguage)
	assert.Equal(t, []string{"cmd/demo/main.go"}, repo.EntryPoints)
	assert.Equal(t, types.BuildSystemGo, repo.BuildSystem.Type)
	assert.Equal(t, []string{"go run ./cmd/demo"}, repo.BuildSystem.Commands["run"])
	assert.Equal(t, []string{"make build"}, repo.BuildSystem.Commands["make"])
	assert.Equal(t, []string{"github.com/spf13/cobra@v1.8.0"}, repo.Dependencies)
}

func TestAnalyze_NodeProject(t *testing.T) {
	root := writeTree(t, map[string]string{
		"package.json":  `{"main": "./src/server.js", "scripts": {"start": "node src/server.js", "test": "jest", "lint": "eslint ."}, "dependencies": {"express": "^4.18.0"}}`,
		"src/server.js": "require('express')\n",
		"index.js":      "module.exports = {}\n",
	})

	repo, err := newTestAnalyzer(t, Options{}).Analyze(context.Background(), root, false)
	require.NoError(t, err)

	assert.Equal(t, "JavaScript", repo.PrimaryLanguage)
	assert.ElementsMatch(t, []string{"index.js", "src/server.js"}, repo.EntryPoints)
	assert.Equal(t, types.BuildSystemNPM, repo.BuildSystem.Type)
	assert.Equal(t, []string{"npm start"}, repo.BuildSystem.Commands["run"])
	assert.Equal(t, []string{"npm test"}, repo.BuildSystem.Commands["test"])
	assert.Equal(t, []string{"npm run lint"}, repo.BuildSystem.Commands["scripts"])
	assert.Equal(t, []string{"express@^4.18.0"}, repo.Dependencies)
}

func TestAnalyze_PythonProject(t *testing.T) {
	root := writeTree(t, map[string]string{
		"requirements.txt": "flask==3.0.0\n# comment\n-r base.txt\nrequests\n",
		"app/cli.py":       "def run():\n    pass\n\nif __name__ == \"__main__\":\n    run()\n",
		"app/util.py":      "X = 1\n",
	})

	repo, err := newTestAnalyzer(t, Options{}).Analyze(context.Background(), root, false)
	require.NoError(t, err)

	assert.Equal(t, "Python", repo.PrimaryLanguage)
	assert.Equal(t, []string{"app/cli.py"}, repo.EntryPoints)
	assert.Equal(t, types.BuildSystemPython, repo.BuildSystem.Type)
	assert.Equal(t, []string{"flask==3.0.0", "requests"}, repo.Dependencies)
}

func TestAnalyze_ForcedLanguage(t *testing.T) {
	root := writeTree(t, map[string]string{
		"package.json": `{}`,
		"tool.py":      "if __name__ == '__main__':\n    pass\n",
	})

	repo, err := newTestAnalyzer(t, Options{Language: LanguagePython}).Analyze(context.Background(), root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"tool.py"}, repo.EntryPoints)
}

func TestAnalyze_UnsupportedLanguage(t *testing.T) {
	root := writeTree(t, map[string]string{"main.rs": "fn main() {}"})

	_, err := newTestAnalyzer(t, Options{Language: "rust"}).Analyze(context.Background(), root, false)
	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Contains(t, analysisErr.Message, "unsupported language")
}

func TestAnalyze_MissingDirectory(t *testing.T) {
	_, err := newTestAnalyzer(t, Options{}).Analyze(context.Background(), filepath.Join(t.TempDir(), "nope"), false)
	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
}

func TestAnalyze_CacheAndUpdate(t *testing.T) {
	root := writeTree(t, map[string]string{"go.mod": "module x\n", "main.go": "package main\n\nfunc main() {}\n"})
	a := newTestAnalyzer(t, Options{})

	first, err := a.Analyze(context.Background(), root, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.go"), []byte("package main\n"), 0644))

	cached, err := a.Analyze(context.Background(), root, false)
	require.NoError(t, err)
	assert.Same(t, first, cached)

	fresh, err := a.Analyze(context.Background(), root, true)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, first.TotalFiles+1, fresh.TotalFiles)
}

func TestAnalyze_ExcludeDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":                        "module x\n",
		"output/intermediates/ctx.json": "{}",
	})

	repo, err := newTestAnalyzer(t, Options{ExcludeDirs: []string{"output"}}).Analyze(context.Background(), root, false)
	require.NoError(t, err)
	for _, f := range repo.Files {
		assert.False(t, strings.HasPrefix(f.Path, "output/"), f.Path)
	}
}

func TestAnalyze_BinaryFileHasNoContent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":    "module x\n",
		"data.json": "{\x00\x01}",
	})

	repo, err := newTestAnalyzer(t, Options{}).Analyze(context.Background(), root, false)
	require.NoError(t, err)
	assert.Empty(t, repo.Content("data.json"))
}

func TestHasPopulatedReadme(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  bool
	}{
		{"no readme", map[string]string{"main.go": "package main"}, false},
		{"empty readme", map[string]string{"README.md": "  \n\t"}, false},
		{"populated", map[string]string{"README.md": "# Title"}, true},
		{"mixed case", map[string]string{"Readme.md": "hello"}, true},
		{"nested only", map[string]string{"docs/README.md": "hello"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeTree(t, tt.files)
			got, _ := HasPopulatedReadme(root)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsReadmePath(t *testing.T) {
	assert.True(t, isReadmePath("README.md"))
	assert.True(t, isReadmePath("docs/ReadMe.md"))
	assert.True(t, isReadmePath("README"))
	assert.True(t, isReadmePath("read.me"))
	assert.False(t, isReadmePath("docs/README"))
	assert.False(t, isReadmePath("README.txt"))
}
