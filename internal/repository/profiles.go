package repository

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Supported values for Options.Language.
const (
	LanguageAuto       = "auto"
	LanguageJava       = "java"
	LanguagePython     = "python"
	LanguageJavaScript = "javascript"
	LanguageGo         = "go"
)

// Languages lists the accepted language options.
var Languages = []string{LanguageAuto, LanguageJava, LanguagePython, LanguageJavaScript, LanguageGo}

// profile is immutable per-language analysis data.
type profile struct {
	name       string
	extensions map[string]string // extension -> language label
	keyFiles   []string          // root-level files always included
	entryPoint func(relPath, content, language string) bool
}

// commonKeyFiles are included for every language.
var commonKeyFiles = []string{"README.md", "Dockerfile", "docker-compose.yml", "docker-compose.yaml", "Makefile"}

// ignoredDirs are never descended into.
var ignoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"venv":         true,
	".venv":        true,
	"__pycache__":  true,
	"target":       true,
	"build":        true,
	"dist":         true,
	".gradle":      true,
	".idea":        true,
}

var (
	springBootAnnotation = regexp.MustCompile(`@SpringBootApplication`)
	javaMainMethod       = regexp.MustCompile(`public\s+static\s+void\s+main\s*\(\s*(?:final\s+)?String\s*(?:\[\s*\]|\.\.\.)\s*\w+\s*\)`)
	gradleApplyPlugin    = regexp.MustCompile(`apply\s+plugin\s*:\s*['"](?:application|org\.springframework\.boot)['"]`)
	gradlePluginsBlock   = regexp.MustCompile(`(?s)plugins\s*\{[^}]*id\s*\(?\s*['"](?:application|org\.springframework\.boot)['"]`)
	gradleBarePlugin     = regexp.MustCompile(`(?m)plugins\s*\{[^}]*^\s*application\s*$`)
	pythonMainGuard      = regexp.MustCompile(`if\s+__name__\s*==\s*['"]__main__['"]\s*:`)
	goPackageMain        = regexp.MustCompile(`(?m)^package\s+main\b`)
	goMainFunc           = regexp.MustCompile(`(?m)^func\s+main\s*\(\s*\)`)
)

var profiles = map[string]profile{
	LanguageJava: {
		name: LanguageJava,
		extensions: map[string]string{
			".java":       "Java",
			".kt":         "Kotlin",
			".gradle":     "Gradle",
			".kts":        "Gradle",
			".properties": "Properties",
			".yml":        "YAML",
			".yaml":       "YAML",
			".xml":        "XML",
			".sh":         "Shell",
		},
		keyFiles: []string{
			"build.gradle",
			"build.gradle.kts",
			"settings.gradle",
			"gradle.properties",
			"pom.xml",
			"application.properties",
			"application.yml",
			"application-dev.properties",
			"application-dev.yml",
			"application-env-local.yml.example",
			"application-env-local.properties.example",
			"application.yml.example",
			"application.properties.example",
		},
		entryPoint: func(relPath, content, language string) bool {
			switch language {
			case "Java":
				return springBootAnnotation.MatchString(content) || javaMainMethod.MatchString(content)
			case "Gradle":
				return gradleApplyPlugin.MatchString(content) || gradlePluginsBlock.MatchString(content) || gradleBarePlugin.MatchString(content)
			}
			return false
		},
	},
	LanguagePython: {
		name: LanguagePython,
		extensions: map[string]string{
			".py":   "Python",
			".toml": "TOML",
			".ini":  "INI",
			".cfg":  "INI",
			".yml":  "YAML",
			".yaml": "YAML",
			".json": "JSON",
			".sh":   "Shell",
		},
		keyFiles: []string{
			"pyproject.toml",
			"setup.py",
			"setup.cfg",
			"requirements.txt",
			"Pipfile",
			"manage.py",
			"app.py",
			"config.py",
			"__main__.py",
			"wsgi.py",
		},
		entryPoint: func(relPath, content, language string) bool {
			if language != "Python" {
				return false
			}
			switch path.Base(relPath) {
			case "__main__.py", "manage.py":
				return true
			}
			return pythonMainGuard.MatchString(content)
		},
	},
	LanguageJavaScript: {
		name: LanguageJavaScript,
		extensions: map[string]string{
			".js":   "JavaScript",
			".mjs":  "JavaScript",
			".cjs":  "JavaScript",
			".jsx":  "React",
			".ts":   "TypeScript",
			".tsx":  "React TypeScript",
			".json": "JSON",
			".html": "HTML",
			".css":  "CSS",
			".scss": "SCSS",
			".vue":  "Vue",
			".sh":   "Shell",
		},
		keyFiles: []string{
			"package.json",
			"tsconfig.json",
			"webpack.config.js",
			"babel.config.js",
			"vite.config.js",
			"next.config.js",
			".eslintrc",
			"index.js",
			"main.js",
			"app.js",
			"server.js",
		},
		entryPoint: func(relPath, _, language string) bool {
			if language != "JavaScript" && language != "TypeScript" {
				return false
			}
			if strings.Contains(relPath, "/") {
				return false
			}
			switch strings.TrimSuffix(relPath, path.Ext(relPath)) {
			case "index", "main", "app", "server":
				return true
			}
			return false
		},
	},
	LanguageGo: {
		name: LanguageGo,
		extensions: map[string]string{
			".go":   "Go",
			".mod":  "Go Module",
			".yml":  "YAML",
			".yaml": "YAML",
			".json": "JSON",
			".toml": "TOML",
			".sh":   "Shell",
		},
		keyFiles: []string{"go.mod", "Makefile", "main.go"},
		entryPoint: func(_, content, language string) bool {
			return language == "Go" && goPackageMain.MatchString(content) && goMainFunc.MatchString(content)
		},
	},
}

// detectionOrder lists languages with the root indicators that select them.
var detectionOrder = []struct {
	language   string
	indicators []string
}{
	{LanguageJava, []string{"build.gradle", "build.gradle.kts", "gradlew", "pom.xml", filepath.Join("src", "main", "java")}},
	{LanguagePython, []string{"requirements.txt", "setup.py", "pyproject.toml", "Pipfile"}},
	{LanguageJavaScript, []string{"package.json", "tsconfig.json", "webpack.config.js"}},
	{LanguageGo, []string{"go.mod"}},
}

// selectProfile returns the forced profile, or detects one from root
// indicators. Repositories with no indicator are analyzed as Java.
func selectProfile(root, language string) (profile, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language != "" && language != LanguageAuto {
		p, ok := profiles[language]
		if !ok {
			return profile{}, &AnalysisError{Path: root, Message: "unsupported language " + language}
		}
		return p, nil
	}

	for _, candidate := range detectionOrder {
		for _, indicator := range candidate.indicators {
			if _, err := os.Stat(filepath.Join(root, indicator)); err == nil {
				return profiles[candidate.language], nil
			}
		}
	}
	return profiles[LanguageJava], nil
}

func (p profile) language(relPath string) string {
	base := path.Base(relPath)
	switch {
	case base == "Dockerfile" || strings.HasPrefix(base, "Dockerfile."):
		return "Dockerfile"
	case base == "Makefile":
		return "Makefile"
	}
	if lang, ok := p.extensions[strings.ToLower(path.Ext(relPath))]; ok {
		return lang
	}
	return "Unknown"
}

func (p profile) isKeyFile(relPath string) bool {
	if strings.Contains(relPath, "/") {
		return false
	}
	for _, name := range commonKeyFiles {
		if relPath == name {
			return true
		}
	}
	for _, name := range p.keyFiles {
		if relPath == name {
			return true
		}
	}
	return false
}

func (p profile) analyzable(relPath string) bool {
	_, ok := p.extensions[strings.ToLower(path.Ext(relPath))]
	return ok
}
