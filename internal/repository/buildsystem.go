package repository

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/readme-generator/internal/types"
)

var (
	gradlePluginID      = regexp.MustCompile(`(?m)^\s*id\s*\(?\s*['"]([\w.\-]+)['"]`)
	gradleApplyID       = regexp.MustCompile(`apply\s+plugin\s*:\s*['"]([\w.\-]+)['"]`)
	gradleBareID        = regexp.MustCompile(`(?m)^\s*(java|application|groovy|war|maven-publish|java-library)\s*$`)
	gradleStringDep     = regexp.MustCompile(`(?m)^\s*(?:implementation|api|compile|compileOnly|runtimeOnly|testImplementation|testRuntimeOnly|annotationProcessor|developmentOnly)\s*\(?\s*['"]([^'"\s]+)['"]`)
	gradleMapDep        = regexp.MustCompile(`group\s*:\s*['"]([^'"]+)['"]\s*,\s*name\s*:\s*['"]([^'"]+)['"](?:\s*,\s*version\s*:\s*['"]([^'"]+)['"])?`)
	gradleDepsBlock     = regexp.MustCompile(`(?m)^\s*dependencies\s*\{`)
	mavenDependency     = regexp.MustCompile(`(?s)<dependency>(.*?)</dependency>`)
	mavenGroupID        = regexp.MustCompile(`<groupId>\s*([^<]+?)\s*</groupId>`)
	mavenArtifactID     = regexp.MustCompile(`<artifactId>\s*([^<]+?)\s*</artifactId>`)
	mavenVersion        = regexp.MustCompile(`<version>\s*([^<]+?)\s*</version>`)
	mavenBootPlugin     = regexp.MustCompile(`<artifactId>\s*spring-boot-maven-plugin\s*</artifactId>`)
	makefileTarget      = regexp.MustCompile(`(?m)^([A-Za-z0-9][\w.\-]*)\s*:(?:[^=]|$)`)
	pythonProjectScript = regexp.MustCompile(`(?s)\[project\.scripts\](.*?)(?:\n\[|$)`)
	tomlKey             = regexp.MustCompile(`(?m)^\s*([\w\-]+)\s*=`)
)

// detectBuildSystem identifies the build system and collects the commands it exposes.
func detectBuildSystem(root string, records []fileRecord) types.BuildSystem {
	bs := types.BuildSystem{Type: types.BuildSystemUnknown, Commands: make(map[string][]string)}

	gradleFiles := filterRecords(records, func(p string) bool {
		return strings.HasSuffix(p, ".gradle") || strings.HasSuffix(p, ".gradle.kts")
	})
	switch {
	case len(gradleFiles) > 0:
		bs.Type = types.BuildSystemGradle
		bs.HasWrapper = fileExists(filepath.Join(root, "gradlew"))
		for _, rec := range gradleFiles {
			bs.Files = append(bs.Files, rec.Path)
			bs.Plugins = appendUnique(bs.Plugins, gradlePlugins(rec.content)...)
		}
		gradle := "gradle"
		if bs.HasWrapper {
			gradle = "./gradlew"
		}
		for _, plugin := range bs.Plugins {
			switch plugin {
			case "org.springframework.boot":
				bs.Commands["run"] = appendUnique(bs.Commands["run"], gradle+" bootRun")
			case "application":
				bs.Commands["run"] = appendUnique(bs.Commands["run"], gradle+" run")
			}
		}
	case hasRoot(records, "pom.xml"):
		bs.Type = types.BuildSystemMaven
		bs.Files = []string{"pom.xml"}
		bs.HasWrapper = fileExists(filepath.Join(root, "mvnw"))
		if pom := rootContent(records, "pom.xml"); mavenBootPlugin.MatchString(pom) {
			mvn := "mvn"
			if bs.HasWrapper {
				mvn = "./mvnw"
			}
			bs.Commands["run"] = []string{mvn + " spring-boot:run"}
		}
	case hasRoot(records, "package.json"):
		bs.Type = types.BuildSystemNPM
		bs.Files = []string{"package.json"}
		npmScriptCommands(rootContent(records, "package.json"), bs.Commands)
	case hasRoot(records, "pyproject.toml") || hasRoot(records, "setup.py") || hasRoot(records, "requirements.txt"):
		bs.Type = types.BuildSystemPython
		for _, name := range []string{"pyproject.toml", "setup.py", "requirements.txt"} {
			if hasRoot(records, name) {
				bs.Files = append(bs.Files, name)
			}
		}
		for _, m := range pythonProjectScript.FindAllStringSubmatch(rootContent(records, "pyproject.toml"), -1) {
			for _, key := range tomlKey.FindAllStringSubmatch(m[1], -1) {
				bs.Commands["run"] = appendUnique(bs.Commands["run"], key[1])
			}
		}
	case hasRoot(records, "go.mod"):
		bs.Type = types.BuildSystemGo
		bs.Files = []string{"go.mod"}
		for _, rec := range records {
			if rec.IsEntryPoint && strings.HasSuffix(rec.Path, ".go") {
				bs.Commands["run"] = appendUnique(bs.Commands["run"], "go run ./"+path.Dir(rec.Path))
			}
		}
	case hasRoot(records, "Makefile"):
		bs.Type = types.BuildSystemMake
		bs.Files = []string{"Makefile"}
	}

	if content := rootContent(records, "Makefile"); content != "" {
		for _, m := range makefileTarget.FindAllStringSubmatch(content, -1) {
			bs.Commands["make"] = appendUnique(bs.Commands["make"], "make "+m[1])
		}
	}

	for _, rec := range records {
		if !strings.HasSuffix(rec.Path, ".sh") || !types.IsRootPath(rec.Path) {
			continue
		}
		name := strings.ToLower(rec.Path)
		command := "./" + rec.Path
		switch {
		case strings.Contains(name, "start"):
			bs.Commands["run"] = appendUnique(bs.Commands["run"], command)
		case strings.Contains(name, "stop"):
			bs.Commands["stop"] = appendUnique(bs.Commands["stop"], command)
		case strings.Contains(name, "run"):
			bs.Commands["run"] = appendUnique(bs.Commands["run"], command)
		}
	}

	if hasRoot(records, "docker-compose.yml") || hasRoot(records, "docker-compose.yaml") {
		bs.Commands["docker"] = []string{"docker compose up"}
	}

	if len(bs.Commands) == 0 {
		bs.Commands = nil
	}
	return bs
}

func gradlePlugins(content string) []string {
	var plugins []string
	for _, re := range []*regexp.Regexp{gradlePluginID, gradleApplyID, gradleBareID} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			plugins = appendUnique(plugins, m[1])
		}
	}
	return plugins
}

// npmScriptCommands maps package.json scripts to commands.
func npmScriptCommands(content string, commands map[string][]string) {
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return
	}
	names := make([]string, 0, len(pkg.Scripts))
	for name := range pkg.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch name {
		case "start":
			commands["run"] = appendUnique(commands["run"], "npm start")
		case "dev", "serve":
			commands["run"] = appendUnique(commands["run"], "npm run "+name)
		case "test":
			commands["test"] = appendUnique(commands["test"], "npm test")
		case "build":
			commands["build"] = appendUnique(commands["build"], "npm run build")
		default:
			commands["scripts"] = appendUnique(commands["scripts"], "npm run "+name)
		}
	}
}

// usesSpringBootPlugin reports whether any Gradle build applies the Spring Boot plugin.
func usesSpringBootPlugin(records []fileRecord) bool {
	for _, rec := range records {
		if (strings.HasSuffix(rec.Path, ".gradle") || strings.HasSuffix(rec.Path, ".gradle.kts")) && bootPlugin.MatchString(rec.content) {
			return true
		}
	}
	return false
}

// findDependencies lists declared dependencies across supported manifests.
func findDependencies(records []fileRecord) []string {
	var deps []string
	for _, rec := range records {
		if rec.content == "" {
			continue
		}
		base := path.Base(rec.Path)
		switch {
		case strings.HasSuffix(base, ".gradle") || strings.HasSuffix(base, ".gradle.kts"):
			deps = appendUnique(deps, gradleDependencies(rec.content)...)
		case base == "pom.xml":
			deps = appendUnique(deps, mavenDependencies(rec.content)...)
		case base == "requirements.txt":
			deps = appendUnique(deps, requirementsDependencies(rec.content)...)
		case rec.Path == "package.json":
			deps = appendUnique(deps, packageJSONDependencies(rec.content)...)
		case rec.Path == "go.mod":
			deps = appendUnique(deps, goModDependencies(rec.content)...)
		}
	}
	return deps
}

func gradleDependencies(content string) []string {
	var deps []string
	for _, block := range bracedBlocks(content, gradleDepsBlock) {
		for _, m := range gradleStringDep.FindAllStringSubmatch(block, -1) {
			deps = appendUnique(deps, m[1])
		}
		for _, m := range gradleMapDep.FindAllStringSubmatch(block, -1) {
			dep := m[1] + ":" + m[2]
			if m[3] != "" {
				dep += ":" + m[3]
			}
			deps = appendUnique(deps, dep)
		}
	}
	return deps
}

// bracedBlocks returns the bodies of the blocks opened by start, honoring nested braces.
func bracedBlocks(content string, start *regexp.Regexp) []string {
	var blocks []string
	for _, loc := range start.FindAllStringIndex(content, -1) {
		depth := 1
		for i := loc[1]; i < len(content); i++ {
			switch content[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				blocks = append(blocks, content[loc[1]:i])
				break
			}
		}
	}
	return blocks
}

func mavenDependencies(content string) []string {
	var deps []string
	for _, m := range mavenDependency.FindAllStringSubmatch(content, -1) {
		group := mavenGroupID.FindStringSubmatch(m[1])
		artifact := mavenArtifactID.FindStringSubmatch(m[1])
		if group == nil || artifact == nil {
			continue
		}
		dep := group[1] + ":" + artifact[1]
		if version := mavenVersion.FindStringSubmatch(m[1]); version != nil {
			dep += ":" + version[1]
		}
		deps = appendUnique(deps, dep)
	}
	return deps
}

func requirementsDependencies(content string) []string {
	var deps []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		deps = appendUnique(deps, line)
	}
	return deps
}

func packageJSONDependencies(content string) []string {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return nil
	}
	var deps []string
	for _, group := range []map[string]string{pkg.Dependencies, pkg.DevDependencies} {
		names := make([]string, 0, len(group))
		for name := range group {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			deps = appendUnique(deps, name+"@"+group[name])
		}
	}
	return deps
}

func goModDependencies(content string) []string {
	f, err := modfile.ParseLax("go.mod", []byte(content), nil)
	if err != nil {
		return nil
	}
	var deps []string
	for _, req := range f.Require {
		if req.Indirect {
			continue
		}
		deps = appendUnique(deps, req.Mod.Path+"@"+req.Mod.Version)
	}
	return deps
}

// composeServices lists service names from a root docker-compose file.
func composeServices(records []fileRecord, logger zerolog.Logger) []string {
	for _, name := range []string{"docker-compose.yml", "docker-compose.yaml"} {
		content := rootContent(records, name)
		if content == "" {
			continue
		}
		var compose struct {
			Services map[string]yaml.Node `yaml:"services"`
		}
		if err := yaml.Unmarshal([]byte(content), &compose); err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("Failed to parse compose file")
			return nil
		}
		services := make([]string, 0, len(compose.Services))
		for service := range compose.Services {
			services = append(services, service)
		}
		sort.Strings(services)
		return services
	}
	return nil
}

func filterRecords(records []fileRecord, keep func(string) bool) []fileRecord {
	var out []fileRecord
	for _, rec := range records {
		if keep(rec.Path) {
			out = append(out, rec)
		}
	}
	return out
}

func hasRoot(records []fileRecord, name string) bool {
	for _, rec := range records {
		if rec.Path == name {
			return true
		}
	}
	return false
}

func rootContent(records []fileRecord, name string) string {
	for _, rec := range records {
		if rec.Path == name {
			return rec.content
		}
	}
	return ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
