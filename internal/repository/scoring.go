package repository

import (
	"regexp"
	"strings"
)

// Importance weights. Higher scores put a file earlier in prompt context.
const (
	weightEntryPoint      = 100
	weightKeyFile         = 80
	weightSpringBootApp   = 110
	weightApplicationPath = 70
	weightExampleConfig   = 100
	weightMainPath        = 65
	weightControllerPath  = 60
	weightServicePath     = 55
	weightRepositoryPath  = 50
	weightModelPath       = 45
	weightConfigPath      = 40
	weightUtilPath        = 20
	weightGradleFile      = 75
	weightAppConfigFile   = 70
	weightLocalConfig     = 10
	weightShellScript     = 65
	weightDockerfile      = 70
	weightCompose         = 75
	weightDeployTool      = 80
	weightSpringStereo    = 10
	weightMainMethod      = 30
	weightRestMapping     = 8
	weightBootPlugin      = 25
	weightAppPlugin       = 20
	weightGradleTask      = 5
)

// pathMarkers are checked in order; only the first match scores.
var pathMarkers = []struct {
	markers []string
	weight  int
}{
	{[]string{"main"}, weightMainPath},
	{[]string{"controller"}, weightControllerPath},
	{[]string{"service"}, weightServicePath},
	{[]string{"repository", "dao"}, weightRepositoryPath},
	{[]string{"model", "entity"}, weightModelPath},
	{[]string{"config"}, weightConfigPath},
	{[]string{"util", "helper"}, weightUtilPath},
}

var (
	springStereotypes = regexp.MustCompile(`@(Controller|RestController|Service|Repository|Component|Configuration|SpringBootApplication)\b`)
	anyMainMethod     = regexp.MustCompile(`public\s+static\s+void\s+main`)
	restMappings      = regexp.MustCompile(`@(GetMapping|PostMapping|PutMapping|DeleteMapping|PatchMapping|RequestMapping)\b`)
	bootPlugin        = regexp.MustCompile(`org\.springframework\.boot`)
	appOrJavaPlugin   = regexp.MustCompile(`\b(application|java)\b`)
	gradleTasks       = regexp.MustCompile(`(?m)^\s*(?:task\s+(\w+)|tasks\.register\(\s*['"](\w+)['"])`)
)

// scoreFile ranks a file's importance from its metadata and content.
func scoreFile(info fileRecord) int {
	score := 0
	if info.IsEntryPoint {
		score += weightEntryPoint
	}
	if info.IsKeyFile {
		score += weightKeyFile
	}

	p := strings.ToLower(info.Path)
	content := info.content
	example := isExampleSuffix(p)

	if content != "" && springBootAnnotation.MatchString(content) {
		score += weightSpringBootApp
	}

	if strings.Contains(p, "application") {
		score += weightApplicationPath
		if example {
			score += weightExampleConfig
		}
	} else {
		for _, pm := range pathMarkers {
			if containsAny(p, pm.markers) {
				score += pm.weight
				break
			}
		}
	}

	if strings.HasSuffix(p, ".gradle") || strings.HasSuffix(p, ".gradle.kts") || strings.Contains(p, "gradle") {
		score += weightGradleFile
	}

	if isConfigExt(p) && strings.Contains(p, "application") {
		score += weightAppConfigFile
		if strings.Contains(p, "local") || strings.Contains(p, "dev") {
			score += weightLocalConfig
		}
	}

	if strings.HasSuffix(p, ".sh") {
		score += weightShellScript
	}

	if strings.Contains(p, "dockerfile") {
		score += weightDockerfile
	} else if strings.Contains(p, "docker-compose") {
		score += weightCompose
	}

	if strings.Contains(p, deployToolDir) {
		score += weightDeployTool
	}

	if content == "" {
		return score
	}

	switch {
	case strings.HasSuffix(p, ".java"):
		score += len(springStereotypes.FindAllString(content, -1)) * weightSpringStereo
		if anyMainMethod.MatchString(content) {
			score += weightMainMethod
		}
		score += len(restMappings.FindAllString(content, -1)) * weightRestMapping
	case strings.HasSuffix(p, ".gradle") || strings.HasSuffix(p, ".gradle.kts"):
		if bootPlugin.MatchString(content) {
			score += weightBootPlugin
		}
		if appOrJavaPlugin.MatchString(content) {
			score += weightAppPlugin
		}
		score += len(gradleTasks.FindAllString(content, -1)) * weightGradleTask
	}

	return score
}

func isConfigExt(p string) bool {
	return strings.HasSuffix(p, ".properties") || strings.HasSuffix(p, ".yml") || strings.HasSuffix(p, ".yaml")
}

func isExampleSuffix(p string) bool {
	return strings.HasSuffix(p, ".example") || strings.HasSuffix(p, ".template")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
