package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/readme-generator/internal/types"
)

// formatAnalysis renders the analysis summary used in prompts.
func formatAnalysis(repo *types.RepositoryContext) string {
	var sb strings.Builder

	sb.WriteString("File distribution:\n")
	langs := make([]string, 0, len(repo.FileBreakdown))
	for lang := range repo.FileBreakdown {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if repo.FileBreakdown[langs[i]] != repo.FileBreakdown[langs[j]] {
			return repo.FileBreakdown[langs[i]] > repo.FileBreakdown[langs[j]]
		}
		return langs[i] < langs[j]
	})
	for _, lang := range langs {
		fmt.Fprintf(&sb, "- %s: %d files\n", lang, repo.FileBreakdown[lang])
	}

	writeList(&sb, "Entry points", repo.EntryPoints)

	var appConfigs, deployConfigs, otherConfigs []string
	for _, f := range repo.ConfigFiles {
		lower := strings.ToLower(f)
		switch {
		case strings.Contains(lower, "application"):
			appConfigs = append(appConfigs, f)
		case strings.Contains(lower, "docker") || strings.Contains(lower, deployToolDir) || strings.HasSuffix(lower, ".sh"):
			deployConfigs = append(deployConfigs, f)
		default:
			otherConfigs = append(otherConfigs, f)
		}
	}
	writeList(&sb, "Application configuration", appConfigs)
	writeList(&sb, "Example configuration", repo.ExampleConfigFiles)
	writeList(&sb, "Deployment configuration", deployConfigs)
	writeList(&sb, "Other configuration", otherConfigs)

	fmt.Fprintf(&sb, "\nBuild system: %s", repo.BuildSystem.Type)
	if repo.BuildSystem.HasWrapper {
		sb.WriteString(" (wrapper)")
	}
	sb.WriteString("\n")
	if len(repo.BuildSystem.Plugins) > 0 {
		fmt.Fprintf(&sb, "Plugins: %s\n", strings.Join(repo.BuildSystem.Plugins, ", "))
	}
	if repo.HasFramework {
		fmt.Fprintf(&sb, "Framework: %s\n", repo.FrameworkName)
	}

	writeList(&sb, "Root scripts", repo.RootShellScripts)
	writeList(&sb, "Compose services", repo.ComposeServices)

	if len(repo.BuildSystem.Commands) > 0 {
		sb.WriteString("\nBuild commands:\n")
		keys := make([]string, 0, len(repo.BuildSystem.Commands))
		for k := range repo.BuildSystem.Commands {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %s\n", k, strings.Join(repo.BuildSystem.Commands[k], "; "))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}
