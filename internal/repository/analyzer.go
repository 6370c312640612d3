// Package repository analyzes a source tree into a types.RepositoryContext:
// it walks the files, detects languages, entry points, configuration and the
// build system, ranks files by importance and loads their contents.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/readme-generator/internal/types"
)

// DefaultMaxFileSize is the largest file whose content is loaded.
const DefaultMaxFileSize = 100 * 1024

const (
	defaultCacheSize = 16
	defaultWorkers   = 8
	deployToolDir    = "hobo"
	binarySniffBytes = 8000
)

// Options configures an Analyzer.
type Options struct {
	// Language forces a language profile; "" or "auto" detects one.
	Language string
	// MaxFileSize bounds loaded file contents; larger files are listed without content.
	MaxFileSize int64
	// ExcludeDirs are repository-relative directories skipped during the walk.
	ExcludeDirs []string
	Workers     int
	CacheSize   int
	Logger      zerolog.Logger
}

// Analyzer produces repository contexts and caches them per process.
type Analyzer struct {
	opts  Options
	cache *lru.Cache[string, *types.RepositoryContext]
}

// fileRecord is a file under analysis plus its loaded content.
type fileRecord struct {
	types.FileInfo
	absPath string
	content string
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, *types.RepositoryContext](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}
	return &Analyzer{opts: opts, cache: cache}, nil
}

// Analyze returns the context for the repository at repoPath. Without update a
// context analyzed earlier in this process is reused; update forces a fresh walk.
func (a *Analyzer) Analyze(ctx context.Context, repoPath string, update bool) (*types.RepositoryContext, error) {
	root, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, &AnalysisError{Path: repoPath, Message: "failed to resolve path", Cause: err}
	}
	key := root + "|" + strings.ToLower(a.opts.Language)

	if !update {
		if cached, ok := a.cache.Get(key); ok {
			a.opts.Logger.Debug().Str("repo", root).Msg("Using cached repository analysis")
			return cached, nil
		}
	}

	repo, err := a.analyze(ctx, root)
	if err != nil {
		return nil, err
	}
	a.cache.Add(key, repo)
	return repo, nil
}

func (a *Analyzer) analyze(ctx context.Context, root string) (*types.RepositoryContext, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &AnalysisError{Path: root, Message: "failed to stat repository", Cause: err}
	}
	if !info.IsDir() {
		return nil, &AnalysisError{Path: root, Message: "not a directory"}
	}

	prof, err := selectProfile(root, a.opts.Language)
	if err != nil {
		return nil, err
	}
	a.opts.Logger.Info().Str("repo", root).Str("profile", prof.name).Msg("Analyzing repository")

	records, readmes, total, err := a.walk(ctx, root, prof)
	if err != nil {
		return nil, err
	}
	if err := a.loadContents(ctx, records); err != nil {
		return nil, err
	}
	readmeContents, err := a.loadReadmes(ctx, root, readmes)
	if err != nil {
		return nil, err
	}

	repo := &types.RepositoryContext{
		Name:           filepath.Base(root),
		Path:           root,
		TotalFiles:     total,
		FileContents:   make(map[string]string),
		FileBreakdown:  make(map[string]int),
		ReadmeContents: readmeContents,
	}

	packageMain := packageJSONMain(records)
	for i := range records {
		rec := &records[i]
		rec.Language = prof.language(rec.Path)
		rec.IsEntryPoint = prof.entryPoint(rec.Path, rec.content, rec.Language) || (packageMain != "" && rec.Path == packageMain)
		rec.IsConfig = isConfigFile(rec.Path)
		if rec.content != "" {
			repo.FileContents[rec.Path] = rec.content
			if rec.Language == "Java" && springBootAnnotation.MatchString(rec.content) {
				repo.HasFramework = true
			}
		}
		if rec.Language != "Unknown" {
			repo.FileBreakdown[rec.Language]++
		}
		rec.Score = scoreFile(*rec)

		if rec.IsEntryPoint {
			repo.EntryPoints = append(repo.EntryPoints, rec.Path)
		}
		if rec.IsConfig {
			repo.ConfigFiles = append(repo.ConfigFiles, rec.Path)
		}
		if isExampleConfig(rec.Path) {
			repo.ExampleConfigFiles = append(repo.ExampleConfigFiles, rec.Path)
		}
		if rec.IsKeyFile {
			repo.KeyProjectFiles = append(repo.KeyProjectFiles, rec.Path)
		}
		if strings.HasSuffix(rec.Path, ".sh") {
			if types.IsRootPath(rec.Path) {
				repo.RootShellScripts = append(repo.RootShellScripts, rec.Path)
			} else {
				repo.ShellScripts = append(repo.ShellScripts, rec.Path)
			}
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].Path < records[j].Path
	})
	repo.Files = make([]types.FileInfo, 0, len(records))
	for _, rec := range records {
		repo.Files = append(repo.Files, rec.FileInfo)
	}

	repo.BuildSystem = detectBuildSystem(root, records)
	repo.Dependencies = findDependencies(records)
	if usesSpringBootPlugin(records) {
		repo.HasFramework = true
	}
	if repo.HasFramework {
		repo.FrameworkName = "Spring Boot"
	}
	repo.ComposeServices = composeServices(records, a.opts.Logger)
	repo.PrimaryLanguage = primaryLanguage(repo, records)
	repo.FormattedAnalysis = formatAnalysis(repo)

	a.opts.Logger.Info().
		Int("files", repo.TotalFiles).
		Int("analyzed", len(repo.Files)).
		Int("entry_points", len(repo.EntryPoints)).
		Str("language", repo.PrimaryLanguage).
		Str("build_system", repo.BuildSystem.Type).
		Msg("Repository analyzed")
	return repo, nil
}

// walk collects analyzable files in lexical order, README-like files and the total file count.
func (a *Analyzer) walk(ctx context.Context, root string, prof profile) ([]fileRecord, []fileRecord, int, error) {
	excluded := make(map[string]bool, len(a.opts.ExcludeDirs))
	for _, dir := range a.opts.ExcludeDirs {
		excluded[filepath.ToSlash(filepath.Clean(dir))] = true
	}

	var records, readmes []fileRecord
	total := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			a.opts.Logger.Warn().Err(err).Str("path", p).Msg("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p != root && (ignoredDirs[d.Name()] || excluded[rel]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		total++

		rec := fileRecord{
			FileInfo: types.FileInfo{Path: rel, Size: info.Size()},
			absPath:  p,
		}
		if isReadmePath(rel) {
			readmes = append(readmes, rec)
		}
		if path.Base(rel) == ".gitlab-ci.yml" || isSonarFile(rel) {
			return nil
		}

		rec.IsKeyFile = prof.isKeyFile(rel)
		if rec.IsKeyFile || strings.HasSuffix(rel, ".sh") || isExampleConfig(rel) || prof.analyzable(rel) {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, nil, 0, &AnalysisError{Path: root, Message: "failed to walk repository", Cause: err}
	}
	return records, readmes, total, nil
}

// loadContents reads file contents concurrently. Oversized, binary and
// unreadable files keep an empty content.
func (a *Analyzer) loadContents(ctx context.Context, records []fileRecord) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i := range records {
		rec := &records[i]
		if rec.Size > a.opts.MaxFileSize {
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			content, err := readText(rec.absPath)
			if err != nil {
				a.opts.Logger.Warn().Err(err).Str("path", rec.Path).Msg("Failed to read file")
				return nil
			}
			rec.content = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &AnalysisError{Message: "failed to load file contents", Cause: err}
	}
	return nil
}

func (a *Analyzer) loadReadmes(ctx context.Context, root string, readmes []fileRecord) (map[string]string, error) {
	if len(readmes) == 0 {
		return nil, nil
	}
	if err := a.loadContents(ctx, readmes); err != nil {
		return nil, err
	}
	contents := make(map[string]string, len(readmes))
	for _, rec := range readmes {
		contents[rec.Path] = rec.content
	}
	a.opts.Logger.Debug().Str("repo", root).Int("readmes", len(contents)).Msg("Collected README files")
	return contents, nil
}

func readText(p string) (string, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	sniff := data
	if len(sniff) > binarySniffBytes {
		sniff = sniff[:binarySniffBytes]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return "", nil
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), ""), nil
	}
	return string(data), nil
}

// isConfigFile reports whether a path looks like configuration.
func isConfigFile(rel string) bool {
	p := strings.ToLower(rel)
	if isSonarFile(p) || strings.HasSuffix(p, ".sh") {
		return true
	}
	for _, ext := range []string{".yml", ".yaml", ".properties", ".xml", ".toml", ".json", ".conf", ".ini", ".config", ".cfg"} {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	for _, ext := range []string{".example", ".template", ".sample"} {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return containsAny(p, []string{"config", "settings", "application", "env", "environment", "properties"})
}

// isExampleConfig reports whether a path is an example or template configuration file.
func isExampleConfig(rel string) bool {
	p := strings.ToLower(rel)
	return containsAny(p, []string{".example", ".template"}) &&
		containsAny(p, []string{"application", "config", "properties", "yml", "yaml", ".env"})
}

func isSonarFile(rel string) bool {
	return containsAny(strings.ToLower(rel), []string{"sonar-project.properties", "sonarqube", "sonar-scanner", ".sonarcloud", ".sonar"})
}

// packageJSONMain returns the entry file declared by a root package.json.
func packageJSONMain(records []fileRecord) string {
	for _, rec := range records {
		if rec.Path != "package.json" || rec.content == "" {
			continue
		}
		var pkg struct {
			Main string `json:"main"`
		}
		if err := json.Unmarshal([]byte(rec.content), &pkg); err != nil {
			return ""
		}
		return path.Clean(strings.TrimPrefix(pkg.Main, "./"))
	}
	return ""
}

// markupLanguages are ignored when picking the primary language unless nothing else is present.
var markupLanguages = map[string]bool{
	"YAML": true, "JSON": true, "Properties": true, "XML": true, "TOML": true, "INI": true,
	"Shell": true, "HTML": true, "CSS": true, "SCSS": true, "Dockerfile": true, "Makefile": true,
	"Gradle": true, "Go Module": true,
}

func primaryLanguage(repo *types.RepositoryContext, records []fileRecord) string {
	if repo.HasFramework && repo.FrameworkName == "Spring Boot" {
		return "Java"
	}
	if repo.FileBreakdown["Java"] > 0 {
		for _, rec := range records {
			if strings.HasSuffix(rec.Path, ".gradle") || strings.HasSuffix(rec.Path, ".gradle.kts") || path.Base(rec.Path) == "pom.xml" {
				return "Java"
			}
		}
	}

	pick := func(skipMarkup bool) string {
		best, bestCount := "", 0
		for lang, count := range repo.FileBreakdown {
			if skipMarkup && markupLanguages[lang] {
				continue
			}
			if count > bestCount || (count == bestCount && lang < best) {
				best, bestCount = lang, count
			}
		}
		return best
	}
	if lang := pick(true); lang != "" {
		return lang
	}
	if lang := pick(false); lang != "" {
		return lang
	}
	return "Unknown"
}
