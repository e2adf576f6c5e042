package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdmerge"
	"github.com/alnah/go-mdmerge/internal/config"
	"github.com/alnah/go-mdmerge/internal/fileutil"
)

// Sentinel errors for output operations.
var (
	ErrWriteOutput = errors.New("failed to write output")
	ErrCopyAsset   = errors.New("failed to copy asset")
)

// run executes one invocation. args excludes the program name.
func run(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if flags.common.version {
		fmt.Fprintf(env.Stdout, "mdmerge %s\n", Version)
		return nil
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	params, err := resolveParams(positional, flags, cfg)
	if err != nil {
		return err
	}
	params.opts.Renderer.Credentials = credentialsFor(params.login, envCfg.GitHubToken, env)

	logger := newLogger(env.Stderr, flags.common)

	m, err := mdmerge.NewMerger(mergerOptions(params, logger, env)...)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	written, err := mergeOnce(ctx, m, params, env)
	if err != nil {
		return err
	}
	if !params.watch {
		return nil
	}
	return watchAndMerge(ctx, m, params, written, logger, env)
}

// loadConfig loads the config named by the flag, else by MDMERGE_CONFIG.
// Without either, every setting falls back to its default.
func loadConfig(flagValue, envValue string) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = envValue
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger returns the diagnostics logger. Results are printed separately.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// mergerOptions translates run parameters into library options.
func mergerOptions(p *runParams, logger *slog.Logger, env *Environment) []mdmerge.Option {
	opts := []mdmerge.Option{mdmerge.WithLogger(logger)}
	if p.timeout > 0 {
		opts = append(opts, mdmerge.WithTimeout(p.timeout))
	}
	if p.cacheDir != "" {
		opts = append(opts, mdmerge.WithCacheDir(p.cacheDir))
	}
	if p.assetPath != "" {
		opts = append(opts, mdmerge.WithAssetPath(p.assetPath))
	}
	if p.githubURL != "" || p.githubContext != "" {
		opts = append(opts, mdmerge.WithGitHubAPI(p.githubURL, p.githubContext))
	}
	if len(p.excludes) > 0 {
		opts = append(opts, mdmerge.WithExcludes(p.excludes...))
	}
	return append(opts, env.MergerOptions...)
}

// mergeOnce merges, writes the output and ships local images next to it.
// It returns the absolute paths it wrote.
func mergeOnce(ctx context.Context, m *mdmerge.Merger, p *runParams, env *Environment) ([]string, error) {
	start := time.Now()

	result, err := m.Merge(ctx, p.input, p.opts)
	if err != nil {
		return nil, err
	}

	data := result.HTML
	if result.PDF != nil {
		data = result.PDF
	}

	if p.toStdout() {
		if _, err := env.Stdout.Write(data); err != nil {
			return nil, fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
		}
		return nil, nil
	}

	out, err := filepath.Abs(p.out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := writeOutput(out, data); err != nil {
		return nil, err
	}
	written := []string{out}

	if result.PDF == nil && !p.opts.Post.EmbedImages {
		copied, err := copyAssets(p.input.RepoRoot, filepath.Dir(out), result.Assets)
		if err != nil {
			return nil, err
		}
		written = append(written, copied...)
	}

	if !p.quiet {
		fmt.Fprintf(env.Stderr, "Merged %d pages -> %s (%d rendered, %d cached, %s)\n",
			result.Stats.Pages, p.out, result.Stats.Renders, result.Stats.CacheHits,
			time.Since(start).Round(time.Millisecond))
	}
	return written, nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- output is meant to be shared
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// copyAssets copies each asset to outDir, keeping its path relative to the
// repository root so relative image links keep working. Assets that already
// sit at their destination are skipped.
func copyAssets(repoRoot, outDir string, assets []string) ([]string, error) {
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCopyAsset, err)
	}

	var copied []string
	for _, asset := range assets {
		rel, err := filepath.Rel(root, asset)
		if err != nil || !fileutil.IsUnder(asset, root) {
			return nil, fmt.Errorf("%w: %s is outside %s", ErrCopyAsset, asset, root)
		}
		dst := filepath.Join(outDir, rel)
		if dst == asset {
			continue
		}
		if err := fileutil.CopyFile(asset, dst); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCopyAsset, err)
		}
		copied = append(copied, dst)
	}
	return copied, nil
}
