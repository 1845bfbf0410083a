package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jaxxstorm/nextver"
	"golang.org/x/mod/semver"
)

// Version will be set by build process
var Version = "dev"

type Globals struct {
	Debug       bool `env:"RUNNER_DEBUG" help:"Enable debug logging"`
	JSON        bool `short:"j" help:"Output as JSON"`
	ShowVersion bool `help:"Show version information" name:"version"`
}

type CLI struct {
	Globals

	Run     RunCmd     `cmd:"" default:"1" help:"Compute build identity and next version for the current workflow run"`
	Resolve ResolveCmd `cmd:"" help:"Resolve the next version from a tag, commit message and ref"`
}

type RunCmd struct {
	ImageBase      string `env:"INPUT_IMAGE_BASE" help:"Base image reference"`
	ImageVersion   string `env:"INPUT_IMAGE_VERSION" help:"Builder image version"`
	ArtifactSuffix string `env:"INPUT_ARTIFACT_SUFFIX" help:"Suffix of the artifact directory"`
	Prefix         string `env:"INPUT_PREFIX" help:"Prefix for the builder id"`
	Repo           string `short:"r" help:"Repository path (default: current directory)"`
	TagPattern     string `help:"Regex pattern to filter tags (e.g., '^v')"`
	EnvFile        string `env:"GITHUB_ENV" help:"File variables are exported to"`
	DryRun         bool   `help:"Skip creating the artifact directory and writing the env file"`
	InActions      bool   `env:"GITHUB_ACTIONS" hidden:""`
}

type ResolveCmd struct {
	Tag        string `arg:"" optional:"" help:"Latest tag, or a commitish to look the latest tag up from (default: HEAD)"`
	Message    string `short:"m" help:"Commit message"`
	Ref        string `help:"Ref name (e.g., refs/heads/feature/x)"`
	Repo       string `short:"r" help:"Repository path (default: current directory)"`
	TagPattern string `help:"Regex pattern to filter tags (e.g., '^v')"`
}

func main() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("nextver"),
		kong.Description("Calculate the next semantic version and build identity for a pipeline run"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	var err error
	if cli.ShowVersion {
		err = cli.showVersion()
	} else {
		err = ctx.Run(&cli.Globals)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) showVersion() error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "nextver",
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versionInfo)
	}

	fmt.Printf("nextver version %s\n", Version)
	return nil
}

func (g *Globals) logger() *slog.Logger {
	level := slog.LevelInfo
	if g.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func (r *RunCmd) Run(g *Globals) error {
	logger := g.logger()

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	repoPath := r.Repo
	if repoPath == "" {
		repoPath = workDir
	}

	var sink nextver.Sink = &nextver.MapSink{}
	if r.EnvFile != "" && !r.DryRun {
		sink = &nextver.EnvFileSink{Path: r.EnvFile}
	}

	opts := []nextver.Option{nextver.WithLogger(logger)}

	repo, err := nextver.OpenRepository(repoPath)
	if err != nil {
		logger.Warn("no usable repository, assuming no tags", "path", repoPath, "error", err)
	} else {
		tags, err := nextver.NewGitTagSource(repo, nextver.TagSourceOptions{TagPattern: r.TagPattern})
		if err != nil {
			return err
		}
		opts = append(opts, nextver.WithTagSource(tags))
	}

	if !r.DryRun {
		opts = append(opts, nextver.WithArtifactStore(nextver.NewArtifactStore(osfs.New(workDir))))
	}

	inputs := nextver.Inputs{
		ImageBase:      r.ImageBase,
		ImageVersion:   r.ImageVersion,
		ArtifactSuffix: r.ArtifactSuffix,
		Prefix:         r.Prefix,
	}

	report, runErr := nextver.NewPipeline(sink, opts...).Run(inputs)
	if report != nil {
		if err := printReport(report, g.JSON); err != nil {
			return err
		}
	}

	if runErr != nil && r.InActions {
		_ = nextver.WriteErrorAnnotation(os.Stdout, runErr.Error())
	}
	return runErr
}

func (r *ResolveCmd) Run(g *Globals) error {
	var tag *string

	if r.Tag != "" && isVersionString(r.Tag) {
		tag = &r.Tag
	} else {
		latest, found, err := r.lookupTag(g.logger())
		if err != nil {
			return err
		}
		if found {
			tag = &latest
		}
	}

	result, resolveErr := nextver.Resolve(tag, strings.ToLower(r.Message), strings.ToLower(r.Ref))

	if g.JSON {
		if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Println(result.NextVersion)
	}

	return resolveErr
}

func (r *ResolveCmd) lookupTag(logger *slog.Logger) (string, bool, error) {
	repoPath := r.Repo
	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return "", false, fmt.Errorf("getting current directory: %w", err)
		}
	}

	// Not a git repo: behave as if there were no tags
	repo, err := nextver.OpenRepository(repoPath)
	if err != nil {
		logger.Debug("no usable repository", "path", repoPath, "error", err)
		return "", false, nil
	}

	tags, err := nextver.NewGitTagSource(repo, nextver.TagSourceOptions{
		Commitish:  plumbing.Revision(r.Tag),
		TagPattern: r.TagPattern,
	})
	if err != nil {
		return "", false, err
	}

	return tags.LatestTag()
}

// isVersionString checks if the input looks like a version rather than a git reference
func isVersionString(input string) bool {
	if !strings.HasPrefix(input, "v") && !strings.HasPrefix(input, "V") {
		input = "v" + input
	}
	return semver.IsValid("v" + input[1:])
}

func printReport(report *nextver.Report, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	for _, v := range report.Variables() {
		fmt.Printf("%s=%s\n", v.Name, v.Value)
	}
	return nil
}
