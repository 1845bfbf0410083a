package nextver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// TagSource reports the most recent version tag, if any
type TagSource interface {
	LatestTag() (tag string, found bool, err error)
}

// CommitMessageSource is implemented by tag sources that can also read the
// message of the current commit. It is used when the event payload has no
// head commit.
type CommitMessageSource interface {
	HeadCommitMessage() (string, error)
}

// Pipeline runs one version and identity computation end to end
type Pipeline struct {
	sink      Sink
	tags      TagSource
	artifacts *ArtifactStore
	lookup    LookupFunc
	now       func() time.Time
	rules     []Rule
	logger    *slog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithTagSource sets where the latest tag comes from. Without one every run
// behaves as if the repository had no tags.
func WithTagSource(tags TagSource) Option {
	return func(p *Pipeline) {
		p.tags = tags
	}
}

// WithArtifactStore makes Run create the artifact directory
func WithArtifactStore(store *ArtifactStore) Option {
	return func(p *Pipeline) {
		p.artifacts = store
	}
}

// WithLookup replaces os.LookupEnv for reading the runner context
func WithLookup(lookup LookupFunc) Option {
	return func(p *Pipeline) {
		p.lookup = lookup
	}
}

// WithClock sets the clock used for the artifact directory date
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithRules replaces DefaultRules
func WithRules(rules []Rule) Option {
	return func(p *Pipeline) {
		p.rules = rules
	}
}

// WithLogger sets the logger. Defaults to discarding all output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline exporting to sink
func NewPipeline(sink Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		sink:   sink,
		now:    time.Now,
		rules:  DefaultRules,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run validates inputs, derives the build identity, resolves the next
// version and exports every variable.
//
// Missing inputs or context abort the run before anything is exported. An
// invalid release branch still exports all variables; the returned error
// then wraps ErrInvalidReleaseOverride alongside a non-nil Report.
func (p *Pipeline) Run(in Inputs) (*Report, error) {
	if p.sink == nil {
		return nil, fmt.Errorf("sink is required")
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, err := LoadGitHubContext(p.lookup)
	if err != nil {
		return nil, err
	}

	identity := BuildIdentity(in, ctx, p.now())
	p.logger.Info("build identity", "branch", identity.Branch, "build_id", identity.BuildID)

	if p.artifacts != nil {
		if err := p.artifacts.Ensure(identity.ArtifactDir); err != nil {
			return nil, err
		}
		p.logger.Info("artifact storage created", "dir", identity.ArtifactDir)
	}

	report := &Report{Identity: identity}

	var tag *string
	if latest, found := p.latestTag(); found {
		report.LatestTag = latest
		tag = &latest
	}

	message := p.commitMessage(ctx)
	ref := ctx.RefName()
	p.logger.Debug("classifying", "commit_message", message, "ref", ref)

	result, resolveErr := ResolveWithRules(p.rules, tag, message, ref)
	if resolveErr != nil && !errors.Is(resolveErr, ErrInvalidReleaseOverride) {
		return nil, resolveErr
	}
	report.Result = result

	p.logger.Info("version resolved",
		"current", result.CurrentVersion,
		"next", result.NextVersion,
		"reason", string(result.Reason))

	for _, v := range report.Variables() {
		if err := p.sink.Export(v.Name, v.Value); err != nil {
			return nil, fmt.Errorf("exporting %s: %w", v.Name, err)
		}
		p.logger.Debug("exported", "name", v.Name, "value", v.Value)
	}

	return report, resolveErr
}

func (p *Pipeline) latestTag() (string, bool) {
	if p.tags == nil {
		p.logger.Info("no tag source configured")
		return "", false
	}

	tag, found, err := p.tags.LatestTag()
	if err != nil {
		p.logger.Warn("tag lookup failed, assuming no tags", "error", err)
		return "", false
	}
	if !found {
		p.logger.Info("no tags found in the repository")
		return "", false
	}

	p.logger.Info("latest tag found", "tag", tag)
	return tag, true
}

func (p *Pipeline) commitMessage(ctx *Context) string {
	message := ctx.HeadCommitMessage
	if message == "" {
		if src, ok := p.tags.(CommitMessageSource); ok {
			m, err := src.HeadCommitMessage()
			if err != nil {
				p.logger.Warn("reading head commit message failed", "error", err)
			}
			message = m
		}
	}
	return strings.ToLower(message)
}
