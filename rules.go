package nextver

import (
	"fmt"
	"strings"

	"github.com/blang/semver"
)

// releaseBranchPrefix is the ref prefix naming an explicit next version
const releaseBranchPrefix = "refs/heads/release/v"

// Rule maps a commit message and ref name to a decision.
//
// Match reports whether the rule applies. When it does, Decide is called with
// the current version; an error from Decide aborts classification.
type Rule struct {
	Name   string
	Match  func(message, ref string) bool
	Decide func(current semver.Version, message, ref string) (Decision, error)
}

// DefaultRules is the rule table in precedence order, highest first.
// Branch name rules outrank commit message rules and the release branch rule
// sets the next version outright.
var DefaultRules = []Rule{
	{
		Name:   "feature branch",
		Match:  refContains("/feature/"),
		Decide: fixed(IncrementMinor, ReasonBranchName),
	},
	{
		Name:   "fix branch",
		Match:  refContains("/bugfix/", "/hotfix/"),
		Decide: fixed(IncrementPatch, ReasonBranchName),
	},
	{
		Name: "release branch",
		Match: func(_, ref string) bool {
			return strings.HasPrefix(ref, releaseBranchPrefix)
		},
		Decide: releaseOverride,
	},
	{
		Name:   "breaking change commit",
		Match:  messageHasPrefix("breaking change:", "major:", "!:"),
		Decide: fixed(IncrementMajor, ReasonCommitMessage),
	},
	{
		Name:   "feature commit",
		Match:  messageHasPrefix("feature:", "feat:"),
		Decide: fixed(IncrementMinor, ReasonCommitMessage),
	},
	{
		Name:   "fix commit",
		Match:  messageHasPrefix("bugfix:", "hotfix:", "fix:"),
		Decide: fixed(IncrementPatch, ReasonCommitMessage),
	},
}

// Classify evaluates rules top to bottom and returns the decision of the
// first matching rule. With no match the decision is a default patch bump.
// Callers are expected to pass the message and ref already lower-cased.
func Classify(rules []Rule, current semver.Version, message, ref string) (Decision, error) {
	for _, rule := range rules {
		if !rule.Match(message, ref) {
			continue
		}
		decision, err := rule.Decide(current, message, ref)
		if err != nil {
			return Decision{}, fmt.Errorf("%s rule: %w", rule.Name, err)
		}
		return decision, nil
	}

	return Decision{Increment: IncrementPatch, Reason: ReasonDefault}, nil
}

func refContains(substrings ...string) func(string, string) bool {
	return func(_, ref string) bool {
		for _, s := range substrings {
			if strings.Contains(ref, s) {
				return true
			}
		}
		return false
	}
}

func messageHasPrefix(prefixes ...string) func(string, string) bool {
	return func(message, _ string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(message, p) {
				return true
			}
		}
		return false
	}
}

func fixed(inc Increment, reason Reason) func(semver.Version, string, string) (Decision, error) {
	return func(semver.Version, string, string) (Decision, error) {
		return Decision{Increment: inc, Reason: reason}, nil
	}
}

func releaseOverride(current semver.Version, _, ref string) (Decision, error) {
	raw := strings.TrimPrefix(ref, releaseBranchPrefix)

	version, err := semver.Parse(raw)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %q: %v", ErrInvalidReleaseOverride, raw, err)
	}

	if !version.GT(current) {
		return Decision{}, fmt.Errorf("%w: %s is not greater than %s",
			ErrInvalidReleaseOverride, FormatVersion(version), FormatVersion(current))
	}

	return Decision{Reason: ReasonReleaseBranch, Override: &version}, nil
}
