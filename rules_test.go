package nextver

import (
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	current := semver.MustParse("1.0.0")

	tests := []struct {
		name      string
		message   string
		ref       string
		increment Increment
		reason    Reason
	}{
		{"no match", "some commit message", "refs/heads/main", IncrementPatch, ReasonDefault},
		{"empty", "", "", IncrementPatch, ReasonDefault},
		{"breaking change", "breaking change: drop api", "refs/heads/main", IncrementMajor, ReasonCommitMessage},
		{"major", "major: rewrite", "refs/heads/main", IncrementMajor, ReasonCommitMessage},
		{"bang", "!: rewrite", "refs/heads/main", IncrementMajor, ReasonCommitMessage},
		{"feature", "feature: add thing", "refs/heads/main", IncrementMinor, ReasonCommitMessage},
		{"feat", "feat: add thing", "refs/heads/main", IncrementMinor, ReasonCommitMessage},
		{"bugfix", "bugfix: fix thing", "refs/heads/main", IncrementPatch, ReasonCommitMessage},
		{"hotfix", "hotfix: fix thing", "refs/heads/main", IncrementPatch, ReasonCommitMessage},
		{"fix", "fix: fix thing", "refs/heads/main", IncrementPatch, ReasonCommitMessage},
		{"prefix only", "this is a fix: not a prefix", "refs/heads/main", IncrementPatch, ReasonDefault},
		{"feature branch", "", "refs/heads/feature/x", IncrementMinor, ReasonBranchName},
		{"bugfix branch", "", "refs/heads/bugfix/x", IncrementPatch, ReasonBranchName},
		{"hotfix branch", "", "refs/heads/hotfix/x", IncrementPatch, ReasonBranchName},
		{"branch beats fix commit", "fix: small", "refs/heads/feature/x", IncrementMinor, ReasonBranchName},
		{"branch beats major commit", "major: big", "refs/heads/hotfix/x", IncrementPatch, ReasonBranchName},
		{"branch agrees with commit", "feature: add", "refs/heads/feature/test-feature", IncrementMinor, ReasonBranchName},
		{"pull request feature ref", "", "refs/pull/12/feature/x", IncrementMinor, ReasonBranchName},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			decision, err := Classify(DefaultRules, current, test.message, test.ref)
			require.NoError(t, err)
			require.Equal(t, test.increment, decision.Increment)
			require.Equal(t, test.reason, decision.Reason)
			require.Nil(t, decision.Override)
		})
	}
}

func TestClassifyReleaseBranch(t *testing.T) {
	current := semver.MustParse("1.0.0")

	t.Run("Greater version", func(t *testing.T) {
		decision, err := Classify(DefaultRules, current, "major: ignored", "refs/heads/release/v2.1.0")
		require.NoError(t, err)
		require.Equal(t, ReasonReleaseBranch, decision.Reason)
		require.NotNil(t, decision.Override)
		require.Equal(t, "v2.1.0", FormatVersion(*decision.Override))
	})

	t.Run("Pre-release version", func(t *testing.T) {
		decision, err := Classify(DefaultRules, current, "", "refs/heads/release/v1.1.0-rc.1")
		require.NoError(t, err)
		require.Equal(t, "v1.1.0-rc.1", FormatVersion(*decision.Override))
	})

	for _, ref := range []string{
		"refs/heads/release/v0.9.0",
		"refs/heads/release/v1.0.0",
		"refs/heads/release/v1.1",
		"refs/heads/release/vnext",
		"refs/heads/release/v",
	} {
		t.Run(ref, func(t *testing.T) {
			_, err := Classify(DefaultRules, current, "", ref)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidReleaseOverride)
		})
	}

	t.Run("Release without v prefix is not a release branch", func(t *testing.T) {
		decision, err := Classify(DefaultRules, current, "", "refs/heads/release/2.0.0")
		require.NoError(t, err)
		require.Equal(t, ReasonDefault, decision.Reason)
	})
}

func TestClassifyCustomRules(t *testing.T) {
	rules := []Rule{
		{
			Name:   "docs",
			Match:  messageHasPrefix("docs:"),
			Decide: fixed(IncrementPatch, ReasonCommitMessage),
		},
	}

	decision, err := Classify(rules, semver.MustParse("1.0.0"), "docs: readme", "")
	require.NoError(t, err)
	require.Equal(t, ReasonCommitMessage, decision.Reason)

	decision, err = Classify(nil, semver.MustParse("1.0.0"), "feat: x", "")
	require.NoError(t, err)
	require.Equal(t, ReasonDefault, decision.Reason)
}
