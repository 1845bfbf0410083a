package nextver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInputsValidate(t *testing.T) {
	valid := Inputs{ImageBase: "org/base", ImageVersion: "1.0-base-jammy", ArtifactSuffix: "dist"}
	require.NoError(t, valid.Validate())

	err := Inputs{ImageBase: "org/base"}.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMissingInput)
	require.Contains(t, err.Error(), "image_version, artifact_suffix")
}

func TestBuildIdentity(t *testing.T) {
	date := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*60*60))

	ctx := &Context{
		Repository: "acme/Widget-container",
		Ref:        "refs/heads/feature/Add-Thing",
		SHA:        "abcdef0123456789",
		EventName:  "push",
		RunID:      "100",
		RunNumber:  "7",
		RunAttempt: "2",
	}

	t.Run("Without prefix", func(t *testing.T) {
		in := Inputs{
			ImageBase:      "registry/org/base/",
			ImageVersion:   "1.0-base-jammy",
			ArtifactSuffix: "dist",
		}

		id := BuildIdentity(in, ctx, date)
		require.Equal(t, "widget", id.AppName)
		require.Equal(t, "registry-org-base", id.SafeImageBase)
		require.Equal(t, "1.0-devel-jammy", id.BuilderImageVersion)
		require.Equal(t, "feature-add-thing", id.Branch)
		require.Equal(t, "abcdef0-100-7-2-feature-add-thing-registry-org-base-1.0-devel-jammy", id.BuildID)
		require.Equal(t, id.BuildID, id.BuilderID)
		require.Equal(t, "artifacts/2024-03-10/100/registry-org-base/1.0-devel-jammy/dist", id.ArtifactDir)
	})

	t.Run("With prefix", func(t *testing.T) {
		in := Inputs{
			ImageBase:      "org/base",
			ImageVersion:   "1.0-base-jammy",
			ArtifactSuffix: "dist",
			Prefix:         "ci",
		}

		id := BuildIdentity(in, ctx, date)
		require.Equal(t, "ci-"+id.BuildID, id.BuilderID)
	})
}

func TestBuilderImageVersion(t *testing.T) {
	tests := []struct {
		name     string
		ctx      Context
		expected string
	}{
		{"feature branch", Context{Ref: "refs/heads/feature/x"}, "2.0-devel-base-noble"},
		{"main", Context{Ref: "refs/heads/main", EventName: "push"}, "2.0-base-base-noble"},
		{"pull request from hotfix", Context{Ref: "refs/pull/1/merge", EventName: "pull_request", PullRequestHeadRef: "hotfix/x"}, "2.0-runtime-base-noble"},
		{"pull request from bugfix", Context{Ref: "refs/pull/1/merge", EventName: "pull_request", PullRequestHeadRef: "bugfix/x"}, "2.0-runtime-base-noble"},
		{"pull request from release", Context{Ref: "refs/pull/1/merge", EventName: "pull_request", PullRequestHeadRef: "release/v2.0.0"}, "2.0-runtime-base-noble"},
		{"pull request from other", Context{Ref: "refs/pull/1/merge", EventName: "pull_request", PullRequestHeadRef: "chore/x"}, "2.0-base-base-noble"},
		{"push from hotfix", Context{Ref: "refs/heads/hotfix/x", EventName: "push"}, "2.0-base-base-noble"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, BuilderImageVersion("2.0-base-base-noble", &test.ctx))
		})
	}
}

func TestIdentityHelpers(t *testing.T) {
	require.Equal(t, "widget", AppName("widget-container"))
	require.Equal(t, "widget-container", AppName("widget-container-container"))
	require.Equal(t, "plain", AppName("Plain"))

	require.Equal(t, "org-base", SafeImageBase("org/base"))
	require.Equal(t, "org-base", SafeImageBase("org/base/"))
	require.Equal(t, "org-base-", SafeImageBase("org/base//"))

	require.Equal(t, "main", BranchSlug("refs/heads/main"))
	require.Equal(t, "release-v1.2.3", BranchSlug("refs/heads/release/v1.2.3"))
	require.Equal(t, "refs-pull-7-merge", BranchSlug("refs/pull/7/merge"))
}
