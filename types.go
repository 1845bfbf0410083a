// Package nextver computes the next semantic version for a pipeline run and
// the build identity strings derived from it.
//
// The resolution engine (ParseTag, Classify, Resolve) is pure. Everything that
// touches the repository, the runner environment or the filesystem sits
// behind the TagSource, Sink and ArtifactStore collaborators used by Pipeline.
package nextver

import (
	"github.com/blang/semver"
)

// Reason explains why the next version was chosen
type Reason string

const (
	ReasonDefault       Reason = "default"
	ReasonCommitMessage Reason = "commit message"
	ReasonBranchName    Reason = "branch name"
	ReasonReleaseBranch Reason = "release branch"
)

// Increment selects which version component is bumped
type Increment string

const (
	IncrementMajor Increment = "major"
	IncrementMinor Increment = "minor"
	IncrementPatch Increment = "patch"
)

// Decision is the outcome of classifying a commit message and ref name.
// Override is set only by the release branch rule.
type Decision struct {
	Increment Increment
	Reason    Reason
	Override  *semver.Version
}

// Result is what Resolve returns for one invocation
type Result struct {
	CurrentVersion string    `json:"currentVersion"`
	NextVersion    string    `json:"nextVersion"`
	Increment      Increment `json:"increment,omitempty"`
	Reason         Reason    `json:"versionBumpReason"`
}

// Inputs are the caller supplied parameters of a pipeline run
type Inputs struct {
	// ImageBase is the base image reference, e.g. "org/base-image"
	ImageBase string

	// ImageVersion is the builder image version, e.g. "1.0-base-jammy"
	ImageVersion string

	// ArtifactSuffix is appended to the artifact directory path
	ArtifactSuffix string

	// Prefix is prepended to the builder id when set
	Prefix string
}

// Identity contains the build identity strings derived for a run
type Identity struct {
	AppName             string `json:"appName"`
	SafeImageBase       string `json:"safeImageBase"`
	BuilderImageVersion string `json:"builderImageVersion"`
	Branch              string `json:"branch"`
	BuildID             string `json:"buildId"`
	BuilderID           string `json:"builderId"`
	ArtifactDir         string `json:"artifactDir"`
}

// Report is everything a pipeline run produced
type Report struct {
	Identity  Identity `json:"identity"`
	Result    Result   `json:"version"`
	LatestTag string   `json:"latestTag,omitempty"`
}

// Variables returns the exported variables in export order
func (r *Report) Variables() []Variable {
	return []Variable{
		{Name: "APP_NAME", Value: r.Identity.AppName},
		{Name: "SAFE_IMAGE_BASE", Value: r.Identity.SafeImageBase},
		{Name: "BUILDER_IMAGE_VERSION", Value: r.Identity.BuilderImageVersion},
		{Name: "BUILD_ID", Value: r.Identity.BuildID},
		{Name: "BUILDER_ID", Value: r.Identity.BuilderID},
		{Name: "ARTIFACT_DIR", Value: r.Identity.ArtifactDir},
		{Name: "CURRENT_VERSION", Value: r.Result.CurrentVersion},
		{Name: "NEXT_VERSION", Value: r.Result.NextVersion},
		{Name: "VERSION_BUMP_REASON", Value: string(r.Result.Reason)},
	}
}

// Variable is a single name/value pair handed to a Sink
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
