package nextver

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Validate checks that every required input is set
func (in Inputs) Validate() error {
	var missing []string
	if in.ImageBase == "" {
		missing = append(missing, "image_base")
	}
	if in.ImageVersion == "" {
		missing = append(missing, "image_version")
	}
	if in.ArtifactSuffix == "" {
		missing = append(missing, "artifact_suffix")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(missing, ", "))
	}
	return nil
}

// BuildIdentity derives the build identity strings for a run. date is used
// for the artifact directory and is converted to UTC.
func BuildIdentity(in Inputs, ctx *Context, date time.Time) Identity {
	safeImageBase := SafeImageBase(in.ImageBase)
	builderImageVersion := BuilderImageVersion(in.ImageVersion, ctx)
	branch := BranchSlug(ctx.Ref)

	buildID := strings.Join([]string{
		ctx.ShortSHA(),
		ctx.RunID,
		ctx.RunNumber,
		ctx.RunAttempt,
		branch,
		safeImageBase,
		builderImageVersion,
	}, "-")

	builderID := buildID
	if in.Prefix != "" {
		builderID = in.Prefix + "-" + buildID
	}

	return Identity{
		AppName:             AppName(ctx.RepositoryName()),
		SafeImageBase:       safeImageBase,
		BuilderImageVersion: builderImageVersion,
		Branch:              branch,
		BuildID:             buildID,
		BuilderID:           builderID,
		ArtifactDir: path.Join("artifacts",
			date.UTC().Format(time.DateOnly),
			ctx.RunID,
			safeImageBase,
			builderImageVersion,
			in.ArtifactSuffix),
	}
}

// AppName drops the first "-container" from a repository name
func AppName(repoName string) string {
	return strings.ToLower(strings.Replace(repoName, "-container", "", 1))
}

// SafeImageBase turns an image reference into a single path segment
func SafeImageBase(imageBase string) string {
	return strings.TrimSuffix(strings.ReplaceAll(imageBase, "/", "-"), "-")
}

// BuilderImageVersion picks the builder image flavour. Feature branches build
// on the devel image; pull requests from fix and release branches build on
// the runtime image.
func BuilderImageVersion(imageVersion string, ctx *Context) string {
	if strings.HasPrefix(ctx.Ref, "refs/heads/feature/") {
		return strings.Replace(imageVersion, "-base-", "-devel-", 1)
	}

	if ctx.EventName == "pull_request" {
		for _, prefix := range []string{"hotfix/", "bugfix/", "release/"} {
			if strings.HasPrefix(ctx.PullRequestHeadRef, prefix) {
				return strings.Replace(imageVersion, "-base-", "-runtime-", 1)
			}
		}
	}

	return imageVersion
}

// BranchSlug turns a ref into a lower-case, dash separated branch name
func BranchSlug(ref string) string {
	branch := strings.Replace(ref, "refs/heads/", "", 1)
	return strings.ToLower(strings.ReplaceAll(branch, "/", "-"))
}
