// This file contains code adapted from pulumictl (https://github.com/pulumi/pulumictl)
// which is licensed under the Apache License 2.0. See NOTICE file for full attribution.

package nextver

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// TagSourceOptions configures a GitTagSource
type TagSourceOptions struct {
	// Commitish specifies where the history walk starts (default: "HEAD")
	Commitish plumbing.Revision

	// TagFilter allows filtering which tags to consider
	TagFilter func(string) bool

	// TagPattern is a regex pattern to filter tags (alternative to TagFilter)
	TagPattern string
}

// GitTagSource finds the most recent tag reachable from a commit, the same
// tag `git describe --tags --abbrev=0` reports.
type GitTagSource struct {
	repo      *git.Repository
	commitish plumbing.Revision
	tagFilter func(string) bool
}

// NewGitTagSource creates a tag source over repo
func NewGitTagSource(repo *git.Repository, opts TagSourceOptions) (*GitTagSource, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}

	if opts.Commitish == "" {
		opts.Commitish = "HEAD"
	}

	// Apply tag pattern filter if specified
	if opts.TagPattern != "" && opts.TagFilter == nil {
		re, err := regexp.Compile(opts.TagPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid tag pattern: %w", err)
		}
		opts.TagFilter = func(tag string) bool {
			return re.MatchString(tag)
		}
	}

	return &GitTagSource{
		repo:      repo,
		commitish: opts.Commitish,
		tagFilter: opts.TagFilter,
	}, nil
}

// LatestTag returns the short name of the most recent reachable tag. A
// repository without commits or without matching tags reports found=false
// and no error.
func (s *GitTagSource) LatestTag() (string, bool, error) {
	commit, err := s.commit()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	tagsByCommit, err := s.tagsByCommit()
	if err != nil {
		return "", false, fmt.Errorf("indexing tags: %w", err)
	}
	if len(tagsByCommit) == 0 {
		return "", false, nil
	}

	var latest string
	walker := object.NewCommitPreorderIter(commit, nil, nil)
	err = walker.ForEach(func(c *object.Commit) error {
		names, ok := tagsByCommit[c.Hash]
		if !ok {
			return nil
		}
		latest = pickTag(names)
		return storer.ErrStop
	})
	if err != nil {
		return "", false, fmt.Errorf("walking history: %w", err)
	}

	return latest, latest != "", nil
}

// HeadCommitMessage returns the message of the commit the source walks from
func (s *GitTagSource) HeadCommitMessage() (string, error) {
	commit, err := s.commit()
	if err != nil {
		return "", err
	}
	return commit.Message, nil
}

func (s *GitTagSource) commit() (*object.Commit, error) {
	revision, err := s.repo.ResolveRevision(s.commitish)
	if err != nil {
		return nil, fmt.Errorf("resolving commitish: %w", err)
	}

	commit, err := s.repo.CommitObject(*revision)
	if err != nil {
		return nil, fmt.Errorf("getting commit object: %w", err)
	}

	return commit, nil
}

// tagsByCommit maps commit hashes to the names of the tags pointing at them.
// Annotated tags are peeled to their target.
func (s *GitTagSource) tagsByCommit() (map[plumbing.Hash][]string, error) {
	tags, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	index := make(map[plumbing.Hash][]string)
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		name := ref.Name().Short()
		if s.tagFilter != nil && !s.tagFilter(name) {
			return nil
		}

		target := ref.Hash()
		obj, err := s.repo.TagObject(ref.Hash())
		switch err {
		case nil:
			// Annotated tag
			target = obj.Target
		case plumbing.ErrObjectNotFound:
			// Lightweight tag
		default:
			return err
		}

		index[target] = append(index[target], name)
		return nil
	})

	return index, err
}

// pickTag chooses between several tags on one commit, preferring the highest
// parsable version and falling back to the lexically greatest name.
func pickTag(names []string) string {
	sort.Strings(names)

	best := ""
	for _, name := range names {
		v, err := ParseTag(name)
		if err != nil {
			continue
		}
		if best == "" {
			best = name
			continue
		}
		current, _ := ParseTag(best)
		if v.GTE(current) {
			best = name
		}
	}

	if best == "" {
		best = names[len(names)-1]
	}
	return best
}
