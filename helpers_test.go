package nextver

import (
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate() (*git.Repository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	return git.Init(storage, fs)
}

// testRepoCommit writes a file and commits it with the given message
func testRepoCommit(repo *git.Repository, filename, message string) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	err = writeFile(workTree.Filesystem, filename, "Content for "+filename)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	_, err = workTree.Add(filename)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return workTree.Commit(message, &git.CommitOptions{Author: testSignature})
}

// testRepoSingleCommitPastRelease creates a repo with a tagged release commit
// followed by an untagged commit
func testRepoSingleCommitPastRelease(repo *git.Repository) (*git.Repository, error) {
	tagCommit, err := testRepoCommit(repo, "initial.txt", "Release commit")
	if err != nil {
		return nil, err
	}

	_, err = repo.CreateTag("v1.0.0", tagCommit, nil)
	if err != nil {
		return nil, err
	}

	_, err = testRepoCommit(repo, "post-release.txt", "feat: post-release commit")
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// testRepoWithTags creates one commit per tag, each tagged in order
func testRepoWithTags(repo *git.Repository, tags []string) (*git.Repository, error) {
	for _, tag := range tags {
		commitHash, err := testRepoCommit(repo, "file_"+strings.ReplaceAll(tag, "/", "_")+".txt", "Commit for "+tag)
		if err != nil {
			return nil, err
		}

		_, err = repo.CreateTag(tag, commitHash, nil)
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
