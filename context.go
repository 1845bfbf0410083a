package nextver

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Context is the runner context of a GitHub Actions job
type Context struct {
	// Repository is "owner/name"
	Repository string
	Ref        string
	SHA        string
	EventName  string
	RunID      string
	RunNumber  string
	RunAttempt string

	// HeadCommitMessage comes from the event payload and is empty for events
	// without a head commit
	HeadCommitMessage string

	// PullRequestHeadRef is the source branch of a pull_request event
	PullRequestHeadRef string
}

type eventPayload struct {
	HeadCommit *struct {
		Message string `json:"message"`
	} `json:"head_commit"`
	PullRequest *struct {
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
	} `json:"pull_request"`
}

// LoadGitHubContext builds a Context from the GITHUB_* variables. The event
// payload at GITHUB_EVENT_PATH is optional; a missing or unreadable payload
// leaves the payload derived fields empty.
func LoadGitHubContext(lookup LookupFunc) (*Context, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	ctx := &Context{
		Repository: get("GITHUB_REPOSITORY"),
		Ref:        get("GITHUB_REF"),
		SHA:        get("GITHUB_SHA"),
		EventName:  get("GITHUB_EVENT_NAME"),
		RunID:      get("GITHUB_RUN_ID"),
		RunNumber:  get("GITHUB_RUN_NUMBER"),
		RunAttempt: get("GITHUB_RUN_ATTEMPT"),
	}

	var missing []string
	for key, value := range map[string]string{
		"GITHUB_REPOSITORY": ctx.Repository,
		"GITHUB_REF":        ctx.Ref,
		"GITHUB_SHA":        ctx.SHA,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s not set", ErrMissingContext, strings.Join(missing, ", "))
	}

	if ctx.RunAttempt == "" {
		ctx.RunAttempt = "1"
	}

	if path := get("GITHUB_EVENT_PATH"); path != "" {
		if payload, err := readEventPayload(path); err == nil {
			if payload.HeadCommit != nil {
				ctx.HeadCommitMessage = payload.HeadCommit.Message
			}
			if payload.PullRequest != nil {
				ctx.PullRequestHeadRef = payload.PullRequest.Head.Ref
			}
		}
	}

	return ctx, nil
}

func readEventPayload(path string) (*eventPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event payload: %w", err)
	}

	var payload eventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding event payload: %w", err)
	}
	return &payload, nil
}

// RepositoryName returns the name part of "owner/name"
func (c *Context) RepositoryName() string {
	if i := strings.LastIndex(c.Repository, "/"); i >= 0 {
		return c.Repository[i+1:]
	}
	return c.Repository
}

// RefName returns the ref lower-cased, as the rules expect it
func (c *Context) RefName() string {
	return strings.ToLower(c.Ref)
}

// ShortSHA returns the first seven characters of the commit sha
func (c *Context) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}
