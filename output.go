package nextver

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

// Sink receives exported variables
type Sink interface {
	Export(name, value string) error
}

// EnvFileSink appends variables to the file named by GITHUB_ENV using the
// heredoc form, so values may span several lines.
type EnvFileSink struct {
	Path string

	// Delimiter returns the heredoc delimiter. Defaults to a random one.
	Delimiter func() string
}

// Export implements Sink
func (s *EnvFileSink) Export(name, value string) error {
	if s.Path == "" {
		return fmt.Errorf("env file path is required")
	}

	delimiter := "ghadelimiter_" + uuid.New().String()
	if s.Delimiter != nil {
		delimiter = s.Delimiter()
	}

	if strings.Contains(name, delimiter) {
		return fmt.Errorf("variable name %q contains the delimiter %q", name, delimiter)
	}
	if strings.Contains(value, delimiter) {
		return fmt.Errorf("value of %s contains the delimiter %q", name, delimiter)
	}

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening env file: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// MapSink keeps exported variables in memory, in export order
type MapSink struct {
	mu   sync.Mutex
	vars []Variable
}

// Export implements Sink
func (s *MapSink) Export(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.vars {
		if s.vars[i].Name == name {
			s.vars[i].Value = value
			return nil
		}
	}
	s.vars = append(s.vars, Variable{Name: name, Value: value})
	return nil
}

// Get returns the value exported under name
func (s *MapSink) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Variables returns a copy of the exported variables
func (s *MapSink) Variables() []Variable {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Variable(nil), s.vars...)
}

// WriteErrorAnnotation writes a workflow ::error:: command to w
func WriteErrorAnnotation(w io.Writer, message string) error {
	escaped := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(message)
	_, err := fmt.Fprintf(w, "::error::%s\n", escaped)
	return err
}

// ArtifactStore creates artifact directories on a billy filesystem
type ArtifactStore struct {
	fs billy.Filesystem
}

// NewArtifactStore returns a store rooted at fs
func NewArtifactStore(fs billy.Filesystem) *ArtifactStore {
	return &ArtifactStore{fs: fs}
}

// Ensure creates dir and any missing parents
func (s *ArtifactStore) Ensure(dir string) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact directory %s: %w", dir, err)
	}
	return nil
}
