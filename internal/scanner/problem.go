// Package scanner walks content type directories, parses and validates each
// file, and detects slug and id collisions.
package scanner

import "fmt"

// Kind classifies a scan or build problem.
type Kind string

const (
	KindParse          Kind = "parse"
	KindValidation     Kind = "validation"
	KindDuplicateSlug  Kind = "duplicate-slug"
	KindDuplicateID    Kind = "duplicate-id"
	KindRouteCollision Kind = "route-collision"
	KindRegistry       Kind = "registry"
)

// Problem is one reported issue attributed to a file. Path and Related are
// relative to the content root.
type Problem struct {
	Path    string `json:"path"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Related string `json:"related,omitempty"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Path, p.Message)
}

// Session tracks ids claimed across every content type of one scan pass.
// Create a new Session for each rebuild or lint run.
type Session struct {
	ids map[string]string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{ids: make(map[string]string)}
}

// claimID records id for path. It returns the earlier owner when the id
// was already claimed.
func (s *Session) claimID(id, path string) (owner string, ok bool) {
	if prev, taken := s.ids[id]; taken {
		return prev, false
	}
	s.ids[id] = path
	return path, true
}

// IDs returns the number of distinct ids claimed so far.
func (s *Session) IDs() int {
	return len(s.ids)
}
