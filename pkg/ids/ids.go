// Package ids produces the string identifiers used for fields, sections and
// model keys. Generators are passed explicitly to the components that need
// them; there is no package level generator.
package ids

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	FieldPrefix   = "field_"
	SectionPrefix = "section_"
)

// Generator creates collision resistant identifiers.
type Generator interface {
	FieldID() string
	SectionID() string
	ModelKey() string
}

// UUID is the default Generator backed by random (v4) UUIDs.
type UUID struct{}

// NewUUID returns the default generator.
func NewUUID() UUID { return UUID{} }

func (UUID) FieldID() string { return FieldPrefix + uuid.NewString() }

func (UUID) SectionID() string { return SectionPrefix + uuid.NewString() }

// ModelKey uses the first UUID group so generated keys stay readable in form
// data payloads.
func (UUID) ModelKey() string {
	raw := uuid.NewString()
	if idx := strings.IndexByte(raw, '-'); idx > 0 {
		raw = raw[:idx]
	}
	return FieldPrefix + raw
}

// Sequence is a deterministic Generator for tests and fixtures.
type Sequence struct {
	next int
}

func (s *Sequence) FieldID() string {
	s.next++
	return fmt.Sprintf("%s%d", FieldPrefix, s.next)
}

func (s *Sequence) SectionID() string {
	s.next++
	return fmt.Sprintf("%s%d", SectionPrefix, s.next)
}

func (s *Sequence) ModelKey() string {
	s.next++
	return fmt.Sprintf("model_%d", s.next)
}
