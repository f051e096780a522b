// Package suite models the test tree assembled from loaded test files.
//
// A tree is made of Suites (root, project, file and describe groups) whose
// ordered entries are either nested Suites or Tests. File suites produced by a
// loader are shared between projects and must never be mutated: consumers
// call Clone before attaching them anywhere.
package suite

import (
	"slices"

	"github.com/vvsotnikov/playwright/internal/domain"
)

// Kind identifies the role of a Suite in the tree
type Kind int

const (
	KindRoot Kind = iota
	KindProject
	KindFile
	KindDescribe
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindProject:
		return "project"
	case KindFile:
		return "file"
	case KindDescribe:
		return "describe"
	}
	return "unknown"
}

// Mode is the declared parallelism of a group
type Mode int

const (
	ModeDefault Mode = iota
	ModeSerial
	ModeParallel
)

func (m Mode) String() string {
	switch m {
	case ModeSerial:
		return "serial"
	case ModeParallel:
		return "parallel"
	}
	return "default"
}

// Entry is either a *Suite or a *Test
type Entry interface {
	TitlePath() []string
	TitlesBelowFile() []string
	EntryLocation() *domain.Location
	IsOnly() bool
	isEntry()
}

// Suite is a group of tests
type Suite struct {
	Title           string
	Kind            Kind
	Location        *domain.Location
	Only            bool
	Annotations     []string
	Tags            []string
	Mode            Mode
	ProjectName     string
	RepeatEachIndex int
	// Imports holds resolved relative imports of a file suite.
	Imports []string

	parent  *Suite
	entries []Entry
}

// Test is a single declared test case
type Test struct {
	Title           string
	Location        domain.Location
	Only            bool
	Annotations     []string
	Tags            []string
	ID              string
	ProjectName     string
	RepeatEachIndex int

	parent *Suite
}

// New creates an empty suite
func New(kind Kind, title string) *Suite {
	return &Suite{Kind: kind, Title: title}
}

// NewRoot creates an empty root suite
func NewRoot() *Suite {
	return New(KindRoot, "")
}

func (*Suite) isEntry() {}
func (*Test) isEntry()  {}

// Parent returns the enclosing suite, or nil
func (s *Suite) Parent() *Suite { return s.parent }

// Parent returns the enclosing suite, or nil
func (t *Test) Parent() *Suite { return t.parent }

// IsOnly reports whether the suite is explicitly focused
func (s *Suite) IsOnly() bool { return s.Only }

// IsOnly reports whether the test is explicitly focused
func (t *Test) IsOnly() bool { return t.Only }

// EntryLocation returns the declaration location, nil for root and project suites
func (s *Suite) EntryLocation() *domain.Location { return s.Location }

// EntryLocation returns the declaration location
func (t *Test) EntryLocation() *domain.Location {
	loc := t.Location
	return &loc
}

// AddSuite appends a child suite
func (s *Suite) AddSuite(child *Suite) {
	child.parent = s
	s.entries = append(s.entries, child)
}

// PrependSuite inserts a child suite before all existing entries
func (s *Suite) PrependSuite(child *Suite) {
	child.parent = s
	s.entries = append([]Entry{child}, s.entries...)
}

// AddTest appends a test
func (s *Suite) AddTest(t *Test) {
	t.parent = s
	s.entries = append(s.entries, t)
}

// Entries returns the ordered children of the suite
func (s *Suite) Entries() []Entry {
	return slices.Clone(s.entries)
}

// Suites returns the child suites in order
func (s *Suite) Suites() []*Suite {
	var out []*Suite
	for _, e := range s.entries {
		if child, ok := e.(*Suite); ok {
			out = append(out, child)
		}
	}
	return out
}

// Tests returns the direct child tests in order
func (s *Suite) Tests() []*Test {
	var out []*Test
	for _, e := range s.entries {
		if t, ok := e.(*Test); ok {
			out = append(out, t)
		}
	}
	return out
}

// AllTests returns every test in the tree in declaration order
func (s *Suite) AllTests() []*Test {
	var out []*Test
	s.Walk(func(e Entry) {
		if t, ok := e.(*Test); ok {
			out = append(out, t)
		}
	})
	return out
}

// Walk visits every entry below s in depth-first declaration order
func (s *Suite) Walk(visit func(Entry)) {
	for _, e := range s.entries {
		visit(e)
		if child, ok := e.(*Suite); ok {
			child.Walk(visit)
		}
	}
}

// TitlePath returns the non-empty titles from the root down to s
func (s *Suite) TitlePath() []string {
	var path []string
	if s.parent != nil {
		path = s.parent.TitlePath()
	}
	if s.Title != "" {
		path = append(path, s.Title)
	}
	return path
}

// TitlePath returns the non-empty titles from the root down to t
func (t *Test) TitlePath() []string {
	var path []string
	if t.parent != nil {
		path = t.parent.TitlePath()
	}
	return append(path, t.Title)
}

// TitlesBelowFile returns the titles between the enclosing file suite and s
func (s *Suite) TitlesBelowFile() []string {
	if s.Kind == KindFile || s.Kind == KindProject || s.Kind == KindRoot {
		return nil
	}
	var path []string
	if s.parent != nil {
		path = s.parent.TitlesBelowFile()
	}
	if s.Title != "" {
		path = append(path, s.Title)
	}
	return path
}

// TitlesBelowFile returns the titles between the enclosing file suite and t
func (t *Test) TitlesBelowFile() []string {
	var path []string
	if t.parent != nil {
		path = t.parent.TitlesBelowFile()
	}
	return append(path, t.Title)
}

// FileSuite returns the enclosing file suite, or nil
func (s *Suite) FileSuite() *Suite {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.Kind == KindFile {
			return cur
		}
	}
	return nil
}

// Clone returns a detached deep copy of the suite
func (s *Suite) Clone() *Suite {
	c := &Suite{
		Title:           s.Title,
		Kind:            s.Kind,
		Only:            s.Only,
		Annotations:     slices.Clone(s.Annotations),
		Tags:            slices.Clone(s.Tags),
		Mode:            s.Mode,
		ProjectName:     s.ProjectName,
		RepeatEachIndex: s.RepeatEachIndex,
		Imports:         slices.Clone(s.Imports),
		entries:         make([]Entry, 0, len(s.entries)),
	}
	if s.Location != nil {
		loc := *s.Location
		c.Location = &loc
	}
	for _, e := range s.entries {
		switch v := e.(type) {
		case *Suite:
			c.AddSuite(v.Clone())
		case *Test:
			c.AddTest(v.clone())
		}
	}
	return c
}

func (t *Test) clone() *Test {
	return &Test{
		Title:           t.Title,
		Location:        t.Location,
		Only:            t.Only,
		Annotations:     slices.Clone(t.Annotations),
		Tags:            slices.Clone(t.Tags),
		ID:              t.ID,
		ProjectName:     t.ProjectName,
		RepeatEachIndex: t.RepeatEachIndex,
	}
}
