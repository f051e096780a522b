package loader

import (
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// request asks a worker to load one file
type request struct {
	ID   int    `json:"id"`
	File string `json:"file"`
}

// response carries the loaded suite or the load error back to the host
type response struct {
	ID    int               `json:"id"`
	Suite *suiteJSON        `json:"suite,omitempty"`
	Error *domain.TestError `json:"error,omitempty"`
	// Fatal is set when the worker could not serve the request at all.
	Fatal string `json:"fatal,omitempty"`
}

type suiteJSON struct {
	Title       string           `json:"title"`
	Kind        suite.Kind       `json:"kind"`
	Location    *domain.Location `json:"location,omitempty"`
	Only        bool             `json:"only,omitempty"`
	Annotations []string         `json:"annotations,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Mode        suite.Mode       `json:"mode,omitempty"`
	Imports     []string         `json:"imports,omitempty"`
	Entries     []entryJSON      `json:"entries,omitempty"`
}

type testJSON struct {
	Title       string          `json:"title"`
	Location    domain.Location `json:"location"`
	Only        bool            `json:"only,omitempty"`
	Annotations []string        `json:"annotations,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// entryJSON holds exactly one of Suite or Test
type entryJSON struct {
	Suite *suiteJSON `json:"suite,omitempty"`
	Test  *testJSON  `json:"test,omitempty"`
}

func encodeSuite(s *suite.Suite) *suiteJSON {
	if s == nil {
		return nil
	}
	out := &suiteJSON{
		Title:       s.Title,
		Kind:        s.Kind,
		Location:    s.Location,
		Only:        s.Only,
		Annotations: s.Annotations,
		Tags:        s.Tags,
		Mode:        s.Mode,
		Imports:     s.Imports,
	}
	for _, e := range s.Entries() {
		switch v := e.(type) {
		case *suite.Suite:
			out.Entries = append(out.Entries, entryJSON{Suite: encodeSuite(v)})
		case *suite.Test:
			out.Entries = append(out.Entries, entryJSON{Test: &testJSON{
				Title:       v.Title,
				Location:    v.Location,
				Only:        v.Only,
				Annotations: v.Annotations,
				Tags:        v.Tags,
			}})
		}
	}
	return out
}

func decodeSuite(in *suiteJSON) *suite.Suite {
	if in == nil {
		return nil
	}
	s := suite.New(in.Kind, in.Title)
	s.Location = in.Location
	s.Only = in.Only
	s.Annotations = in.Annotations
	s.Tags = in.Tags
	s.Mode = in.Mode
	s.Imports = in.Imports
	for _, e := range in.Entries {
		switch {
		case e.Suite != nil:
			s.AddSuite(decodeSuite(e.Suite))
		case e.Test != nil:
			s.AddTest(&suite.Test{
				Title:       e.Test.Title,
				Location:    e.Test.Location,
				Only:        e.Test.Only,
				Annotations: e.Test.Annotations,
				Tags:        e.Test.Tags,
			})
		}
	}
	return s
}
