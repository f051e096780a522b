package modules

import (
	"context"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"os"
	"path/filepath"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/match"
	"github.com/vvsotnikov/playwright/internal/reporter"
	"github.com/vvsotnikov/playwright/internal/suite"
)

type exportKind int

const (
	exportFunc exportKind = iota
	exportType
	exportValue
)

type scriptExport struct {
	name string
	kind exportKind
}

// script is a parsed .go module
type script struct {
	path    string
	pkg     string
	src     string
	exports []scriptExport
}

// readScript parses a .go module and lists its exported top-level names
func readScript(path string) (*script, error) {
	if filepath.Ext(path) != ".go" {
		return nil, fmt.Errorf("cannot resolve module %s: not registered and not a .go file", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve module %s: %w", path, err)
	}

	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, path, src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse module %s: %w", path, err)
	}

	s := &script{path: path, pkg: f.Name.Name, src: string(src)}
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil && d.Name.IsExported() {
				s.exports = append(s.exports, scriptExport{name: d.Name.Name, kind: exportFunc})
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch sp := spec.(type) {
				case *ast.TypeSpec:
					if sp.Name.IsExported() {
						s.exports = append(s.exports, scriptExport{name: sp.Name.Name, kind: exportType})
					}
				case *ast.ValueSpec:
					for _, name := range sp.Names {
						if name.IsExported() {
							s.exports = append(s.exports, scriptExport{name: name.Name, kind: exportValue})
						}
					}
				}
			}
		}
	}
	return s, nil
}

// single returns the only export when it has the wanted kind
func (s *script) single(kind exportKind) (string, bool) {
	if len(s.exports) != 1 || s.exports[0].kind != kind {
		return "", false
	}
	return s.exports[0].name, true
}

// interpret evaluates src in a fresh interpreter
func interpret(ctx context.Context, path, src string) (*interp.Interpreter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	if _, err := i.EvalWithContext(ctx, src); err != nil {
		return nil, fmt.Errorf("evaluate module %s: %w", path, err)
	}
	return i, nil
}

func loadScriptHook(ctx context.Context, path string) (GlobalHook, error) {
	s, err := readScript(path)
	if err != nil {
		return nil, err
	}
	shapeErr := &ExportShapeError{File: path, Want: "function"}
	name, ok := s.single(exportFunc)
	if !ok {
		return nil, shapeErr
	}

	i, err := interpret(ctx, path, s.src)
	if err != nil {
		return nil, err
	}
	v, err := i.Eval(s.pkg + "." + name)
	if err != nil {
		return nil, fmt.Errorf("evaluate module %s: %w", path, err)
	}
	switch fn := v.Interface().(type) {
	case func(context.Context) error:
		return fn, nil
	case func() error:
		return func(context.Context) error { return fn() }, nil
	}
	return nil, shapeErr
}

// factoryFunc is appended to reporter modules to build an instance and hand
// out its bound methods
const factoryFunc = "PwtReporterFactory"

func loadScriptReporter(ctx context.Context, path string) (reporter.Reporter, error) {
	s, err := readScript(path)
	if err != nil {
		return nil, err
	}
	name, ok := s.single(exportType)
	if !ok {
		return nil, &ExportShapeError{File: path, Want: "class"}
	}

	src := s.src + fmt.Sprintf(`

func %s() (func([]string), func(string), func() error) {
	r := &%s{}
	return r.OnBegin, r.OnError, r.OnEnd
}
`, factoryFunc, name)
	i, err := interpret(ctx, path, src)
	if err != nil {
		return nil, fmt.Errorf("%w (reporters implement OnBegin([]string), OnError(string) and OnEnd() error)", err)
	}
	v, err := i.Eval(s.pkg + "." + factoryFunc)
	if err != nil {
		return nil, fmt.Errorf("evaluate module %s: %w", path, err)
	}
	factory, ok := v.Interface().(func() (func([]string), func(string), func() error))
	if !ok {
		return nil, fmt.Errorf("%s: unexpected reporter factory type %T", path, v.Interface())
	}
	onBegin, onError, onEnd := factory()
	return &scriptReporter{onBegin: onBegin, onError: onError, onEnd: onEnd}, nil
}

// scriptReporter adapts an interpreted reporter. Interpreted code only
// sees standard library types, so tests are passed as rendered titles.
type scriptReporter struct {
	onBegin func([]string)
	onError func(string)
	onEnd   func() error
}

func (r *scriptReporter) OnBegin(root *suite.Suite) {
	var titles []string
	for _, t := range root.AllTests() {
		titles = append(titles, match.RenderTitle(t.TitlePath()))
	}
	r.onBegin(titles)
}

func (r *scriptReporter) OnError(err domain.TestError) {
	r.onError(err.Error())
}

func (r *scriptReporter) OnEnd() error {
	return r.onEnd()
}
