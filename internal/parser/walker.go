package parser

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/suite"
)

var titleTag = regexp.MustCompile(`@[\w-]+`)

// test modifiers that also declare a test when called with a title
var testModifiers = map[string]string{
	"only":  "",
	"skip":  "skip",
	"fixme": "fixme",
	"fail":  "fail",
	"slow":  "slow",
}

type walker struct {
	file          string
	src           []byte
	testFunctions map[string]bool
	imports       []string
}

// walk visits the named children of node, attaching declarations to parent
func (w *walker) walk(node *sitter.Node, parent *suite.Suite) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_statement":
			if source := child.ChildByFieldName("source"); source != nil {
				w.addImport(source)
			}
			continue
		case "call_expression":
			if w.declare(child, parent) {
				continue
			}
		}
		w.walk(child, parent)
	}
}

// declare handles a call that declares a test or a group. It reports
// whether the call was consumed.
func (w *walker) declare(call *sitter.Node, parent *suite.Suite) bool {
	chain := w.callee(call.ChildByFieldName("function"))
	if len(chain) == 0 {
		return false
	}
	args := namedChildren(call.ChildByFieldName("arguments"))

	if chain[0] == "require" && len(chain) == 1 {
		if len(args) > 0 && args[0].Type() == "string" {
			w.addImport(args[0])
		}
		return true
	}

	switch {
	case chain[0] == "describe":
		return w.declareGroup(call, chain[1:], args, parent)
	case !w.testFunctions[chain[0]]:
		return false
	case len(chain) == 1:
		return w.declareTest(call, "", args, parent)
	case chain[1] == "describe":
		return w.declareGroup(call, chain[2:], args, parent)
	case len(chain) == 2:
		if _, ok := testModifiers[chain[1]]; ok {
			return w.declareTest(call, chain[1], args, parent)
		}
	}
	return false
}

func (w *walker) declareTest(call *sitter.Node, modifier string, args []*sitter.Node, parent *suite.Suite) bool {
	if len(args) == 0 {
		return true
	}
	title, ok := w.literal(args[0])
	if !ok {
		// test.skip(condition) and friends inside a group or test body
		return true
	}

	t := &suite.Test{
		Title:    title,
		Location: w.location(call),
		Only:     modifier == "only",
		Tags:     w.tags(title, args),
	}
	if annotation := testModifiers[modifier]; annotation != "" {
		t.Annotations = append(t.Annotations, annotation)
	}
	parent.AddTest(t)
	return true
}

func (w *walker) declareGroup(call *sitter.Node, modifiers []string, args []*sitter.Node, parent *suite.Suite) bool {
	if len(modifiers) == 1 && modifiers[0] == "configure" {
		w.configure(args, parent)
		return true
	}

	group := suite.New(suite.KindDescribe, "")
	loc := w.location(call)
	group.Location = &loc
	for _, m := range modifiers {
		switch m {
		case "only":
			group.Only = true
		case "skip", "fixme":
			group.Annotations = append(group.Annotations, m)
		case "serial":
			group.Mode = suite.ModeSerial
		case "parallel":
			group.Mode = suite.ModeParallel
		default:
			return false
		}
	}

	if len(args) > 0 {
		if title, ok := w.literal(args[0]); ok {
			group.Title = title
			group.Tags = w.tags(title, args)
		}
	}
	parent.AddSuite(group)

	if body := callback(args); body != nil {
		w.walk(body, group)
	}
	return true
}

// configure applies test.describe.configure({ mode }) to the enclosing group
func (w *walker) configure(args []*sitter.Node, parent *suite.Suite) {
	if len(args) == 0 || args[0].Type() != "object" {
		return
	}
	value := w.property(args[0], "mode")
	if value == nil {
		return
	}
	switch mode, _ := w.literal(value); mode {
	case "serial":
		parent.Mode = suite.ModeSerial
	case "parallel":
		parent.Mode = suite.ModeParallel
	case "default":
		parent.Mode = suite.ModeDefault
	}
}

// callee flattens test.describe.only into ["test", "describe", "only"]
func (w *walker) callee(node *sitter.Node) []string {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "identifier":
		return []string{node.Content(w.src)}
	case "member_expression":
		object := w.callee(node.ChildByFieldName("object"))
		property := node.ChildByFieldName("property")
		if object == nil || property == nil {
			return nil
		}
		return append(object, property.Content(w.src))
	}
	return nil
}

// literal returns the value of a string or template literal
func (w *walker) literal(node *sitter.Node) (string, bool) {
	raw := node.Content(w.src)
	switch node.Type() {
	case "string":
		if len(raw) < 2 {
			return "", false
		}
		return unescape(raw[1 : len(raw)-1]), true
	case "template_string":
		if len(raw) < 2 {
			return "", false
		}
		return raw[1 : len(raw)-1], true
	}
	return "", false
}

// tags collects @tags from the title and from a { tag } details argument
func (w *walker) tags(title string, args []*sitter.Node) []string {
	tags := titleTag.FindAllString(title, -1)
	if len(args) > 1 && args[1].Type() == "object" {
		if value := w.property(args[1], "tag"); value != nil {
			switch value.Type() {
			case "array":
				for _, el := range namedChildren(value) {
					if tag, ok := w.literal(el); ok {
						tags = append(tags, tag)
					}
				}
			default:
				if tag, ok := w.literal(value); ok {
					tags = append(tags, tag)
				}
			}
		}
	}
	return slices.Compact(tags)
}

// property finds the value of key in an object literal
func (w *walker) property(object *sitter.Node, key string) *sitter.Node {
	for _, pair := range namedChildren(object) {
		if pair.Type() != "pair" {
			continue
		}
		k := pair.ChildByFieldName("key")
		if k == nil {
			continue
		}
		name := k.Content(w.src)
		if lit, ok := w.literal(k); ok {
			name = lit
		}
		if name == key {
			return pair.ChildByFieldName("value")
		}
	}
	return nil
}

func (w *walker) addImport(source *sitter.Node) {
	spec, ok := w.literal(source)
	if !ok || !(strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")) {
		return
	}
	w.imports = append(w.imports, filepath.Join(filepath.Dir(w.file), filepath.FromSlash(spec)))
}

func (w *walker) location(node *sitter.Node) domain.Location {
	start := node.StartPoint()
	return domain.Location{File: w.file, Line: int(start.Row) + 1, Column: int(start.Column) + 1}
}

// syntaxError locates the first error node below root
func (w *walker) syntaxError(root *sitter.Node) *SyntaxError {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	msg := "SyntaxError: unexpected token"
	if bad.IsMissing() {
		msg = "SyntaxError: missing " + bad.Type()
	}
	return &SyntaxError{Location: w.location(bad), Message: msg}
}

func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

// callback returns the body of the last function argument
func callback(args []*sitter.Node) *sitter.Node {
	for i := len(args) - 1; i >= 0; i-- {
		switch args[i].Type() {
		case "arrow_function", "function", "function_expression":
			return args[i].ChildByFieldName("body")
		}
	}
	return nil
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
