package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// Viewer displays an assembled suite
type Viewer interface {
	View(root *suite.Suite, errs []domain.TestError) error
}

// SuiteViewer displays the suite tree in an interactive TUI
type SuiteViewer struct {
	rootDir string
}

// NewSuiteViewer creates a new SuiteViewer
func NewSuiteViewer(rootDir string) *SuiteViewer {
	return &SuiteViewer{rootDir: rootDir}
}

// View runs the TUI until the user quits
func (sv *SuiteViewer) View(root *suite.Suite, errs []domain.TestError) error {
	if len(root.AllTests()) == 0 && len(errs) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	app := tview.NewApplication()
	treeRoot := BuildTree(root, errs)

	tree := tview.NewTreeView().
		SetRoot(treeRoot).
		SetCurrentNode(treeRoot)
	tree.SetBorder(true).SetTitle(" Suites ")

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)
	detailsView.SetBorder(true).SetTitle(" Details ")

	updateDetails := func(node *tview.TreeNode) {
		detailsView.SetText(sv.formatDetails(node.GetReference()))
	}
	tree.SetChangedFunc(updateDetails)
	tree.SetSelectedFunc(func(node *tview.TreeNode) {
		node.SetExpanded(!node.IsExpanded())
	})

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" %d test(s), %d error(s) | Use ↑↓ to navigate, Enter to fold, → to view details, ← to go back, Ctrl+C to exit ",
			len(root.AllTests()), len(errs)))

	tree.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(tree)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(tree, 0, 1, true).
		AddItem(detailsView, 0, 1, false)

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(flex, 0, 1, true)

	updateDetails(treeRoot)
	if err := app.SetRoot(mainLayout, true).SetFocus(tree).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// BuildTree converts the suite into tree nodes. Each node references the
// *suite.Suite, *suite.Test or domain.TestError it shows.
func BuildTree(root *suite.Suite, errs []domain.TestError) *tview.TreeNode {
	node := tview.NewTreeNode("Tests").
		SetColor(tcell.ColorWhite).
		SetReference(root)
	addEntries(node, root)

	if len(errs) > 0 {
		errNode := tview.NewTreeNode(fmt.Sprintf("Errors (%d)", len(errs))).
			SetColor(tcell.ColorRed).
			SetReference(errs)
		for _, e := range errs {
			errNode.AddChild(tview.NewTreeNode(e.Message).
				SetColor(tcell.ColorRed).
				SetReference(e))
		}
		node.AddChild(errNode)
	}
	return node
}

func addEntries(parent *tview.TreeNode, s *suite.Suite) {
	for _, e := range s.Entries() {
		switch v := e.(type) {
		case *suite.Suite:
			child := tview.NewTreeNode(nodeTitle(v)).
				SetReference(v).
				SetColor(suiteColor(v))
			addEntries(child, v)
			parent.AddChild(child)
		case *suite.Test:
			c := tcell.ColorYellow
			if v.Only {
				c = tcell.ColorOrangeRed
			}
			parent.AddChild(tview.NewTreeNode(v.Title).
				SetReference(v).
				SetColor(c))
		}
	}
}

func nodeTitle(s *suite.Suite) string {
	switch {
	case s.Kind == suite.KindProject && s.Title == "":
		return "(default project)"
	case s.Kind == suite.KindFile && s.RepeatEachIndex > 0:
		return fmt.Sprintf("%s (repeat:%d)", s.Title, s.RepeatEachIndex)
	case s.Title == "":
		return "(anonymous)"
	}
	return s.Title
}

func suiteColor(s *suite.Suite) tcell.Color {
	switch {
	case s.Only:
		return tcell.ColorOrangeRed
	case s.Kind == suite.KindProject:
		return tcell.ColorFuchsia
	case s.Kind == suite.KindFile:
		return tcell.ColorDarkCyan
	}
	return tcell.ColorWhite
}

// formatDetails formats the selected entry using tview color tags
func (sv *SuiteViewer) formatDetails(ref any) string {
	var b strings.Builder
	switch v := ref.(type) {
	case *suite.Test:
		fmt.Fprintf(&b, "[yellow]Test:[white] %s\n\n", v.Title)
		fmt.Fprintf(&b, "[cyan]Location:[white] %s\n", sv.location(v.Location))
		fmt.Fprintf(&b, "[cyan]Project:[white] %s\n", v.ProjectName)
		fmt.Fprintf(&b, "[cyan]ID:[white] %s\n", v.ID)
		fmt.Fprintf(&b, "[cyan]Title path:[white] %s\n", strings.Join(v.TitlesBelowFile(), " › "))
		if v.RepeatEachIndex > 0 {
			fmt.Fprintf(&b, "[cyan]Repeat:[white] %d\n", v.RepeatEachIndex)
		}
		writeMarkers(&b, v.Only, v.Annotations, v.Tags)
	case *suite.Suite:
		fmt.Fprintf(&b, "[yellow]%s:[white] %s\n\n", v.Kind, nodeTitle(v))
		if v.Location != nil {
			fmt.Fprintf(&b, "[cyan]Location:[white] %s\n", sv.location(*v.Location))
		}
		fmt.Fprintf(&b, "[cyan]Tests:[white] %d\n", len(v.AllTests()))
		if v.Mode != suite.ModeDefault {
			fmt.Fprintf(&b, "[cyan]Mode:[white] %s\n", v.Mode)
		}
		writeMarkers(&b, v.Only, v.Annotations, v.Tags)
	case domain.TestError:
		fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", v.Message)
		if v.Location != nil {
			fmt.Fprintf(&b, "[cyan]Location:[white] %s\n", sv.location(*v.Location))
		}
	case []domain.TestError:
		fmt.Fprintf(&b, "[red]%d error(s) found while assembling the suite[white]\n", len(v))
	}
	return b.String()
}

func writeMarkers(b *strings.Builder, only bool, annotations, tags []string) {
	if only {
		b.WriteString("[red]Focused (only)[white]\n")
	}
	if len(annotations) > 0 {
		fmt.Fprintf(b, "[cyan]Annotations:[white] %s\n", strings.Join(annotations, ", "))
	}
	if len(tags) > 0 {
		fmt.Fprintf(b, "[cyan]Tags:[white] %s\n", strings.Join(tags, " "))
	}
}

func (sv *SuiteViewer) location(loc domain.Location) string {
	f := &Formatter{rootDir: sv.rootDir}
	loc.File = f.relPath(loc.File)
	return loc.String()
}
