package richtext

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)

	editorSeq atomic.Int64
)

// ReadyMsg is emitted once an editor has finished initialising.
type ReadyMsg struct{ EditorID int64 }

// ErrorMsg is emitted when an editor fails internally.
type ErrorMsg struct {
	EditorID int64
	Err      error
}

// Editor is the rich-text widget of the create and edit screens. The user
// writes markdown; HTML() is what gets submitted. Existing HTML bodies are
// loaded verbatim and pass through the renderer untouched.
type Editor struct {
	id      int64
	area    textarea.Model
	initial string
	html    string
	dirty   bool
	ready   bool
	err     error
}

// NewEditor creates an editor seeded with initialHTML.
func NewEditor(initialHTML string) *Editor {
	area := textarea.New()
	area.Placeholder = "Write your story (markdown)..."
	area.ShowLineNumbers = false
	area.CharLimit = 0
	area.MaxHeight = 0
	area.SetValue(initialHTML)

	return &Editor{
		id:      editorSeq.Add(1),
		area:    area,
		initial: initialHTML,
		html:    initialHTML,
	}
}

// ID identifies the editor in ReadyMsg and ErrorMsg.
func (e *Editor) ID() int64 { return e.id }

// Init returns the command that reports readiness.
func (e *Editor) Init() tea.Cmd {
	id := e.id
	return func() tea.Msg { return ReadyMsg{EditorID: id} }
}

// Update forwards msg to the text area. changed reports whether the
// serialised HTML differs from before the call.
func (e *Editor) Update(msg tea.Msg) (cmd tea.Cmd, changed bool) {
	switch msg := msg.(type) {
	case ReadyMsg:
		if msg.EditorID == e.id {
			e.ready = true
		}
		return nil, false
	case ErrorMsg:
		if msg.EditorID == e.id {
			e.err = msg.Err
		}
		return nil, false
	}

	before := e.area.Value()
	var areaCmd tea.Cmd
	e.area, areaCmd = e.area.Update(msg)
	if e.area.Value() == before {
		return areaCmd, false
	}

	prev := e.html
	e.dirty = e.area.Value() != e.initial
	if !e.dirty {
		e.html = e.initial
		return areaCmd, e.html != prev
	}

	rendered, err := Render(e.area.Value())
	if err != nil {
		id := e.id
		return tea.Batch(areaCmd, func() tea.Msg { return ErrorMsg{EditorID: id, Err: err} }), false
	}
	e.html = rendered
	return areaCmd, rendered != prev
}

// Dirty reports whether the source differs from what the editor was seeded with.
func (e *Editor) Dirty() bool { return e.dirty }

// HTML returns the current serialised content.
func (e *Editor) HTML() string { return e.html }

// Ready reports whether Init's signal has been received.
func (e *Editor) Ready() bool { return e.ready }

// Err returns the last internal failure.
func (e *Editor) Err() error { return e.err }

func (e *Editor) Focus() tea.Cmd { return e.area.Focus() }

func (e *Editor) Blur() { e.area.Blur() }

func (e *Editor) Focused() bool { return e.area.Focused() }

func (e *Editor) SetSize(width, height int) {
	e.area.SetWidth(width)
	e.area.SetHeight(height)
}

func (e *Editor) View() string { return e.area.View() }

// Render converts markdown to HTML. An empty or whitespace-only source renders
// to an empty string so the content rule still applies.
func Render(source string) (string, error) {
	if len(bytes.TrimSpace([]byte(source))) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
