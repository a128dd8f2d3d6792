package tui

import (
	"context"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/nav"
	"github.com/blogstory/internal/page"
	"github.com/blogstory/internal/richtext"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pageMsg carries a controller completion back into the event loop.
type pageMsg struct{ msg page.Msg }

// sessionMsg is sent whenever the session store changes.
type sessionMsg struct{}

// draftForm is what the create and edit controllers share.
type draftForm interface {
	page.Controller
	SetTitle(string)
	SetContent(string)
	EditorReady()
	EditorFailed(error)
	Draft() draft.Draft
	Saving() bool
	Submit() page.Cmd
	Cancel()
	Confirming() bool
	ConfirmCancel()
	DismissConfirm()
}

// screen holds the widgets of the mounted page. It is rebuilt on every mount.
type screen struct {
	inputs []textinput.Model
	focus  int
	editor *richtext.Editor
	cursor int
	body   viewport.Model
	bodyID api.ID
}

func (s *screen) typing() bool {
	return s.focus >= 0 && (s.focus < len(s.inputs) || s.editorFocused())
}

func (s *screen) editorFocused() bool {
	return s.editor != nil && s.focus == len(s.inputs)
}

type appModel struct {
	ctx  context.Context
	deps page.Deps
	keys keyMap
	help help.Model

	ctrl    page.Controller
	version int
	pending tea.Cmd
	screen  screen

	spinner spinner.Model

	width  int
	height int
}

func newAppModel(ctx context.Context, deps page.Deps) appModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := appModel{
		ctx:     ctx,
		deps:    deps,
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: sp,
		width:   80,
		height:  24,
	}
	m.pending = m.sync()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.pending, m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case pageMsg:
		if m.ctrl != nil {
			cmds = append(cmds, m.lift(m.ctrl.Update(msg.msg)))
		}
	case sessionMsg:
		// 会话失效时受保护页面跳回登录页
		if m.deps.Nav.Current().Protected() && !m.deps.Session.IsAuthenticated() {
			m.deps.Nav.Replace(nav.LoginPath, nil)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case richtext.ReadyMsg, richtext.ErrorMsg:
		cmds = append(cmds, m.editorSignal(msg))
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKey(msg))
	default:
		// cursor blink and similar widget messages
		for i := range m.screen.inputs {
			var cmd tea.Cmd
			m.screen.inputs[i], cmd = m.screen.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.screen.editor != nil {
			cmd, _ := m.screen.editor.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

// lift turns a controller command into a bubbletea command bound to the
// program's context.
func (m *appModel) lift(c page.Cmd) tea.Cmd {
	return lift(m.ctx, c)
}

func lift(ctx context.Context, c page.Cmd) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		msg := c(ctx)
		switch msg := msg.(type) {
		case nil:
			return nil
		case page.BatchMsg:
			cmds := make([]tea.Cmd, 0, len(msg))
			for _, sub := range msg {
				if cmd := lift(ctx, sub); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
			if len(cmds) == 0 {
				return nil
			}
			return tea.BatchMsg(cmds)
		default:
			return pageMsg{msg: msg}
		}
	}
}

// sync mounts the controller for the current route when the navigator moved.
func (m *appModel) sync() tea.Cmd {
	var cmds []tea.Cmd
	for i := 0; i < 4 && (m.ctrl == nil || m.deps.Nav.Version() != m.version); i++ {
		cmds = append(cmds, m.mount())
	}
	cmds = append(cmds, m.prepareEditor())
	m.reflect()
	m.clampCursor()
	m.fillBody()
	return tea.Batch(cmds...)
}

// fillBody wraps the loaded post into the detail viewport.
func (m *appModel) fillBody() {
	d, ok := m.ctrl.(*page.Detail)
	if !ok || d.Status() != page.Ready || m.screen.bodyID == d.Post().ID {
		return
	}
	p := d.Post()
	text := richtext.Text(p.Content)
	m.screen.body.SetContent(lipgloss.NewStyle().Width(m.screen.body.Width).Render(text))
	m.screen.bodyID = p.ID
}

func (m *appModel) clampCursor() {
	n := 0
	switch c := m.ctrl.(type) {
	case *page.Home:
		n = len(c.Filtered())
	case *page.Mine:
		n = c.Count()
	}
	if m.screen.cursor >= n {
		m.screen.cursor = n - 1
	}
	if m.screen.cursor < 0 {
		m.screen.cursor = 0
	}
}

func (m *appModel) mount() tea.Cmd {
	route := m.deps.Nav.Current()

	// 同一详情页切换文章时复用控制器
	if d, ok := m.ctrl.(*page.Detail); ok && route.Name == nav.Post {
		m.version = m.deps.Nav.Version()
		m.screen.body.GotoTop()
		m.screen.bodyID = ""
		return m.lift(d.SetID(api.ID(route.Param("id"))))
	}

	if m.ctrl != nil {
		m.ctrl.Leave()
	}
	m.ctrl = page.Resolve(m.deps)
	m.version = m.deps.Nav.Version()

	enter := m.lift(m.ctrl.Enter())
	m.screen = m.newScreen()
	m.populate()
	m.resize()

	cmds := []tea.Cmd{enter, m.focusCmd()}
	if m.screen.editor != nil {
		cmds = append(cmds, m.screen.editor.Init())
	}
	return tea.Batch(cmds...)
}

func (m *appModel) newScreen() screen {
	s := screen{focus: -1, body: viewport.New(m.width, 10)}

	switch c := m.ctrl.(type) {
	case *page.Home:
		search := newInput("Search posts by title, content or author", 0)
		search.SetValue(c.Search())
		s.inputs = []textinput.Model{search}
	case *page.Login:
		s.inputs = []textinput.Model{newInput("you@example.com", 0), newPassword()}
		s.focus = 0
	case *page.Signup:
		s.inputs = []textinput.Model{newInput("username", 20), newInput("you@example.com", 0), newPassword()}
		s.focus = 0
	case *page.Profile:
		s.inputs = []textinput.Model{newInput("username", 20), newInput("you@example.com", 0)}
		s.focus = 0
	case *page.Create:
		s.inputs = []textinput.Model{newInput("Enter post title", 0)}
		s.editor = richtext.NewEditor("")
		s.focus = 0
	case *page.Edit:
		s.inputs = []textinput.Model{newInput("Enter post title", 0)}
		// the editor is created once the post has loaded
	}
	return s
}

// prepareEditor seeds the edit screen from the loaded post.
func (m *appModel) prepareEditor() tea.Cmd {
	e, ok := m.ctrl.(*page.Edit)
	if !ok || m.screen.editor != nil || e.Status() != page.Ready {
		return nil
	}
	orig := e.Original()
	m.screen.inputs[0].SetValue(orig.Title)
	m.screen.editor = richtext.NewEditor(orig.Content)
	m.screen.focus = 0
	m.resize()
	return tea.Batch(m.screen.editor.Init(), m.focusCmd())
}

// populate copies values the controller prefilled on Enter into the inputs.
func (m *appModel) populate() {
	if p, ok := m.ctrl.(*page.Profile); ok && len(m.screen.inputs) == 2 {
		m.screen.inputs[0].SetValue(p.Username())
		m.screen.inputs[1].SetValue(p.Email())
	}
}

func (m *appModel) editorSignal(msg tea.Msg) tea.Cmd {
	ed := m.screen.editor
	if ed == nil {
		return nil
	}
	cmd, _ := ed.Update(msg)
	form, ok := m.ctrl.(draftForm)
	if !ok {
		return cmd
	}
	switch msg := msg.(type) {
	case richtext.ReadyMsg:
		if msg.EditorID == ed.ID() {
			form.EditorReady()
		}
	case richtext.ErrorMsg:
		if msg.EditorID == ed.ID() {
			form.EditorFailed(msg.Err)
		}
	}
	return cmd
}

func (m *appModel) focusCmd() tea.Cmd {
	var cmds []tea.Cmd
	for i := range m.screen.inputs {
		if i == m.screen.focus {
			cmds = append(cmds, m.screen.inputs[i].Focus())
		} else {
			m.screen.inputs[i].Blur()
		}
	}
	if ed := m.screen.editor; ed != nil {
		if m.screen.editorFocused() {
			cmds = append(cmds, ed.Focus())
		} else {
			ed.Blur()
		}
	}
	return tea.Batch(cmds...)
}

func (m *appModel) cycleFocus(delta int) tea.Cmd {
	n := len(m.screen.inputs)
	if m.screen.editor != nil {
		n++
	}
	if n == 0 {
		return nil
	}
	m.screen.focus = ((m.screen.focus+delta)%n + n) % n
	return m.focusCmd()
}

func (m *appModel) blur() {
	m.screen.focus = -1
	for i := range m.screen.inputs {
		m.screen.inputs[i].Blur()
	}
	if m.screen.editor != nil {
		m.screen.editor.Blur()
	}
}

func (m *appModel) resize() {
	w := clampWidth(m.width-4, 20, 100)
	for i := range m.screen.inputs {
		m.screen.inputs[i].Width = w - 4
	}
	if m.screen.editor != nil {
		m.screen.editor.SetSize(w, clampWidth(m.height-16, 5, 40))
	}
	m.screen.body.Width = w
	m.screen.body.Height = clampWidth(m.height-12, 3, 1000)
	m.screen.bodyID = ""
	m.help.Width = m.width
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = "> "
	return in
}

func newPassword() textinput.Model {
	in := newInput("password", 0)
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	return in
}
