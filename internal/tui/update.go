package tui

import (
	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/nav"
	"github.com/blogstory/internal/page"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *appModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if cmd, ok := m.handleConfirm(msg); ok {
		return cmd
	}
	if m.screen.typing() {
		return m.handleTyping(msg)
	}
	if cmd, ok := m.handlePage(msg); ok {
		return cmd
	}
	return m.handleGlobal(msg)
}

// handleConfirm owns the keyboard while a confirmation prompt is open.
func (m *appModel) handleConfirm(msg tea.KeyMsg) (tea.Cmd, bool) {
	yes := key.Matches(msg, m.keys.Yes)
	no := key.Matches(msg, m.keys.No)

	switch c := m.ctrl.(type) {
	case *page.Detail:
		if !c.Confirming() {
			return nil, false
		}
		if yes {
			return m.lift(c.ConfirmDelete()), true
		}
		if no {
			c.CancelDelete()
		}
		return nil, true
	case *page.Mine:
		if _, ok := c.Confirming(); !ok {
			return nil, false
		}
		if yes {
			return m.lift(c.ConfirmDelete()), true
		}
		if no {
			c.CancelDelete()
		}
		return nil, true
	case draftForm:
		if !c.Confirming() {
			return nil, false
		}
		if yes {
			c.ConfirmCancel()
		}
		if no {
			c.DismissConfirm()
		}
		return nil, true
	}
	return nil, false
}

func (m *appModel) handleTyping(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Next):
		return m.cycleFocus(1)
	case key.Matches(msg, m.keys.Prev):
		return m.cycleFocus(-1)
	case key.Matches(msg, m.keys.Esc):
		m.blur()
		return nil
	case key.Matches(msg, m.keys.Save):
		return m.submit()
	case key.Matches(msg, m.keys.Switch):
		m.switchAuthForm()
		return nil
	case msg.Type == tea.KeyEnter && !m.screen.editorFocused():
		return m.enterOnInput()
	}

	if m.screen.editorFocused() {
		cmd, changed := m.screen.editor.Update(msg)
		if form, ok := m.ctrl.(draftForm); ok && changed {
			form.SetContent(m.screen.editor.HTML())
		}
		return cmd
	}

	i := m.screen.focus
	before := m.screen.inputs[i].Value()
	var cmd tea.Cmd
	m.screen.inputs[i], cmd = m.screen.inputs[i].Update(msg)
	if v := m.screen.inputs[i].Value(); v != before {
		m.push(i, v)
	}
	return cmd
}

func (m *appModel) enterOnInput() tea.Cmd {
	switch m.ctrl.(type) {
	case *page.Home:
		m.blur()
		return nil
	case draftForm:
		return m.cycleFocus(1)
	}
	if m.screen.focus == len(m.screen.inputs)-1 {
		return m.submit()
	}
	return m.cycleFocus(1)
}

// push hands an input value to the controller that owns it.
func (m *appModel) push(i int, v string) {
	switch c := m.ctrl.(type) {
	case *page.Home:
		c.SetSearch(v)
		m.screen.cursor = 0
	case *page.Login:
		if i == 0 {
			c.SetEmail(v)
		} else {
			c.SetPassword(v)
		}
	case *page.Signup:
		switch i {
		case 0:
			c.SetUsername(v)
		case 1:
			c.SetEmail(v)
		default:
			c.SetPassword(v)
		}
	case *page.Profile:
		if i == 0 {
			c.SetUsername(v)
		} else {
			c.SetEmail(v)
		}
	case draftForm:
		c.SetTitle(v)
	}
}

// reflect copies controller-side resets back into the inputs.
func (m *appModel) reflect() {
	var password string
	switch c := m.ctrl.(type) {
	case *page.Login:
		password = c.Password()
	case *page.Signup:
		password = c.Password()
	default:
		return
	}
	last := len(m.screen.inputs) - 1
	if last >= 0 && m.screen.inputs[last].Value() != password {
		m.screen.inputs[last].SetValue(password)
	}
}

func (m *appModel) submit() tea.Cmd {
	switch c := m.ctrl.(type) {
	case *page.Login:
		return m.lift(c.Submit())
	case *page.Signup:
		return m.lift(c.Submit())
	case *page.Profile:
		return m.lift(c.Submit())
	case draftForm:
		return m.lift(c.Submit())
	}
	return nil
}

func (m *appModel) switchAuthForm() {
	switch c := m.ctrl.(type) {
	case *page.Login:
		c.GoSignup()
	case *page.Signup:
		c.GoLogin()
	}
}

func (m *appModel) handlePage(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch c := m.ctrl.(type) {
	case *page.Home:
		return m.homeKey(c, msg)
	case *page.Detail:
		return m.detailKey(c, msg)
	case *page.Mine:
		return m.mineKey(c, msg)
	case *page.Edit:
		if key.Matches(msg, m.keys.Retry) && c.Status() == page.Failed {
			return m.lift(c.Retry()), true
		}
		return m.formKey(c, msg)
	case draftForm:
		return m.formKey(c, msg)
	case *page.Login, *page.Signup, *page.Profile:
		switch {
		case key.Matches(msg, m.keys.Save):
			return m.submit(), true
		case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Open):
			return m.cycleFocus(1), true
		case key.Matches(msg, m.keys.Switch):
			m.switchAuthForm()
			return nil, true
		case key.Matches(msg, m.keys.Esc):
			m.back()
			return nil, true
		}
	case *page.Missing:
		if key.Matches(msg, m.keys.Open) {
			c.GoHome()
			return nil, true
		}
	}
	return nil, false
}

func (m *appModel) homeKey(h *page.Home, msg tea.KeyMsg) (tea.Cmd, bool) {
	posts := h.Filtered()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, len(posts))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, len(posts))
	case key.Matches(msg, m.keys.Open):
		if m.screen.cursor < len(posts) {
			m.deps.Nav.Navigate(nav.PostPath(posts[m.screen.cursor].ID.String()), nil)
		}
	case key.Matches(msg, m.keys.Search):
		m.screen.focus = 0
		return m.focusCmd(), true
	case key.Matches(msg, m.keys.Clear):
		h.ClearSearch()
		m.screen.inputs[0].SetValue("")
		m.screen.cursor = 0
	case key.Matches(msg, m.keys.Retry):
		if h.Status() != page.Failed {
			return nil, false
		}
		return m.lift(h.Retry()), true
	default:
		return nil, false
	}
	return nil, true
}

func (m *appModel) detailKey(d *page.Detail, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Edit) && d.CanModify():
		d.Edit()
	case key.Matches(msg, m.keys.Delete) && d.CanModify() && !d.Deleting():
		d.RequestDelete()
	case key.Matches(msg, m.keys.Retry) && d.Status() == page.Failed:
		return m.lift(d.Retry()), true
	case key.Matches(msg, m.keys.Dismiss) && d.ActionError() != "":
		d.DismissError()
	case key.Matches(msg, m.keys.Esc):
		m.back()
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.screen.body, cmd = m.screen.body.Update(msg)
		return cmd, true
	default:
		return nil, false
	}
	return nil, true
}

func (m *appModel) mineKey(c *page.Mine, msg tea.KeyMsg) (tea.Cmd, bool) {
	posts := c.Posts()
	selected := m.screen.cursor < len(posts)
	var id api.ID
	owned := false
	if selected {
		id = posts[m.screen.cursor].ID
		owned = c.CanModify(posts[m.screen.cursor])
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, len(posts))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, len(posts))
	case key.Matches(msg, m.keys.Open) && selected:
		c.Open(id)
	case key.Matches(msg, m.keys.Edit) && owned:
		c.Edit(id)
	case key.Matches(msg, m.keys.Delete) && owned:
		if !c.Deleting(id) {
			c.RequestDelete(id)
		}
	case key.Matches(msg, m.keys.Retry) && c.Status() == page.Failed:
		return m.lift(c.Retry()), true
	case key.Matches(msg, m.keys.Dismiss) && c.Error() != "":
		c.DismissError()
	default:
		return nil, false
	}
	return nil, true
}

func (m *appModel) formKey(f draftForm, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Save):
		return m.lift(f.Submit()), true
	case key.Matches(msg, m.keys.Esc):
		f.Cancel()
		return nil, true
	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Open):
		return m.cycleFocus(1), true
	}
	return nil, false
}

func (m *appModel) handleGlobal(msg tea.KeyMsg) tea.Cmd {
	authed := m.deps.Session.IsAuthenticated()
	switch {
	case key.Matches(msg, m.keys.QuitIdle):
		return tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.back()
	case key.Matches(msg, m.keys.Dismiss):
		if n, ok := m.ctrl.(noticer); ok {
			n.DismissNotice()
		}
	case key.Matches(msg, m.keys.Home):
		m.deps.Nav.Navigate(nav.HomePath, nil)
	case key.Matches(msg, m.keys.New):
		m.deps.Nav.Navigate(nav.CreatePath, nil)
	case key.Matches(msg, m.keys.Mine):
		m.deps.Nav.Navigate(nav.MyPostsPath, nil)
	case key.Matches(msg, m.keys.Profile):
		m.deps.Nav.Navigate(nav.ProfilePath, nil)
	case key.Matches(msg, m.keys.Login) && !authed:
		m.deps.Nav.Navigate(nav.LoginPath, nil)
	case key.Matches(msg, m.keys.Signup) && !authed:
		m.deps.Nav.Navigate(nav.SignupPath, nil)
	case key.Matches(msg, m.keys.Logout) && authed:
		page.Logout(m.deps)
	}
	return nil
}

func (m *appModel) back() {
	if !m.deps.Nav.Back() && m.deps.Nav.Current().Name != nav.Home {
		m.deps.Nav.Replace(nav.HomePath, nil)
	}
}

func (m *appModel) moveCursor(delta, n int) {
	if n == 0 {
		m.screen.cursor = 0
		return
	}
	c := m.screen.cursor + delta
	if c < 0 {
		c = 0
	}
	if c >= n {
		c = n - 1
	}
	m.screen.cursor = c
}
