package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/flash"
	"github.com/blogstory/internal/nav"
	"github.com/blogstory/internal/page"
	"github.com/blogstory/internal/richtext"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const (
	summaryLimit = 150
	cardHeight   = 6
)

type noticer interface {
	Notice() (flash.Notice, bool)
	DismissNotice()
}

func (m appModel) View() string {
	if m.ctrl == nil {
		return ""
	}

	sections := []string{m.navbar()}
	if n, ok := m.ctrl.(noticer); ok {
		if notice, shown := n.Notice(); shown {
			sections = append(sections, noticeStyle(notice.Kind).Render(notice.Message))
		}
	}
	sections = append(sections, "", m.body())
	if modal := m.confirmModal(); modal != "" {
		sections = append(sections, "", modal)
	}
	sections = append(sections, "", m.help.ShortHelpView(m.bindings()))

	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(sections, "\n"))
}

func (m appModel) navbar() string {
	current := m.deps.Nav.Current().Name
	item := func(label string, name nav.Name, k key.Binding) string {
		text := fmt.Sprintf("%s %s", k.Help().Key, label)
		if current == name {
			return styleNavOn.Render(text)
		}
		return styleNavItem.Render(text)
	}

	items := []string{styleBrand.Render("BlogStory"), item("Home", nav.Home, m.keys.Home)}
	if user := m.deps.Session.User(); user != nil {
		items = append(items,
			item("New Post", nav.Create, m.keys.New),
			item("My Posts", nav.MyPosts, m.keys.Mine),
			item("Profile", nav.Profile, m.keys.Profile),
			styleMuted.Render("@"+user.Username),
			item("Log out", "", m.keys.Logout),
		)
	} else {
		items = append(items,
			item("Log in", nav.Login, m.keys.Login),
			item("Sign up", nav.Signup, m.keys.Signup),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func (m appModel) body() string {
	switch c := m.ctrl.(type) {
	case *page.Home:
		return m.homeView(c)
	case *page.Detail:
		return m.detailView(c)
	case *page.Create:
		return m.formView("Create New Post", "Publish", c.CanSubmit(), false, c)
	case *page.Edit:
		return m.editView(c)
	case *page.Mine:
		return m.mineView(c)
	case *page.Login:
		return m.loginView(c)
	case *page.Signup:
		return m.signupView(c)
	case *page.Profile:
		return m.profileView(c)
	case *page.Missing:
		return strings.Join([]string{
			styleHeading.Render("404 Page not found"),
			styleMuted.Render(c.Path()),
			"",
			"The page you are looking for does not exist.",
			button("Go home", true),
		}, "\n")
	}
	return ""
}

func (m appModel) loading(label string) string {
	return m.spinner.View() + " " + label
}

func (m appModel) homeView(h *page.Home) string {
	lines := []string{styleHeading.Render("Latest Posts"), m.screen.inputs[0].View(), ""}

	switch {
	case h.Status() == page.Loading:
		lines = append(lines, m.loading("Loading posts..."))
	case h.Status() == page.Failed:
		lines = append(lines, styleError.Render(h.Error()), styleMuted.Render("press r to try again"))
	case h.NoPosts():
		lines = append(lines, "No posts yet.")
		if h.Authenticated() {
			lines = append(lines, styleMuted.Render("Be the first to share a story: press n."))
		} else {
			lines = append(lines, styleMuted.Render("Log in to write the first one."))
		}
	case h.NoMatch():
		lines = append(lines,
			fmt.Sprintf("No posts match %q.", h.Search()),
			styleMuted.Render("press c to clear the search"))
	default:
		posts := h.Filtered()
		if h.Search() != "" {
			lines = append(lines, styleMuted.Render(fmt.Sprintf("%d of %d posts", len(posts), len(h.Posts()))))
		}
		lines = append(lines, m.cards(posts)...)
	}
	return strings.Join(lines, "\n")
}

// cards renders the window of posts around the cursor.
func (m appModel) cards(posts []api.Post) []string {
	visible := (m.height - 12) / cardHeight
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.screen.cursor >= visible {
		start = m.screen.cursor - visible + 1
	}
	end := start + visible
	if end > len(posts) {
		end = len(posts)
	}

	width := clampWidth(m.width-6, 20, 100)
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		p := posts[i]
		summary := p.Summary
		if summary == "" {
			summary = richtext.Summary(p.Content, summaryLimit)
		}
		card := strings.Join([]string{
			styleTitle.Render(p.Title),
			styleMuted.Render(byline(p)),
			summary,
		}, "\n")
		st := styleCard
		if i == m.screen.cursor {
			st = styleCardOn
		}
		out = append(out, st.Width(width).Render(card))
	}
	if end < len(posts) {
		out = append(out, styleMuted.Render(fmt.Sprintf("%d more...", len(posts)-end)))
	}
	return out
}

func (m appModel) detailView(d *page.Detail) string {
	switch d.Status() {
	case page.Loading:
		return m.loading("Loading post...")
	case page.NotFound:
		return strings.Join([]string{
			styleHeading.Render("Post not found"),
			styleError.Render(d.Error()),
			styleMuted.Render("press h to go home"),
		}, "\n")
	case page.Failed:
		return strings.Join([]string{
			styleError.Render(d.Error()),
			styleMuted.Render("press r to try again"),
		}, "\n")
	}

	p := d.Post()
	meta := []string{byline(p)}
	if p.Edited() {
		meta = append(meta, "Updated "+formatDate(p.UpdatedAt))
	}
	lines := []string{
		styleTitle.Render(p.Title),
		styleMuted.Render(strings.Join(meta, " · ")),
		"",
		m.screen.body.View(),
	}
	if d.CanModify() {
		controls := lipgloss.JoinHorizontal(lipgloss.Top, button("e Edit", !d.Deleting()), " ", button("d Delete", !d.Deleting()))
		lines = append(lines, "", controls)
	}
	if d.Deleting() {
		lines = append(lines, m.loading("Deleting..."))
	}
	if msg := d.ActionError(); msg != "" {
		lines = append(lines, styleError.Render(msg)+styleMuted.Render("  (x to dismiss)"))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) editView(e *page.Edit) string {
	switch e.Status() {
	case page.Loading:
		return m.loading("Loading post...")
	case page.Failed:
		if msg := e.LoadError(); msg != "" {
			return styleError.Render(msg) + "\n" + styleMuted.Render("press r to try again")
		}
		return m.loading("Redirecting...")
	}
	return m.formView("Edit Post", "Update Post", e.CanSubmit(), e.HasChanges(), e)
}

type formState interface {
	Draft() draft.Draft
	FieldErrors() draft.FieldErrors
	GeneralError() string
	Saving() bool
	EditorIsReady() bool
	TitleLength() int
}

func (m appModel) formView(heading, action string, canSubmit, changed bool, f formState) string {
	fields := f.FieldErrors()
	counter := fmt.Sprintf("%d/%d", f.TitleLength(), draft.MaxTitleLength)
	if f.TitleLength() > draft.MaxTitleLength {
		counter = styleError.Render(counter)
	} else {
		counter = styleMuted.Render(counter)
	}

	lines := []string{styleHeading.Render(heading), ""}
	if msg := f.GeneralError(); msg != "" {
		lines = append(lines, styleError.Render(msg), "")
	}
	lines = append(lines, styleTitle.Render("Title")+"  "+counter, m.screen.inputs[0].View())
	lines = append(lines, fieldError(fields, draft.FieldTitle))

	lines = append(lines, styleTitle.Render("Content"))
	switch ed := m.screen.editor; {
	case ed != nil && f.EditorIsReady():
		lines = append(lines, ed.View())
	case ed != nil && ed.Err() != nil:
		// the field error below explains it
	default:
		lines = append(lines, m.loading("Loading editor..."))
	}
	lines = append(lines, fieldError(fields, draft.FieldContent))

	label := action
	if f.Saving() {
		label = "Saving..."
	}
	controls := lipgloss.JoinHorizontal(lipgloss.Top, button("ctrl+s "+label, canSubmit), " ", button("esc Cancel", !f.Saving()))
	lines = append(lines, controls)
	if changed {
		lines = append(lines, styleWarn.Render("You have unsaved changes"))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) mineView(c *page.Mine) string {
	lines := []string{styleHeading.Render("My Posts")}

	switch c.Status() {
	case page.Loading:
		return strings.Join(append(lines, m.loading("Loading your posts...")), "\n")
	case page.Failed:
		return strings.Join(append(lines, styleError.Render(c.Error()), styleMuted.Render("press r to try again")), "\n")
	}

	lines = append(lines, fmt.Sprintf("Welcome back, %s! You have %s.", c.Username(), plural(c.Count(), "post")), "")
	if msg := c.Error(); msg != "" {
		lines = append(lines, styleError.Render(msg)+styleMuted.Render("  (x to dismiss)"), "")
	}
	if c.Count() == 0 {
		lines = append(lines, "You haven't written any posts yet.", styleMuted.Render("press n to write your first post"))
		return strings.Join(lines, "\n")
	}

	for i, p := range c.Posts() {
		row := fmt.Sprintf("%s  %s", p.Title, styleMuted.Render(formatDate(p.CreatedAt)))
		if c.Deleting(p.ID) {
			row += "  " + m.loading("Deleting...")
		}
		if i == m.screen.cursor {
			row = styleSelected.Render("› ") + row
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (m appModel) loginView(l *page.Login) string {
	fields := l.FieldErrors()
	lines := []string{styleHeading.Render("Log in"), ""}
	if msg := l.GeneralError(); msg != "" {
		lines = append(lines, styleError.Render(msg), "")
	}
	lines = append(lines,
		"Email", m.screen.inputs[0].View(), fieldError(fields, page.FieldEmail),
		"Password", m.screen.inputs[1].View(), fieldError(fields, page.FieldPassword),
		m.submitButton("Log in", l.Busy()),
		styleMuted.Render("Don't have an account? ctrl+o to sign up"),
	)
	return strings.Join(lines, "\n")
}

func (m appModel) signupView(s *page.Signup) string {
	fields := s.FieldErrors()
	lines := []string{styleHeading.Render("Create an account"), ""}
	if msg := s.GeneralError(); msg != "" {
		lines = append(lines, styleError.Render(msg), "")
	}
	lines = append(lines,
		"Username", m.screen.inputs[0].View(), fieldError(fields, page.FieldUsername),
		"Email", m.screen.inputs[1].View(), fieldError(fields, page.FieldEmail),
		"Password", m.screen.inputs[2].View(), fieldError(fields, page.FieldPassword),
		m.submitButton("Sign up", s.Busy()),
		styleMuted.Render("Already have an account? ctrl+o to log in"),
	)
	return strings.Join(lines, "\n")
}

func (m appModel) profileView(p *page.Profile) string {
	return strings.Join([]string{
		styleHeading.Render("Profile"),
		"",
		"Username", m.screen.inputs[0].View(),
		"Email", m.screen.inputs[1].View(),
		"",
		m.submitButton("Save", p.Saving()),
	}, "\n")
}

func (m appModel) submitButton(label string, busy bool) string {
	if busy {
		return m.loading("Please wait...")
	}
	return button("ctrl+s "+label, true)
}

func (m appModel) confirmModal() string {
	var body, yes string
	switch c := m.ctrl.(type) {
	case *page.Detail:
		if !c.Confirming() {
			return ""
		}
		body, yes = c.ConfirmPrompt(), "y Delete"
	case *page.Mine:
		if _, ok := c.Confirming(); !ok {
			return ""
		}
		body, yes = c.ConfirmPrompt(), "y Delete"
	case draftForm:
		if !c.Confirming() {
			return ""
		}
		body, yes = confirmDiscardPrompt(c), "y Discard"
	default:
		return ""
	}

	width := clampWidth(m.width-10, 20, 60)
	content := strings.Join([]string{
		lipgloss.NewStyle().Width(width).Render(body),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, button(yes, true), " ", styleDisabled.Render("n Keep")),
	}, "\n")
	return styleModal.Render(content)
}

func confirmDiscardPrompt(f draftForm) string {
	if p, ok := f.(interface{ ConfirmPrompt() string }); ok {
		return p.ConfirmPrompt()
	}
	return ""
}

func (m appModel) bindings() []key.Binding {
	k := m.keys
	if m.confirmModal() != "" {
		return []key.Binding{k.Yes, k.No}
	}
	if m.screen.typing() {
		bs := []key.Binding{k.Next, k.Esc}
		switch m.ctrl.(type) {
		case *page.Home:
			return []key.Binding{k.Esc, k.Quit}
		case *page.Login, *page.Signup:
			bs = append(bs, k.Save, k.Switch)
		default:
			bs = append(bs, k.Save)
		}
		return append(bs, k.Quit)
	}

	switch c := m.ctrl.(type) {
	case *page.Home:
		return []key.Binding{k.Up, k.Down, k.Open, k.Search, k.Clear, k.QuitIdle}
	case *page.Detail:
		bs := []key.Binding{k.Up, k.Down, k.Back}
		if c.CanModify() {
			bs = append(bs, k.Edit, k.Delete)
		}
		return append(bs, k.QuitIdle)
	case *page.Mine:
		bs := []key.Binding{k.Up, k.Down, k.Open}
		if posts := c.Posts(); m.screen.cursor < len(posts) && c.CanModify(posts[m.screen.cursor]) {
			bs = append(bs, k.Edit, k.Delete)
		}
		return append(bs, k.QuitIdle)
	case draftForm:
		return []key.Binding{k.Next, k.Save, k.Esc, k.QuitIdle}
	}
	return []key.Binding{k.Back, k.Home, k.QuitIdle}
}

func fieldError(fields draft.FieldErrors, field string) string {
	if msg, ok := fields[field]; ok && msg != "" {
		return styleError.Render(msg)
	}
	return ""
}

func byline(p api.Post) string {
	return fmt.Sprintf("By %s · %s", p.Author, formatDate(p.CreatedAt))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("January 2, 2006")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
