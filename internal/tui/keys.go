package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Save     key.Binding
	Esc      key.Binding
	Back     key.Binding
	Search   key.Binding
	Clear    key.Binding
	Dismiss  key.Binding
	Retry    key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Yes      key.Binding
	No       key.Binding
	Switch   key.Binding
	Home     key.Binding
	New      key.Binding
	Mine     key.Binding
	Profile  key.Binding
	Login    key.Binding
	Signup   key.Binding
	Logout   key.Binding
	QuitIdle key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Esc:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave field")),
		Back:     key.NewBinding(key.WithKeys("b", "backspace"), key.WithHelp("b", "back")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear search")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Yes:      key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		No:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Switch:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "switch form")),
		Home:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new post")),
		Mine:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my posts")),
		Profile:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		Login:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		Signup:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sign up")),
		Logout:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "log out")),
		QuitIdle: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}
