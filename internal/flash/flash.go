// Package flash carries one-time notices across navigation and keeps track of
// the notice a page is currently showing.
package flash

import "time"

// DisplayDuration is how long a shown notice stays up before it clears itself.
const DisplayDuration = 5 * time.Second

// Kind tells the renderer how to style a notice.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// Notice is a single message attached to a navigation.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func NewSuccess(msg string) *Notice { return &Notice{Kind: Success, Message: msg} }

func NewError(msg string) *Notice { return &Notice{Kind: Error, Message: msg} }

func NewInfo(msg string) *Notice { return &Notice{Kind: Info, Message: msg} }

// Queue holds at most one pending notice per destination path. Take removes
// what it returns, so a notice is delivered at most once. Like the pages that
// use it, a Queue belongs to the event loop and is not safe for concurrent use.
type Queue struct {
	pending map[string]Notice
}

func NewQueue() *Queue {
	return &Queue{pending: make(map[string]Notice)}
}

// Put stores n for dest, replacing anything still waiting there.
func (q *Queue) Put(dest string, n Notice) {
	q.pending[dest] = n
}

// Take returns and removes the notice waiting for dest.
func (q *Queue) Take(dest string) (Notice, bool) {
	n, ok := q.pending[dest]
	if ok {
		delete(q.pending, dest)
	}
	return n, ok
}

// Len reports how many destinations have a pending notice.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Slot is the notice a page is displaying. Every Show bumps the sequence so a
// timer started for an older notice cannot clear a newer one.
type Slot struct {
	current *Notice
	seq     int
}

// Show displays n and returns the sequence the expiry timer must present.
func (s *Slot) Show(n Notice) int {
	s.seq++
	s.current = &n
	return s.seq
}

// Expire clears the notice if seq still identifies it.
func (s *Slot) Expire(seq int) bool {
	if s.current == nil || seq != s.seq {
		return false
	}
	s.current = nil
	return true
}

// Dismiss clears the notice and invalidates any running timer.
func (s *Slot) Dismiss() {
	s.seq++
	s.current = nil
}

// Current returns the displayed notice, if any.
func (s *Slot) Current() (Notice, bool) {
	if s.current == nil {
		return Notice{}, false
	}
	return *s.current, true
}
