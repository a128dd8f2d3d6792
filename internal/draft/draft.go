// Package draft holds the editable title/content pair of a post and the field
// rules both the client and the reference server apply to it.
package draft

import (
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest title accepted, counted in characters.
const MaxTitleLength = 255

// Field names used as keys in FieldErrors.
const (
	FieldTitle   = "title"
	FieldContent = "content"
)

const (
	msgTitleRequired = "Title is required"
	msgTitleTooLong  = "Title must be less than 255 characters"
	msgContentEmpty  = "Content is required"
)

// Draft is the working copy of a post being created or edited.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Validate checks the draft and returns nil when it is acceptable.
func (d Draft) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(d.Title) == "" {
		errs[FieldTitle] = msgTitleRequired
	} else if utf8.RuneCountInString(d.Title) > MaxTitleLength {
		errs[FieldTitle] = msgTitleTooLong
	}

	if strings.TrimSpace(d.Content) == "" {
		errs[FieldContent] = msgContentEmpty
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Equal reports whether both fields match exactly.
func (d Draft) Equal(other Draft) bool {
	return d.Title == other.Title && d.Content == other.Content
}

// IsEmpty reports whether nothing has been typed yet.
func (d Draft) IsEmpty() bool {
	return d.Title == "" && d.Content == ""
}

// TitleLength returns the character count shown next to the title field.
func (d Draft) TitleLength() int {
	return utf8.RuneCountInString(d.Title)
}

// Has reports whether a message exists for field.
func (e FieldErrors) Has(field string) bool {
	return e[field] != ""
}

// Clear drops the message for field, if any.
func (e FieldErrors) Clear(field string) {
	delete(e, field)
}

// Any reports whether at least one field carries a message.
func (e FieldErrors) Any() bool {
	for _, msg := range e {
		if msg != "" {
			return true
		}
	}
	return false
}
