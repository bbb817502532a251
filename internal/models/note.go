package models

import (
	"sort"
	"strings"
	"time"
)

// Note is a freeform note in the owner's "notes" subcollection.
type Note struct {
	ID        string    `bson:"-" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Tags      []string  `bson:"tags" json:"tags"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// NoteInput is the body of a note creation request.
type NoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// NoteUpdate changes only the fields that are set.
type NoteUpdate struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// Apply returns a copy of n with the update applied.
func (u NoteUpdate) Apply(n Note) Note {
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.Tags != nil {
		n.Tags = CleanTags(*u.Tags)
	}
	return n
}

// Empty reports whether the update changes nothing.
func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Tags == nil
}

// ParseTags splits a comma separated tag string.
func ParseTags(s string) []string {
	return CleanTags(strings.Split(s, ","))
}

// CleanTags trims tags and drops empty ones, keeping order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SortNotes orders notes newest first.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}

// FilterNotes keeps notes whose title, content or any tag contains term,
// ignoring case. An empty term keeps everything.
func FilterNotes(notes []Note, term string) []Note {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return notes
	}

	var out []Note
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), term) ||
			strings.Contains(strings.ToLower(n.Content), term) ||
			hasTagContaining(n.Tags, term) {
			out = append(out, n)
		}
	}
	return out
}

func hasTagContaining(tags []string, term string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}
