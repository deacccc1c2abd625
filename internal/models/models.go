// Package models defines the domain types for studydesk.
package models

import "time"

// User is the identity resolved by the auth layer for each request.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Anonymous bool   `json:"anonymous"`
}

// Category is a user-defined subject used to tag notes.
// SortOrder positions it among the user's categories; ties are broken
// by CreatedAt.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is a study note backed by an uploaded file.
//
// CategoryID is the legacy single-valued category; the effective category
// set is derived from note_categories rows first and falls back to this
// field (see projection.EffectiveCategoryIDs).
type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	CategoryID string    `json:"category_id,omitempty"`
	IsFavorite bool      `json:"is_favorite"`
	FilePath   string    `json:"file_path,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NoteCategory is one row of the note↔category relation.
type NoteCategory struct {
	NoteID     string `json:"note_id"`
	CategoryID string `json:"category_id"`
}

// LinkGroup is a top-level bucket for study links.
type LinkGroup struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkSubgroup is a second-level bucket owned by exactly one group.
type LinkSubgroup struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// StudyLink is a saved URL, optionally grouped and attached to a note.
// When SubgroupID is set its parent group equals GroupID; the resolver
// guarantees this by construction.
type StudyLink struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	GroupID     string    `json:"group_id,omitempty"`
	SubgroupID  string    `json:"subgroup_id,omitempty"`
	NoteID      string    `json:"note_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Project is an opaque parent for notes; studydesk only tracks membership.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
