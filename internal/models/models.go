// Package models defines the flat records shared by the store and the
// engine packages.
package models

import "time"

// Section is a time bucket a top-level task is presented under.
type Section string

const (
	SectionToday     Section = "today"
	SectionThisWeek  Section = "this_week"
	SectionThisMonth Section = "this_month"
)

// Valid reports whether s is one of the known sections.
func (s Section) Valid() bool {
	switch s {
	case SectionToday, SectionThisWeek, SectionThisMonth:
		return true
	}

	return false
}

// Filter restricts which top-level tasks are presented.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterParentOnly Filter = "parent-only"
	FilterStandalone Filter = "standalone-only"
)

// ViewMode selects between the section grouping and the flat parent list.
type ViewMode string

const (
	ViewTimeBased   ViewMode = "time-based"
	ViewParentBased ViewMode = "parent-based"
)

// Task is a task record as stored by the persistence gateway. A task with
// a non-empty ParentID is a subtask; hierarchy depth is exactly two.
type Task struct {
	CreatedAt       time.Time `json:"created_at"`
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	ParentID        string    `json:"parent_id,omitempty"`
	SectionOverride Section   `json:"section_override,omitempty"`
	Position        int       `json:"position"`
	Completed       bool      `json:"completed"`
}

// TopLevel reports whether the task has no parent.
func (t Task) TopLevel() bool {
	return t.ParentID == ""
}

// TimerState is the persisted snapshot of the focus-timer session. The
// zero value means no session (idle). While running, remaining time is
// always derived from EndAt; RemainingSeconds is authoritative only while
// paused.
type TimerState struct {
	EndAt            time.Time `json:"end_at"`
	SessionID        string    `json:"session_id"`
	TaskID           string    `json:"task_id"`
	TaskText         string    `json:"task_text,omitempty"`
	DurationSeconds  int       `json:"duration_seconds"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Running          bool      `json:"running"`
	Completed        bool      `json:"completed"`
}

// Live reports whether a session exists at all.
func (s TimerState) Live() bool {
	return s.TaskID != ""
}
