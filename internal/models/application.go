package models

import (
	"encoding/json"
	"time"
)

// Application is a single tracked job application as returned by the API.
type Application struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Role        string          `json:"role"`
	Salary      string          `json:"salary"`
	ClosingDate *Date           `json:"closing_date"`
	Link        string          `json:"link"`
	StatusID    *int64          `json:"status_id"`
	PriorityID  *int64          `json:"priority_id"`
	Status      *SelectOption   `json:"status"`
	Priority    *SelectOption   `json:"priority"`
	Tags        []SelectOption  `json:"tags"`
	FolderID    *int64          `json:"folder_id"`
	Starred     bool            `json:"starred"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Notes       string          `json:"notes"`
	Timeline    json.RawMessage `json:"timeline,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ApplicationCreate struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Company     string          `json:"company" validate:"required,max=255"`
	Role        string          `json:"role,omitempty" validate:"max=255"`
	Salary      string          `json:"salary,omitempty" validate:"max=255"`
	ClosingDate *Date           `json:"closing_date,omitempty"`
	Link        string          `json:"link,omitempty" validate:"omitempty,url"`
	StatusID    *int64          `json:"status_id,omitempty" validate:"omitempty,gt=0"`
	PriorityID  *int64          `json:"priority_id,omitempty" validate:"omitempty,gt=0"`
	FolderID    *int64          `json:"folder_id,omitempty" validate:"omitempty,gt=0"`
	TagIDs      []int64         `json:"tag_ids,omitempty" validate:"dive,gt=0"`
	Starred     bool            `json:"starred"`
	Position    int             `json:"position" validate:"gte=0"`
	Description string          `json:"description,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Timeline    json.RawMessage `json:"timeline,omitempty"`
}

// ApplicationUpdate is a partial update; nil fields are left untouched.
// The Nullable fields can also be cleared with an explicit null.
type ApplicationUpdate struct {
	Title       *string         `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Company     *string         `json:"company,omitempty" validate:"omitempty,min=1,max=255"`
	Role        *string         `json:"role,omitempty" validate:"omitempty,max=255"`
	Salary      *string         `json:"salary,omitempty" validate:"omitempty,max=255"`
	ClosingDate Nullable[Date]  `json:"closing_date,omitzero"`
	Link        *string         `json:"link,omitempty" validate:"omitempty,url"`
	StatusID    Nullable[int64] `json:"status_id,omitzero" validate:"omitempty,gt=0"`
	PriorityID  Nullable[int64] `json:"priority_id,omitzero" validate:"omitempty,gt=0"`
	FolderID    Nullable[int64] `json:"folder_id,omitzero" validate:"omitempty,gt=0"`
	TagIDs      *[]int64        `json:"tag_ids,omitempty" validate:"omitempty,dive,gt=0"`
	Starred     *bool           `json:"starred,omitempty"`
	Position    *int            `json:"position,omitempty" validate:"omitempty,gte=0"`
	Description *string         `json:"description,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	Timeline    json.RawMessage `json:"timeline,omitempty"`
}

// Apply copies the set fields of u onto app. Tags and the resolved
// status/priority objects are left to the caller.
func (u ApplicationUpdate) Apply(app *Application) {
	if u.Title != nil {
		app.Title = *u.Title
	}
	if u.Company != nil {
		app.Company = *u.Company
	}
	if u.Role != nil {
		app.Role = *u.Role
	}
	if u.Salary != nil {
		app.Salary = *u.Salary
	}
	u.ClosingDate.ApplyTo(&app.ClosingDate)
	if u.Link != nil {
		app.Link = *u.Link
	}
	u.StatusID.ApplyTo(&app.StatusID)
	u.PriorityID.ApplyTo(&app.PriorityID)
	u.FolderID.ApplyTo(&app.FolderID)
	if u.Starred != nil {
		app.Starred = *u.Starred
	}
	if u.Position != nil {
		app.Position = *u.Position
	}
	if u.Description != nil {
		app.Description = *u.Description
	}
	if u.Notes != nil {
		app.Notes = *u.Notes
	}
	if len(u.Timeline) > 0 {
		app.Timeline = append(json.RawMessage(nil), u.Timeline...)
	}
}
