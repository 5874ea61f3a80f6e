package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Page is the envelope of every paginated collection.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Offset returns the number of rows to skip for page/perPage.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListQuery carries pagination, sorting and filtering of application lists.
type ListQuery struct {
	Page       int    `json:"page" validate:"gte=1"`
	PerPage    int    `json:"per_page" validate:"gte=1,lte=100"`
	SortBy     string `json:"sort_by" validate:"omitempty,oneof=title company created_at updated_at closing_date position"`
	SortOrder  string `json:"sort_order" validate:"omitempty,oneof=asc desc"`
	Query      string `json:"query" validate:"max=255"`
	FolderID   *int64 `json:"folder_id" validate:"omitempty,gt=0"`
	StatusID   *int64 `json:"status_id" validate:"omitempty,gt=0"`
	PriorityID *int64 `json:"priority_id" validate:"omitempty,gt=0"`
	Starred    *bool  `json:"starred"`
}

// DefaultListQuery mirrors the dashboard table defaults.
func DefaultListQuery() ListQuery {
	return ListQuery{Page: 1, PerPage: 25, SortBy: "updated_at", SortOrder: SortDesc}
}

// Values encodes q as query parameters. FolderID is not included because it
// is part of the path for folder scoped listings.
func (q ListQuery) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("per_page", strconv.Itoa(q.PerPage))
	if q.SortBy != "" {
		values.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sort_order", q.SortOrder)
	}
	if q.Query != "" {
		values.Set("query", q.Query)
	}
	if q.StatusID != nil {
		values.Set("status_id", strconv.FormatInt(*q.StatusID, 10))
	}
	if q.PriorityID != nil {
		values.Set("priority_id", strconv.FormatInt(*q.PriorityID, 10))
	}
	if q.Starred != nil {
		values.Set("starred", strconv.FormatBool(*q.Starred))
	}
	return values
}

// ParseListQuery reads a ListQuery from request parameters, falling back to
// page 1, perPage, updated_at desc.
func ParseListQuery(values url.Values, perPage int) (ListQuery, error) {
	q := ListQuery{Page: 1, PerPage: perPage, SortBy: "updated_at", SortOrder: SortDesc}
	var err error
	if q.Page, err = intParam(values, "page", q.Page); err != nil {
		return q, err
	}
	if q.PerPage, err = intParam(values, "per_page", q.PerPage); err != nil {
		return q, err
	}
	if raw := strings.TrimSpace(values.Get("sort_by")); raw != "" {
		q.SortBy = raw
	}
	if raw := strings.TrimSpace(values.Get("sort_order")); raw != "" {
		q.SortOrder = strings.ToLower(raw)
	}
	q.Query = strings.TrimSpace(values.Get("query"))
	if q.StatusID, err = idParam(values, "status_id"); err != nil {
		return q, err
	}
	if q.PriorityID, err = idParam(values, "priority_id"); err != nil {
		return q, err
	}
	if raw := values.Get("starred"); raw != "" {
		starred, err := strconv.ParseBool(raw)
		if err != nil {
			return q, paramError("starred", "Input should be a valid boolean")
		}
		q.Starred = &starred
	}
	return q, Validate(q)
}

func intParam(values url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, paramError(key, "Input should be a valid integer")
	}
	return value, nil
}

func idParam(values url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, paramError(key, "Input should be a valid integer")
	}
	return &value, nil
}

func paramError(key, msg string) error {
	return &ValidationError{Issues: []ValidationIssue{{
		Loc:  []string{"query", key},
		Msg:  msg,
		Type: "parsing",
	}}}
}

func (q ListQuery) String() string {
	return fmt.Sprintf("page=%d per_page=%d sort=%s:%s", q.Page, q.PerPage, q.SortBy, q.SortOrder)
}

// SearchResult is the GET /search/ payload.
type SearchResult struct {
	Folders      Page[Folder]      `json:"folders"`
	Applications Page[Application] `json:"applications"`
}
