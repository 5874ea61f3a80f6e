package models

// SelectOption is a reusable labeled value used as a tag, status or priority.
type SelectOption struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

type SelectKind string

const (
	KindTags       SelectKind = "tags"
	KindStatuses   SelectKind = "statuses"
	KindPriorities SelectKind = "priorities"
)

var SelectKinds = []SelectKind{KindTags, KindStatuses, KindPriorities}

func ParseSelectKind(raw string) (SelectKind, bool) {
	for _, kind := range SelectKinds {
		if string(kind) == raw {
			return kind, true
		}
	}
	return "", false
}

// Selects is the GET /selects/ payload, options grouped by kind.
type Selects struct {
	Tags       []SelectOption `json:"tags"`
	Statuses   []SelectOption `json:"statuses"`
	Priorities []SelectOption `json:"priorities"`
}

func (s Selects) Of(kind SelectKind) []SelectOption {
	switch kind {
	case KindTags:
		return s.Tags
	case KindStatuses:
		return s.Statuses
	case KindPriorities:
		return s.Priorities
	}
	return nil
}

type SelectCreate struct {
	Title string `json:"title" validate:"required,max=100"`
	Color string `json:"color,omitempty" validate:"max=32"`
}

type SelectUpdate struct {
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,max=32"`
}
