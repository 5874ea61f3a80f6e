package models

import (
	"errors"
	"net/url"
	"testing"
)

func TestValidateFolderCreate(t *testing.T) {
	err := Validate(FolderCreate{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(verr.Issues))
	}
	issue := verr.Issues[0]
	if issue.Loc[1] != "title" || issue.Type != "required" {
		t.Fatalf("unexpected issue: %+v", issue)
	}
	if err := Validate(FolderCreate{Title: "Backend roles"}); err != nil {
		t.Fatalf("expected valid folder, got %v", err)
	}
}

func TestValidateApplicationCreate(t *testing.T) {
	cases := []struct {
		name  string
		input ApplicationCreate
		valid bool
	}{
		{"minimal", ApplicationCreate{Title: "SWE", Company: "Acme"}, true},
		{"missing company", ApplicationCreate{Title: "SWE"}, false},
		{"bad link", ApplicationCreate{Title: "SWE", Company: "Acme", Link: "not a url"}, false},
		{"good link", ApplicationCreate{Title: "SWE", Company: "Acme", Link: "https://acme.test/jobs/1"}, true},
		{"bad tag id", ApplicationCreate{Title: "SWE", Company: "Acme", TagIDs: []int64{1, 0}}, false},
		{"negative position", ApplicationCreate{Title: "SWE", Company: "Acme", Position: -1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.input)
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateSkipsNonStructs(t *testing.T) {
	if err := Validate(nil); err != nil {
		t.Fatalf("nil: %v", err)
	}
	if err := Validate(map[string]string{"title": ""}); err != nil {
		t.Fatalf("map: %v", err)
	}
	var create *FolderCreate
	if err := Validate(create); err != nil {
		t.Fatalf("nil pointer: %v", err)
	}
}

func TestValidationErrorJoinsMessages(t *testing.T) {
	err := &ValidationError{Issues: []ValidationIssue{{Msg: "a"}, {Msg: "b"}}}
	if err.Error() != "a, b" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestListQueryRoundTrip(t *testing.T) {
	starred := true
	q := DefaultListQuery()
	q.Page = 3
	q.Starred = &starred

	got, err := ParseListQuery(q.Values(), 10)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Page != 3 || got.PerPage != 25 || got.SortBy != "updated_at" || got.SortOrder != SortDesc {
		t.Fatalf("unexpected query %s", got)
	}
	if got.Starred == nil || !*got.Starred {
		t.Fatalf("expected starred filter")
	}
	if q.Values().Encode() != "page=3&per_page=25&sort_by=updated_at&sort_order=desc&starred=true" {
		t.Fatalf("unexpected encoding %s", q.Values().Encode())
	}
}

func TestParseListQueryRejectsBadInput(t *testing.T) {
	cases := map[string]url.Values{
		"page not int":  {"page": {"x"}},
		"page zero":     {"page": {"0"}},
		"per_page huge": {"per_page": {"1000"}},
		"bad sort":      {"sort_by": {"password"}},
		"bad order":     {"sort_order": {"sideways"}},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseListQuery(values, 10); err == nil {
				t.Fatalf("expected error for %v", values)
			}
		})
	}
}

func TestApplicationUpdateApply(t *testing.T) {
	app := Application{Title: "Old", Company: "Acme", Starred: false}
	title := "New"
	starred := true
	ApplicationUpdate{Title: &title, Starred: &starred}.Apply(&app)
	if app.Title != "New" || !app.Starred || app.Company != "Acme" {
		t.Fatalf("unexpected application %+v", app)
	}
}
