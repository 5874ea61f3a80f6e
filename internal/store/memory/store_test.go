package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

func newUser(t *testing.T, s *Store, email string) string {
	t.Helper()
	user, err := s.CreateUser(context.Background(), email, "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := New()
	newUser(t, s, "a@b.co")
	if _, err := s.CreateUser(context.Background(), "A@B.co", "hash"); !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := newUser(t, s, "a@b.co")

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	session, err := s.CreateSession(ctx, userID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, user, err := s.GetSession(ctx, session.Token); err != nil || user.ID != userID {
		t.Fatalf("expected session for %s, got %v %v", userID, user.ID, err)
	}

	now = now.Add(2 * time.Hour)
	if _, _, err := s.GetSession(ctx, session.Token); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestFolderOwnership(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := newUser(t, s, "alice@example.com")
	bob := newUser(t, s, "bob@example.com")

	folder, err := s.CreateFolder(ctx, alice, models.FolderCreate{Title: "Backend"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}

	if _, err := s.GetFolder(ctx, bob, folder.ID); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := s.GetFolder(ctx, alice, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteFolder(ctx, bob, folder.ID); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
}

func TestDeleteFolderDetachesApplications(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := newUser(t, s, "a@b.co")

	folder, _ := s.CreateFolder(ctx, userID, models.FolderCreate{Title: "Backend"})
	app, err := s.CreateApplication(ctx, userID, models.ApplicationCreate{Title: "SRE", Company: "Acme", FolderID: int64Ptr(folder.ID)})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if got, _ := s.GetFolder(ctx, userID, folder.ID); got.Count != 1 {
		t.Fatalf("expected count 1, got %d", got.Count)
	}

	if err := s.DeleteFolder(ctx, userID, folder.ID); err != nil {
		t.Fatalf("delete folder: %v", err)
	}
	got, err := s.GetApplication(ctx, userID, app.ID)
	if err != nil {
		t.Fatalf("application should survive folder delete: %v", err)
	}
	if got.FolderID != nil {
		t.Fatalf("expected folder_id to be cleared, got %d", *got.FolderID)
	}
}

func TestDashboardUnfiledFirstAndRecentLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := newUser(t, s, "a@b.co")

	folder, _ := s.CreateFolder(ctx, userID, models.FolderCreate{Title: "Backend"})
	for i := 0; i < 7; i++ {
		if _, err := s.CreateApplication(ctx, userID, models.ApplicationCreate{Title: "filed", Company: "Acme", FolderID: int64Ptr(folder.ID)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := s.CreateApplication(ctx, userID, models.ApplicationCreate{Title: "loose", Company: "Acme"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	page, err := s.Dashboard(ctx, userID, 1, 10)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("expected 2 rows, got total=%d items=%d", page.Total, len(page.Items))
	}
	if page.Items[0].Folder != nil || page.Items[0].ApplicationCount != 1 {
		t.Fatalf("expected unfiled bucket first, got %+v", page.Items[0])
	}
	filed := page.Items[1]
	if filed.ApplicationCount != 7 || len(filed.RecentApplications) != store.RecentLimit {
		t.Fatalf("expected 7 apps with %d recent, got %d/%d", store.RecentLimit, filed.ApplicationCount, len(filed.RecentApplications))
	}
	if filed.RecentApplications[0].ID != 7 {
		t.Fatalf("expected newest first, got id %d", filed.RecentApplications[0].ID)
	}
}

func TestDashboardWithoutUnfiled(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := newUser(t, s, "a@b.co")
	if _, err := s.CreateFolder(ctx, userID, models.FolderCreate{Title: "Empty"}); err != nil {
		t.Fatalf("create folder: %v", err)
	}

	page, _ := s.Dashboard(ctx, userID, 1, 10)
	if len(page.Items) != 1 || page.Items[0].Folder == nil {
		t.Fatalf("expected only the folder row, got %+v", page.Items)
	}
}

func TestListApplicationsFilterSortPaginate(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := newUser(t, s, "a@b.co")
	other := newUser(t, s, "other@b.co")

	for _, title := range []string{"Charlie", "alpha", "Bravo"} {
		if _, err := s.CreateApplication(ctx, userID, models.ApplicationCreate{Title: title, Company: "Acme", Starred: title != "Bravo"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := s.CreateApplication(ctx, other, models.ApplicationCreate{Title: "Delta", Company: "Acme"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	q := models.ListQuery{Page: 1, PerPage: 2, SortBy: "title", SortOrder: models.SortAsc}
	page, err := s.ListApplications(ctx, userID, q)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 {
		t.Fatalf("expected total 3 with 2 items, got %d/%d", page.Total, len(page.Items))
	}
	if page.Items[0].Title != "alpha" || page.Items[1].Title != "Bravo" {
		t.Fatalf("unexpected order: %s, %s", page.Items[0].Title, page.Items[1].Title)
	}

	q.Page = 2
	page, _ = s.ListApplications(ctx, userID, q)
	if len(page.Items) != 1 || page.Items[0].Title != "Charlie" {
		t.Fatalf("unexpected second page: %+v", page.Items)
	}

	starred := true
	q = models.ListQuery{Page: 1, PerPage: 10, SortBy: "title", SortOrder: models.SortDesc, Starred: &starred, Query: "a"}
	page, _ = s.ListApplications(ctx, userID, q)
	if page.Total != 2 || page.Items[0].Title != "Charlie" {
		t.Fatalf("unexpected filtered page: %+v", page)
	}
}

func TestApplicationReferencesAndSelectDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := newUser(t, s, "a@b.co")
	other := newUser(t, s, "other@b.co")

	status, err := s.CreateSelect(ctx, userID, models.KindStatuses, models.SelectCreate{Title: "Applied"})
	if err != nil {
		t.Fatalf("create status: %v", err)
	}
	tag, _ := s.CreateSelect(ctx, userID, models.KindTags, models.SelectCreate{Title: "remote"})
	foreign, _ := s.CreateSelect(ctx, other, models.KindTags, models.SelectCreate{Title: "remote"})

	_, err = s.CreateApplication(ctx, userID, models.ApplicationCreate{Title: "SRE", Company: "Acme", TagIDs: []int64{foreign.ID}})
	var refErr *store.ReferenceError
	if !errors.As(err, &refErr) || refErr.Field != "tag_ids" {
		t.Fatalf("expected tag_ids reference error, got %v", err)
	}

	app, err := s.CreateApplication(ctx, userID, models.ApplicationCreate{Title: "SRE", Company: "Acme", StatusID: int64Ptr(status.ID), TagIDs: []int64{tag.ID, tag.ID}})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if app.Status == nil || app.Status.Title != "Applied" || len(app.Tags) != 1 {
		t.Fatalf("references not resolved: %+v", app)
	}

	if err := s.DeleteSelect(ctx, userID, models.KindStatuses, status.ID); err != nil {
		t.Fatalf("delete status: %v", err)
	}
	if err := s.DeleteSelect(ctx, userID, models.KindTags, tag.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	got, err := s.GetApplication(ctx, userID, app.ID)
	if err != nil {
		t.Fatalf("application should survive option delete: %v", err)
	}
	if got.StatusID != nil || got.Status != nil || len(got.Tags) != 0 {
		t.Fatalf("expected references cleared, got %+v", got)
	}
}

func TestSelectTitlesUniquePerUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := newUser(t, s, "a@b.co")

	first, _ := s.CreateSelect(ctx, userID, models.KindPriorities, models.SelectCreate{Title: "High"})
	if _, err := s.CreateSelect(ctx, userID, models.KindPriorities, models.SelectCreate{Title: "high"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	low, _ := s.CreateSelect(ctx, userID, models.KindPriorities, models.SelectCreate{Title: "Low"})
	title := "High"
	if _, err := s.UpdateSelect(ctx, userID, models.KindPriorities, low.ID, models.SelectUpdate{Title: &title}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict on rename, got %v", err)
	}
	if _, err := s.UpdateSelect(ctx, userID, models.KindPriorities, first.ID, models.SelectUpdate{Title: &title}); err != nil {
		t.Fatalf("renaming to its own title should pass: %v", err)
	}

	selects, _ := s.ListSelects(ctx, userID)
	if len(selects.Priorities) != 2 || selects.Tags == nil {
		t.Fatalf("unexpected selects: %+v", selects)
	}
}
