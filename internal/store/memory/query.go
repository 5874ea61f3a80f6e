package memory

import (
	"slices"
	"sort"
	"strings"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

// The helpers below expect s.mu to be held by the caller.

func (s *Store) ownedFolder(userID string, id int64) (*folderRow, error) {
	row, ok := s.folders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if row.owner != userID {
		return nil, store.ErrForbidden
	}
	return row, nil
}

func (s *Store) ownedApplication(userID string, id int64) (*applicationRow, error) {
	row, ok := s.applications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if row.owner != userID {
		return nil, store.ErrForbidden
	}
	return row, nil
}

func (s *Store) ownedOption(userID string, kind models.SelectKind, id int64) (*selectRow, error) {
	row, ok := s.selects[kind][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if row.owner != userID {
		return nil, store.ErrForbidden
	}
	return row, nil
}

// ownedFolders returns the user's folders ordered by position then id,
// optionally filtered by a case-insensitive title match.
func (s *Store) ownedFolders(userID, query string) []models.Folder {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []models.Folder
	for _, row := range s.folders {
		if row.owner != userID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(row.folder.Title), query) {
			continue
		}
		out = append(out, s.withCount(row.folder))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) withCount(folder models.Folder) models.Folder {
	folder.Count = 0
	for _, row := range s.applications {
		if row.app.FolderID != nil && *row.app.FolderID == folder.ID {
			folder.Count++
		}
	}
	return folder
}

// recentIn returns the newest applications of a folder (nil for unfiled) and
// the folder's total.
func (s *Store) recentIn(userID string, folderID *int64) ([]models.Application, int) {
	var rows []*applicationRow
	for _, row := range s.applications {
		if row.owner != userID {
			continue
		}
		if !sameFolder(row.app.FolderID, folderID) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].app.ID > rows[j].app.ID })

	recent := make([]models.Application, 0, store.RecentLimit)
	for i, row := range rows {
		if i == store.RecentLimit {
			break
		}
		recent = append(recent, s.resolve(row))
	}
	return recent, len(rows)
}

func sameFolder(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Store) ownedOptions(userID string, kind models.SelectKind) []models.SelectOption {
	out := []models.SelectOption{}
	for _, row := range s.selects[kind] {
		if row.owner == userID {
			out = append(out, row.option)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) titleTaken(userID string, kind models.SelectKind, title string, except int64) bool {
	for id, row := range s.selects[kind] {
		if id != except && row.owner == userID && strings.EqualFold(row.option.Title, title) {
			return true
		}
	}
	return false
}

func (s *Store) checkReferences(userID string, folderID, statusID, priorityID *int64, tagIDs []int64) error {
	if folderID != nil {
		if _, err := s.ownedFolder(userID, *folderID); err != nil {
			return &store.ReferenceError{Field: "folder_id", ID: *folderID}
		}
	}
	if statusID != nil {
		if _, err := s.ownedOption(userID, models.KindStatuses, *statusID); err != nil {
			return &store.ReferenceError{Field: "status_id", ID: *statusID}
		}
	}
	if priorityID != nil {
		if _, err := s.ownedOption(userID, models.KindPriorities, *priorityID); err != nil {
			return &store.ReferenceError{Field: "priority_id", ID: *priorityID}
		}
	}
	for _, id := range tagIDs {
		if _, err := s.ownedOption(userID, models.KindTags, id); err != nil {
			return &store.ReferenceError{Field: "tag_ids", ID: id}
		}
	}
	return nil
}

// resolve expands the option references of an application row.
func (s *Store) resolve(row *applicationRow) models.Application {
	app := row.app
	app.Status = nil
	app.Priority = nil
	if app.StatusID != nil {
		if opt, ok := s.selects[models.KindStatuses][*app.StatusID]; ok {
			option := opt.option
			app.Status = &option
		}
	}
	if app.PriorityID != nil {
		if opt, ok := s.selects[models.KindPriorities][*app.PriorityID]; ok {
			option := opt.option
			app.Priority = &option
		}
	}
	app.Tags = make([]models.SelectOption, 0, len(row.tagIDs))
	for _, id := range row.tagIDs {
		if opt, ok := s.selects[models.KindTags][id]; ok {
			app.Tags = append(app.Tags, opt.option)
		}
	}
	return app
}

func matches(app models.Application, q models.ListQuery) bool {
	if q.FolderID != nil && !sameFolder(app.FolderID, q.FolderID) {
		return false
	}
	if q.StatusID != nil && !sameFolder(app.StatusID, q.StatusID) {
		return false
	}
	if q.PriorityID != nil && !sameFolder(app.PriorityID, q.PriorityID) {
		return false
	}
	if q.Starred != nil && app.Starred != *q.Starred {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	if needle == "" {
		return true
	}
	for _, field := range []string{app.Title, app.Company, app.Description, app.Role} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// sortApplications orders rows like the SQL store: by the sort column, then
// by id in the same direction. Missing closing dates sort as the largest value.
func sortApplications(rows []*applicationRow, sortBy, order string) {
	desc := order != models.SortAsc
	sort.Slice(rows, func(i, j int) bool {
		c := compareApplications(rows[i].app, rows[j].app, sortBy)
		if c == 0 {
			c = compareInt64(rows[i].app.ID, rows[j].app.ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareApplications(a, b models.Application, sortBy string) int {
	switch sortBy {
	case "title":
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case "company":
		return strings.Compare(strings.ToLower(a.Company), strings.ToLower(b.Company))
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "closing_date":
		switch {
		case a.ClosingDate == nil && b.ClosingDate == nil:
			return 0
		case a.ClosingDate == nil:
			return 1
		case b.ClosingDate == nil:
			return -1
		}
		return a.ClosingDate.Compare(b.ClosingDate.Time)
	case "position":
		return compareInt64(int64(a.Position), int64(b.Position))
	default:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func paginate[T any](items []T, page, perPage int) []T {
	if perPage <= 0 {
		return items
	}
	start := models.Offset(page, perPage)
	if start >= len(items) {
		return []T{}
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}

func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func removeID(ids []int64, id int64) []int64 {
	return slices.DeleteFunc(ids, func(v int64) bool { return v == id })
}
