package postgres

import (
	"context"
	"fmt"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

const folderColumns = `
	SELECT f.folder_id, f.title, f.position,
	       (SELECT COUNT(*) FROM applications a WHERE a.folder_id = f.folder_id)
	FROM folders f`

func scanFolder(row interface{ Scan(...any) error }) (models.Folder, error) {
	var f models.Folder
	err := row.Scan(&f.ID, &f.Title, &f.Position, &f.Count)
	return f, err
}

func (s *Store) listFolders(ctx context.Context, userID, query string, page, perPage int) ([]models.Folder, int, error) {
	where := ` WHERE f.creator_id = $1`
	args := []any{userID}
	if query != "" {
		args = append(args, "%"+query+"%")
		where += fmt.Sprintf(` AND f.title ILIKE $%d`, len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM folders f`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, models.Offset(page, perPage))
	rows, err := s.pool.Query(ctx, folderColumns+where+fmt.Sprintf(`
		ORDER BY f.position, f.folder_id
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, 0, err
		}
		folders = append(folders, folder)
	}
	return folders, total, rows.Err()
}

func (s *Store) Dashboard(ctx context.Context, userID string, page, perPage int) (models.Page[models.FolderSummary], error) {
	folders, total, err := s.listFolders(ctx, userID, "", page, perPage)
	if err != nil {
		return models.Page[models.FolderSummary]{}, err
	}

	items := make([]models.FolderSummary, 0, len(folders)+1)
	recent, unfiled, err := s.recentIn(ctx, userID, nil)
	if err != nil {
		return models.Page[models.FolderSummary]{}, err
	}
	if unfiled > 0 {
		total++
		if page <= 1 {
			items = append(items, models.FolderSummary{RecentApplications: recent, ApplicationCount: unfiled})
		}
	}

	for _, folder := range folders {
		recent, count, err := s.recentIn(ctx, userID, &folder.ID)
		if err != nil {
			return models.Page[models.FolderSummary]{}, err
		}
		items = append(items, models.FolderSummary{Folder: &folder, RecentApplications: recent, ApplicationCount: count})
	}
	return models.Page[models.FolderSummary]{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// recentIn returns the newest applications of a folder (nil for unfiled)
// together with the folder's total.
func (s *Store) recentIn(ctx context.Context, userID string, folderID *int64) ([]models.Application, int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM applications
		WHERE creator_id = $1 AND folder_id IS NOT DISTINCT FROM $2
	`, userID, folderID).Scan(&count); err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return []models.Application{}, 0, nil
	}
	apps, err := s.queryApplications(ctx, s.pool, applicationColumns+`
		WHERE a.creator_id = $1 AND a.folder_id IS NOT DISTINCT FROM $2
		ORDER BY a.application_id DESC
		LIMIT $3`, userID, folderID, store.RecentLimit)
	if err != nil {
		return nil, 0, err
	}
	return apps, count, nil
}

func (s *Store) SearchFolders(ctx context.Context, userID string, q models.ListQuery) (models.Page[models.Folder], error) {
	folders, total, err := s.listFolders(ctx, userID, q.Query, q.Page, q.PerPage)
	if err != nil {
		return models.Page[models.Folder]{}, err
	}
	return models.Page[models.Folder]{Items: folders, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

func (s *Store) GetFolder(ctx context.Context, userID string, id int64) (models.Folder, error) {
	if err := s.folderOwner(ctx, s.pool, userID, id); err != nil {
		return models.Folder{}, err
	}
	return scanFolder(s.pool.QueryRow(ctx, folderColumns+` WHERE f.folder_id = $1`, id))
}

func (s *Store) CreateFolder(ctx context.Context, userID string, in models.FolderCreate) (models.Folder, error) {
	folder := models.Folder{Title: in.Title, Position: in.Position}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO folders (creator_id, title, position)
		VALUES ($1, $2, $3)
		RETURNING folder_id
	`, userID, in.Title, in.Position).Scan(&folder.ID)
	if err != nil {
		return models.Folder{}, err
	}
	return folder, nil
}

func (s *Store) UpdateFolder(ctx context.Context, userID string, id int64, in models.FolderUpdate) (models.Folder, error) {
	if err := s.folderOwner(ctx, s.pool, userID, id); err != nil {
		return models.Folder{}, err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE folders
		SET title = COALESCE($2, title), position = COALESCE($3, position)
		WHERE folder_id = $1
	`, id, in.Title, in.Position)
	if err != nil {
		return models.Folder{}, err
	}
	return scanFolder(s.pool.QueryRow(ctx, folderColumns+` WHERE f.folder_id = $1`, id))
}

// DeleteFolder relies on ON DELETE SET NULL to detach the folder's applications.
func (s *Store) DeleteFolder(ctx context.Context, userID string, id int64) error {
	if err := s.folderOwner(ctx, s.pool, userID, id); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM folders WHERE folder_id = $1`, id)
	return err
}
