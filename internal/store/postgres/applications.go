package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

const applicationColumns = `
	SELECT a.application_id, a.title, a.company, a.role, a.salary, a.closing_date, a.link,
	       a.status_id, a.priority_id, a.folder_id, a.starred, a.position,
	       a.description, a.notes, a.timeline, a.created_at, a.updated_at,
	       s.option_id, s.title, s.color, p.option_id, p.title, p.color
	FROM applications a
	LEFT JOIN select_options s ON s.option_id = a.status_id
	LEFT JOIN select_options p ON p.option_id = a.priority_id`

// sortColumns whitelists the sortable columns; anything else falls back to
// updated_at.
var sortColumns = map[string]string{
	"title":        "lower(a.title)",
	"company":      "lower(a.company)",
	"created_at":   "a.created_at",
	"updated_at":   "a.updated_at",
	"closing_date": "a.closing_date",
	"position":     "a.position",
}

func scanOption(id *int64, title, color *string) *models.SelectOption {
	if id == nil {
		return nil
	}
	opt := &models.SelectOption{ID: *id}
	if title != nil {
		opt.Title = *title
	}
	if color != nil {
		opt.Color = *color
	}
	return opt
}

func (s *Store) queryApplications(ctx context.Context, q querier, sql string, args ...any) ([]models.Application, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		var app models.Application
		var timeline []byte
		var closingDate *time.Time
		var statusID, priorityID *int64
		var statusTitle, statusColor, priorityTitle, priorityColor *string
		if err := rows.Scan(
			&app.ID, &app.Title, &app.Company, &app.Role, &app.Salary, &closingDate, &app.Link,
			&app.StatusID, &app.PriorityID, &app.FolderID, &app.Starred, &app.Position,
			&app.Description, &app.Notes, &timeline, &app.CreatedAt, &app.UpdatedAt,
			&statusID, &statusTitle, &statusColor, &priorityID, &priorityTitle, &priorityColor,
		); err != nil {
			return nil, err
		}
		app.ClosingDate = models.DateOrNil(closingDate)
		if len(timeline) > 0 {
			app.Timeline = timeline
		}
		app.Status = scanOption(statusID, statusTitle, statusColor)
		app.Priority = scanOption(priorityID, priorityTitle, priorityColor)
		app.Tags = []models.SelectOption{}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, q, apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *Store) loadTags(ctx context.Context, q querier, apps []models.Application) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]int64, len(apps))
	index := make(map[int64]int, len(apps))
	for i, app := range apps {
		ids[i] = app.ID
		index[app.ID] = i
	}

	rows, err := q.Query(ctx, `
		SELECT at.application_id, o.option_id, o.title, o.color
		FROM application_tags at
		JOIN select_options o ON o.option_id = at.tag_id
		WHERE at.application_id = ANY($1)
		ORDER BY o.option_id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var appID int64
		var tag models.SelectOption
		if err := rows.Scan(&appID, &tag.ID, &tag.Title, &tag.Color); err != nil {
			return err
		}
		i := index[appID]
		apps[i].Tags = append(apps[i].Tags, tag)
	}
	return rows.Err()
}

func (s *Store) getApplication(ctx context.Context, q querier, id int64) (models.Application, error) {
	apps, err := s.queryApplications(ctx, q, applicationColumns+` WHERE a.application_id = $1`, id)
	if err != nil {
		return models.Application{}, err
	}
	if len(apps) == 0 {
		return models.Application{}, store.ErrNotFound
	}
	return apps[0], nil
}

func (s *Store) ListApplications(ctx context.Context, userID string, q models.ListQuery) (models.Page[models.Application], error) {
	if q.FolderID != nil {
		if err := s.folderOwner(ctx, s.pool, userID, *q.FolderID); err != nil {
			return models.Page[models.Application]{}, err
		}
	}

	where := ` WHERE a.creator_id = $1`
	args := []any{userID}
	add := func(clause string, value any) {
		args = append(args, value)
		where += fmt.Sprintf(clause, len(args))
	}
	if q.Query != "" {
		add(` AND (a.title ILIKE $%[1]d OR a.company ILIKE $%[1]d OR a.description ILIKE $%[1]d OR a.role ILIKE $%[1]d)`, "%"+q.Query+"%")
	}
	if q.FolderID != nil {
		add(` AND a.folder_id = $%d`, *q.FolderID)
	}
	if q.StatusID != nil {
		add(` AND a.status_id = $%d`, *q.StatusID)
	}
	if q.PriorityID != nil {
		add(` AND a.priority_id = $%d`, *q.PriorityID)
	}
	if q.Starred != nil {
		add(` AND a.starred = $%d`, *q.Starred)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications a`+where, args...).Scan(&total); err != nil {
		return models.Page[models.Application]{}, err
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns["updated_at"]
	}
	direction := "DESC"
	if q.SortOrder == models.SortAsc {
		direction = "ASC"
	}
	args = append(args, q.PerPage, models.Offset(q.Page, q.PerPage))
	sql := applicationColumns + where + fmt.Sprintf(`
		ORDER BY %s %s, a.application_id %s
		LIMIT $%d OFFSET $%d`, column, direction, direction, len(args)-1, len(args))

	apps, err := s.queryApplications(ctx, s.pool, sql, args...)
	if err != nil {
		return models.Page[models.Application]{}, err
	}
	return models.Page[models.Application]{Items: apps, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

func (s *Store) GetApplication(ctx context.Context, userID string, id int64) (models.Application, error) {
	if err := s.applicationOwner(ctx, s.pool, userID, id); err != nil {
		return models.Application{}, err
	}
	return s.getApplication(ctx, s.pool, id)
}

func (s *Store) CreateApplication(ctx context.Context, userID string, in models.ApplicationCreate) (app models.Application, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Application{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = s.checkReferences(ctx, tx, userID, in.FolderID, in.StatusID, in.PriorityID, in.TagIDs); err != nil {
		return models.Application{}, err
	}

	now := time.Now().UTC()
	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO applications (
			creator_id, folder_id, status_id, priority_id, title, company, role, salary,
			closing_date, link, starred, position, description, notes, timeline, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		RETURNING application_id
	`, userID, in.FolderID, in.StatusID, in.PriorityID, in.Title, in.Company, in.Role, in.Salary,
		in.ClosingDate.TimeOrNil(), in.Link, in.Starred, in.Position, in.Description, in.Notes, jsonOrNil(in.Timeline), now).Scan(&id)
	if err != nil {
		return models.Application{}, err
	}
	if err = replaceTags(ctx, tx, id, in.TagIDs); err != nil {
		return models.Application{}, err
	}
	if app, err = s.getApplication(ctx, tx, id); err != nil {
		return models.Application{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (s *Store) UpdateApplication(ctx context.Context, userID string, id int64, in models.ApplicationUpdate) (app models.Application, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Application{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = s.applicationOwner(ctx, tx, userID, id); err != nil {
		return models.Application{}, err
	}
	var tagIDs []int64
	if in.TagIDs != nil {
		tagIDs = *in.TagIDs
	}
	if err = s.checkReferences(ctx, tx, userID, in.FolderID.Ptr(), in.StatusID.Ptr(), in.PriorityID.Ptr(), tagIDs); err != nil {
		return models.Application{}, err
	}

	current, err := s.getApplication(ctx, tx, id)
	if err != nil {
		return models.Application{}, err
	}
	in.Apply(&current)
	_, err = tx.Exec(ctx, `
		UPDATE applications
		SET folder_id = $2, status_id = $3, priority_id = $4, title = $5, company = $6, role = $7,
		    salary = $8, closing_date = $9, link = $10, starred = $11, position = $12,
		    description = $13, notes = $14, timeline = $15, updated_at = $16
		WHERE application_id = $1
	`, id, current.FolderID, current.StatusID, current.PriorityID, current.Title, current.Company, current.Role,
		current.Salary, current.ClosingDate.TimeOrNil(), current.Link, current.Starred, current.Position,
		current.Description, current.Notes, jsonOrNil(current.Timeline), time.Now().UTC())
	if err != nil {
		return models.Application{}, err
	}
	if in.TagIDs != nil {
		if err = replaceTags(ctx, tx, id, *in.TagIDs); err != nil {
			return models.Application{}, err
		}
	}
	if app, err = s.getApplication(ctx, tx, id); err != nil {
		return models.Application{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (s *Store) DeleteApplication(ctx context.Context, userID string, id int64) error {
	if err := s.applicationOwner(ctx, s.pool, userID, id); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM applications WHERE application_id = $1`, id)
	return err
}

func replaceTags(ctx context.Context, q querier, applicationID int64, tagIDs []int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM application_tags WHERE application_id = $1`, applicationID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		_, err := q.Exec(ctx, `
			INSERT INTO application_tags (application_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, applicationID, tagID)
		if err != nil {
			return err
		}
	}
	return nil
}

// jsonOrNil stores an empty timeline as SQL NULL.
func jsonOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
