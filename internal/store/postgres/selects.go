package postgres

import (
	"context"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

func (s *Store) ListSelects(ctx context.Context, userID string) (models.Selects, error) {
	out := models.Selects{
		Tags:       []models.SelectOption{},
		Statuses:   []models.SelectOption{},
		Priorities: []models.SelectOption{},
	}
	rows, err := s.pool.Query(ctx, `
		SELECT kind, option_id, title, color
		FROM select_options
		WHERE creator_id = $1
		ORDER BY option_id
	`, userID)
	if err != nil {
		return models.Selects{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var opt models.SelectOption
		if err := rows.Scan(&kind, &opt.ID, &opt.Title, &opt.Color); err != nil {
			return models.Selects{}, err
		}
		switch models.SelectKind(kind) {
		case models.KindTags:
			out.Tags = append(out.Tags, opt)
		case models.KindStatuses:
			out.Statuses = append(out.Statuses, opt)
		case models.KindPriorities:
			out.Priorities = append(out.Priorities, opt)
		}
	}
	return out, rows.Err()
}

func (s *Store) CreateSelect(ctx context.Context, userID string, kind models.SelectKind, in models.SelectCreate) (models.SelectOption, error) {
	opt := models.SelectOption{Title: in.Title, Color: in.Color}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO select_options (creator_id, kind, title, color)
		VALUES ($1, $2, $3, $4)
		RETURNING option_id
	`, userID, string(kind), in.Title, in.Color).Scan(&opt.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.SelectOption{}, store.ErrConflict
		}
		return models.SelectOption{}, err
	}
	return opt, nil
}

func (s *Store) UpdateSelect(ctx context.Context, userID string, kind models.SelectKind, id int64, in models.SelectUpdate) (models.SelectOption, error) {
	if err := s.optionOwner(ctx, s.pool, userID, kind, id); err != nil {
		return models.SelectOption{}, err
	}
	opt := models.SelectOption{ID: id}
	err := s.pool.QueryRow(ctx, `
		UPDATE select_options
		SET title = COALESCE($2, title), color = COALESCE($3, color)
		WHERE option_id = $1
		RETURNING title, color
	`, id, in.Title, in.Color).Scan(&opt.Title, &opt.Color)
	if err != nil {
		if isUniqueViolation(err) {
			return models.SelectOption{}, store.ErrConflict
		}
		return models.SelectOption{}, err
	}
	return opt, nil
}

// DeleteSelect relies on the foreign keys: status and priority references
// are set to NULL and tag links are removed.
func (s *Store) DeleteSelect(ctx context.Context, userID string, kind models.SelectKind, id int64) error {
	if err := s.optionOwner(ctx, s.pool, userID, kind, id); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM select_options WHERE option_id = $1`, id)
	return err
}
