// Package memory is an in-process store used for local development and
// tests. It follows the same ownership and ordering rules as the postgres
// store.
package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

type userRow struct {
	user models.User
	hash string
}

type folderRow struct {
	folder models.Folder
	owner  string
}

type applicationRow struct {
	app    models.Application
	owner  string
	tagIDs []int64
}

type selectRow struct {
	option models.SelectOption
	owner  string
}

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users    map[string]*userRow
	byEmail  map[string]string
	sessions map[string]store.Session

	folders      map[int64]*folderRow
	applications map[int64]*applicationRow
	selects      map[models.SelectKind]map[int64]*selectRow

	nextFolder      int64
	nextApplication int64
	nextSelect      map[models.SelectKind]int64
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	s := &Store{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[string]*userRow),
		byEmail:      make(map[string]string),
		sessions:     make(map[string]store.Session),
		folders:      make(map[int64]*folderRow),
		applications: make(map[int64]*applicationRow),
		selects:      make(map[models.SelectKind]map[int64]*selectRow),
		nextSelect:   make(map[models.SelectKind]int64),
	}
	for _, kind := range models.SelectKinds {
		s.selects[kind] = make(map[int64]*selectRow)
	}
	return s
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.byEmail[key]; ok {
		return models.User{}, store.ErrUserExists
	}
	user := models.User{ID: uuid.NewString(), Email: strings.TrimSpace(email), IsActive: true}
	s.users[user.ID] = &userRow{user: user, hash: passwordHash}
	s.byEmail[key] = user.ID
	return user, nil
}

func (s *Store) GetCredentials(ctx context.Context, email string) (store.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return store.Credentials{}, store.ErrInvalidCredentials
	}
	row := s.users[id]
	if !row.user.IsActive {
		return store.Credentials{}, store.ErrInvalidCredentials
	}
	return store.Credentials{User: row.user, PasswordHash: row.hash}, nil
}

func (s *Store) CreateSession(ctx context.Context, userID string, expiresAt time.Time) (store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return store.Session{}, store.ErrNotFound
	}
	session := store.Session{Token: uuid.NewString(), UserID: userID, ExpiresAt: expiresAt}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *Store) GetSession(ctx context.Context, token string) (store.Session, models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok || !session.ExpiresAt.After(s.now()) {
		return store.Session{}, models.User{}, store.ErrSessionNotFound
	}
	row, ok := s.users[session.UserID]
	if !ok || !row.user.IsActive {
		return store.Session{}, models.User{}, store.ErrSessionNotFound
	}
	return session, row.user, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return store.ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}

func (s *Store) Dashboard(ctx context.Context, userID string, page, perPage int) (models.Page[models.FolderSummary], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folders := s.ownedFolders(userID, "")
	total := len(folders)
	items := make([]models.FolderSummary, 0, perPage+1)

	if recent, unfiled := s.recentIn(userID, nil); unfiled > 0 {
		total++
		if page <= 1 {
			items = append(items, models.FolderSummary{RecentApplications: recent, ApplicationCount: unfiled})
		}
	}

	for _, folder := range paginate(folders, page, perPage) {
		recent, count := s.recentIn(userID, &folder.ID)
		items = append(items, models.FolderSummary{Folder: &folder, RecentApplications: recent, ApplicationCount: count})
	}
	return models.Page[models.FolderSummary]{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *Store) SearchFolders(ctx context.Context, userID string, q models.ListQuery) (models.Page[models.Folder], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folders := s.ownedFolders(userID, q.Query)
	return models.Page[models.Folder]{
		Items:   paginate(folders, q.Page, q.PerPage),
		Total:   len(folders),
		Page:    q.Page,
		PerPage: q.PerPage,
	}, nil
}

func (s *Store) GetFolder(ctx context.Context, userID string, id int64) (models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, err := s.ownedFolder(userID, id)
	if err != nil {
		return models.Folder{}, err
	}
	return s.withCount(row.folder), nil
}

func (s *Store) CreateFolder(ctx context.Context, userID string, in models.FolderCreate) (models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextFolder++
	folder := models.Folder{ID: s.nextFolder, Title: in.Title, Position: in.Position}
	s.folders[folder.ID] = &folderRow{folder: folder, owner: userID}
	return folder, nil
}

func (s *Store) UpdateFolder(ctx context.Context, userID string, id int64, in models.FolderUpdate) (models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.ownedFolder(userID, id)
	if err != nil {
		return models.Folder{}, err
	}
	if in.Title != nil {
		row.folder.Title = *in.Title
	}
	if in.Position != nil {
		row.folder.Position = *in.Position
	}
	return s.withCount(row.folder), nil
}

// DeleteFolder detaches the folder's applications before removing it.
func (s *Store) DeleteFolder(ctx context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedFolder(userID, id); err != nil {
		return err
	}
	for _, row := range s.applications {
		if row.app.FolderID != nil && *row.app.FolderID == id {
			row.app.FolderID = nil
		}
	}
	delete(s.folders, id)
	return nil
}

func (s *Store) ListApplications(ctx context.Context, userID string, q models.ListQuery) (models.Page[models.Application], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if q.FolderID != nil {
		if _, err := s.ownedFolder(userID, *q.FolderID); err != nil {
			return models.Page[models.Application]{}, err
		}
	}

	var matched []*applicationRow
	for _, row := range s.applications {
		if row.owner == userID && matches(row.app, q) {
			matched = append(matched, row)
		}
	}
	sortApplications(matched, q.SortBy, q.SortOrder)

	items := make([]models.Application, 0, q.PerPage)
	for _, row := range paginate(matched, q.Page, q.PerPage) {
		items = append(items, s.resolve(row))
	}
	return models.Page[models.Application]{Items: items, Total: len(matched), Page: q.Page, PerPage: q.PerPage}, nil
}

func (s *Store) GetApplication(ctx context.Context, userID string, id int64) (models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, err := s.ownedApplication(userID, id)
	if err != nil {
		return models.Application{}, err
	}
	return s.resolve(row), nil
}

func (s *Store) CreateApplication(ctx context.Context, userID string, in models.ApplicationCreate) (models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkReferences(userID, in.FolderID, in.StatusID, in.PriorityID, in.TagIDs); err != nil {
		return models.Application{}, err
	}

	now := s.now()
	s.nextApplication++
	app := models.Application{
		ID:          s.nextApplication,
		Title:       in.Title,
		Company:     in.Company,
		Role:        in.Role,
		Salary:      in.Salary,
		ClosingDate: in.ClosingDate,
		Link:        in.Link,
		StatusID:    in.StatusID,
		PriorityID:  in.PriorityID,
		FolderID:    in.FolderID,
		Starred:     in.Starred,
		Position:    in.Position,
		Description: in.Description,
		Notes:       in.Notes,
		Timeline:    append(json.RawMessage(nil), in.Timeline...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	row := &applicationRow{app: app, owner: userID, tagIDs: uniqueIDs(in.TagIDs)}
	s.applications[app.ID] = row
	return s.resolve(row), nil
}

func (s *Store) UpdateApplication(ctx context.Context, userID string, id int64, in models.ApplicationUpdate) (models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.ownedApplication(userID, id)
	if err != nil {
		return models.Application{}, err
	}
	var tagIDs []int64
	if in.TagIDs != nil {
		tagIDs = *in.TagIDs
	}
	if err := s.checkReferences(userID, in.FolderID.Ptr(), in.StatusID.Ptr(), in.PriorityID.Ptr(), tagIDs); err != nil {
		return models.Application{}, err
	}

	in.Apply(&row.app)
	if in.TagIDs != nil {
		row.tagIDs = uniqueIDs(*in.TagIDs)
	}
	row.app.UpdatedAt = s.now()
	return s.resolve(row), nil
}

func (s *Store) DeleteApplication(ctx context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedApplication(userID, id); err != nil {
		return err
	}
	delete(s.applications, id)
	return nil
}

func (s *Store) ListSelects(ctx context.Context, userID string) (models.Selects, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Selects{
		Tags:       s.ownedOptions(userID, models.KindTags),
		Statuses:   s.ownedOptions(userID, models.KindStatuses),
		Priorities: s.ownedOptions(userID, models.KindPriorities),
	}, nil
}

func (s *Store) CreateSelect(ctx context.Context, userID string, kind models.SelectKind, in models.SelectCreate) (models.SelectOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.selects[kind]
	if !ok {
		return models.SelectOption{}, store.ErrNotFound
	}
	if s.titleTaken(userID, kind, in.Title, 0) {
		return models.SelectOption{}, store.ErrConflict
	}
	s.nextSelect[kind]++
	option := models.SelectOption{ID: s.nextSelect[kind], Title: in.Title, Color: in.Color}
	rows[option.ID] = &selectRow{option: option, owner: userID}
	return option, nil
}

func (s *Store) UpdateSelect(ctx context.Context, userID string, kind models.SelectKind, id int64, in models.SelectUpdate) (models.SelectOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.ownedOption(userID, kind, id)
	if err != nil {
		return models.SelectOption{}, err
	}
	if in.Title != nil {
		if s.titleTaken(userID, kind, *in.Title, id) {
			return models.SelectOption{}, store.ErrConflict
		}
		row.option.Title = *in.Title
	}
	if in.Color != nil {
		row.option.Color = *in.Color
	}
	return row.option, nil
}

// DeleteSelect removes an option and every reference to it. Applications are
// never deleted.
func (s *Store) DeleteSelect(ctx context.Context, userID string, kind models.SelectKind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedOption(userID, kind, id); err != nil {
		return err
	}
	for _, row := range s.applications {
		switch kind {
		case models.KindStatuses:
			if row.app.StatusID != nil && *row.app.StatusID == id {
				row.app.StatusID = nil
			}
		case models.KindPriorities:
			if row.app.PriorityID != nil && *row.app.PriorityID == id {
				row.app.PriorityID = nil
			}
		case models.KindTags:
			row.tagIDs = removeID(row.tagIDs, id)
		}
	}
	delete(s.selects[kind], id)
	return nil
}
