// Package store defines the persistence contract of the tracker API. Every
// read and write is scoped to the owning user; rows owned by somebody else
// report ErrForbidden, missing rows ErrNotFound.
package store

import (
	"context"
	"time"

	"github.com/nape-ntsoane/trax/internal/models"
)

// RecentLimit is the number of applications shown per dashboard folder.
const RecentLimit = 5

type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Credentials is a user together with its bcrypt hash.
type Credentials struct {
	User         models.User
	PasswordHash string
}

type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	GetCredentials(ctx context.Context, email string) (Credentials, error)
	CreateSession(ctx context.Context, userID string, expiresAt time.Time) (Session, error)
	GetSession(ctx context.Context, token string) (Session, models.User, error)
	DeleteSession(ctx context.Context, token string) error

	Dashboard(ctx context.Context, userID string, page, perPage int) (models.Page[models.FolderSummary], error)
	SearchFolders(ctx context.Context, userID string, q models.ListQuery) (models.Page[models.Folder], error)
	GetFolder(ctx context.Context, userID string, id int64) (models.Folder, error)
	CreateFolder(ctx context.Context, userID string, in models.FolderCreate) (models.Folder, error)
	UpdateFolder(ctx context.Context, userID string, id int64, in models.FolderUpdate) (models.Folder, error)
	DeleteFolder(ctx context.Context, userID string, id int64) error

	ListApplications(ctx context.Context, userID string, q models.ListQuery) (models.Page[models.Application], error)
	GetApplication(ctx context.Context, userID string, id int64) (models.Application, error)
	CreateApplication(ctx context.Context, userID string, in models.ApplicationCreate) (models.Application, error)
	UpdateApplication(ctx context.Context, userID string, id int64, in models.ApplicationUpdate) (models.Application, error)
	DeleteApplication(ctx context.Context, userID string, id int64) error

	ListSelects(ctx context.Context, userID string) (models.Selects, error)
	CreateSelect(ctx context.Context, userID string, kind models.SelectKind, in models.SelectCreate) (models.SelectOption, error)
	UpdateSelect(ctx context.Context, userID string, kind models.SelectKind, id int64, in models.SelectUpdate) (models.SelectOption, error)
	DeleteSelect(ctx context.Context, userID string, kind models.SelectKind, id int64) error
}
