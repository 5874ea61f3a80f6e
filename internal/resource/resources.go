package resource

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nape-ntsoane/trax/internal/apiclient"
	"github.com/nape-ntsoane/trax/internal/endpoints"
	"github.com/nape-ntsoane/trax/internal/models"
)

// Resources groups the hooks and mutations of one signed-in client. Mutations
// are not applied optimistically; revalidate the affected hook afterwards.
type Resources struct {
	client *apiclient.Client
	cache  *Cache
}

func New(client *apiclient.Client) *Resources {
	return &Resources{client: client, cache: NewCache(client)}
}

func (r *Resources) Cache() *Cache {
	return r.cache
}

// Folders is the dashboard listing: the unfiled bucket first (when it has
// applications), then every folder with its recent applications.
func (r *Resources) Folders() *Hook[models.Page[models.FolderSummary]] {
	empty := models.Page[models.FolderSummary]{Items: []models.FolderSummary{}, Page: 1}
	return newHook(r.cache, endpoints.Dashboard, nil, empty)
}

// Applications lists applications, scoped to a folder when folderID is set.
func (r *Resources) Applications(folderID *int64, q models.ListQuery) *Hook[models.Page[models.Application]] {
	path := endpoints.Applications
	if folderID != nil {
		path = endpoints.FolderApplications(*folderID)
	}
	empty := models.Page[models.Application]{Items: []models.Application{}, Page: q.Page, PerPage: q.PerPage}
	return newHook(r.cache, path, q.Values(), empty)
}

func (r *Resources) Selects() *Hook[models.Selects] {
	empty := models.Selects{Tags: []models.SelectOption{}, Statuses: []models.SelectOption{}, Priorities: []models.SelectOption{}}
	return newHook(r.cache, endpoints.Selects, nil, empty)
}

func (r *Resources) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	return apiclient.Fetch[models.Folder](ctx, r.client, apiclient.Request{Path: endpoints.Folder(id)})
}

func (r *Resources) CreateFolder(ctx context.Context, in models.FolderCreate) (*models.Folder, error) {
	return apiclient.Fetch[models.Folder](ctx, r.client, apiclient.Request{Method: http.MethodPost, Path: endpoints.Folders, Body: in})
}

func (r *Resources) UpdateFolder(ctx context.Context, id int64, in models.FolderUpdate) (*models.Folder, error) {
	return apiclient.Fetch[models.Folder](ctx, r.client, apiclient.Request{Method: http.MethodPut, Path: endpoints.Folder(id), Body: in})
}

func (r *Resources) DeleteFolder(ctx context.Context, id int64) error {
	return r.client.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: endpoints.Folder(id)}, nil)
}

func (r *Resources) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	return apiclient.Fetch[models.Application](ctx, r.client, apiclient.Request{Path: endpoints.Application(id)})
}

func (r *Resources) CreateApplication(ctx context.Context, in models.ApplicationCreate) (*models.Application, error) {
	return apiclient.Fetch[models.Application](ctx, r.client, apiclient.Request{Method: http.MethodPost, Path: endpoints.Applications, Body: in})
}

func (r *Resources) UpdateApplication(ctx context.Context, id int64, in models.ApplicationUpdate) (*models.Application, error) {
	return apiclient.Fetch[models.Application](ctx, r.client, apiclient.Request{Method: http.MethodPut, Path: endpoints.Application(id), Body: in})
}

func (r *Resources) DeleteApplication(ctx context.Context, id int64) error {
	return r.client.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: endpoints.Application(id)}, nil)
}

func (r *Resources) CreateSelect(ctx context.Context, kind models.SelectKind, in models.SelectCreate) (*models.SelectOption, error) {
	return apiclient.Fetch[models.SelectOption](ctx, r.client, apiclient.Request{Method: http.MethodPost, Path: endpoints.SelectKind(kind), Body: in})
}

func (r *Resources) UpdateSelect(ctx context.Context, kind models.SelectKind, id int64, in models.SelectUpdate) (*models.SelectOption, error) {
	return apiclient.Fetch[models.SelectOption](ctx, r.client, apiclient.Request{Method: http.MethodPut, Path: endpoints.SelectOption(kind, id), Body: in})
}

func (r *Resources) DeleteSelect(ctx context.Context, kind models.SelectKind, id int64) error {
	return r.client.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: endpoints.SelectOption(kind, id)}, nil)
}

// Search matches folders and applications by title or company.
func (r *Resources) Search(ctx context.Context, query string, page, perPage int) (*models.SearchResult, error) {
	values := url.Values{}
	values.Set("query", query)
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		values.Set("per_page", strconv.Itoa(perPage))
	}
	return apiclient.Fetch[models.SearchResult](ctx, r.client, apiclient.Request{Path: endpoints.Search, Query: values})
}
