package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nape-ntsoane/trax/internal/apierr"
	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/notify"
	"github.com/nape-ntsoane/trax/internal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *notify.Recorder, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess, err := session.New(nil)
	require.NoError(t, err)
	rec := &notify.Recorder{}
	return New(srv.URL+"/api/v1", sess, rec, WithHTTPClient(srv.Client())), rec, sess
}

func TestDoSendsJSONAndBearer(t *testing.T) {
	var got *http.Request
	var body map[string]any
	client, rec, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":7,"title":"Backend","position":0,"count":0}`)
	})
	require.NoError(t, sess.Set("tok-1", "bearer"))

	folder, err := Fetch[models.Folder](context.Background(), client, Request{
		Method: http.MethodPost,
		Path:   "/folders/",
		Body:   models.FolderCreate{Title: "Backend"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), folder.ID)
	require.Equal(t, "/api/v1/folders/", got.URL.Path)
	require.Equal(t, "application/json", got.Header.Get("Content-Type"))
	require.Equal(t, "Bearer tok-1", got.Header.Get("Authorization"))
	require.NotEmpty(t, got.Header.Get("X-Request-ID"))
	require.Equal(t, "Backend", body["title"])
	require.Empty(t, rec.Entries())
}

func TestDoWithoutTokenOmitsAuthorization(t *testing.T) {
	var auth string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{}`)
	})
	require.NoError(t, client.Do(context.Background(), Request{Path: "/selects/"}, nil))
	require.Empty(t, auth)
}

func TestDoFormBody(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "a@b.co", r.PostForm.Get("username"))
		_, _ = io.WriteString(w, `{"access_token":"x","token_type":"bearer"}`)
	})
	form := map[string][]string{"username": {"a@b.co"}, "password": {"pw"}}
	tok, err := Fetch[models.TokenResponse](context.Background(), client, Request{Method: http.MethodPost, Path: "/auth/jwt/login", Form: form})
	require.NoError(t, err)
	require.Equal(t, "x", tok.AccessToken)
}

func TestDoQueryValues(t *testing.T) {
	var rawQuery string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"items":[],"total":0,"page":1,"per_page":25}`)
	})
	q := models.DefaultListQuery()
	page, err := Fetch[models.Page[models.Application]](context.Background(), client, Request{Path: "/applications/", Query: q.Values()})
	require.NoError(t, err)
	require.Equal(t, 25, page.PerPage)
	require.Equal(t, "page=1&per_page=25&sort_by=updated_at&sort_order=desc", rawQuery)
}

func TestDoNoContent(t *testing.T) {
	client, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	out, err := Fetch[models.Folder](context.Background(), client, Request{Method: http.MethodDelete, Path: "/folders/1"})
	require.NoError(t, err)
	require.Nil(t, out)
	require.Empty(t, rec.Entries())
}

func TestDoHTTPErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{"known code", http.StatusBadRequest, `{"detail":"LOGIN_BAD_CREDENTIALS"}`, KindHTTP, "Invalid email or password."},
		{"plain detail", http.StatusNotFound, `{"detail":"Folder not found"}`, KindHTTP, "Folder not found"},
		{"validation array", http.StatusUnprocessableEntity, `{"detail":[{"msg":"a"},{"msg":"b"}]}`, KindHTTP, "a, b"},
		{"missing detail", http.StatusInternalServerError, `{}`, KindHTTP, apierr.DefaultDetail},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, KindMalformed, apierr.DefaultDetail},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			err := client.Do(context.Background(), Request{Path: "/folders/1"}, nil)
			require.Error(t, err)

			apiErr, ok := AsError(err)
			require.True(t, ok)
			require.Equal(t, tc.kind, apiErr.Kind)
			require.Equal(t, tc.status, apiErr.Status)
			require.Equal(t, tc.message, err.Error())
			require.True(t, IsNotified(err))
			require.True(t, IsStatus(err, tc.status))

			entries := rec.Entries()
			require.Len(t, entries, 1)
			require.Equal(t, notify.LevelError, entries[0].Level)
			require.Equal(t, tc.message, entries[0].Message)
		})
	}
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &notify.Recorder{}
	client := New(url, nil, rec)
	err := client.Do(context.Background(), Request{Path: "/folders/dashboard"}, nil)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindNetwork, apiErr.Kind)
	require.Equal(t, apierr.NetworkMessage, apiErr.Message)
	require.NotNil(t, apiErr.Unwrap())
	require.Len(t, rec.Entries(), 1)
}

func TestDoInvalidBodyIsNotSent(t *testing.T) {
	var hits int32
	client, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/folders/", Body: models.FolderCreate{}}, nil)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindInvalid, apiErr.Kind)
	require.Equal(t, "title: Field required", apiErr.Message)
	require.Zero(t, atomic.LoadInt32(&hits))
	require.Len(t, rec.Entries(), 1)
}

func TestDoMalformedSuccessBody(t *testing.T) {
	client, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":`)
	})
	_, err := Fetch[models.Folder](context.Background(), client, Request{Path: "/folders/1"})

	apiErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindMalformed, apiErr.Kind)
	require.Equal(t, http.StatusOK, apiErr.Status)
	require.Len(t, rec.Entries(), 1)
}

func TestFetchDecodesZonelessClosingDates(t *testing.T) {
	client, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[
			{"id":1,"title":"SRE","company":"Acme","closing_date":"2025-06-30T00:00:00"},
			{"id":2,"title":"SWE","company":"Initech","closing_date":"2025-07-01T09:30:00.123456"},
			{"id":3,"title":"PM","company":"Hooli","closing_date":null}
		],"total":3,"page":1,"per_page":25}`)
	})
	page, err := Fetch[models.Page[models.Application]](context.Background(), client, Request{Path: "/applications/"})
	require.NoError(t, err)
	require.Empty(t, rec.Entries())
	require.Len(t, page.Items, 3)
	require.Equal(t, "2025-06-30", page.Items[0].ClosingDate.Format("2006-01-02"))
	require.Equal(t, 9, page.Items[1].ClosingDate.Hour())
	require.Nil(t, page.Items[2].ClosingDate)
}

func TestDoSendsExplicitNullOnlyForClearedFields(t *testing.T) {
	var body map[string]any
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"id":1}`)
	})
	in := models.ApplicationUpdate{StatusID: models.Null[int64](), FolderID: models.Some(int64(4))}
	_, err := Fetch[models.Application](context.Background(), client, Request{Method: http.MethodPut, Path: "/applications/1", Body: in})
	require.NoError(t, err)

	require.Contains(t, body, "status_id")
	require.Nil(t, body["status_id"])
	require.Equal(t, float64(4), body["folder_id"])
	require.NotContains(t, body, "priority_id")
	require.NotContains(t, body, "closing_date")
}

func TestURLTrimsTrailingSlash(t *testing.T) {
	client := New("http://api.local/api/v1/", nil, notify.New("noop"))
	require.Equal(t, "http://api.local/api/v1/folders/?page=2", client.URL("/folders/", map[string][]string{"page": {"2"}}))
}
