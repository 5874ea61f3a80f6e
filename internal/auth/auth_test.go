package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nape-ntsoane/trax/internal/apiclient"
	"github.com/nape-ntsoane/trax/internal/notify"
	"github.com/nape-ntsoane/trax/internal/session"
)

type fakeAPI struct {
	logoutStatus int
	logouts      int
	lastAuth     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastAuth = r.Header.Get("Authorization")
	switch r.URL.Path {
	case "/auth/jwt/login":
		_ = r.ParseForm()
		if r.PostForm.Get("password") == "tokenless" {
			_, _ = io.WriteString(w, `{"token_type":"bearer"}`)
			return
		}
		if r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"detail":"LOGIN_BAD_CREDENTIALS"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok-42","token_type":"bearer"}`)
	case "/auth/jwt/logout":
		f.logouts++
		w.WriteHeader(f.logoutStatus)
	case "/users/me":
		if f.lastAuth != "Bearer tok-42" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Unauthorized"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"u1","email":"a@b.co","is_active":true}`)
	case "/auth/register":
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"REGISTER_USER_ALREADY_EXISTS"}`)
	default:
		http.NotFound(w, r)
	}
}

func newService(t *testing.T, api *fakeAPI) (*Service, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	sess, err := session.New(nil)
	require.NoError(t, err)
	rec := &notify.Recorder{}
	return NewService(apiclient.New(srv.URL, sess, rec)), rec
}

func TestLoginStoresTokenForLaterRequests(t *testing.T) {
	api := &fakeAPI{logoutStatus: http.StatusNoContent}
	svc, rec := newService(t, api)

	_, err := svc.Me(context.Background())
	require.True(t, errors.Is(err, session.ErrNotAuthenticated))

	tok, err := svc.Login(context.Background(), "a@b.co", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-42", tok.AccessToken)
	require.Equal(t, "tok-42", svc.session.Token())

	user, err := svc.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a@b.co", user.Email)
	require.Equal(t, "Bearer tok-42", api.lastAuth)
	require.Empty(t, rec.Entries())
}

func TestLoginBadCredentials(t *testing.T) {
	svc, rec := newService(t, &fakeAPI{})

	_, err := svc.Login(context.Background(), "a@b.co", "wrong")
	require.EqualError(t, err, "Invalid email or password.")
	require.False(t, svc.session.Authenticated())
	require.Len(t, rec.Entries(), 1)
}

func TestLoginWithoutTokenIsNotifiedOnce(t *testing.T) {
	svc, rec := newService(t, &fakeAPI{})

	_, err := svc.Login(context.Background(), "a@b.co", "tokenless")
	require.Error(t, err)
	require.True(t, apiclient.IsNotified(err))
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	require.Equal(t, apiclient.KindMalformed, apiErr.Kind)
	require.Equal(t, []notify.Entry{{Level: notify.LevelError, Message: apiclient.MalformedMessage}}, rec.Entries())
	require.False(t, svc.session.Authenticated())
}

func TestRegisterDuplicate(t *testing.T) {
	svc, rec := newService(t, &fakeAPI{})

	_, err := svc.Register(context.Background(), "a@b.co", "secret")
	require.EqualError(t, err, "User with this email already exists.")
	require.Len(t, rec.Entries(), 1)
}

func TestLogoutClearsTokenEvenWhenServerFails(t *testing.T) {
	api := &fakeAPI{logoutStatus: http.StatusInternalServerError}
	svc, rec := newService(t, api)
	_, err := svc.Login(context.Background(), "a@b.co", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	require.False(t, svc.session.Authenticated())
	require.Equal(t, 1, api.logouts)
	require.Len(t, rec.Entries(), 1)
}

func TestLogoutWithoutTokenSkipsServer(t *testing.T) {
	api := &fakeAPI{logoutStatus: http.StatusNoContent}
	svc, _ := newService(t, api)

	require.NoError(t, svc.Logout(context.Background()))
	require.Zero(t, api.logouts)
}
