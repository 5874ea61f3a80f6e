// Package auth signs the user in and out against the API and keeps the
// session token in sync.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nape-ntsoane/trax/internal/apiclient"
	"github.com/nape-ntsoane/trax/internal/endpoints"
	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/session"
)

type Service struct {
	client  *apiclient.Client
	session *session.Session
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client, session: client.Session()}
}

// Login posts the credentials as form fields and stores the returned token.
func (s *Service) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	tok, err := apiclient.Fetch[models.TokenResponse](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   endpoints.Login,
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, s.client.Report(http.MethodPost, endpoints.Login, &apiclient.Error{
			Kind:    apiclient.KindMalformed,
			Status:  http.StatusOK,
			Message: apiclient.MalformedMessage,
			Err:     errors.New("login response has no access token"),
		})
	}
	if err := s.session.Set(tok.AccessToken, tok.TokenType); err != nil {
		return nil, s.client.Report(http.MethodPost, endpoints.Login, &apiclient.Error{
			Kind:    apiclient.KindInvalid,
			Message: "Could not save the session.",
			Err:     fmt.Errorf("save session: %w", err),
		})
	}
	return tok, nil
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	return apiclient.Fetch[models.User](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   endpoints.Register,
		Body:   models.RegisterRequest{Email: email, Password: password},
	})
}

// Logout tells the server when a token is held, then always drops the local
// token. A failed server call has already been notified and is not returned.
func (s *Service) Logout(ctx context.Context) error {
	if s.session.Authenticated() {
		_ = s.client.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: endpoints.Logout}, nil)
	}
	if err := s.session.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Service) Me(ctx context.Context) (*models.User, error) {
	if err := s.session.Require(); err != nil {
		return nil, err
	}
	return apiclient.Fetch[models.User](ctx, s.client, apiclient.Request{Path: endpoints.Me})
}
