package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

func TestLoginSendsFormEncodedGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a@b.c", r.PostFormValue("username"), "email travels as username")
		assert.Equal(t, "secret", r.PostFormValue("password"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1",
			"token_type":   "bearer",
			"user": map[string]string{
				"id": "u1", "name": "Ann", "email": "a@b.c", "role": "user",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.AccessToken)
	assert.Equal(t, "u1", resp.User.ID)
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]model.Course{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-1")
	_, err := c.Courses(context.Background())
	require.NoError(t, err)
}

func TestUnauthorizedMapsToAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "Could not validate credentials")
}

func TestForbiddenMapsToAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "Admin access required"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Users(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestValidationDetailList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": [{"msg": "value is not a valid email", "loc": ["body", "email"]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Register(context.Background(), "Ann", "nope", "secret")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "value is not a valid email")
}

func TestServerErrorMapsToStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Courses(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.False(t, IsAuthError(err))
}

func TestNotificationsUnwrapsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notifications":
			w.Write([]byte(`{"items": [
				{"id": "n1", "type": "assignment_graded", "title": "Graded",
				 "entity_type": "assignment", "entity_id": "a1", "is_read": false},
				{"id": "n2", "type": "course", "title": "New chapter",
				 "entity_type": "course", "entity_id": "c1", "is_read": true}
			]}`))
		case "/notifications/unread-count":
			w.Write([]byte(`{"count": 1}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	items, err := c.Notifications(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "n1", items[0].ID)
	assert.Equal(t, model.EntityAssignment, items[0].EntityType)
	assert.False(t, items[0].IsRead)
	assert.True(t, items[1].IsRead)

	count, err := c.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClearAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notifications/clear", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.ClearNotifications(context.Background()))
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, "fallback",
		UserMessage(&AuthError{}, "fallback"),
		"empty server detail falls back")
	assert.Equal(t, "bad token",
		UserMessage(&AuthError{Message: "bad token"}, "fallback"))
	assert.Equal(t, "fallback",
		UserMessage(assert.AnError, "fallback"),
		"untyped errors never leak internals")
}
