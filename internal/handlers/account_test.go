package handlers

import (
	"net/http"
	"testing"

	"fichas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	env := setupEnv(t)

	w := env.request(t, http.MethodPost, "/accounts",
		map[string]string{"username": "profe", "email": "a@x.com", "password": "contrasena1"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Welcome email is fired, password hash is not exposed
	sent := env.sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
	assert.Equal(t, "Bienvenido/a", sent[0].Subject)
	assert.NotContains(t, w.Body.String(), "contrasena1")

	// Registration logs the user in
	cookies := w.Result().Cookies()
	var gotSession bool
	for _, c := range cookies {
		if c.Name == "fichas_session" && c.Value != "" {
			gotSession = true
		}
	}
	assert.True(t, gotSession)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	env := setupEnv(t)
	env.createAccount(t, "profe", "a@x.com")

	w := env.request(t, http.MethodPost, "/accounts",
		map[string]string{"username": "otro", "email": "a@x.com", "password": "contrasena1"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ya está registrado")
}

func TestCreateAccountWeakPassword(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "abc1"},
		{"no numbers", "solopalabras"},
		{"no letters", "123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/accounts",
				map[string]string{"username": "profe", "email": "a@x.com", "password": tt.password}, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	env := setupEnv(t)
	env.createAccount(t, "profe", "a@x.com")

	w := env.request(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "profe", "password": "contrasena1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The welcome-less login created a persisted session
	var count int64
	env.db.Model(&models.Session{}).Where("username = ?", "profe").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLoginBadCredentials(t *testing.T) {
	env := setupEnv(t)
	env.createAccount(t, "profe", "a@x.com")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"wrong password", map[string]string{"username": "profe", "password": "incorrecta99"}},
		{"unknown user", map[string]string{"username": "nadie", "password": "contrasena1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/auth/login", tt.body, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Credenciales inválidas")
		})
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	env := setupEnv(t)
	account := env.createAccount(t, "profe", "a@x.com")
	session := env.createSession(t, account)

	w := env.request(t, http.MethodPost, "/auth/logout", nil, session)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.Session{}).Where("id = ?", session.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetCurrentUser(t *testing.T) {
	env := setupEnv(t)
	account := env.createAccount(t, "profe", "a@x.com")
	session := env.createSession(t, account)

	w := env.request(t, http.MethodGet, "/auth/me", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "profe", body["username"])
	assert.Equal(t, "a@x.com", body["email"])
}
