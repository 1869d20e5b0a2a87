package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fichas/internal/auth"
	"fichas/internal/database"
	"fichas/internal/models"
	"fichas/internal/ratelimit"
	"fichas/internal/services"
	"fichas/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeSender records outbound messages instead of delivering them
type fakeSender struct {
	mu   sync.Mutex
	sent []*services.Message
	err  error
}

func (f *fakeSender) Send(msg *services.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeSender) messages() []*services.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*services.Message(nil), f.sent...)
}

// fakeScraper returns canned search results
type fakeScraper struct {
	results []services.ScrapeResult
	err     error
	queries []string
}

func (f *fakeScraper) Search(query string) ([]services.ScrapeResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type testEnv struct {
	db      *gorm.DB
	sender  *fakeSender
	scraper *fakeScraper
	gate    *ratelimit.Cooldown
	router  *gin.Engine
}

// setupEnv builds an isolated app: in-memory database, fake mail transport,
// fake scraper, controllable clock, and the production route table.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Alumno{}, &models.Session{}))
	database.DB = db

	sender := &fakeSender{}
	scraper := &fakeScraper{}
	gate := ratelimit.NewCooldown(5 * time.Second)

	Init(Deps{
		Alumnos:  store.NewAlumnoStore(db),
		Email:    sender,
		PDF:      services.NewPDFService(),
		Scraper:  scraper,
		SendGate: gate,
	})

	router := gin.New()
	router.GET("/", HomeHandler)
	router.GET("/health", HealthHandler)
	router.POST("/auth/login", Login)
	router.POST("/accounts", CreateAccount)
	router.POST("/search", Search)

	protected := router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/auth/logout", Logout)
		protected.GET("/auth/me", GetCurrentUser)
		protected.GET("/alumnos", ListAlumnos)
		protected.POST("/alumnos", CreateAlumno)
		protected.POST("/alumnos/:id/send-pdf", SendAlumnoPDF)
		protected.POST("/alumnos/:id/photo", UploadAlumnoPhoto)
		protected.POST("/email/test", SendTestEmail)
	}

	return &testEnv{db: db, sender: sender, scraper: scraper, gate: gate, router: router}
}

func (e *testEnv) createAccount(t *testing.T, username, email string) *models.Account {
	t.Helper()
	hashed, err := auth.HashPassword("contrasena1")
	require.NoError(t, err)
	account := &models.Account{Username: username, Email: email, HashedPass: hashed}
	require.NoError(t, e.db.Create(account).Error)
	return account
}

func (e *testEnv) createSession(t *testing.T, account *models.Account) *models.Session {
	t.Helper()
	session := &models.Session{
		ID:       fmt.Sprintf("test-session-%s", account.Username),
		Username: account.Username,
		Email:    account.Email,
	}
	require.NoError(t, e.db.Create(session).Error)
	return session
}

func (e *testEnv) request(t *testing.T, method, path string, body any, session *models.Session) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: session.ID})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
