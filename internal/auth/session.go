package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"fichas/internal/database"
	"fichas/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName is the name of the cookie that stores the session ID
	SessionCookieName = "fichas_session"
	// SessionIDLength is the length of the random session ID in bytes
	SessionIDLength = 32
)

// GenerateRandomString creates a cryptographically secure random string
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// CreateSession creates a new session for the account and sets the cookie
func CreateSession(c *gin.Context, account *models.Account) error {
	// Generate a random session ID
	sessionID, err := GenerateRandomString(SessionIDLength)
	if err != nil {
		return fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := models.Session{
		ID:        sessionID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(models.SessionDuration),
	}

	// Store the session in the database
	db := database.GetDB()
	if err := db.Create(&session).Error; err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	// Set the session cookie
	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(
		SessionCookieName,
		sessionID,
		int(time.Until(session.ExpiresAt).Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly for security
	)

	return nil
}

// GetSession retrieves the current session from the request
func GetSession(c *gin.Context) (*models.Session, error) {
	// Get the session ID from the cookie
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie: %w", err)
	}

	// Look up the session in the database
	db := database.GetDB()
	var session models.Session
	if err := db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return &session, nil
}

// DeleteSession removes the current session from the database and clears the cookie
func DeleteSession(c *gin.Context) {
	sessionID, err := c.Cookie(SessionCookieName)
	if err == nil && sessionID != "" {
		db := database.GetDB()
		db.Where("id = ?", sessionID).Delete(&models.Session{})
	}

	// Expire the cookie regardless of whether the session row existed
	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
