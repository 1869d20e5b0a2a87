package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fichas/internal/auth"
	"fichas/internal/database"
	"fichas/internal/models"
	"fichas/internal/services"
	"fichas/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateAccount handles new user registration
func CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	// Validate password strength
	if err := auth.ValidatePassword(req.Password); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	now := time.Now()
	account := models.Account{
		Username:   req.Username,
		Email:      req.Email,
		HashedPass: hashed,
		LastLogin:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	db := database.GetDB()
	if err := db.Create(&account).Error; err != nil {
		// Check for common database errors like duplicate usernames
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
			if strings.Contains(err.Error(), "email") {
				handleError(c, http.StatusConflict, "Este correo electrónico ya está registrado. Por favor usa otro o inicia sesión.", err)
			} else {
				handleError(c, http.StatusConflict, "Username already exists", err)
			}
			return
		}

		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	// Welcome email never blocks registration
	deliverBestEffort(&services.Message{
		To:       account.Email,
		ToName:   account.Username,
		Subject:  "Bienvenido/a",
		HTMLBody: fmt.Sprintf("<p>Hola %s,</p><p>Tu cuenta en Fichas ha sido creada correctamente.</p>", account.Username),
	})

	// Log the user in right away, like the registration form does
	if err := auth.CreateSession(c, &account); err != nil {
		handleError(c, http.StatusInternalServerError, "Account created but login failed, please log in", err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// Login handles user authentication
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid login request", err)
		return
	}

	db := database.GetDB()
	var account models.Account
	if err := db.Where("username = ?", req.Username).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusUnauthorized, "Credenciales inválidas", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	if !auth.CheckPassword(account.HashedPass, req.Password) {
		handleError(c, http.StatusUnauthorized, "Credenciales inválidas",
			fmt.Errorf("failed login for %s from %s", req.Username, utils.GetRealClientIP(c)))
		return
	}

	account.LastLogin = time.Now()
	db.Model(&account).Update("last_login", account.LastLogin)

	if err := auth.CreateSession(c, &account); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// Logout invalidates the current session
func Logout(c *gin.Context) {
	auth.DeleteSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GetCurrentUser returns the account behind the current session
func GetCurrentUser(c *gin.Context) {
	username := c.GetString("username")

	db := database.GetDB()
	var account models.Account
	if err := db.Where("username = ?", username).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Account not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve account", err)
		return
	}

	c.JSON(http.StatusOK, account)
}
