package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"fichas/internal/auth"
	"fichas/internal/database"
	"fichas/internal/models"
	"fichas/internal/ratelimit"
	"fichas/internal/services"
	"fichas/internal/store"
	"fichas/internal/utils"

	"github.com/gin-gonic/gin"
)

// maxPhotoSize caps student photo uploads at 5 MB
const maxPhotoSize = 5 << 20

// ListAlumnos returns the acting account's student records
func ListAlumnos(c *gin.Context) {
	username := c.GetString("username")

	alumnos, err := deps.Alumnos.ListByOwner(username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list alumnos", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alumnos": alumnos})
}

// CreateAlumno adds a student record owned by the acting account
func CreateAlumno(c *gin.Context) {
	username := c.GetString("username")

	var req models.CreateAlumnoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Nombre, curso y email son obligatorios", err)
		return
	}

	alumno, err := deps.Alumnos.Create(username, req.Nombre, req.Curso, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			handleError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to create alumno", err)
		return
	}

	c.JSON(http.StatusCreated, alumno)
}

// SendAlumnoPDF emails the acting account a PDF sheet for one record.
// The per-session cooldown gate runs before anything else; an accepted
// attempt stamps the session even if rendering or delivery later fails.
func SendAlumnoPDF(c *gin.Context) {
	session := c.MustGet(auth.ContextSessionKey).(*models.Session)
	username := session.Username

	stamp, err := deps.SendGate.Allow(session.LastPDFSendAt)
	if err != nil {
		var rlErr *ratelimit.Error
		if errors.As(err, &rlErr) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Por favor espera %d segundos antes de enviar otro correo.", rlErr.Remaining),
				"retry_after": rlErr.Remaining,
			})
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to check send window", err)
		return
	}

	// Stamp the accepted attempt before doing any work
	db := database.GetDB()
	if err := db.Model(&models.Session{}).Where("id = ?", session.ID).
		Update("last_pdf_send_at", stamp).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to record send attempt", err)
		return
	}
	session.LastPDFSendAt = &stamp

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusNotFound, "Alumno no encontrado", err)
		return
	}

	alumno, err := deps.Alumnos.GetByOwnerAndID(username, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Alumno no encontrado", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to fetch alumno", err)
		return
	}

	pdfBytes, err := deps.PDF.Render(alumno)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "No se pudo generar el PDF", err)
		return
	}

	msg := &services.Message{
		To:        session.Email,
		ToName:    username,
		Subject:   fmt.Sprintf("Ficha de %s", alumno.Nombre),
		PlainBody: fmt.Sprintf("Adjunto PDF con datos del alumno %s.", alumno.Nombre),
		Attachment: &services.Attachment{
			Filename: fmt.Sprintf("alumno_%d.pdf", alumno.ID),
			Data:     pdfBytes,
			MimeType: "application/pdf",
		},
	}

	if deps.AsyncEmail && deps.MailPool != nil && deps.MailPool.Enqueue(msg) {
		c.JSON(http.StatusAccepted, gin.H{
			"message": fmt.Sprintf("PDF de %s en camino a tu correo.", alumno.Nombre),
		})
		return
	}

	if err := deps.Email.Send(msg); err != nil {
		handleError(c, http.StatusInternalServerError, "No se pudo enviar el correo, inténtalo más tarde", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("PDF de %s enviado correctamente a tu correo.", alumno.Nombre),
	})
}

// UploadAlumnoPhoto attaches a photo to an owned record
func UploadAlumnoPhoto(c *gin.Context) {
	username := c.GetString("username")

	if deps.Photos == nil {
		handleError(c, http.StatusServiceUnavailable, "Photo uploads are not configured",
			errors.New("photo service unavailable"))
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusNotFound, "Alumno no encontrado", err)
		return
	}

	// Verify ownership before touching the upload
	alumno, err := deps.Alumnos.GetByOwnerAndID(username, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Alumno no encontrado", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to fetch alumno", err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		handleError(c, http.StatusBadRequest, "Missing photo file", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, http.StatusBadRequest, "Failed to read photo file", err)
		return
	}
	defer file.Close()

	if err := deps.Photos.ValidatePhotoFile(file, maxPhotoSize); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	url, err := deps.Photos.UploadStudentPhoto(file, fileHeader.Filename, alumno.ID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to upload photo", err)
		return
	}

	if err := deps.Alumnos.SetPhotoURL(username, alumno.ID, url); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to store photo URL", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

// SendTestEmail sends a fixed diagnostic message to the acting account
func SendTestEmail(c *gin.Context) {
	session := c.MustGet(auth.ContextSessionKey).(*models.Session)

	msg := &services.Message{
		To:        session.Email,
		ToName:    session.Username,
		Subject:   "Correo de prueba",
		PlainBody: "Este es un correo de prueba de Fichas. Si lo recibes, el transporte funciona.",
	}

	if err := deps.Email.Send(msg); err != nil {
		// Transport detail stays in the log; the page gets a generic message
		handleError(c, http.StatusInternalServerError, "El envío de prueba falló, revisa la configuración de correo",
			fmt.Errorf("test send for %s from %s: %w", session.Username, utils.GetRealClientIP(c), err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Correo de prueba enviado a %s", session.Email)})
}
