package handlers

import (
	"fmt"
	"net/http"

	"fichas/internal/auth"
	"fichas/internal/services"

	"github.com/gin-gonic/gin"
)

// SearchRequest represents a keyword search submission
type SearchRequest struct {
	Q            string `json:"q" binding:"required,max=200"`
	EmailResults bool   `json:"email_results"`
}

// Search runs the encyclopedia keyword search and optionally emails the
// results to the logged-in user. The search itself works without a session.
func Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Introduce un término de búsqueda", err)
		return
	}

	results, err := deps.Scraper.Search(req.Q)
	if err != nil {
		handleError(c, http.StatusBadGateway, "La búsqueda no está disponible ahora mismo", err)
		return
	}

	// Emailing results is a courtesy for logged-in users only and never
	// fails the search response
	if req.EmailResults {
		if session, err := auth.GetSession(c); err == nil && !session.IsExpired() {
			deliverBestEffort(&services.Message{
				To:       session.Email,
				ToName:   session.Username,
				Subject:  fmt.Sprintf("Resultados de scraping: %s", req.Q),
				HTMLBody: services.ResultsEmailHTML(req.Q, results),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      req.Q,
		"resultados": results,
	})
}
