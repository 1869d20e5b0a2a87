package handlers

import (
	"log"
	"net/http"

	"fichas/internal/ratelimit"
	"fichas/internal/services"
	"fichas/internal/store"

	"github.com/gin-gonic/gin"
)

// Searcher runs encyclopedia keyword searches
type Searcher interface {
	Search(query string) ([]services.ScrapeResult, error)
}

// Deps holds the collaborators the handlers orchestrate
type Deps struct {
	Alumnos  *store.AlumnoStore
	Email    services.Sender
	PDF      *services.PDFService
	Photos   *services.PhotoService // nil disables photo uploads
	Scraper  Searcher
	SendGate *ratelimit.Cooldown
	// MailPool dispatches the PDF email in the background when AsyncEmail
	// is set; errors are then only logged, never shown to the user
	MailPool   *services.MailWorker
	AsyncEmail bool
}

var deps Deps

// Init wires the handler package; called once from main and from tests
func Init(d Deps) {
	deps = d
}

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// deliverBestEffort sends courtesy mail; failures are logged, never surfaced
func deliverBestEffort(msg *services.Message) {
	if err := deps.Email.Send(msg); err != nil {
		log.Printf("Courtesy email to %s not delivered: %v", msg.To, err)
	}
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Bienvenido a Fichas!")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
