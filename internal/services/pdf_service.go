package services

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"fichas/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// ErrRender is returned when a record cannot be rendered into a PDF
var ErrRender = errors.New("failed to render PDF")

// a4HeightPt is the height of an A4 page in points; the sheet layout is
// specified from the bottom edge, gofpdf measures from the top.
const a4HeightPt = 841.89

// PDFService renders the fixed-layout, single-page student sheet
type PDFService struct {
	// location used to localize the creation timestamp on the sheet
	location *time.Location
}

// NewPDFService creates a generator using the server's local timezone
func NewPDFService() *PDFService {
	return &PDFService{location: time.Local}
}

// Render produces the PDF sheet for one record: four left-aligned Helvetica
// lines on an A4 page. Output is byte-identical for identical input and
// timezone, so the creation date embedded in the document is pinned.
func (s *PDFService) Render(alumno *models.Alumno) ([]byte, error) {
	if alumno == nil {
		return nil, fmt.Errorf("%w: nil record", ErrRender)
	}
	if alumno.Creado.IsZero() {
		return nil, fmt.Errorf("%w: record %d has no creation timestamp", ErrRender, alumno.ID)
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)

	creadoLocal := alumno.Creado.In(s.location)

	lines := []struct {
		y    float64 // distance from the bottom edge
		text string
	}{
		{800, fmt.Sprintf("Ficha del alumno: %s", alumno.Nombre)},
		{780, fmt.Sprintf("Curso: %s", alumno.Curso)},
		{760, fmt.Sprintf("Email: %s", alumno.Email)},
		{740, fmt.Sprintf("Creado: %s", creadoLocal.Format("02/01/2006 15:04"))},
	}
	for _, line := range lines {
		pdf.Text(50, a4HeightPt-line.y, line.text)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}
