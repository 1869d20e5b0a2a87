package store

import (
	"errors"
	"fmt"
	"strings"

	"fichas/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound is returned when no record with that id belongs to the owner
	ErrRecordNotFound = errors.New("alumno not found")
	// ErrValidation is returned for missing or malformed record fields
	ErrValidation = errors.New("invalid alumno data")
)

// AlumnoStore persists student records, keyed by owner and id
type AlumnoStore struct {
	db *gorm.DB
}

// NewAlumnoStore creates a store backed by the given database
func NewAlumnoStore(db *gorm.DB) *AlumnoStore {
	return &AlumnoStore{db: db}
}

// Create persists a new record with a server-assigned id and creation timestamp
func (s *AlumnoStore) Create(owner, nombre, curso, email string) (*models.Alumno, error) {
	nombre = strings.TrimSpace(nombre)
	curso = strings.TrimSpace(curso)
	email = strings.TrimSpace(email)

	if nombre == "" || curso == "" || email == "" {
		return nil, fmt.Errorf("%w: nombre, curso and email are required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: malformed email %q", ErrValidation, email)
	}

	alumno := models.Alumno{
		OwnerUsername: owner,
		Nombre:        nombre,
		Curso:         curso,
		Email:         email,
	}
	if err := s.db.Create(&alumno).Error; err != nil {
		return nil, fmt.Errorf("failed to create alumno: %w", err)
	}
	return &alumno, nil
}

// ListByOwner returns all records for that owner in insertion order
func (s *AlumnoStore) ListByOwner(owner string) ([]models.Alumno, error) {
	var alumnos []models.Alumno
	if err := s.db.Where("owner_username = ?", owner).Order("id").Find(&alumnos).Error; err != nil {
		return nil, fmt.Errorf("failed to list alumnos: %w", err)
	}
	return alumnos, nil
}

// GetByOwnerAndID returns the record only if it belongs to the owner. Records
// owned by other accounts look exactly like missing ones.
func (s *AlumnoStore) GetByOwnerAndID(owner string, id uint) (*models.Alumno, error) {
	var alumno models.Alumno
	err := s.db.Where("id = ? AND owner_username = ?", id, owner).First(&alumno).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch alumno: %w", err)
	}
	return &alumno, nil
}

// SetPhotoURL stores the uploaded photo location on an owned record
func (s *AlumnoStore) SetPhotoURL(owner string, id uint, url string) error {
	res := s.db.Model(&models.Alumno{}).
		Where("id = ? AND owner_username = ?", id, owner).
		Update("photo_url", url)
	if res.Error != nil {
		return fmt.Errorf("failed to update photo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
