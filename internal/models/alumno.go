package models

import (
	"time"

	"gorm.io/gorm"
)

// Alumno represents one student record owned by an account
type Alumno struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerUsername string    `gorm:"size:30;not null;index" json:"-"`
	Nombre        string    `gorm:"size:150;not null" json:"nombre"`
	Curso         string    `gorm:"size:100;not null" json:"curso"`
	Email         string    `gorm:"size:255;not null" json:"email"`
	PhotoURL      string    `gorm:"size:512" json:"photo_url,omitempty"`
	Creado        time.Time `gorm:"not null" json:"creado"`
}

// BeforeCreate assigns the creation timestamp once, server-side
func (a *Alumno) BeforeCreate(tx *gorm.DB) error {
	if a.Creado.IsZero() {
		a.Creado = time.Now()
	}
	return nil
}

// TableName specifies the table name for the Alumno model
func (Alumno) TableName() string {
	return "alumno"
}

// CreateAlumnoRequest represents the data needed to add a student record
type CreateAlumnoRequest struct {
	Nombre string `json:"nombre" binding:"required,max=150"`
	Curso  string `json:"curso" binding:"required,max=100"`
	Email  string `json:"email" binding:"required,email"`
}
