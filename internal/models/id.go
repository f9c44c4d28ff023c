package models

import "github.com/google/uuid"

// NewID returns a fresh random identifier for a stored entity.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the shape produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
