// Package models contains the gorm models.
package models

// Setting is a named blob. Slider instance configuration is stored here as JSON.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique;size:191"`
	Value []byte
}
