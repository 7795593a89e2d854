package models

// Session is a row of the gorm backed session storage used with sqlite.
type Session struct {
	ID        string `gorm:"primaryKey;size:128"`
	Data      []byte
	ExpiresAt int64 `gorm:"index"`
}

// TableName overrides the gorm table name.
func (Session) TableName() string {
	return "sessions"
}
