// Package session keeps the logged in user, the anti-forgery token and the
// pending notices of a browser session in a key value storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/web/sesskey"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"

	localsData = "session.data"
	localsID   = "session.id"
)

var (
	// ErrNoSession is returned when the request carries no valid session.
	ErrNoSession = errors.New("no session")

	// ErrNotInitialized is returned when Init was not called.
	ErrNotInitialized = errors.New("session storage not initialized")
)

// Storage is the subset of the gofiber storage drivers used for sessions.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// Store is the global session storage.
var Store Storage

// Init sets the storage backend.
func Init(storage Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = storage
}

// Notice is a message shown once on the next rendered page.
type Notice struct {
	Type    string // success, danger, info
	Message string
}

// Data represents the session data structure.
type Data struct {
	User      models.User
	SessKey   string
	IDToken   string `json:",omitempty"`
	Notices   []Notice
	ExpiresAt time.Time
}

// New returns session data for user valid for exp.
func New(user *models.User, exp time.Duration) *Data {
	return &Data{
		User:      *user,
		SessKey:   sesskey.New(),
		ExpiresAt: time.Now().Add(exp),
	}
}

// Save writes the session data for sessionID until it expires.
func (s *Data) Save(sessionID string) error {
	if Store == nil {
		return ErrNotInitialized
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrNoSession
	}

	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Set(sessionID, out, ttl)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	if Store == nil {
		return ErrNotInitialized
	}

	byteData, err := Store.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNoSession
	}

	if err = json.Unmarshal(byteData, s); err != nil {
		return err
	}

	if s.User.ID == 0 || time.Now().After(s.ExpiresAt) {
		return ErrNoSession
	}

	return nil
}

// AddNotice queues a notice for the next page.
func (s *Data) AddNotice(typ, message string) {
	s.Notices = append(s.Notices, Notice{Type: typ, Message: message})
}

// TakeNotices returns and clears the queued notices.
func (s *Data) TakeNotices() []Notice {
	n := s.Notices
	s.Notices = nil

	return n
}

// Delete removes a session.
func Delete(sessionID string) error {
	if Store == nil {
		return ErrNotInitialized
	}

	return Store.Delete(sessionID)
}

// Load returns the session of the request. The result is cached in the
// request locals so handlers and middleware share one copy.
func Load(c fiber.Ctx) (*Data, string, error) {
	if d, ok := c.Locals(localsData).(*Data); ok {
		id, _ := c.Locals(localsID).(string)

		return d, id, nil
	}

	sessionID := c.Cookies(CookieName)
	if sessionID == "" {
		return nil, "", ErrNoSession
	}

	d := new(Data)
	if err := d.Read(sessionID); err != nil {
		return nil, "", err
	}

	c.Locals(localsData, d)
	c.Locals(localsID, sessionID)

	return d, sessionID, nil
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
