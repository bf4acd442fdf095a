// Package store owns the contact collection of a session and keeps its
// persistent copy in sync. Every mutation is written through immediately.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/jeanpaul/phonebook/internal/contact"
)

// Backend persists a whole contact collection. Save always replaces the
// previous content in full.
type Backend interface {
	Load() ([]contact.Contact, error)
	Save(contacts []contact.Contact) error
	// Location names the storage for messages and logs.
	Location() string
}

// SaveError reports a failed write. The in-memory collection keeps the
// change that triggered the write.
type SaveError struct {
	Location string
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Location, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// PermissionDenied reports whether the write failed for lack of permission.
func (e *SaveError) PermissionDenied() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// Store is the single owner of the session's contact collection.
// Callers only ever receive copies.
type Store struct {
	backend  Backend
	contacts []contact.Contact
	log      *slog.Logger
}

// Open loads the collection from backend.
func Open(backend Backend, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	contacts, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", backend.Location(), err)
	}
	if contacts == nil {
		contacts = []contact.Contact{}
	}
	log.Debug("contacts loaded", "location", backend.Location(), "count", len(contacts))
	return &Store{backend: backend, contacts: contacts, log: log}, nil
}

// Location returns where the collection is persisted.
func (s *Store) Location() string { return s.backend.Location() }

// Contacts returns a snapshot of the collection in insertion order.
func (s *Store) Contacts() []contact.Contact {
	return slices.Clone(s.contacts)
}

func (s *Store) Len() int { return len(s.contacts) }

// Get returns the contact with the given id.
func (s *Store) Get(id int) (contact.Contact, error) {
	i := s.index(id)
	if i < 0 {
		return contact.Contact{}, fmt.Errorf("%w: id %d", contact.ErrNotFound, id)
	}
	return s.contacts[i], nil
}

// NextID is recomputed from the current collection on every call.
func (s *Store) NextID() int {
	return contact.NextID(s.contacts)
}

// Add appends a new contact and persists the collection. When only the
// write fails the contact is still returned along with a *SaveError.
func (s *Store) Add(name, number string) (contact.Contact, error) {
	if err := contact.ValidateNew(name, number); err != nil {
		return contact.Contact{}, err
	}

	c := contact.Contact{ID: s.NextID(), Name: name, Number: number}
	s.contacts = append(s.contacts, c)
	s.log.Info("contact added", "id", c.ID)
	return c, s.Save()
}

// Update replaces the non-empty fields of the contact with the given id.
// A malformed number aborts the whole update, name included.
func (s *Store) Update(id int, name, number string) (contact.Contact, error) {
	i := s.index(id)
	if i < 0 {
		return contact.Contact{}, fmt.Errorf("%w: id %d", contact.ErrNotFound, id)
	}
	if err := contact.ValidateNumberChange(number); err != nil {
		return s.contacts[i], err
	}

	if name != "" {
		s.contacts[i].Name = name
	}
	if number != "" {
		s.contacts[i].Number = number
	}
	s.log.Info("contact updated", "id", id)
	return s.contacts[i], s.Save()
}

// Delete removes every contact carrying id and persists the collection,
// even when nothing matched. It returns contact.ErrNotFound in that case.
func (s *Store) Delete(id int) error {
	before := len(s.contacts)
	s.contacts = slices.DeleteFunc(s.contacts, func(c contact.Contact) bool {
		return c.ID == id
	})
	removed := before - len(s.contacts)
	s.log.Info("contacts deleted", "id", id, "removed", removed)

	if err := s.Save(); err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%w: id %d", contact.ErrNotFound, id)
	}
	return nil
}

// Save writes the whole collection to the backend.
func (s *Store) Save() error {
	if err := s.backend.Save(s.contacts); err != nil {
		s.log.Error("save failed", "location", s.backend.Location(), "err", err)
		return &SaveError{Location: s.backend.Location(), Err: err}
	}
	s.log.Debug("contacts saved", "location", s.backend.Location(), "count", len(s.contacts))
	return nil
}

// Close releases the backend if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) index(id int) int {
	return slices.IndexFunc(s.contacts, func(c contact.Contact) bool {
		return c.ID == id
	})
}
