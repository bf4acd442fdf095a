package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jeanpaul/phonebook/internal/contact"
)

// SQLite keeps the collection in a single table. The position column
// preserves insertion order; ids are stored as data, not as keys, so the
// table mirrors the JSON file exactly.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Backend = (*SQLite)(nil)

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrateContacts(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &SQLite{db: db, path: path}, nil
}

func migrateContacts(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS contacts (
    position INTEGER PRIMARY KEY,
    id INTEGER NOT NULL,
    name TEXT NOT NULL,
    number TEXT NOT NULL
);
`)
	return err
}

func (s *SQLite) Location() string { return s.path }

func (s *SQLite) Load() ([]contact.Contact, error) {
	rows, err := s.db.Query(`SELECT id, name, number FROM contacts ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]contact.Contact, 0, 64)
	for rows.Next() {
		var c contact.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Number); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Save rewrites the table in one transaction.
func (s *SQLite) Save(contacts []contact.Contact) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM contacts`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO contacts(position, id, name, number) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range contacts {
		if _, err := stmt.Exec(i, c.ID, c.Name, c.Number); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
