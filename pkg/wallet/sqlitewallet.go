/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wallet

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

const (
	sqliteDriver = "sqlite"

	createIdentitiesTable = `CREATE TABLE IF NOT EXISTS identities (
	label TEXT PRIMARY KEY,
	content BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`
	upsertIdentity = `INSERT INTO identities (label, content, updated_at) VALUES (?, ?, ?)
ON CONFLICT(label) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`
	selectIdentity = `SELECT content FROM identities WHERE label = ?`
	countIdentity  = `SELECT COUNT(*) FROM identities WHERE label = ?`
	deleteIdentity = `DELETE FROM identities WHERE label = ?`
	listIdentities = `SELECT label FROM identities ORDER BY label`
)

// SQLiteWallet is a wallet kept in a single SQLite database file.
// Close must be called to release the database handle.
type SQLiteWallet struct {
	*Wallet
	db *sql.DB
}

type sqliteBackend struct {
	db *sql.DB
}

// NewSQLiteWallet opens (and creates if needed) the database at dataSource.
func NewSQLiteWallet(dataSource string) (*SQLiteWallet, error) {
	db, err := sql.Open(sqliteDriver, dataSource)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db [%s]", sqliteDriver)
	}
	// a single writer keeps SQLite from reporting SQLITE_BUSY inside one process
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createIdentitiesTable); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create identities table")
	}

	return &SQLiteWallet{Wallet: NewWalletWithBackend(&sqliteBackend{db}), db: db}, nil
}

// Close releases the database.
func (w *SQLiteWallet) Close() error {
	return w.db.Close()
}

func (s *sqliteBackend) Put(label string, content []byte) error {
	_, err := s.db.Exec(upsertIdentity, label, content, time.Now().Unix())
	return errors.Wrapf(err, "failed to store %s", label)
}

func (s *sqliteBackend) Get(label string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRow(selectIdentity, label).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "no row for %s", label)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s", label)
	}
	return content, nil
}

func (s *sqliteBackend) Exists(label string) (bool, error) {
	var count int
	if err := s.db.QueryRow(countIdentity, label).Scan(&count); err != nil {
		return false, errors.Wrapf(err, "failed to query %s", label)
	}
	return count > 0, nil
}

func (s *sqliteBackend) Remove(label string) error {
	_, err := s.db.Exec(deleteIdentity, label)
	return errors.Wrapf(err, "failed to delete %s", label)
}

func (s *sqliteBackend) List() ([]string, error) {
	rows, err := s.db.Query(listIdentities)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list identities")
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, errors.Wrap(err, "failed to scan label")
		}
		labels = append(labels, label)
	}
	return labels, errors.Wrap(rows.Err(), "failed to iterate identities")
}
