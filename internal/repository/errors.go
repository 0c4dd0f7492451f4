// Package repository contains the data access layer, separated from HTTP
// handlers and business services. Sentinel errors defined here let higher
// layers distinguish failure scenarios without inspecting driver errors.
package repository

import (
	"database/sql"
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested row does not exist, or exists
// outside the scope the query was bound to. The two cases are deliberately
// indistinguishable to avoid leaking record existence.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert or update violates a unique key
// (email, username, tenant email). The unique constraints in the store are
// the authoritative guard against check-then-act races; callers may run
// their own pre-checks but must still handle this error on write.
var ErrDuplicate = errors.New("duplicate key")

// isDuplicateKey recognizes MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// nullStr maps the empty string to SQL NULL so optional unique columns
// (username) do not collide on "".
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullID maps zero to SQL NULL for optional foreign keys.
func nullID(id uint64) any {
	if id == 0 {
		return nil
	}
	return id
}

func strOf(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func idOf(ni sql.NullInt64) uint64 {
	if ni.Valid && ni.Int64 > 0 {
		return uint64(ni.Int64)
	}
	return 0
}
