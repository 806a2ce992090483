package index

import (
	"fmt"
	"time"
)

// Upsert inserts or replaces a note row.
func (db *DB) Upsert(path, checksum string) error {
	_, err := db.conn.Exec(`
		INSERT INTO notes (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, checksum, time.Now())
	if err != nil {
		return fmt.Errorf("index: upsert: %w", err)
	}
	return nil
}

// Delete removes a note row.
func (db *DB) Delete(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete: %w", err)
	}
	return nil
}

// Checksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) Checksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns every indexed path with its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// PathsByChecksum returns every indexed path recorded with the given
// checksum. Move detection matches these against the files still on disk.
func (db *DB) PathsByChecksum(checksum string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM notes WHERE checksum = ?`, checksum)
	if err != nil {
		return nil, fmt.Errorf("index: paths by checksum: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
