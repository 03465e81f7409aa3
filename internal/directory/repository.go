// Package directory resolves user identities to contact emails for the
// supervisor tooling.
package directory

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNoIDs indicates an empty lookup request.
var ErrNoIDs = errors.New("directory: no ids given")

// UserRepository reads user contact data.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EmailsByIDs returns a map from user id to email for the ids that exist.
// Unknown ids are simply absent from the result.
func (r *UserRepository) EmailsByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email FROM users WHERE id = ANY($1)`, idArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, err
		}
		out[id] = email
	}
	return out, rows.Err()
}

// idArray renders ids as a postgres text array literal so the lookup stays
// a single round trip without driver-specific array support.
func idArray(ids []string) string {
	buf := make([]byte, 0, 16*len(ids))
	buf = append(buf, '{')
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		for j := 0; j < len(id); j++ {
			if id[j] == '"' || id[j] == '\\' {
				buf = append(buf, '\\')
			}
			buf = append(buf, id[j])
		}
		buf = append(buf, '"')
	}
	buf = append(buf, '}')
	return string(buf)
}
