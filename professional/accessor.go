package professional

import "database/sql"

// Accessor is the DB layer entrypoint for professionals, their weekly
// working hours and the procedures they perform.
type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}
