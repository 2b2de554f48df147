package record

import "database/sql"

// Accessor is the DB layer entrypoint for the clinical record: the intake
// questions, the answers given at each appointment and the signed consent terms.
type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}
