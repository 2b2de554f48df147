package block_test

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"clinic-scheduling/block"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var blockColumns = []string{"id", "professional_id", "start_at", "end_at", "reason", "created_at"}

func TestBlock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := block.NewAccessor(db)

	professionalID := uuid.New()
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 10, 30, 11, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	t.Run("create block", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO schedule_blocks (id, professional_id, start_at, end_at, reason, created_at) VALUES ($1, $2, $3, $4, $5, $6)`)).
			WithArgs(sqlmock.AnyArg(), professionalID, start, end, "Conference", now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		b, err := a.CreateBlock(t.Context(), block.Block{ProfessionalID: &professionalID, Start: start, End: end, Reason: "Conference"}, now)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, b.ID)
		assert.False(t, b.ClinicWide())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create clinic wide block", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO schedule_blocks`)).
			WithArgs(sqlmock.AnyArg(), nil, start, end, "Holiday", now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		b, err := a.CreateBlock(t.Context(), block.Block{Start: start, End: end, Reason: "Holiday"}, now)
		require.NoError(t, err)
		assert.True(t, b.ClinicWide())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create block with inverted range", func(t *testing.T) {
		_, err := a.CreateBlock(t.Context(), block.Block{Start: end, End: start}, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start must be before end")
	})

	t.Run("get block", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, professional_id, start_at, end_at, reason, created_at FROM schedule_blocks WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(blockColumns).AddRow(id, nil, start, end, nil, now))

		b, err := a.GetBlock(t.Context(), id)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.True(t, b.ClinicWide())
		assert.Empty(t, b.Reason)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM schedule_blocks WHERE id = $1`)).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		b, err = a.GetBlock(t.Context(), id)
		require.NoError(t, err)
		assert.Nil(t, b)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete block", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM schedule_blocks WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		deleted, err := a.DeleteBlock(t.Context(), id)
		require.NoError(t, err)
		assert.True(t, deleted)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM schedule_blocks WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		deleted, err = a.DeleteBlock(t.Context(), id)
		require.NoError(t, err)
		assert.False(t, deleted)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get blocks overlapping", func(t *testing.T) {
		from := time.Date(2024, 10, 30, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, professional_id, start_at, end_at, reason, created_at FROM schedule_blocks WHERE (professional_id = $1 OR professional_id IS NULL) AND start_at < $3 AND end_at > $2 ORDER BY start_at`)).
			WithArgs(professionalID, from, to).
			WillReturnRows(sqlmock.NewRows(blockColumns).
				AddRow(uuid.New(), nil, from.AddDate(0, 0, -1), from.Add(10*time.Hour), "Holiday", now).
				AddRow(uuid.New(), professionalID, start, end, "Conference", now))

		blocks, err := a.GetBlocksOverlapping(t.Context(), professionalID, from, to)
		require.NoError(t, err)
		require.Len(t, blocks, 2)
		assert.True(t, blocks[0].ClinicWide())
		require.NotNil(t, blocks[1].ProfessionalID)
		assert.Equal(t, professionalID, *blocks[1].ProfessionalID)

		intervals := block.Interval(blocks)
		require.Len(t, intervals, 2)
		assert.Equal(t, start, intervals[1].Start)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}
