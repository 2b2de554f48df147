package professional_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"clinic-scheduling/availability"
	"clinic-scheduling/professional"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var professionalColumns = []string{"id", "name", "specialty", "active"}

func TestProfessional(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := professional.NewAccessor(db)

	t.Run("create professional", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO professionals (id, name, specialty, active) VALUES ($1, $2, $3, $4)`)).
			WithArgs(sqlmock.AnyArg(), "Dra. Helena", "Dermatology", true).
			WillReturnResult(sqlmock.NewResult(1, 1))

		p, err := a.CreateProfessional(t.Context(), professional.Professional{Name: "Dra. Helena", Specialty: "Dermatology"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.True(t, p.Active)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create professional without name", func(t *testing.T) {
		_, err := a.CreateProfessional(t.Context(), professional.Professional{Name: "  "})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("get professional", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, specialty, active FROM professionals WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(professionalColumns).AddRow(id, "Dr. Paulo", nil, true))

		p, err := a.GetProfessional(t.Context(), id)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, id, p.ID)
		assert.Equal(t, "Dr. Paulo", p.Name)
		assert.Empty(t, p.Specialty)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get professional - no rows", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, specialty, active FROM professionals WHERE id = $1`)).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		p, err := a.GetProfessional(t.Context(), id)
		require.NoError(t, err)
		assert.Nil(t, p)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get active professionals", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, specialty, active FROM professionals WHERE active ORDER BY name`)).
			WillReturnRows(sqlmock.NewRows(professionalColumns).
				AddRow(uuid.New(), "Ana", "Physiotherapy", true).
				AddRow(uuid.New(), "Bia", nil, true))

		ps, err := a.GetProfessionals(t.Context(), true)
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, "Physiotherapy", ps[0].Specialty)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get all professionals - empty", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, specialty, active FROM professionals ORDER BY name`)).
			WillReturnRows(sqlmock.NewRows(professionalColumns))

		ps, err := a.GetProfessionals(t.Context(), false)
		require.NoError(t, err)
		assert.NotNil(t, ps)
		assert.Empty(t, ps)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWeeklyAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := professional.NewAccessor(db)
	id := uuid.New()

	deleteQuery := `DELETE FROM professional_availability WHERE professional_id = $1`
	insertQuery := `INSERT INTO professional_availability (professional_id, day_of_week, start_time, end_time) SELECT $1, unnest($2::smallint[]), unnest($3::time[]), unnest($4::time[])`

	week := []availability.WeeklyAvailability{
		{DayOfWeek: availability.Monday, StartTime: availability.MustParseTimeOfDay("08:00"), EndTime: availability.MustParseTimeOfDay("12:00")},
		{DayOfWeek: availability.Wednesday, StartTime: availability.MustParseTimeOfDay("13:00"), EndTime: availability.MustParseTimeOfDay("18:30")},
	}

	t.Run("set weekly availability", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(id, pq.Array([]int64{1, 3}), pq.Array([]string{"08:00", "13:00"}), pq.Array([]string{"12:00", "18:30"})).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		require.NoError(t, a.SetWeeklyAvailability(t.Context(), id, week))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clear weekly availability", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		require.NoError(t, a.SetWeeklyAvailability(t.Context(), id, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		err := a.SetWeeklyAvailability(t.Context(), id, week)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert availability")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate weekday is rejected", func(t *testing.T) {
		err := a.SetWeeklyAvailability(t.Context(), id, append(week, week[0]))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate availability for Monday")
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		err := a.SetWeeklyAvailability(t.Context(), id, []availability.WeeklyAvailability{
			{DayOfWeek: availability.Friday, StartTime: availability.MustParseTimeOfDay("18:00"), EndTime: availability.MustParseTimeOfDay("08:00")},
		})
		require.Error(t, err)
	})

	t.Run("get weekly availability", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT day_of_week, start_time, end_time FROM professional_availability WHERE professional_id = $1 ORDER BY day_of_week`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"day_of_week", "start_time", "end_time"}).
				AddRow(1, "08:00:00", "12:00:00").
				AddRow(3, "13:00:00", "18:30:00"))

		got, err := a.GetWeeklyAvailability(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, week, got)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get availability for day", func(t *testing.T) {
		query := `SELECT start_time, end_time FROM professional_availability WHERE professional_id = $1 AND day_of_week = $2`
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(id, 3).
			WillReturnRows(sqlmock.NewRows([]string{"start_time", "end_time"}).AddRow("13:00:00", "18:30:00"))

		w, err := a.GetAvailabilityForDay(t.Context(), id, availability.Wednesday)
		require.NoError(t, err)
		require.NotNil(t, w)
		assert.Equal(t, week[1], *w)

		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(id, 0).
			WillReturnError(sql.ErrNoRows)

		w, err = a.GetAvailabilityForDay(t.Context(), id, availability.Sunday)
		require.NoError(t, err)
		assert.Nil(t, w)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProcedures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := professional.NewAccessor(db)
	professionalID := uuid.New()
	procedureColumns := []string{"id", "name", "description", "duration_minutes", "active"}

	t.Run("create procedure", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO procedures (id, name, description, duration_minutes, active) VALUES ($1, $2, $3, $4, $5)`)).
			WithArgs(sqlmock.AnyArg(), "Consultation", "", 45, true).
			WillReturnResult(sqlmock.NewResult(1, 1))

		p, err := a.CreateProcedure(t.Context(), professional.Procedure{Name: "Consultation", DurationMinutes: 45})
		require.NoError(t, err)
		assert.Equal(t, 45, p.DurationMinutes)
		assert.Equal(t, "45m0s", p.Duration().String())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create procedure without duration", func(t *testing.T) {
		_, err := a.CreateProcedure(t.Context(), professional.Procedure{Name: "Consultation"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duration")
	})

	t.Run("get procedure", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, description, duration_minutes, active FROM procedures WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(procedureColumns).AddRow(id, "Cleaning", "Dental cleaning", 30, true))

		p, err := a.GetProcedure(t.Context(), id)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Dental cleaning", p.Description)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("link procedure", func(t *testing.T) {
		procedureID := uuid.New()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO professional_procedures (professional_id, procedure_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`)).
			WithArgs(professionalID, procedureID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, a.LinkProcedure(t.Context(), professionalID, procedureID))

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM professional_procedures WHERE professional_id = $1 AND procedure_id = $2)`)).
			WithArgs(professionalID, procedureID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		offered, err := a.OffersProcedure(t.Context(), professionalID, procedureID)
		require.NoError(t, err)
		assert.True(t, offered)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get procedures for professional", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT p.id, p.name, p.description, p.duration_minutes, p.active FROM procedures p JOIN professional_procedures pp ON pp.procedure_id = p.id WHERE pp.professional_id = $1 AND p.active ORDER BY p.name`)).
			WithArgs(professionalID).
			WillReturnRows(sqlmock.NewRows(procedureColumns).
				AddRow(uuid.New(), "Cleaning", nil, 30, true).
				AddRow(uuid.New(), "Consultation", nil, 45, true))

		ps, err := a.GetProceduresForProfessional(t.Context(), professionalID)
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, "Consultation", ps[1].Name)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPrices(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := professional.NewAccessor(db)

	procedureID := uuid.New()
	professionalID := uuid.New()
	priceColumns := []string{"id", "procedure_id", "professional_id", "amount", "description"}
	deleteQuery := `DELETE FROM prices WHERE procedure_id = $1 AND professional_id IS NOT DISTINCT FROM $2`
	insertQuery := `INSERT INTO prices (id, procedure_id, professional_id, amount, description) VALUES ($1, $2, $3, $4, $5)`
	getPriceQuery := `SELECT id, procedure_id, professional_id, amount, description FROM prices WHERE procedure_id = $1 AND (professional_id = $2 OR professional_id IS NULL) ORDER BY professional_id NULLS LAST LIMIT 1`

	t.Run("set clinic default price", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
			WithArgs(procedureID, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), procedureID, nil, 120.0, "Standard").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		p, err := a.SetPrice(t.Context(), professional.Price{ProcedureID: procedureID, Amount: 120, Description: "Standard"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Nil(t, p.ProfessionalID)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set professional price rolls back on failure", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
			WithArgs(procedureID, professionalID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		_, err := a.SetPrice(t.Context(), professional.Price{ProcedureID: procedureID, ProfessionalID: &professionalID, Amount: 150})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert price")

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		_, err := a.SetPrice(t.Context(), professional.Price{ProcedureID: procedureID, Amount: -1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-negative")
	})

	t.Run("professional price overrides the default", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(getPriceQuery)).
			WithArgs(procedureID, professionalID).
			WillReturnRows(sqlmock.NewRows(priceColumns).AddRow(uuid.New(), procedureID, professionalID, "150.00", nil))

		p, err := a.GetPrice(t.Context(), procedureID, professionalID)
		require.NoError(t, err)
		require.NotNil(t, p)
		require.NotNil(t, p.ProfessionalID)
		assert.Equal(t, professionalID, *p.ProfessionalID)
		assert.InDelta(t, 150.0, p.Amount, 0.001)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no price set", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(getPriceQuery)).
			WithArgs(procedureID, professionalID).
			WillReturnError(sql.ErrNoRows)

		p, err := a.GetPrice(t.Context(), procedureID, professionalID)
		require.NoError(t, err)
		assert.Nil(t, p)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get prices", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, procedure_id, professional_id, amount, description FROM prices WHERE procedure_id = $1 ORDER BY professional_id NULLS FIRST`)).
			WithArgs(procedureID).
			WillReturnRows(sqlmock.NewRows(priceColumns).
				AddRow(uuid.New(), procedureID, nil, 120.0, "Standard").
				AddRow(uuid.New(), procedureID, professionalID, 150.0, nil))

		prices, err := a.GetPrices(t.Context(), procedureID)
		require.NoError(t, err)
		require.Len(t, prices, 2)
		assert.Nil(t, prices[0].ProfessionalID)
		assert.Equal(t, "Standard", prices[0].Description)
		assert.Equal(t, &professionalID, prices[1].ProfessionalID)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}
