package api

import (
	"net/http"
	"time"

	"clinic-scheduling/appointment"
	"clinic-scheduling/availability"
	"clinic-scheduling/block"
	"clinic-scheduling/professional"

	"go.uber.org/zap"
)

type getSlotsResponse struct {
	Date  string                   `json:"date"`
	Slots []availability.TimeOfDay `json:"slots"`
}

func (a *API) newAppointmentAccessor() *appointment.Accessor {
	return appointment.NewAccessor(a.db, professional.NewAccessor(a.db), block.NewAccessor(a.db))
}

// getSlots answers with the free slot start times of a professional on the
// date given as ?date=YYYY-MM-DD. The list is a snapshot and reserves nothing;
// booking runs its own conflict check.
func (a *API) getSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "professional")
	if !ok {
		return
	}

	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		a.Response(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := a.parseDate(rawDate)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	// The key is taken before any database read so a concurrent invalidation
	// retires whatever this lookup stores.
	var key string
	if a.cache != nil {
		key, err = a.cache.Key(r.Context(), id, date, a.slotLength, a.rule)
		if err != nil {
			a.logger.Warn("slot cache key failed", zap.Error(err))
		}
	}
	if key != "" {
		slots, hit, err := a.cache.Get(r.Context(), key)
		if err != nil {
			a.logger.Warn("slot cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			a.Response(w, http.StatusOK, getSlotsResponse{Date: date.Format(time.DateOnly), Slots: slots})
			return
		}
	}

	professionalAccessor := professional.NewAccessor(a.db)
	p, err := professionalAccessor.GetProfessional(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if p == nil {
		a.Response(w, http.StatusNotFound, "professional not found")
		return
	}

	slots := []availability.TimeOfDay{}
	if p.Active {
		slots, err = a.newAppointmentAccessor().AvailableSlots(r.Context(), id, date, appointment.SlotOptions{
			SlotLength: a.slotLength,
			Rule:       a.rule,
		})
		if err != nil {
			a.InternalError(w, r, err)
			return
		}
	}

	if key != "" {
		if err := a.cache.Set(r.Context(), key, slots); err != nil {
			a.logger.Warn("slot cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	a.Response(w, http.StatusOK, getSlotsResponse{Date: date.Format(time.DateOnly), Slots: slots})
}
