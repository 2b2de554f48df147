package api

import (
	"encoding/json"
	"net/http"

	"clinic-scheduling/availability"
	"clinic-scheduling/professional"
)

func (a *API) createProfessional(w http.ResponseWriter, r *http.Request) {
	var payload professional.Professional
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
	}

	professionalAccessor := professional.NewAccessor(a.db)
	p, err := professionalAccessor.CreateProfessional(r.Context(), payload)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, p)
}

func (a *API) getProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "professional")
	if !ok {
		return
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

	a.Response(w, http.StatusOK, p)
}

type getProfessionalsResponse struct {
	Professionals []professional.Professional `json:"professionals"`
}

// getProfessionals lists active professionals unless ?all=true is given.
func (a *API) getProfessionals(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"

	professionalAccessor := professional.NewAccessor(a.db)
	professionals, err := professionalAccessor.GetProfessionals(r.Context(), activeOnly)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getProfessionalsResponse{Professionals: professionals})
}

type weeklyAvailabilityPayload struct {
	Availability []availability.WeeklyAvailability `json:"availability"`
}

func (a *API) setAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "professional")
	if !ok {
		return
	}

	var req weeklyAvailabilityPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := professional.ValidateWeek(req.Availability); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
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

	if err := professionalAccessor.SetWeeklyAvailability(r.Context(), id, req.Availability); err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.invalidateSlots(r.Context(), &id)

	week := req.Availability
	if week == nil {
		week = []availability.WeeklyAvailability{}
	}
	a.Response(w, http.StatusOK, weeklyAvailabilityPayload{Availability: week})
}

func (a *API) getAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "professional")
	if !ok {
		return
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

	week, err := professionalAccessor.GetWeeklyAvailability(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, weeklyAvailabilityPayload{Availability: week})
}
