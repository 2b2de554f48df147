package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"clinic-scheduling/appointment"
	"clinic-scheduling/availability"
	"clinic-scheduling/client"
	"clinic-scheduling/professional"

	"github.com/google/uuid"
)

type createAppointmentRequest struct {
	ClientID       string    `json:"client_id"`
	ProfessionalID string    `json:"professional_id"`
	ProcedureID    string    `json:"procedure_id"`
	Start          time.Time `json:"start"`
	Price          *float64  `json:"price"`
	Notes          string    `json:"notes"`
}

// createAppointment books a procedure with a professional. The end time comes
// from the procedure duration and the whole range must fall inside the
// professional's working hours of that day. Without an explicit price the
// listed price of the procedure applies.
func (a *API) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid client ID")
		return
	}
	professionalID, err := uuid.Parse(req.ProfessionalID)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid professional ID")
		return
	}
	procedureID, err := uuid.Parse(req.ProcedureID)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid procedure ID")
		return
	}
	if req.Start.IsZero() {
		a.Response(w, http.StatusBadRequest, "start is required")
		return
	}
	if !req.Start.After(a.now()) {
		a.Response(w, http.StatusUnprocessableEntity, "start must be in the future")
		return
	}

	ctx := r.Context()

	c, err := client.NewAccessor(a.db).GetClient(ctx, clientID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if c == nil || !c.Active {
		a.Response(w, http.StatusNotFound, "client not found")
		return
	}

	professionalAccessor := professional.NewAccessor(a.db)
	p, err := professionalAccessor.GetProfessional(ctx, professionalID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if p == nil || !p.Active {
		a.Response(w, http.StatusNotFound, "professional not found")
		return
	}

	procedure, err := professionalAccessor.GetProcedure(ctx, procedureID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if procedure == nil || !procedure.Active {
		a.Response(w, http.StatusNotFound, "procedure not found")
		return
	}

	offered, err := professionalAccessor.OffersProcedure(ctx, professionalID, procedureID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if !offered {
		a.Response(w, http.StatusUnprocessableEntity, appointment.ErrProcedureNotOffered.Error())
		return
	}

	start := req.Start.In(a.location)
	end := start.Add(procedure.Duration())

	window, err := professionalAccessor.GetAvailabilityForDay(ctx, professionalID, availability.DayOfWeekOf(start))
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if window == nil || start.Before(window.StartTime.On(start)) || end.After(window.EndTime.On(start)) {
		a.Response(w, http.StatusUnprocessableEntity, "appointment is outside the professional's working hours")
		return
	}

	price := req.Price
	if price == nil {
		listed, err := professionalAccessor.GetPrice(ctx, procedureID, professionalID)
		if err != nil {
			a.InternalError(w, r, err)
			return
		}
		if listed != nil {
			price = &listed.Amount
		}
	}

	appt, err := a.newAppointmentAccessor().CreateAppointment(ctx, appointment.Appointment{
		ClientID:       clientID,
		ProfessionalID: professionalID,
		ProcedureID:    procedureID,
		Start:          start,
		End:            end,
		Price:          price,
		Notes:          req.Notes,
	}, a.now())
	if errors.Is(err, appointment.ErrSlotTaken) {
		a.Response(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.invalidateSlots(ctx, &professionalID)

	a.Response(w, http.StatusCreated, appt)
}

func (a *API) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appt, err := a.newAppointmentAccessor().GetAppointment(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if appt == nil {
		a.Response(w, http.StatusNotFound, "appointment not found")
		return
	}

	a.Response(w, http.StatusOK, appt)
}

type getAppointmentsResponse struct {
	Appointments []appointment.Appointment `json:"appointments"`
}

// getAppointments is the admin listing. Supported query parameters are
// professional_id, client_id, status, from and to (YYYY-MM-DD, both
// inclusive), limit and offset.
func (a *API) getAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter appointment.Filter

	if v := query.Get("professional_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "invalid professional ID")
			return
		}
		filter.ProfessionalID = &id
	}
	if v := query.Get("client_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "invalid client ID")
			return
		}
		filter.ClientID = &id
	}
	if v := query.Get("status"); v != "" {
		status, err := availability.ParseBookingStatus(v)
		if err != nil {
			a.Response(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}
	if v := query.Get("from"); v != "" {
		from, err := a.parseDate(v)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		filter.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, err := a.parseDate(v)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	for name, dst := range map[string]*uint{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := query.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = uint(n)
	}

	appointments, err := a.newAppointmentAccessor().ListAppointments(r.Context(), filter)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getAppointmentsResponse{Appointments: appointments})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (a *API) updateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := availability.ParseBookingStatus(req.Status)
	if err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := a.newAppointmentAccessor().UpdateStatus(r.Context(), id, status)
	if errors.Is(err, appointment.ErrInvalidTransition) {
		a.Response(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if appt == nil {
		a.Response(w, http.StatusNotFound, "appointment not found")
		return
	}
	a.invalidateSlots(r.Context(), &appt.ProfessionalID)

	a.Response(w, http.StatusOK, appt)
}
