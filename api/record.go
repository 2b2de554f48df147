package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-scheduling/availability"
	"clinic-scheduling/client"
	"clinic-scheduling/record"

	"github.com/google/uuid"
)

func (a *API) createQuestion(w http.ResponseWriter, r *http.Request) {
	var payload record.Question
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
	}

	q, err := record.NewAccessor(a.db).CreateQuestion(r.Context(), payload, a.now())
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, q)
}

type getQuestionsResponse struct {
	Questions []record.Question `json:"questions"`
}

// getQuestions lists the active intake questions; all=true adds retired ones.
func (a *API) getQuestions(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"

	questions, err := record.NewAccessor(a.db).GetQuestions(r.Context(), activeOnly)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getQuestionsResponse{Questions: questions})
}

type setQuestionActiveRequest struct {
	Active *bool `json:"active"`
}

func (a *API) setQuestionActive(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "question")
	if !ok {
		return
	}

	var req setQuestionActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		a.Response(w, http.StatusBadRequest, "active is required")
		return
	}

	found, err := record.NewAccessor(a.db).SetQuestionActive(r.Context(), id, *req.Active)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if !found {
		a.Response(w, http.StatusNotFound, "question not found")
		return
	}

	response := map[string]any{
		"id":     id.String(),
		"active": *req.Active,
	}
	a.Response(w, http.StatusOK, response)
}

type answersPayload struct {
	Answers []record.Answer `json:"answers"`
}

// saveAnswers replaces the intake answers given at an appointment.
func (a *API) saveAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req answersPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	appt, err := a.newAppointmentAccessor().GetAppointment(ctx, id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if appt == nil {
		a.Response(w, http.StatusNotFound, "appointment not found")
		return
	}

	err = record.NewAccessor(a.db).SaveAnswers(ctx, id, req.Answers)
	switch {
	case errors.Is(err, record.ErrDuplicateAnswer):
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, record.ErrUnknownQuestion), errors.Is(err, record.ErrAnswerType):
		a.Response(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		a.InternalError(w, r, err)
		return
	}

	answers := req.Answers
	if answers == nil {
		answers = []record.Answer{}
	}
	a.Response(w, http.StatusOK, answersPayload{Answers: answers})
}

func (a *API) getAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "appointment")
	if !ok {
		return
	}

	answers, err := record.NewAccessor(a.db).GetAnswers(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, answersPayload{Answers: answers})
}

type signConsentRequest struct {
	SignedBy string `json:"signed_by"`
}

// signConsent records the consent term of an appointment. The signer address
// is the client address as seen by the rate limiter.
func (a *API) signConsent(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req signConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	consent := record.Consent{
		AppointmentID: id,
		SignedBy:      req.SignedBy,
		SignerIP:      a.clientIP(r),
	}
	if err := consent.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
	}

	ctx := r.Context()
	appt, err := a.newAppointmentAccessor().GetAppointment(ctx, id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if appt == nil {
		a.Response(w, http.StatusNotFound, "appointment not found")
		return
	}
	if appt.Status == availability.StatusCancelled {
		a.Response(w, http.StatusUnprocessableEntity, "appointment is cancelled")
		return
	}

	signed, err := record.NewAccessor(a.db).SignConsent(ctx, consent, a.now())
	if errors.Is(err, record.ErrAlreadySigned) {
		a.Response(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, signed)
}

func (a *API) getConsent(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "appointment")
	if !ok {
		return
	}

	consent, err := record.NewAccessor(a.db).GetConsent(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if consent == nil {
		a.Response(w, http.StatusNotFound, "consent not found")
		return
	}
	a.Response(w, http.StatusOK, consent)
}

type clientRecordResponse struct {
	ClientID uuid.UUID      `json:"client_id"`
	Entries  []record.Entry `json:"entries"`
}

// getClientRecord returns every intake answer the client gave, grouped by
// appointment in chronological order.
func (a *API) getClientRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "client")
	if !ok {
		return
	}

	ctx := r.Context()
	c, err := client.NewAccessor(a.db).GetClient(ctx, id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if c == nil {
		a.Response(w, http.StatusNotFound, "client not found")
		return
	}

	entries, err := record.NewAccessor(a.db).GetClientRecord(ctx, id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, clientRecordResponse{ClientID: id, Entries: entries})
}
