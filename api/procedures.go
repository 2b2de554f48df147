package api

import (
	"encoding/json"
	"net/http"

	"clinic-scheduling/professional"

	"github.com/google/uuid"
)

func (a *API) createProcedure(w http.ResponseWriter, r *http.Request) {
	var payload professional.Procedure
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
	}

	professionalAccessor := professional.NewAccessor(a.db)
	p, err := professionalAccessor.CreateProcedure(r.Context(), payload)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, p)
}

func (a *API) getProcedure(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "procedure")
	if !ok {
		return
	}

	professionalAccessor := professional.NewAccessor(a.db)
	p, err := professionalAccessor.GetProcedure(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if p == nil {
		a.Response(w, http.StatusNotFound, "procedure not found")
		return
	}

	a.Response(w, http.StatusOK, p)
}

type getProceduresResponse struct {
	Procedures []professional.Procedure `json:"procedures"`
}

func (a *API) getProfessionalProcedures(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "professional")
	if !ok {
		return
	}

	professionalAccessor := professional.NewAccessor(a.db)
	procedures, err := professionalAccessor.GetProceduresForProfessional(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getProceduresResponse{Procedures: procedures})
}

func (a *API) linkProcedure(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := a.pathID(w, r, "id", "professional")
	if !ok {
		return
	}
	procedureID, ok := a.pathID(w, r, "procedureID", "procedure")
	if !ok {
		return
	}

	professionalAccessor := professional.NewAccessor(a.db)
	p, err := professionalAccessor.GetProfessional(r.Context(), professionalID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if p == nil {
		a.Response(w, http.StatusNotFound, "professional not found")
		return
	}

	procedure, err := professionalAccessor.GetProcedure(r.Context(), procedureID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if procedure == nil {
		a.Response(w, http.StatusNotFound, "procedure not found")
		return
	}

	if err := professionalAccessor.LinkProcedure(r.Context(), professionalID, procedureID); err != nil {
		a.InternalError(w, r, err)
		return
	}

	response := map[string]any{
		"professional_id": professionalID.String(),
		"procedure":       procedure,
	}
	a.Response(w, http.StatusOK, response)
}

type setPriceRequest struct {
	ProfessionalID string  `json:"professional_id"`
	Amount         float64 `json:"amount"`
	Description    string  `json:"description"`
}

// setProcedurePrice sets the clinic price of a procedure, or the price one
// professional charges for it when professional_id is given.
func (a *API) setProcedurePrice(w http.ResponseWriter, r *http.Request) {
	procedureID, ok := a.pathID(w, r, "id", "procedure")
	if !ok {
		return
	}

	var req setPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price := professional.Price{
		ProcedureID: procedureID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.ProfessionalID != "" {
		professionalID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "invalid professional ID")
			return
		}
		price.ProfessionalID = &professionalID
	}
	if err := price.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
	}

	ctx := r.Context()
	professionalAccessor := professional.NewAccessor(a.db)

	procedure, err := professionalAccessor.GetProcedure(ctx, procedureID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if procedure == nil {
		a.Response(w, http.StatusNotFound, "procedure not found")
		return
	}

	if price.ProfessionalID != nil {
		p, err := professionalAccessor.GetProfessional(ctx, *price.ProfessionalID)
		if err != nil {
			a.InternalError(w, r, err)
			return
		}
		if p == nil {
			a.Response(w, http.StatusNotFound, "professional not found")
			return
		}
	}

	stored, err := professionalAccessor.SetPrice(ctx, price)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, stored)
}

type getPricesResponse struct {
	Prices []professional.Price `json:"prices"`
}

func (a *API) getProcedurePrices(w http.ResponseWriter, r *http.Request) {
	procedureID, ok := a.pathID(w, r, "id", "procedure")
	if !ok {
		return
	}

	prices, err := professional.NewAccessor(a.db).GetPrices(r.Context(), procedureID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getPricesResponse{Prices: prices})
}

// getProcedurePrice answers what the professional in the query charges for
// the procedure.
func (a *API) getProcedurePrice(w http.ResponseWriter, r *http.Request) {
	procedureID, ok := a.pathID(w, r, "id", "procedure")
	if !ok {
		return
	}

	professionalID, err := uuid.Parse(r.URL.Query().Get("professional_id"))
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid professional ID")
		return
	}

	price, err := professional.NewAccessor(a.db).GetPrice(r.Context(), procedureID, professionalID)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if price == nil {
		a.Response(w, http.StatusNotFound, "price not found")
		return
	}
	a.Response(w, http.StatusOK, price)
}
