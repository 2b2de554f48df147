package api

import (
	"encoding/json"
	"net/http"
	"time"

	"clinic-scheduling/client"
)

type createClientRequest struct {
	FullName  string  `json:"full_name"`
	CPF       *string `json:"cpf"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	BirthDate string  `json:"birth_date"`
}

func (a *API) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload := client.Client{
		FullName: req.FullName,
		CPF:      req.CPF,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	if req.BirthDate != "" {
		birth, err := time.Parse(time.DateOnly, req.BirthDate)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
			return
		}
		payload.BirthDate = &birth
	}

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
	}

	clientAccessor := client.NewAccessor(a.db)
	c, err := clientAccessor.CreateClient(r.Context(), payload, a.now())
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, c)
}

func (a *API) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "client")
	if !ok {
		return
	}

	clientAccessor := client.NewAccessor(a.db)
	c, err := clientAccessor.GetClient(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if c == nil {
		a.Response(w, http.StatusNotFound, "client not found")
		return
	}

	a.Response(w, http.StatusOK, c)
}

type getClientsResponse struct {
	Clients []client.Client `json:"clients"`
}

func (a *API) getClients(w http.ResponseWriter, r *http.Request) {
	clientAccessor := client.NewAccessor(a.db)
	clients, err := clientAccessor.GetClients(r.Context())
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getClientsResponse{Clients: clients})
}
