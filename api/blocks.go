package api

import (
	"encoding/json"
	"net/http"
	"time"

	"clinic-scheduling/block"
	"clinic-scheduling/professional"

	"github.com/google/uuid"
)

type createBlockRequest struct {
	ProfessionalID *string   `json:"professional_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Reason         string    `json:"reason"`
}

// createBlock adds a schedule block. Without professional_id the block closes
// the whole clinic.
func (a *API) createBlock(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload := block.Block{
		Start:  req.Start,
		End:    req.End,
		Reason: req.Reason,
	}
	if req.ProfessionalID != nil && *req.ProfessionalID != "" {
		professionalID, err := uuid.Parse(*req.ProfessionalID)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "invalid professional ID")
			return
		}
		payload.ProfessionalID = &professionalID
	}

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
	}

	if payload.ProfessionalID != nil {
		p, err := professional.NewAccessor(a.db).GetProfessional(r.Context(), *payload.ProfessionalID)
		if err != nil {
			a.InternalError(w, r, err)
			return
		}
		if p == nil {
			a.Response(w, http.StatusNotFound, "professional not found")
			return
		}
	}

	blockAccessor := block.NewAccessor(a.db)
	b, err := blockAccessor.CreateBlock(r.Context(), payload, a.now())
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.invalidateSlots(r.Context(), b.ProfessionalID)

	a.Response(w, http.StatusCreated, b)
}

type getBlocksResponse struct {
	Blocks []block.Block `json:"blocks"`
}

// getBlocks lists the blocks, clinic-wide ones included, that touch the
// professional's ?date=YYYY-MM-DD.
func (a *API) getBlocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	professionalID, err := uuid.Parse(query.Get("professional_id"))
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid professional ID")
		return
	}
	date, err := a.parseDate(query.Get("date"))
	if err != nil {
		a.Response(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	blockAccessor := block.NewAccessor(a.db)
	blocks, err := blockAccessor.GetBlocksOverlapping(r.Context(), professionalID, date, date.AddDate(0, 0, 1))
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getBlocksResponse{Blocks: blocks})
}

func (a *API) deleteBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id", "block")
	if !ok {
		return
	}

	blockAccessor := block.NewAccessor(a.db)
	b, err := blockAccessor.GetBlock(r.Context(), id)
	if err != nil {
		a.InternalError(w, r, err)
		return
	}
	if b == nil {
		a.Response(w, http.StatusNotFound, "block not found")
		return
	}

	if _, err := blockAccessor.DeleteBlock(r.Context(), b.ID); err != nil {
		a.InternalError(w, r, err)
		return
	}
	a.invalidateSlots(r.Context(), b.ProfessionalID)

	w.WriteHeader(http.StatusNoContent)
}
