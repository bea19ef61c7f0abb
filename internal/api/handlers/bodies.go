package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/onnwee/forcemap/internal/apierr"
	"github.com/onnwee/forcemap/internal/geom"
)

type positionRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p *positionRequest) vec() geom.Vec2 { return geom.V(*p.X, *p.Y) }

func decodePosition(r *http.Request) (*positionRequest, *apierr.Error) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apierr.BadRequest(apierr.ErrValidationInvalidJSON, "request body must be JSON")
	}
	if req.X == nil || req.Y == nil {
		return nil, apierr.BadRequest(apierr.ErrValidationMissingField, "x and y are required")
	}
	if !geom.V(*req.X, *req.Y).IsFinite() {
		return nil, apierr.BadRequest(apierr.ErrValidationInvalidValue, "x and y must be finite")
	}
	return &req, nil
}

// InsertBody appends a body at the requested position and returns its
// index.
func (h *Handler) InsertBody(w http.ResponseWriter, r *http.Request) {
	req, aerr := decodePosition(r)
	if aerr != nil {
		aerr.Write(r.Context(), w)
		return
	}
	index := h.sim.InsertBody(req.vec())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]int{"index": index})
}

// SetBodyPosition relocates the body named by the path index.
func (h *Handler) SetBodyPosition(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		apierr.BadRequest(apierr.ErrValidationInvalidValue, "index must be an integer").Write(r.Context(), w)
		return
	}
	req, aerr := decodePosition(r)
	if aerr != nil {
		aerr.Write(r.Context(), w)
		return
	}
	if !h.sim.SetBodyPosition(index, req.vec()) {
		apierr.NotFound("no body at that index").Write(r.Context(), w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetClosest returns the index of the body nearest the query point.
func (h *Handler) GetClosest(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		apierr.BadRequest(apierr.ErrValidationInvalidValue, "x and y query parameters are required").Write(r.Context(), w)
		return
	}
	index, ok := h.sim.ClosestIndex(geom.V(x, y))
	if !ok {
		apierr.New(apierr.ErrSimEmpty, "simulation has no bodies", http.StatusNotFound).Write(r.Context(), w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"index": index})
}
