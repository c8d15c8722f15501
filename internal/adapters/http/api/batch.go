// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fieldline/standee/internal/app"
	"github.com/fieldline/standee/internal/domain/types"
)

// BatchDependencies defines the interface for batch standings computation.
type BatchDependencies interface {
	Batch(ctx context.Context, keys []types.ViewKey) ([]app.ViewResult, error)
}

// BatchHandler handles batch standings requests.
type BatchHandler struct {
	deps BatchDependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps BatchDependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

// HandlePostBatch handles POST /standings/batch requests.
func (h *BatchHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	keys := make([]types.ViewKey, len(req.Views))
	for i, v := range req.Views {
		keys[i] = v.key()
	}

	results, err := h.deps.Batch(r.Context(), keys)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}

	resp := batchResponse{Results: make([]batchItemResponse, len(results))}
	for i, res := range results {
		item := batchItemResponse{View: viewFromKey(res.Key)}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			item.Standings = res.Standings
			summary := res.Stats
			item.Summary = &summary
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}
