package explorer

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"viewshed-explorer/internal/humastar"
	"viewshed-explorer/internal/session"
)

// SetParameters stores the form's raw text as typed. No validation runs
// here; fields are checked fresh on the next submit.
func (h *Handler) SetParameters(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	params := paramsFromSignals(signals)

	return h.Stream(func(sse humastar.SSE) {
		h.orch.Session().SetParameters(params)
	}), nil
}

// Submit applies the form's raw parameter text and runs one submission
// attempt. Validation failures patch per-field messages; an accepted attempt
// streams the busy signal, then the outcome: the overlay geometry on success
// or the service's error description on failure.
func (h *Handler) Submit(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	params := paramsFromSignals(signals)

	return h.Stream(func(sse humastar.SSE) {
		sess := h.orch.Session()
		sess.SetParameters(params)

		sse.Signals(map[string]any{"submitting": true, "error": "", "success": ""})

		submitErr := h.orch.Submit(ctx)
		snap := sess.Snapshot()

		sse.Patch(h.renderFieldErrors(snap.FieldErrors), "#field-errors")

		out := map[string]any{
			"submitting":  snap.Phase == session.PhaseSubmitting,
			"overlayjson": overlaySignal(snap.Overlay),
		}
		switch {
		case submitErr == nil:
			out["error"] = ""
			out["success"] = "Visible area updated."
		case errors.Is(submitErr, session.ErrSubmitInFlight):
			out["error"] = "A request is already in flight."
		case errors.Is(submitErr, session.ErrInvalid):
			out["error"] = ""
		default:
			out["error"] = snap.SubmitError
		}
		sse.Signals(out)
	}), nil
}

// ClearOverlay removes the result overlay from the map. Everything else,
// including a failure message, stays as it is.
func (h *Handler) ClearOverlay(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		h.orch.Session().ClearOverlay()
		sse.Signals(map[string]any{"overlayjson": ""})
	}), nil
}
