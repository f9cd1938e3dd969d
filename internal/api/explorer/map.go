package explorer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"viewshed-explorer/internal/humastar"
)

// SelectObserver handles a map click: the clicked coordinates become the
// observer point. The viewport is not moved.
func (h *Handler) SelectObserver(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	if !signals.Has("clicklat") || !signals.Has("clicklon") {
		return nil, huma.Error400BadRequest("Click coordinates are required")
	}
	lat := signals.Float("clicklat")
	lon := signals.Float("clicklon")

	return h.Stream(func(sse humastar.SSE) {
		h.orch.Session().SelectFromMap(lat, lon)
		snap := h.orch.Session().Snapshot()
		sse.Signals(map[string]any{
			"haveobserver": true,
			"observerlat":  snap.Observer.Lat,
			"observerlon":  snap.Observer.Lon,
		})
	}), nil
}

// Locate runs the geolocation flow and streams each state change: the
// pending status first, then either the located observer with a re-centered
// viewport or the failure description.
func (h *Handler) Locate(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		h.orch.Locate(ctx, func() {
			sse.Signals(stateSignals(h.orch.Session().Snapshot()))
		})
	}), nil
}
