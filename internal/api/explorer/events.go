package explorer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"viewshed-explorer/internal/humastar"
	"viewshed-explorer/internal/scenario"
)

// Events streams scenario change events to the page via SSE so every open
// tab sees saves and deletions as they happen.
func (h *Handler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			ch := scenario.DefaultBus.Subscribe()
			defer scenario.DefaultBus.Unsubscribe(ch)

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					sse.Patch(h.renderScenarioList(), "#scenario-list")
					sse.DispatchCustomEvent("scenario-changed", map[string]any{
						"action": ev.Action,
						"id":     ev.ID,
					})
				}
			}
		},
	}, nil
}
