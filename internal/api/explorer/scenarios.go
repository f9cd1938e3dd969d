package explorer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"viewshed-explorer/internal/humastar"
	"viewshed-explorer/internal/session"
)

// ScenarioIDInput carries a scenario ID from the URL path.
type ScenarioIDInput struct {
	ID string `path:"id" doc:"Scenario ID"`
}

// ListScenarios renders the saved scenario cards.
func (h *Handler) ListScenarios(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderScenarioList(), "#scenario-list")
	}), nil
}

// SaveScenario saves the current observer and parameters under the name
// typed into the panel. The session must hold a submittable request.
func (h *Handler) SaveScenario(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	name := signals.String("scenarioname")
	params := paramsFromSignals(signals)

	return h.Stream(func(sse humastar.SSE) {
		sess := h.orch.Session()
		sess.SetParameters(params)
		snap := sess.Snapshot()

		req, err := session.BuildRequest(snap.Observer, snap.Parameters)
		if err != nil {
			sse.Error("Select a point and enter valid parameters before saving.")
			return
		}
		sc, err := h.scenarios.Save(name, req)
		if err != nil {
			sse.Error("Could not save scenario: " + err.Error())
			return
		}
		sse.Patch(h.renderScenarioList(), "#scenario-list")
		sse.Signals(map[string]any{"scenarioname": "", "error": ""})
		sse.Success("Saved \"" + sc.Name + "\".")
	}), nil
}

// LoadScenario restores a saved request into the session: observer,
// parameter text, and a viewport re-centered on the observer.
func (h *Handler) LoadScenario(ctx context.Context, input *ScenarioIDInput) (*huma.StreamResponse, error) {
	sc, ok := h.scenarios.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("Scenario not found: " + input.ID)
	}

	return h.Stream(func(sse humastar.SSE) {
		sess := h.orch.Session()
		sess.SelectFromMap(sc.Request.Observer.Lat, sc.Request.Observer.Lon)
		sess.SetParameters(session.Parameters{
			ObserverHeightM: formatParam(sc.Request.ObserverHeightM),
			MaxRadiusKm:     formatParam(sc.Request.MaxRadiusKm),
			ResolutionM:     formatParam(sc.Request.ResolutionM),
		})
		sess.SetCenter(session.Coordinate{Lat: sc.Request.Observer.Lat, Lon: sc.Request.Observer.Lon})

		snap := sess.Snapshot()
		sig := stateSignals(snap)
		sig["observerheightm"] = snap.Parameters.ObserverHeightM
		sig["maxradiuskm"] = snap.Parameters.MaxRadiusKm
		sig["resolutionm"] = snap.Parameters.ResolutionM
		sse.Signals(sig)
		sse.Success("Loaded \"" + sc.Name + "\".")
	}), nil
}

// DeleteScenario removes a saved scenario and refreshes the list.
func (h *Handler) DeleteScenario(ctx context.Context, input *ScenarioIDInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.scenarios.Delete(input.ID); err != nil {
			sse.Error("Could not delete scenario: " + err.Error())
			return
		}
		sse.Patch(h.renderScenarioList(), "#scenario-list")
		sse.Success("Scenario deleted.")
	}), nil
}
