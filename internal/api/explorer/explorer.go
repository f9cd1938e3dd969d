// Package explorer contains the Datastar SSE handlers behind the map page.
// Every browser event lands here as a signal POST, is applied to the session
// as one transition, and the resulting state is streamed back as signal and
// fragment patches.
package explorer

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"viewshed-explorer/internal/humastar"
	"viewshed-explorer/internal/scenario"
	"viewshed-explorer/internal/session"
	"viewshed-explorer/internal/templates"
)

// Handler serves the explorer UI endpoints.
type Handler struct {
	humastar.Handler
	orch      *session.Orchestrator
	scenarios *scenario.Store
}

// NewHandler creates the explorer handler.
func NewHandler(orch *session.Orchestrator, scenarios *scenario.Store, renderer *templates.Renderer) *Handler {
	return &Handler{
		Handler:   humastar.Handler{Renderer: renderer},
		orch:      orch,
		scenarios: scenarios,
	}
}

// RegisterRoutes registers explorer routes with Huma.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/explorer/observer", h.SelectObserver, huma.OperationTags("explorer"))
	huma.Post(api, "/api/v1/explorer/locate", h.Locate, huma.OperationTags("explorer"))
	huma.Post(api, "/api/v1/explorer/parameters", h.SetParameters, huma.OperationTags("explorer"))
	huma.Post(api, "/api/v1/explorer/submit", h.Submit, huma.OperationTags("explorer"))
	huma.Post(api, "/api/v1/explorer/overlay/clear", h.ClearOverlay, huma.OperationTags("explorer"))
	huma.Get(api, "/api/v1/explorer/scenarios", h.ListScenarios, huma.OperationTags("explorer"))
	huma.Post(api, "/api/v1/explorer/scenarios", h.SaveScenario, huma.OperationTags("explorer"))
	huma.Post(api, "/api/v1/explorer/scenarios/{id}/load", h.LoadScenario, huma.OperationTags("explorer"))
	huma.Delete(api, "/api/v1/explorer/scenarios/{id}", h.DeleteScenario, huma.OperationTags("explorer"))
	huma.Get(api, "/api/v1/explorer/events", h.Events, huma.OperationTags("explorer"))
}

// paramsFromSignals extracts the raw parameter text.
// Datastar data-bind creates lowercase signal names.
func paramsFromSignals(signals humastar.Signals) session.Parameters {
	return session.Parameters{
		ObserverHeightM: signals.String("observerheightm"),
		MaxRadiusKm:     signals.String("maxradiuskm"),
		ResolutionM:     signals.String("resolutionm"),
	}
}

// stateSignals projects the session snapshot onto the page's signals.
func stateSignals(snap session.Snapshot) map[string]any {
	sig := map[string]any{
		"status":       snap.Status,
		"haveobserver": snap.Observer != nil,
		"centerlat":    snap.Center.Lat,
		"centerlon":    snap.Center.Lon,
		"zoom":         snap.Zoom,
	}
	if snap.Observer != nil {
		sig["observerlat"] = snap.Observer.Lat
		sig["observerlon"] = snap.Observer.Lon
	}
	return sig
}

// overlaySignal serializes the overlay geometry for the map script, or an
// empty string when cleared.
func overlaySignal(geom *geojson.Geometry) string {
	if geom == nil {
		return ""
	}
	data, err := json.Marshal(geom)
	if err != nil {
		return ""
	}
	return string(data)
}

// formatParam renders a numeric parameter back to form text.
func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FieldErrorData holds data for the field-error fragment.
type FieldErrorData struct {
	Field   string
	Message string
}

// fieldOrder fixes the display order of validation messages.
var fieldOrder = []string{
	session.FieldObserver,
	session.FieldHeight,
	session.FieldRadius,
	session.FieldResolution,
}

func (h *Handler) renderFieldErrors(errs session.FieldErrors) string {
	var buf bytes.Buffer
	for _, field := range fieldOrder {
		if msg, ok := errs[field]; ok {
			h.Renderer.RenderToBuffer(&buf, "field-error", FieldErrorData{Field: field, Message: msg})
		}
	}
	return buf.String()
}

// ScenarioCardData holds data for the scenario-card fragment.
type ScenarioCardData struct {
	ID      string
	Name    string
	Created string
	Summary string
}

func (h *Handler) renderScenarioList() string {
	list := h.scenarios.List()
	items := make([]any, 0, len(list))
	for _, sc := range list {
		items = append(items, ScenarioCardData{
			ID:      sc.ID,
			Name:    sc.Name,
			Created: sc.CreatedAt.Format("2006-01-02 15:04"),
			Summary: formatParam(sc.Request.MaxRadiusKm) + " km @ " + formatParam(sc.Request.ResolutionM) + " m",
		})
	}
	return h.RenderList("scenario-card", items,
		"No saved scenarios", "Save the current request to reuse it later.")
}
