// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"viewshed-explorer/internal/history"
	"viewshed-explorer/internal/scenario"
	"viewshed-explorer/internal/viewshed"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Scenarios *scenario.Store
	History   *history.Service // nil when the database is unavailable
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Scenario ID" example:"4ac79f6b"`
}

type ScenarioOutput struct {
	Body scenario.Scenario
}

type ScenariosOutput struct {
	Body []scenario.Scenario
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type SaveScenarioInput struct {
	Body struct {
		Name    string           `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name"`
		Request viewshed.Request `json:"request" required:"true" doc:"The request to save"`
	}
}

type HistoryInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"500" doc:"Maximum entries to return"`
}

type HistoryOutput struct {
	Body []history.Entry
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds the REST API handlers.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterScenarios registers scenario CRUD routes.
func (h *APIHandler) RegisterScenarios(api huma.API) {
	huma.Get(api, "/api/v1/scenarios", h.GetScenarios, huma.OperationTags("scenarios"))
	huma.Post(api, "/api/v1/scenarios", h.SaveScenario, huma.OperationTags("scenarios"))
	huma.Get(api, "/api/v1/scenarios/{id}", h.GetScenario, huma.OperationTags("scenarios"))
	huma.Delete(api, "/api/v1/scenarios/{id}", h.DeleteScenario, huma.OperationTags("scenarios"))
}

// RegisterHistory registers the submission history route.
func (h *APIHandler) RegisterHistory(api huma.API) {
	huma.Get(api, "/api/v1/history", h.GetHistory, huma.OperationTags("history"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetScenarios(ctx context.Context, input *struct{}) (*ScenariosOutput, error) {
	if h.svc == nil || h.svc.Scenarios == nil {
		return &ScenariosOutput{Body: []scenario.Scenario{}}, nil
	}
	return &ScenariosOutput{Body: h.svc.Scenarios.List()}, nil
}

func (h *APIHandler) SaveScenario(ctx context.Context, input *SaveScenarioInput) (*ScenarioOutput, error) {
	if h.svc == nil || h.svc.Scenarios == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	saved, err := h.svc.Scenarios.Save(input.Body.Name, input.Body.Request)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &ScenarioOutput{Body: saved}, nil
}

func (h *APIHandler) GetScenario(ctx context.Context, input *IDInput) (*ScenarioOutput, error) {
	if h.svc == nil || h.svc.Scenarios == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	sc, ok := h.svc.Scenarios.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("scenario not found")
	}
	return &ScenarioOutput{Body: sc}, nil
}

func (h *APIHandler) DeleteScenario(ctx context.Context, input *IDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Scenarios == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	if err := h.svc.Scenarios.Delete(input.ID); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Scenario deleted"}}, nil
}

func (h *APIHandler) GetHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	if h.svc == nil || h.svc.History == nil {
		return nil, huma.Error503ServiceUnavailable("History not available")
	}
	entries, err := h.svc.History.Recent(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read history", err)
	}
	return &HistoryOutput{Body: entries}, nil
}
