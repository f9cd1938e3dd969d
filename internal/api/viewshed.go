package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"viewshed-explorer/internal/viewshed"
)

// ViewshedHandler serves the visible-area computation endpoint.
type ViewshedHandler struct{}

func NewViewshedHandler() *ViewshedHandler {
	return &ViewshedHandler{}
}

func (h *ViewshedHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/viewshed", h.Compute, huma.OperationTags("viewshed"))
}

type ComputeInput struct {
	Body viewshed.Request
}

type ComputeOutput struct {
	Body viewshed.Response
}

// Compute returns the visible area around the observer. Range and positivity
// constraints on the body are enforced by the schema before this runs.
func (h *ViewshedHandler) Compute(ctx context.Context, input *ComputeInput) (*ComputeOutput, error) {
	req := input.Body
	return &ComputeOutput{
		Body: viewshed.Response{
			Observer:    req.Observer,
			MaxRadiusKm: req.MaxRadiusKm,
			Polygon:     viewshed.CirclePolygon(req.Observer.Lat, req.Observer.Lon, req.MaxRadiusKm),
		},
	}, nil
}
