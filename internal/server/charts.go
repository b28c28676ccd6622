package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jpalmerr/syncboard"
	"github.com/jpalmerr/syncboard/internal/store"
)

type chartListOutput struct {
	Body []store.ChartState
}

type chartOutput struct {
	Body store.ChartState
}

type chartOptionsOutput struct {
	Body syncboard.ChartOptions
}

type chartPath struct {
	Name string `path:"name" doc:"Chart name"`
}

func (s *Server) registerChartHandlers(api huma.API) {
	huma.Register(api, huma.Operation{OperationID: "list-charts", Method: http.MethodGet, Path: "/api/charts", Summary: "List the state of every chart", Tags: []string{"Charts"}},
		func(ctx context.Context, input *struct{}) (*chartListOutput, error) {
			out := &chartListOutput{}
			out.Body = s.store.GetAll()
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-chart", Method: http.MethodGet, Path: "/api/charts/{name}", Summary: "Get the state of one chart", Tags: []string{"Charts"}},
		func(ctx context.Context, input *chartPath) (*chartOutput, error) {
			state, ok := s.store.Get(input.Name)
			if !ok {
				return nil, huma.Error404NotFound("chart " + input.Name + " not found")
			}
			out := &chartOutput{}
			out.Body = state
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-chart-options", Method: http.MethodGet, Path: "/api/charts/{name}/options", Summary: "Get the resolved options a chart was built with", Tags: []string{"Charts"}},
		func(ctx context.Context, input *chartPath) (*chartOptionsOutput, error) {
			opts, err := s.ctrl.Options(ctx, input.Name)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &chartOptionsOutput{}
			out.Body = opts
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "pan-chart", Method: http.MethodPut, Path: "/api/charts/{name}/range", Summary: "Pan or zoom a chart and synchronize the others", Tags: []string{"Charts"}},
		func(ctx context.Context, input *struct {
			Name string `path:"name" doc:"Chart name"`
			Body struct {
				Start int64 `json:"start" required:"true" doc:"Window start in epoch milliseconds"`
				End   int64 `json:"end" required:"true" doc:"Window end in epoch milliseconds"`
			}
		}) (*chartOutput, error) {
			r := syncboard.RangeFromMillis(input.Body.Start, input.Body.End)
			state, err := s.ctrl.Pan(ctx, input.Name, r)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &chartOutput{}
			out.Body = state
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "set-chart-visibility", Method: http.MethodPut, Path: "/api/charts/{name}/visibility", Summary: "Hide or show a chart", Tags: []string{"Charts"}},
		func(ctx context.Context, input *struct {
			Name string `path:"name" doc:"Chart name"`
			Body struct {
				Hidden bool `json:"hidden" doc:"Exclude the chart from range broadcasts"`
			}
		}) (*chartOutput, error) {
			state, err := s.ctrl.SetHidden(ctx, input.Name, input.Body.Hidden)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &chartOutput{}
			out.Body = state
			return out, nil
		})
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrUnknownChart):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, syncboard.ErrInvalidRange):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
