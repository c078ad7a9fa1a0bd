package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
	kratoshttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/go-tangra/go-tangra-sysinfo/internal/convert"
	"github.com/go-tangra/go-tangra-sysinfo/internal/store"
)

// HTTP operations, reported to middleware as the transport operation.
const (
	OperationListCategories = "/sysinfo.v1.Telemetry/ListCategories"
	OperationExport         = "/sysinfo.v1.Telemetry/Export"
	OperationHistory        = "/sysinfo.v1.Telemetry/History"
)

type categoriesReply struct {
	Categories []CategoryInfo `json:"categories"`
}

type summaryReply struct {
	Report string `json:"report"`
}

type historyReply struct {
	Reports []convert.ArchivedReport `json:"reports"`
}

// RegisterHTTP mounts the REST routes on srv. Handlers run through the
// server's middleware chain.
func RegisterHTTP(srv *kratoshttp.Server, h *Handler) {
	r := srv.Route("/")
	r.GET("/v1/categories", listCategoriesHTTP(h))
	r.GET("/v1/categories/{category}", getCategoryHTTP(h))
	r.GET("/v1/summary", getSummaryHTTP(h))
	r.POST("/v1/refresh", refreshHTTP(h))
	r.POST("/v1/exports", exportHTTP(h))
	r.GET("/v1/exports", historyHTTP(h))
}

// serve runs fn through the middleware chain and writes its result.
func serve(ctx kratoshttp.Context, operation string, fn func(context.Context) (any, error)) error {
	kratoshttp.SetOperation(ctx, operation)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return fn(c)
	})
	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, out)
}

func listCategoriesHTTP(h *Handler) kratoshttp.HandlerFunc {
	return func(ctx kratoshttp.Context) error {
		return serve(ctx, OperationListCategories, func(context.Context) (any, error) {
			return &categoriesReply{Categories: h.Categories()}, nil
		})
	}
}

func getCategoryHTTP(h *Handler) kratoshttp.HandlerFunc {
	return func(ctx kratoshttp.Context) error {
		name := ctx.Vars().Get("category")
		return serve(ctx, TelemetryGetCategoryMethod, func(c context.Context) (any, error) {
			return h.Report(c, name)
		})
	}
}

func getSummaryHTTP(h *Handler) kratoshttp.HandlerFunc {
	return func(ctx kratoshttp.Context) error {
		return serve(ctx, TelemetryGetSummaryMethod, func(c context.Context) (any, error) {
			return &summaryReply{Report: h.Summary(c)}, nil
		})
	}
}

func refreshHTTP(h *Handler) kratoshttp.HandlerFunc {
	return func(ctx kratoshttp.Context) error {
		return serve(ctx, TelemetryRefreshMethod, func(c context.Context) (any, error) {
			h.RefreshAll(c)
			return struct{}{}, nil
		})
	}
}

func exportHTTP(h *Handler) kratoshttp.HandlerFunc {
	return func(ctx kratoshttp.Context) error {
		return serve(ctx, OperationExport, func(c context.Context) (any, error) {
			return h.Export(c)
		})
	}
}

func historyHTTP(h *Handler) kratoshttp.HandlerFunc {
	return func(ctx kratoshttp.Context) error {
		q := ctx.Query()
		f := store.ListFilter{Category: q.Get("category"), RunID: q.Get("run_id")}
		if s := q.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return errors.BadRequest("INVALID_LIMIT", "limit must be a non-negative integer")
			}
			f.Limit = n
		}
		return serve(ctx, OperationHistory, func(c context.Context) (any, error) {
			reports, err := h.History(c, f)
			if err != nil {
				return nil, err
			}
			return &historyReply{Reports: reports}, nil
		})
	}
}
