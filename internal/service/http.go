package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"
)

// Operation names, reported to kratos middleware.
const (
	OperationSearch            = "/companysearch.Search/Search"
	OperationSearchSuggestions = "/companysearch.Search/Suggestions"
	OperationCacheStats        = "/companysearch.Cache/Stats"
	OperationCacheListEntries  = "/companysearch.Cache/ListEntries"
	OperationCacheSweep        = "/companysearch.Cache/Sweep"
	OperationCacheInvalidate   = "/companysearch.Cache/Invalidate"
	OperationCacheClear        = "/companysearch.Cache/Clear"
)

type empty struct{}

// RegisterSearchHTTPServer mounts the search endpoints on s.
func RegisterSearchHTTPServer(s *http.Server, srv *SearchService) {
	r := s.Route("/")
	r.GET("/api/search", queryHandler(OperationSearch, srv.Search))
	r.GET("/api/search/suggestions", queryHandler(OperationSearchSuggestions, srv.Suggestions))
}

// RegisterCacheHTTPServer mounts the cache administration endpoints on s.
func RegisterCacheHTTPServer(s *http.Server, srv *CacheService) {
	r := s.Route("/")
	r.GET("/api/cache/stats", noInputHandler(OperationCacheStats, srv.Stats))
	r.GET("/api/cache/entries", queryHandler(OperationCacheListEntries, srv.ListEntries))
	r.POST("/api/cache/sweep", noInputHandler(OperationCacheSweep, srv.Sweep))
	r.POST("/api/cache/invalidate", bodyHandler(OperationCacheInvalidate, srv.Invalidate))
	r.DELETE("/api/cache", noInputHandler(OperationCacheClear, srv.Clear))
}

// queryHandler binds the query string into In and runs call through the
// server middleware chain.
func queryHandler[In, Out any](operation string, call func(context.Context, *In) (*Out, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in In
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		return invoke(ctx, operation, &in, call)
	}
}

// bodyHandler binds the request body into In.
func bodyHandler[In, Out any](operation string, call func(context.Context, *In) (*Out, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in In
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		return invoke(ctx, operation, &in, call)
	}
}

func noInputHandler[Out any](operation string, call func(context.Context) (*Out, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		return invoke(ctx, operation, &empty{}, func(c context.Context, _ *empty) (*Out, error) {
			return call(c)
		})
	}
}

func invoke[In, Out any](ctx http.Context, operation string, in *In, call func(context.Context, *In) (*Out, error)) error {
	http.SetOperation(ctx, operation)
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return call(c, req.(*In))
	})
	out, err := h(ctx, in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}
