package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It returns the context passed to
// the next middleware and the handler, or an error to abort the request.
type MiddlewareFunc func(ctx context.Context, r *http.Request) (context.Context, error)

// CloserFunc runs after the response was written.
type CloserFunc func(ctx context.Context, r *http.Request, err error)

type Router struct {
	Inner gin.IRouter

	engine      *gin.Engine
	ctx         context.Context
	middlewares []MiddlewareFunc
	closers     []CloserFunc
}

// New returns a Router whose handlers receive a child of ctx, so ctx should
// carry the configs, logger and database.
func New(ctx context.Context) *Router {
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{
		Inner:  engine,
		engine: engine,
		ctx:    ctx,
	}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Use(middleware MiddlewareFunc) {
	r.middlewares = append(r.middlewares, middleware)
}

func (r *Router) After(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Group returns a sub-router which inherits the middlewares and closers
// registered so far.
func (r *Router) Group(pattern string) *Router {
	return &Router{
		Inner:       r.Inner.Group(pattern),
		engine:      r.engine,
		ctx:         r.ctx,
		middlewares: append([]MiddlewareFunc{}, r.middlewares...),
		closers:     append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Handler() http.Handler {
	return r.engine
}
