package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		ctx := mergeContext(router.ctx, ginCtx.Request.Context())

		err := func() error {
			for _, middleware := range router.middlewares {
				next, err := middleware(ctx, ginCtx.Request)
				if err != nil {
					return err
				}
				ctx = next
			}

			var req Request
			if err := bind(ginCtx, method, &req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				return errorx.New(errorx.BadRequest, "Invalid request")
			}

			resp, err := handler(ctx, &req)
			if err != nil {
				return err
			}

			ginCtx.JSON(http.StatusOK, newResponse(resp))
			return nil
		}()

		if err != nil {
			ginCtx.JSON(httpStatus(err), newErrorResponse(err))
		}

		for _, closer := range router.closers {
			closer(ctx, ginCtx.Request, err)
		}
	}
}

func bind(ginCtx *gin.Context, method string, req any) error {
	switch method {
	case http.MethodGet:
		return ginCtx.ShouldBindQuery(req)
	case http.MethodPost:
		if ginCtx.Request.ContentLength == 0 {
			return nil
		}
		return ginCtx.ShouldBindJSON(req)
	default:
		return errorx.New(errorx.NotImplemented, "Unsupported method %s", method)
	}
}

// requestContext carries the values of the base context and the cancellation
// of the request.
type requestContext struct {
	context.Context
	values context.Context
}

func mergeContext(values, request context.Context) context.Context {
	return &requestContext{Context: request, values: values}
}

func (ctx *requestContext) Value(key any) any {
	if v := ctx.Context.Value(key); v != nil {
		return v
	}
	return ctx.values.Value(key)
}
