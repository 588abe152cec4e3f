package router

import (
	"errors"
	"net/http"

	"github.com/questx-lab/noloss/pkg/errorx"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

func httpStatus(err error) int {
	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		return http.StatusInternalServerError
	}

	switch errx.Code {
	case errorx.Unknown.Code, errorx.Internal:
		return http.StatusInternalServerError
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.NotAuthorized, errorx.PermissionDenied:
		return http.StatusForbidden
	case errorx.NotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusBadRequest
	}
}
