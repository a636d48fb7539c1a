package middleware

import (
	"github.com/AryaKesharwani/erp-next-contract/pkg/context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// HeaderDocumentID is the header key for the document being traced through the pipeline
	HeaderDocumentID = "X-Document-ID"
)

func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			// get request id from header
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			// get document id from header
			documentID := req.Header.Get(HeaderDocumentID)

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetReferer(ctx, req.Referer())
			ctx = context.SetDocumentID(ctx, documentID)

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
