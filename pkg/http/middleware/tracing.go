package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/tracing"
)

// Tracing continues the caller's trace from the request headers and opens one
// span per request, named after the route template.
func Tracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			ctx, span := tracing.StartSpan(ctx, req.Method+" "+route,
				attribute.String("http.method", req.Method),
				attribute.String("http.route", route),
			)
			defer span.End()
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				tracing.Fail(span, err)
			}
			span.SetAttributes(attribute.String("http.status_code", strconv.Itoa(c.Response().Status)))
			return err
		}
	}
}
