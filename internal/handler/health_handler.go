package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"employee-service/prometheus"
)

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "employee-service",
	})
}

// Metrics serves the Prometheus metrics endpoint
func Metrics(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
