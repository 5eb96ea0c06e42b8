package controllers

import (
	"errors"
	"net/http"

	"github.com/changyuyeo/fitbody/app/services"
	"github.com/changyuyeo/fitbody/pkg/logger"
	"github.com/changyuyeo/fitbody/pkg/response"
)

// fail maps a service error onto the wire. Domain errors are client
// mistakes and come back as 400 with their message; anything else is a
// fault: logged with the request context, generic body, 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidProductID),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrEmptyCart):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("request failed", "error", err,
			"method", r.Method, "path", r.URL.Path)
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
