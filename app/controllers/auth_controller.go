package controllers

import (
	"errors"
	"net/http"

	"github.com/changyuyeo/fitbody/app/services"
	"github.com/changyuyeo/fitbody/pkg/auth"
	"github.com/changyuyeo/fitbody/pkg/bind"
	"github.com/changyuyeo/fitbody/pkg/response"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{auth: svc}
}

type registerInput struct {
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"confirmed"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.auth.Register(r.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrEmailTaken) {
		response.Error(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, user)
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, access, refresh, err := c.auth.Login(r.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrNoSuchUser) || errors.Is(err, services.ErrWrongPassword) {
		// One message for both cases so the response does not reveal
		// whether the email is registered.
		response.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Me returns the authenticated caller's own record.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	user, err := c.auth.Profile(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, user)
}
