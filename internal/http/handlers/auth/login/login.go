// Package login реализует HTTP-обработчик входа по email и паролю.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	services "github.com/magabrotheeeer/ecolight/internal/services/auth"
)

type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"mot_de_passe" validate:"required"`
}

type Service interface {
	Login(ctx context.Context, email, rawPassword string) (*services.Result, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль, возвращает токен на 7 дней.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.Write(w, r, http.StatusBadRequest, response.Error(response.MsgInvalidJSON))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Write(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, log, "validation failed", err)
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, "login failed", err)
		return
	}

	log.Info("login success", slog.Int64("user_id", res.User.ID))
	response.Write(w, r, http.StatusOK, response.Response{
		Success: true,
		Message: "Connexion réussie",
		Token:   res.Token,
		User:    res.User,
	})
}
