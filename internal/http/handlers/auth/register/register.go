// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Тело запроса проверяется валидатором, после чего регистрация делегируется
// сервису аутентификации. При успехе возвращается токен и созданный пользователь.
package register

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
	"github.com/magabrotheeeer/ecolight/internal/models"
	services "github.com/magabrotheeeer/ecolight/internal/services/auth"
)

// Request данные для регистрации. Пароль не короче 6 символов и содержит цифру.
type Request struct {
	Name     string `json:"nom" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"mot_de_passe" validate:"required,min=6,containsany=0123456789"`
	Role     string `json:"role" validate:"omitempty,oneof=citoyen collecteur admin"`
}

// Service описывает регистрацию в бизнес-логике.
type Service interface {
	Register(ctx context.Context, name, email, rawPassword string, role models.Role) (*services.Result, error)
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
// @Summary Регистрация пользователя
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
			log.Info("validation failed", sl.Err(err))
			response.Write(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, log, "validation failed", err)
		return
	}

	res, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		response.Fail(w, r, log, "registration failed", err)
		return
	}

	log.Info("user registered", slog.Int64("user_id", res.User.ID))
	response.Write(w, r, http.StatusCreated, response.Response{
		Success: true,
		Message: "Inscription réussie",
		Token:   res.Token,
		User:    res.User,
	})
}
