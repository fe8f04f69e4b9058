// Package create принимает обращение жителя. Тело передается как JSON
// или как multipart/form-data с необязательным файлом image.
package create

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/models"
	services "github.com/magabrotheeeer/ecolight/internal/services/report"
)

const (
	// FileField имя поля формы с изображением.
	FileField = "image"

	maxBody         = services.MaxImageSize + 1<<20
	msgFileTooLarge = "Fichier trop volumineux"
	msgBadCoord     = "Coordonnées invalides"
)

type Service interface {
	Create(ctx context.Context, userID int64, in models.NewReport, image io.Reader) (*models.Report, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: response.NewValidator()}
}

// ServeHTTP godoc
// @Summary Новое обращение
// @Tags Reports
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param localisation formData string true "Место"
// @Param description formData string true "Описание"
// @Param latitude formData number false "Широта"
// @Param longitude formData number false "Долгота"
// @Param image formData file false "Фото, до 10 МБ"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /reports [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	who, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	var (
		in    models.NewReport
		image io.Reader
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		form, file, status, msg := parseMultipart(r)
		if msg != "" {
			log.Info("failed to parse form", slog.String("reason", msg))
			response.Write(w, r, status, response.Error(msg))
			return
		}
		in = form
		if file != nil {
			defer file.Close()
			image = file
		}
	} else if err := render.DecodeJSON(r.Body, &in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Write(w, r, http.StatusBadRequest, response.Error(msgFileTooLarge))
			return
		}
		log.Info("failed to decode request body", sl.Err(err))
		response.Write(w, r, http.StatusBadRequest, response.Error(response.MsgInvalidJSON))
		return
	}

	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	if err := h.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Write(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, log, "validation failed", err)
		return
	}

	report, err := h.service.Create(r.Context(), who.ID, in, image)
	if err != nil {
		response.Fail(w, r, log, "failed to create report", err)
		return
	}

	resp := response.OK(report)
	resp.Message = "Signalement créé avec succès"
	response.Write(w, r, http.StatusCreated, resp)
}

// parseMultipart разбирает форму. При ошибке возвращает статус и сообщение.
func parseMultipart(r *http.Request) (models.NewReport, io.ReadCloser, int, string) {
	var in models.NewReport
	if err := r.ParseMultipartForm(services.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, nil, http.StatusBadRequest, msgFileTooLarge
		}
		return in, nil, http.StatusBadRequest, response.MsgInvalidData
	}

	in.Location = r.FormValue("localisation")
	in.Description = r.FormValue("description")
	var ok bool
	if in.Latitude, ok = formFloat(r, "latitude"); !ok {
		return in, nil, http.StatusBadRequest, msgBadCoord
	}
	if in.Longitude, ok = formFloat(r, "longitude"); !ok {
		return in, nil, http.StatusBadRequest, msgBadCoord
	}

	file, _, err := r.FormFile(FileField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, 0, ""
	}
	if err != nil {
		return in, nil, http.StatusBadRequest, response.MsgInvalidData
	}
	return in, file, 0, ""
}

func formFloat(r *http.Request, key string) (*float64, bool) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
