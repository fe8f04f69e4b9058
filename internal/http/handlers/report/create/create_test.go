package create

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/models"
	services "github.com/magabrotheeeer/ecolight/internal/services/report"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID int64, in models.NewReport, image io.Reader) (*models.Report, error) {
	var data []byte
	if image != nil {
		data, _ = io.ReadAll(image)
	}
	args := m.Called(ctx, userID, in, string(data))
	rep, _ := args.Get(0).(*models.Report)
	return rep, args.Error(1)
}

func withUser(req *http.Request) *http.Request {
	ctx := middlewarectx.WithIdentity(req.Context(), models.Identity{ID: 5, Role: models.RoleCitizen})
	return req.WithContext(ctx)
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreateJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "обращение без фото",
			body: `{"localisation":"  Rue 12 ","description":"Dépôt sauvage","latitude":5.3}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, int64(5), mock.MatchedBy(func(in models.NewReport) bool {
					return in.Location == "Rue 12" && in.Latitude != nil && *in.Latitude == 5.3 && in.Longitude == nil
				}), "").Return(&models.Report{ID: 1, Location: "Rue 12", Status: models.ReportNew}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"message":"Signalement créé avec succès"`,
		},
		{
			name:       "пустое описание",
			body:       `{"localisation":"Rue 12","description":"   "}`,
			setupMock:  func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"field":"description"`,
		},
		{
			name:       "широта вне диапазона",
			body:       `{"localisation":"Rue 12","description":"x","latitude":95}`,
			setupMock:  func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"field":"latitude"`,
		},
		{
			name:       "битый JSON",
			body:       `{"localisation":`,
			setupMock:  func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Format JSON invalide",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockService)
			tt.setupMock(m)

			req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			New(logger(), m).ServeHTTP(w, withUser(req))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			m.AssertExpectations(t)
		})
	}
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile(FileField, "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateMultipart(t *testing.T) {
	t.Run("с фото", func(t *testing.T) {
		m := new(MockService)
		m.On("Create", mock.Anything, int64(5), mock.MatchedBy(func(in models.NewReport) bool {
			return in.Location == "Marché" && in.Longitude != nil && *in.Longitude == -4.01
		}), "PNGDATA").Return(&models.Report{ID: 2}, nil).Once()

		body, ct := multipartBody(t, map[string]string{
			"localisation": "Marché",
			"description":  "Bac plein",
			"longitude":    "-4.01",
		}, []byte("PNGDATA"))
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()

		New(logger(), m).ServeHTTP(w, withUser(req))

		assert.Equal(t, http.StatusCreated, w.Code)
		m.AssertExpectations(t)
	})

	t.Run("некорректная координата", func(t *testing.T) {
		m := new(MockService)
		body, ct := multipartBody(t, map[string]string{
			"localisation": "Marché",
			"description":  "Bac plein",
			"latitude":     "nord",
		}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()

		New(logger(), m).ServeHTTP(w, withUser(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Coordonnées invalides")
		m.AssertNotCalled(t, "Create")
	})

	t.Run("файл не изображение", func(t *testing.T) {
		m := new(MockService)
		m.On("Create", mock.Anything, int64(5), mock.Anything, "plain text").
			Return(nil, services.ErrImageUnsupported).Once()

		body, ct := multipartBody(t, map[string]string{
			"localisation": "Marché",
			"description":  "Bac plein",
		}, []byte("plain text"))
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()

		New(logger(), m).ServeHTTP(w, withUser(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Seules les images sont autorisées")
	})
}
