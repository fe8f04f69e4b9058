package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ecolight/internal/lib/apperr"
)

const (
	// MaxImageSize предельный размер изображения обращения.
	MaxImageSize = 10 << 20
	// PublicPrefix URL-префикс, под которым раздаются загруженные файлы.
	PublicPrefix = "/uploads"

	reportsDir = "reports"
)

var (
	ErrImageTooLarge    = apperr.New(apperr.KindValidation, "Image trop volumineuse (10 Mo maximum)")
	ErrImageUnsupported = apperr.New(apperr.KindValidation, "Seules les images sont autorisées")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DiskImageStore сохраняет изображения обращений в <root>/reports/<uuid><ext>.
type DiskImageStore struct {
	root string
}

func NewDiskImageStore(root string) (*DiskImageStore, error) {
	const op = "services.NewDiskImageStore"
	if err := os.MkdirAll(filepath.Join(root, reportsDir), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &DiskImageStore{root: root}, nil
}

// sniffImage определяет расширение по первым байтам содержимого.
// Возвращенный reader отдает поток целиком, включая прочитанное начало.
func sniffImage(r io.Reader) (ext, contentType string, body io.Reader, err error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", "", nil, err
	}
	contentType = http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", nil, ErrImageUnsupported
	}
	return ext, contentType, br, nil
}

// Save определяет тип содержимого по первым байтам и записывает файл.
// Возвращает публичный URL вида /uploads/reports/<uuid><ext>.
func (d *DiskImageStore) Save(_ context.Context, r io.Reader) (string, error) {
	const op = "services.DiskImageStore.Save"

	ext, _, br, err := sniffImage(r)
	if errors.Is(err, ErrImageUnsupported) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	name := uuid.NewString() + ext
	full := filepath.Join(d.root, reportsDir, name)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	n, err := io.Copy(f, io.LimitReader(br, MaxImageSize+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("%s: %w", op, err)
	case n > MaxImageSize:
		_ = os.Remove(full)
		return "", ErrImageTooLarge
	case closeErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("%s: %w", op, closeErr)
	}

	return path.Join(PublicPrefix, reportsDir, name), nil
}

// Remove удаляет файл по публичному URL. Отсутствующий файл ошибкой не считается.
func (d *DiskImageStore) Remove(_ context.Context, publicURL string) error {
	const op = "services.DiskImageStore.Remove"

	rel := strings.TrimPrefix(publicURL, PublicPrefix+"/")
	if rel == publicURL || !strings.HasPrefix(rel, reportsDir+"/") || strings.Contains(rel, "..") {
		return fmt.Errorf("%s: unexpected image path %q", op, publicURL)
	}
	if err := os.Remove(filepath.Join(d.root, filepath.FromSlash(rel))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
