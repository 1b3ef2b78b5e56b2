package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"videotube/internal/logger"
	"videotube/internal/model"
)

const (
	// Parts beyond this are spilled to disk by the multipart reader.
	maxMultipartMemory = 1 << 20

	formOverhead     = 1 << 20
	singleImageLimit = model.MaxImageSizeBytes + formOverhead
	registerLimit    = 2*model.MaxImageSizeBytes + formOverhead
)

// Stager copies uploaded files into the upload directory so the media
// uploader can work from a local path.
type Stager struct {
	dir string
}

func NewStager(dir string) *Stager {
	return &Stager{dir: dir}
}

// Stage writes the file in form field to a new temp file and returns its
// path. An absent field yields an empty path and no error.
func (s *Stager) Stage(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", model.BadRequest(fmt.Sprintf("Invalid %s upload", field))
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(ext) > 8 {
		ext = ""
	}

	out, err := os.CreateTemp(s.dir, "upload-*"+ext)
	if err != nil {
		return "", model.Internal("Failed to stage upload").Wrap(err)
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", model.Internal("Failed to stage upload").Wrap(err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", model.Internal("Failed to stage upload").Wrap(err)
	}

	return out.Name(), nil
}

// removeStaged deletes staged files. Empty paths are skipped.
func removeStaged(r *http.Request, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.FromRequest(r).Warn().Err(err).Str("path", p).Msg("failed to remove staged upload")
		}
	}
}

// parseMultipart bounds the body to limit and parses the form. Callers must
// release r.MultipartForm when it returns nil.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart):
			return model.BadRequest("Content-Type must be multipart/form-data")
		case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
			return model.ErrImageTooLarge
		}
		return model.BadRequest("Invalid form data")
	}
	return nil
}
