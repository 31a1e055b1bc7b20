package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reoring/reqschema/i18n"
	"github.com/reoring/reqschema/internal/config"
	"github.com/reoring/reqschema/internal/logging"
)

// BodyParser parses JSON, urlencoded and multipart bodies into the request's
// RequestData. Uploads are persisted under cfg.UploadDir and removed once the
// rest of the pipeline has returned, unless cfg.KeepUploads is set.
func BodyParser(cfg config.BodyConfig) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			data := &RequestData{Body: map[string]any{}, Files: map[string]any{}}
			var uploads []*UploadedFile
			defer func() {
				if !cfg.KeepUploads {
					removeUploads(r, uploads)
				}
			}()

			if hasBody(r) {
				var err error
				uploads, err = parseBody(w, r, cfg, data)
				if err != nil {
					return err
				}
			}
			return next(w, WithData(r, data))
		}
	}
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func parseBody(w http.ResponseWriter, r *http.Request, cfg config.BodyConfig, data *RequestData) ([]*UploadedFile, error) {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		// unknown or missing content type: leave the body empty
		return nil, nil
	}
	switch {
	case ct == "application/json" || strings.HasSuffix(ct, "+json"):
		body, err := decodeJSONObject(http.MaxBytesReader(w, r.Body, cfg.MaxBytes))
		if err != nil {
			return nil, bodyError(err)
		}
		data.Body = body
	case ct == "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBytes)
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		data.Body = decodeForm(r.PostForm)
	case ct == "multipart/form-data":
		if err := r.ParseMultipartForm(cfg.MaxMultipartMemory); err != nil {
			return nil, bodyError(err)
		}
		data.Body = decodeForm(r.MultipartForm.Value)
		return persistFiles(cfg.UploadDir, r, data)
	}
	return nil, nil
}

func decodeJSONObject(rd io.Reader) (map[string]any, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case nil:
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("request body must be a JSON object")
}

func persistFiles(dir string, r *http.Request, data *RequestData) ([]*UploadedFile, error) {
	fields := make([]string, 0, len(r.MultipartForm.File))
	for k := range r.MultipartForm.File {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var uploads []*UploadedFile
	for _, field := range fields {
		headers := r.MultipartForm.File[field]
		stored := make([]any, 0, len(headers))
		for _, fh := range headers {
			f, err := persistUpload(dir, fh)
			if err != nil {
				return uploads, err
			}
			uploads = append(uploads, f)
			stored = append(stored, f)
		}
		name := strings.TrimSuffix(field, "[]")
		if len(stored) == 1 && name == field {
			data.Files[name] = stored[0]
		} else {
			data.Files[name] = stored
		}
	}
	return uploads, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &HTTPError{
			Status:  http.StatusRequestEntityTooLarge,
			Name:    "PayloadTooLargeError",
			Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		}
	}
	he := BadRequest(i18n.T("parse_error", nil))
	he.Details = map[string]any{"reason": err.Error()}
	return he
}

func removeUploads(r *http.Request, uploads []*UploadedFile) {
	for _, f := range uploads {
		if err := os.Remove(f.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Ctx(r.Context()).Debug().Err(err).Str("path", f.Path()).Msg("failed to remove upload")
		}
	}
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
