package host

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-json"
)

// UploadedFile is a multipart upload persisted to disk. It satisfies the
// file capability checked by "file" schema leaves.
type UploadedFile struct {
	name string
	path string
	size int64
	mime string
}

// NewUploadedFile describes an already persisted file.
func NewUploadedFile(name, path string, size int64, mime string) *UploadedFile {
	return &UploadedFile{name: name, path: path, size: size, mime: mime}
}

func (f *UploadedFile) Filename() string { return f.name }
func (f *UploadedFile) Path() string     { return f.path }
func (f *UploadedFile) Size() int64      { return f.size }
func (f *UploadedFile) MimeType() string { return f.mime }

func (f *UploadedFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Filename string `json:"filename"`
		Path     string `json:"path"`
		Size     int64  `json:"size"`
		MimeType string `json:"mimetype"`
	}{f.name, f.path, f.size, f.mime})
}

// persistUpload copies the part into dir and sniffs its media type from the
// stored content.
func persistUpload(dir string, fh *multipart.FileHeader) (*UploadedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("store upload %q: %w", fh.Filename, err)
	}

	mt, err := mimetype.DetectFile(dst.Name())
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("detect upload type %q: %w", fh.Filename, err)
	}
	return &UploadedFile{name: fh.Filename, path: dst.Name(), size: n, mime: mt.String()}, nil
}
