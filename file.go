package reqschema

// File is the capability an uploaded file handle must expose to satisfy a
// "file" leaf. Host body parsers persist uploads to disk and hand out values
// implementing it.
type File interface {
	// Filename is the client-supplied name of the upload.
	Filename() string
	// Path is the location of the persisted upload on the local filesystem.
	Path() string
	// Size is the number of bytes stored at Path.
	Size() int64
	// MimeType is the detected media type of the content.
	MimeType() string
}

// IsFile reports whether v is a usable uploaded-file handle: it implements
// File, is not a nil pointer, and has a filesystem path and a media type.
func IsFile(v any) bool {
	f, ok := v.(File)
	if !ok || isNilPointer(f) {
		return false
	}
	return f.Path() != "" && f.MimeType() != "" && f.Size() >= 0
}
