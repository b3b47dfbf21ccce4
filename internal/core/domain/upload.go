package domain

import "time"

// MediaKind is the kind of file a client wants to upload for a variant.
type MediaKind string

const (
	MediaVideo     MediaKind = "video"
	MediaThumbnail MediaKind = "thumbnail"
)

func (k MediaKind) Valid() bool {
	return k == MediaVideo || k == MediaThumbnail
}

// UploadRequest asks for an upload slot in object storage.
type UploadRequest struct {
	Kind        MediaKind
	FileName    string
	ContentType string
}

// UploadGrant lets a client upload directly to storage. Locator is the
// value to store on the variant once the upload is done.
type UploadGrant struct {
	UploadURL string
	Method    string
	Headers   map[string]string
	Locator   string
	ExpiresAt time.Time
}
