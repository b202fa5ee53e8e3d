package driving

import "context"

// FileAccessService resolves links to invoice documents stored in Drive.
type FileAccessService interface {
	// ResolveDriveFile returns a link for a Drive file. When the user has no
	// usable Drive connection it degrades to the public file URL.
	ResolveDriveFile(ctx context.Context, userUID, fileID string) (*FileLink, error)
}

// FileLink is a resolved document link.
// @Description Link to an invoice document
type FileLink struct {
	FileID   string `json:"file_id" example:"1AbC"`
	Name     string `json:"name,omitempty" example:"factura-2024-001.pdf"`
	MimeType string `json:"mime_type,omitempty" example:"application/pdf"`
	URL      string `json:"url" example:"https://drive.google.com/file/d/1AbC/view"`

	// Authenticated is false when the link is the public fallback.
	Authenticated bool `json:"authenticated"`
}
