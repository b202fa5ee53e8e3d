package driven

import "context"

// DriveFile is the metadata needed to open a stored invoice document.
type DriveFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	WebViewLink string `json:"webViewLink"`
}

// DriveFileLookup reads file metadata from Google Drive with a user access token.
type DriveFileLookup interface {
	// GetFile returns nil, domain.ErrNotFound when the file does not exist or is not visible.
	GetFile(ctx context.Context, accessToken, fileID string) (*DriveFile, error)
}
