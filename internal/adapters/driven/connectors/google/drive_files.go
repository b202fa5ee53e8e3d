package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors"
	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Ensure FileLookup implements the interface.
var _ driven.DriveFileLookup = (*FileLookup)(nil)

// FilesURL is the Drive v3 files resource.
const FilesURL = "https://www.googleapis.com/drive/v3/files"

// FileLookup reads Drive file metadata.
type FileLookup struct {
	baseURL    string
	httpClient *http.Client
}

// NewFileLookup creates a Drive file lookup. An empty baseURL uses FilesURL.
func NewFileLookup(baseURL string, timeout time.Duration) *FileLookup {
	if baseURL == "" {
		baseURL = FilesURL
	}
	if timeout <= 0 {
		timeout = connectors.DefaultTimeout
	}
	return &FileLookup{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetFile fetches id, name, mimeType and webViewLink for a file.
func (l *FileLookup) GetFile(ctx context.Context, accessToken, fileID string) (*driven.DriveFile, error) {
	endpoint := l.baseURL + "/" + url.PathEscape(fileID) + "?" + url.Values{
		"fields":            {"id,name,mimeType,webViewLink"},
		"supportsAllDrives": {"true"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: drive: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: drive: read response: %v", domain.ErrProviderUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: drive file %s", domain.ErrNotFound, fileID)
	case resp.StatusCode != http.StatusOK:
		return nil, &domain.ProviderError{
			Provider:   domain.ProviderTypeDrive,
			Op:         domain.ProviderOpProfile,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var file driven.DriveFile
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}
	return &file, nil
}
