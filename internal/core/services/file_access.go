package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// Ensure fileAccessService implements FileAccessService
var _ driving.FileAccessService = (*fileAccessService)(nil)

// FileAccessServiceConfig holds dependencies for the file access service.
type FileAccessServiceConfig struct {
	Tokens driving.TokenService
	Lookup driven.DriveFileLookup
	Logger *slog.Logger
}

type fileAccessService struct {
	tokens driving.TokenService
	lookup driven.DriveFileLookup
	logger *slog.Logger
}

// NewFileAccessService creates a new file access service.
func NewFileAccessService(cfg FileAccessServiceConfig) driving.FileAccessService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileAccessService{
		tokens: cfg.Tokens,
		lookup: cfg.Lookup,
		logger: logger,
	}
}

// PublicDriveURL is the viewer URL that works for files shared by link.
func PublicDriveURL(fileID string) string {
	return "https://drive.google.com/file/d/" + url.PathEscape(fileID) + "/view"
}

// ResolveDriveFile looks the file up with the user's Drive token. Token
// problems degrade to the public URL; a file Drive reports missing does not.
func (s *fileAccessService) ResolveDriveFile(ctx context.Context, userUID, fileID string) (*driving.FileLink, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id is required", domain.ErrInvalidInput)
	}
	fallback := &driving.FileLink{FileID: fileID, URL: PublicDriveURL(fileID)}

	token, err := s.tokens.AccessTokenFor(ctx, userUID, domain.ProviderTypeDrive)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Info("drive token unavailable, using public link",
			"user_uid", userUID, "file_id", fileID, "error", err)
		return fallback, nil
	}

	file, err := s.lookup.GetFile(ctx, token, fileID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, err
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("drive lookup failed, using public link", "file_id", fileID, "error", err)
		return fallback, nil
	}

	link := &driving.FileLink{
		FileID:        fileID,
		Name:          file.Name,
		MimeType:      file.MimeType,
		URL:           file.WebViewLink,
		Authenticated: true,
	}
	if link.URL == "" {
		link.URL = fallback.URL
	}
	return link, nil
}
