package mocks

import (
	"context"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// MockDriveFileLookup serves files from a map.
type MockDriveFileLookup struct {
	Files map[string]*driven.DriveFile
	Err   error

	// LastToken is the access token of the last call.
	LastToken string
}

func (m *MockDriveFileLookup) GetFile(ctx context.Context, accessToken, fileID string) (*driven.DriveFile, error) {
	m.LastToken = accessToken
	if m.Err != nil {
		return nil, m.Err
	}
	f, ok := m.Files[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return f, nil
}
