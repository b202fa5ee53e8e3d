package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Ensure AccountStore implements the interface.
var _ driven.AccountStore = (*AccountStore)(nil)

// AccountStore implements driven.AccountStore with one table per provider.
type AccountStore struct {
	db     *sql.DB
	cipher *TokenCipher
}

// NewAccountStore creates a new PostgreSQL-backed account store.
func NewAccountStore(db *sql.DB, cipher *TokenCipher) *AccountStore {
	return &AccountStore{
		db:     db,
		cipher: cipher,
	}
}

// accountTable returns the table for a provider. Only known providers map to
// a table, so the name is safe to interpolate.
func accountTable(provider domain.ProviderType) (string, error) {
	switch provider {
	case domain.ProviderTypeGmail:
		return "gmail_accounts", nil
	case domain.ProviderTypeDrive:
		return "drive_accounts", nil
	case domain.ProviderTypeOutlook:
		return "outlook_accounts", nil
	case domain.ProviderTypeOneDrive:
		return "onedrive_accounts", nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, provider)
}

// Upsert inserts or updates the account keyed by user_uid.
// A NULL refresh token or drive metadata keeps the stored value.
func (s *AccountStore) Upsert(ctx context.Context, account *domain.ConnectedAccount) error {
	table, err := accountTable(account.Provider)
	if err != nil {
		return err
	}

	accessEnc, err := s.cipher.Encrypt(account.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refreshEnc, err := s.cipher.Encrypt(account.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	query := upsertAccountQuery(table)

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}
	scopes := account.Scopes
	if scopes == nil {
		scopes = []string{}
	}

	_, err = s.db.ExecContext(ctx, query,
		account.UserUID,
		account.ProviderUserID,
		nullString(account.ProviderEmail),
		accessEnc,
		nullBytes(refreshEnc),
		nullTime(account.ExpiresAt),
		pq.Array(scopes),
		nullString(string(account.DriveMetadata)),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert %s account: %w", account.Provider, err)
	}

	return nil
}

// upsertAccountQuery builds the upsert for one provider table. A NULL
// refresh_token_enc or drive_metadata keeps the stored column.
func upsertAccountQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %[1]s (
			user_uid, provider_user_id, provider_email,
			access_token_enc, refresh_token_enc, expires_at,
			scopes, drive_metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_uid) DO UPDATE SET
			provider_user_id = EXCLUDED.provider_user_id,
			provider_email = EXCLUDED.provider_email,
			access_token_enc = EXCLUDED.access_token_enc,
			refresh_token_enc = COALESCE(EXCLUDED.refresh_token_enc, %[1]s.refresh_token_enc),
			expires_at = EXCLUDED.expires_at,
			scopes = EXCLUDED.scopes,
			drive_metadata = COALESCE(EXCLUDED.drive_metadata, %[1]s.drive_metadata),
			updated_at = EXCLUDED.updated_at
	`, table)
}

// Get retrieves an account with decrypted tokens, or nil when none exists.
func (s *AccountStore) Get(ctx context.Context, userUID string, provider domain.ProviderType) (*domain.ConnectedAccount, error) {
	table, err := accountTable(provider)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT user_uid, provider_user_id, provider_email,
			   access_token_enc, refresh_token_enc, expires_at,
			   scopes, drive_metadata::text, created_at, updated_at
		FROM %s
		WHERE user_uid = $1
	`, table)

	account := domain.ConnectedAccount{Provider: provider}
	var email, driveMetadata sql.NullString
	var accessEnc, refreshEnc []byte
	var expiresAt sql.NullTime
	var scopes []string

	err = s.db.QueryRowContext(ctx, query, userUID).Scan(
		&account.UserUID,
		&account.ProviderUserID,
		&email,
		&accessEnc,
		&refreshEnc,
		&expiresAt,
		pq.Array(&scopes),
		&driveMetadata,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s account: %w", provider, err)
	}

	if account.AccessToken, err = s.cipher.Decrypt(accessEnc); err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	if account.RefreshToken, err = s.cipher.Decrypt(refreshEnc); err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}

	account.ProviderEmail = email.String
	if expiresAt.Valid {
		account.ExpiresAt = &expiresAt.Time
	}
	account.Scopes = scopes
	if driveMetadata.Valid {
		account.DriveMetadata = json.RawMessage(driveMetadata.String)
	}

	return &account, nil
}
