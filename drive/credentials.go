package drive

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
)

// ReadonlyCredentials builds read-only Drive credentials from a
// service-account JSON blob. A missing or malformed blob is a configuration
// error and must surface as a failed request, not a process crash, so the
// caller constructs credentials lazily on first use.
func ReadonlyCredentials(ctx context.Context, credentialsJSON []byte) (*google.Credentials, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("google credentials are not configured")
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, gdrive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("invalid google credentials: %w", err)
	}
	return creds, nil
}
