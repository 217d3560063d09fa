package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions turns an inline JSON blob or a key file path into client options.
// Empty credentials fall back to application default credentials.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
