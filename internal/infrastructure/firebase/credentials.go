package firebase

import (
	"os"

	"google.golang.org/api/option"
)

// CredentialsOption prefers inline service account JSON, then a credentials file.
// It returns nil when neither is set so the SDK falls back to application default credentials.
func CredentialsOption(serviceAccountJSON, serviceAccountPath string) option.ClientOption {
	if serviceAccountJSON != "" {
		return option.WithCredentialsJSON([]byte(serviceAccountJSON))
	}
	if serviceAccountPath == "" {
		return nil
	}
	if _, err := os.Stat(serviceAccountPath); err != nil {
		return nil
	}
	return option.WithCredentialsFile(serviceAccountPath)
}

// ClientOptions turns CredentialsOption into a variadic-friendly slice.
func ClientOptions(serviceAccountJSON, serviceAccountPath string) []option.ClientOption {
	if opt := CredentialsOption(serviceAccountJSON, serviceAccountPath); opt != nil {
		return []option.ClientOption{opt}
	}
	return nil
}
