package firebase

import (
	"context"
	"fmt"

	fbapp "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// AdminAuthClient wraps the Admin SDK for tooling that acts as a service user.
type AdminAuthClient struct {
	client *auth.Client
	apiKey string
}

func NewAdminAuthClient(ctx context.Context, projectID, apiKey string, opts ...option.ClientOption) (*AdminAuthClient, error) {
	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}

	return &AdminAuthClient{
		client: client,
		apiKey: apiKey,
	}, nil
}

func (f *AdminAuthClient) CustomToken(ctx context.Context, uid string, claims map[string]interface{}) (string, error) {
	if len(claims) == 0 {
		return f.client.CustomToken(ctx, uid)
	}
	return f.client.CustomTokenWithClaims(ctx, uid, claims)
}

// TokenSourceForUID mints a custom token for uid and exchanges it for ID tokens on demand.
func (f *AdminAuthClient) TokenSourceForUID(ctx context.Context, uid string, claims map[string]interface{}) (oauth2.TokenSource, error) {
	customToken, err := f.CustomToken(ctx, uid, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to mint custom token: %w", err)
	}

	return NewTokenSource(TokenSourceConfig{
		APIKey:      f.apiKey,
		CustomToken: customToken,
	})
}
