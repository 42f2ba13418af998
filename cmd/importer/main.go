package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"virtualitems/internal/adapter/repository"
	"virtualitems/internal/infrastructure/firebase"
	"virtualitems/internal/usecase"
	"virtualitems/pkg/config"
	"virtualitems/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	appPackage := flag.String("app", "", "target application package name")
	itemName := flag.String("name", "", "virtual item name (defaults to the CSV file name)")
	blockchainStub := flag.Bool("blockchain-stub", false, "add a blockchain stub record")
	file := flag.String("file", "", "path to the CSV file")
	uid := flag.String("uid", "", "service uid to act as when no refresh token is configured")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.FirebaseProject == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()

	if *file == "" {
		return fmt.Errorf("-file is required")
	}
	info, err := os.Stat(*file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *file, err)
	}
	if info.Size() > usecase.MaxImportBytes {
		return fmt.Errorf("%s exceeds 10MB", *file)
	}
	content, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *file, err)
	}

	ctx := context.Background()

	tokenSource, err := importerTokenSource(ctx, cfg, *uid)
	if err != nil {
		return err
	}

	functions := firebase.NewFunctionsClient(firebase.FunctionsConfig{
		ProjectID:    cfg.FirebaseProject,
		Region:       cfg.FirebaseRegion,
		BaseURL:      cfg.FunctionsBaseURL,
		EmulatorHost: cfg.FunctionsEmulator,
		Timeout:      cfg.RequestTimeout,
		TokenSource:  tokenSource,
	})
	catalog := repository.NewFunctionsVirtualItemRepository(functions, cfg.AppID, cfg.IDBatchSize)
	identity := firebase.NewIdentityResolver(tokenSource, cfg.AdminUIDs)

	importUseCase := usecase.NewImportUseCase(catalog, identity)
	req, err := importUseCase.Import(ctx, usecase.ImportInput{
		AppPackageName:    *appPackage,
		VirtualItemName:   *itemName,
		AddBlockchainStub: *blockchainStub,
		FileName:          filepath.Base(*file),
		Content:           string(content),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s into %s\n", req.VirtualItemName, req.AppPackageName)
	return nil
}

// importerTokenSource prefers the configured refresh token. Otherwise it mints a custom token
// for uid with the admin SDK, which needs service account credentials.
func importerTokenSource(ctx context.Context, cfg *config.Config, uid string) (oauth2.TokenSource, error) {
	if cfg.RefreshToken != "" {
		return firebase.NewTokenSource(firebase.TokenSourceConfig{
			APIKey:       cfg.FirebaseApiKey,
			RefreshToken: cfg.RefreshToken,
		})
	}

	if uid == "" {
		return nil, fmt.Errorf("set FIREBASE_REFRESH_TOKEN or pass -uid")
	}
	opts := firebase.ClientOptions(cfg.ServiceAccountJSON, cfg.ServiceAccountPath)
	if len(opts) == 0 {
		return nil, fmt.Errorf("-uid requires FIREBASE_SERVICE_ACCOUNT_JSON or FIREBASE_SERVICE_ACCOUNT_PATH")
	}

	adminAuth, err := firebase.NewAdminAuthClient(ctx, cfg.FirebaseProject, cfg.FirebaseApiKey, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("Acting as service uid %s", uid)
	return adminAuth.TokenSourceForUID(ctx, uid, map[string]interface{}{"admin": true})
}
