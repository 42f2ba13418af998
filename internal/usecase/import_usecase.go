package usecase

import (
	"context"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/domain/repository"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/logger"
)

// MaxImportBytes bounds the CSV forwarded to addFromCSV. Larger files are rejected, never truncated.
const MaxImportBytes = 10 << 20

type ImportUseCase struct {
	writer   repository.VirtualItemWriter
	identity IdentityProvider
	validate *validator.Validate
}

func NewImportUseCase(writer repository.VirtualItemWriter, identity IdentityProvider) *ImportUseCase {
	return &ImportUseCase{
		writer:   writer,
		identity: identity,
		validate: validator.New(),
	}
}

type ImportInput struct {
	AppPackageName    string
	VirtualItemName   string
	AddBlockchainStub bool
	FileName          string
	Content           string
}

// Import sends a CSV file to addFromCSV. Nothing is kept locally, so a failed import leaves no state.
func (uc *ImportUseCase) Import(ctx context.Context, input ImportInput) (*entity.CSVImport, error) {
	identity, err := uc.identity.Identity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.CanManageCatalog() {
		return nil, errors.PermissionDenied("admin role required to import virtual items", nil)
	}

	req := entity.CSVImport{
		AppPackageName:    strings.TrimSpace(input.AppPackageName),
		VirtualItemName:   strings.TrimSpace(input.VirtualItemName),
		AddBlockchainStub: input.AddBlockchainStub,
		CSVFileString:     input.Content,
	}
	if req.VirtualItemName == "" {
		req.VirtualItemName = BaseNameWithoutExt(input.FileName)
	}

	if strings.TrimSpace(req.CSVFileString) == "" {
		return nil, errors.Validation("csv file content is required")
	}
	if len(req.CSVFileString) > MaxImportBytes {
		return nil, errors.Validation("csv file exceeds 10MB")
	}
	if req.AppPackageName == "" {
		return nil, errors.Validation("app package name is required")
	}
	if req.VirtualItemName == "" {
		return nil, errors.Validation("virtual item name is required")
	}
	if err := checkCSV(req.CSVFileString); err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(req); err != nil {
		return nil, errors.Validation("invalid import request")
	}

	if err := uc.writer.AddFromCSV(ctx, req); err != nil {
		return nil, err
	}

	logger.Info("CSV import %q for %s submitted by %s (stub=%t)", req.VirtualItemName, req.AppPackageName, identity.UID, req.AddBlockchainStub)
	return &req, nil
}

// BaseNameWithoutExt turns "dir/items.csv" into "items".
func BaseNameWithoutExt(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func checkCSV(content string) error {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return errors.Validation("csv file is not valid: " + err.Error())
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return errors.Validation("csv file must start with a header row")
	}
	return nil
}
