package repository

import (
	"context"
	"encoding/base64"

	"virtualitems/internal/domain/repository"
	"virtualitems/pkg/errors"
)

type functionsThumbnailRepository struct {
	caller FunctionCaller
}

type imageResponse struct {
	Image *string `json:"image"`
}

func NewFunctionsThumbnailRepository(caller FunctionCaller) repository.ThumbnailRepository {
	return &functionsThumbnailRepository{caller: caller}
}

func (r *functionsThumbnailRepository) Download(ctx context.Context, id string) ([]byte, bool, error) {
	if err := requireID(id); err != nil {
		return nil, false, err
	}

	var out imageResponse
	err := r.caller.Call(ctx, fn("downloadImage"), map[string]interface{}{"virtualItemId": id}, &out)
	if errors.Is(err, errors.CodeNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if out.Image == nil || *out.Image == "" {
		return nil, false, nil
	}

	data, err := base64.StdEncoding.DecodeString(*out.Image)
	if err != nil {
		return nil, false, errors.Transport("failed to decode thumbnail", err)
	}
	return data, true, nil
}

func (r *functionsThumbnailRepository) Upload(ctx context.Context, id string, data []byte) error {
	if err := requireID(id); err != nil {
		return err
	}

	params := map[string]interface{}{
		"virtualItemId": id,
		"image":         base64.StdEncoding.EncodeToString(data),
	}
	return r.caller.Call(ctx, fn("uploadImage"), params, nil)
}
