package contracts

import (
	"context"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
)

// IReferenceParser extracts and rewrites references for the content types it supports.
type IReferenceParser interface {
	Supports() []string
	Parse(ctx context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]models.ReferenceDetails, error)
	Update(ctx context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]byte, error)
}

// IReferencePreprocessor extracts references and compiles files of the extensions it supports.
type IReferencePreprocessor interface {
	Extensions() []string
	OutputContentType() string
	OutputExtension() string
	Parse(ctx context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]models.ReferenceDetails, error)
	Process(ctx context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]byte, error)
}

// IActionRegistry turns actions into reachable endpoints.
type IActionRegistry interface {
	Register(action models.Action) error
	URL(path string) string
}
