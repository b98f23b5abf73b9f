package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/domain/services"
	"github.com/ersonp/lineage/internal/infrastructure/parsers"
)

// ImportHandler handles importing family datasets from files.
type ImportHandler struct {
	service *services.ImportService
	logger  *log.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService, logger *log.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format string // "json", "csv", or "auto"
	DryRun bool   // Validate without saving
}

// Handle imports records from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*services.ImportResult, error) {
	// Get parser
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("%w: unsupported format for file: %s", ports.ErrInvalidArgument, filePath)
	}

	// Open file
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	// Parse records
	records, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing file: %w", ports.ErrInvalidArgument, err)
	}

	h.logger.Debug("parsed dataset", "file", filePath, "records", len(records))

	if len(records) == 0 {
		return &services.ImportResult{}, nil
	}

	return h.service.Import(ctx, records, services.ImportOptions{DryRun: opts.DryRun})
}
