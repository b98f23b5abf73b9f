package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lineage/internal/infrastructure/config"
)

// DefaultTree is the tree created by init.
const DefaultTree = "default"

// InitHandler handles workspace initialization.
type InitHandler struct {
	trees *TreesHandler
}

// NewInitHandler creates a new init handler.
func NewInitHandler(trees *TreesHandler) *InitHandler {
	return &InitHandler{trees: trees}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath string
	Tree       *TreeInfo
}

// Handle writes the default configuration and creates the default tree.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if err := config.WriteDefault(basePath); err != nil {
		return nil, err
	}

	if _, err := config.Load(basePath); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	tree, err := h.trees.HandleCreate(ctx, basePath, DefaultTree, "created by init")
	if err != nil {
		return nil, fmt.Errorf("creating default tree: %w", err)
	}

	return &InitResult{
		ConfigPath: config.ConfigFilePath(basePath),
		Tree:       tree,
	}, nil
}
