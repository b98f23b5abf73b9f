package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/config"
)

// StoreOpener opens the storage of one tree.
type StoreOpener func(cfg config.SQLiteConfig) (ports.RelationalDB, error)

// TreesHandler manages the registered family trees. Each tree owns its own
// database file.
type TreesHandler struct {
	open StoreOpener
}

// NewTreesHandler creates a new trees handler.
func NewTreesHandler(open StoreOpener) *TreesHandler {
	return &TreesHandler{open: open}
}

// TreeInfo describes a registered tree.
type TreeInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Path        string    `json:"path"`
}

// HandleCreate registers a tree and creates its database schema.
func (h *TreesHandler) HandleCreate(ctx context.Context, basePath, name, description string) (*TreeInfo, error) {
	if config.SanitizeTreeName(name) != name {
		return nil, fmt.Errorf("%w: tree name %q must be lowercase letters, digits and underscores (try %q)",
			ports.ErrInvalidArgument, name, config.SanitizeTreeName(name))
	}

	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return nil, err
	}
	if trees.Exists(name) {
		return nil, fmt.Errorf("tree %q: %w", name, ports.ErrDuplicate)
	}

	path := config.SQLitePathForTree(basePath, name)
	if err := os.MkdirAll(config.TreeDir(basePath, name), 0755); err != nil {
		return nil, fmt.Errorf("creating tree directory: %w", err)
	}

	store, err := h.open(config.SQLiteConfig{Path: path})
	if err != nil {
		return nil, fmt.Errorf("opening tree store: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	entry := config.TreeEntry{Description: description, CreatedAt: time.Now().UTC()}
	trees.Add(name, entry)
	if err := trees.Save(basePath); err != nil {
		return nil, err
	}

	return &TreeInfo{Name: name, Description: description, CreatedAt: entry.CreatedAt, Path: path}, nil
}

// HandleList lists registered trees by name.
func (h *TreesHandler) HandleList(basePath string) ([]TreeInfo, error) {
	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return nil, err
	}

	infos := make([]TreeInfo, 0, len(trees.Trees))
	for _, name := range trees.Names() {
		entry := trees.Trees[name]
		infos = append(infos, TreeInfo{
			Name:        name,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
			Path:        config.SQLitePathForTree(basePath, name),
		})
	}
	return infos, nil
}

// HandleDelete unregisters a tree and removes its database.
func (h *TreesHandler) HandleDelete(basePath, name string) error {
	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return err
	}
	if _, err := trees.Get(name); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrNotFound, err)
	}

	if err := os.RemoveAll(config.TreeDir(basePath, name)); err != nil {
		return fmt.Errorf("removing tree directory: %w", err)
	}

	trees.Remove(name)
	return trees.Save(basePath)
}
