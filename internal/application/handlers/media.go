package handlers

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/services"
)

// MediaHandler handles media archive record keeping.
type MediaHandler struct {
	directory *services.DirectoryService
	people    personResolver
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(directory *services.DirectoryService) *MediaHandler {
	return &MediaHandler{
		directory: directory,
		people:    personResolver{directory: directory},
	}
}

// MediaInfo is a media file with its attributes.
type MediaInfo struct {
	File       entities.MediaFile   `json:"file"`
	Attributes []entities.Attribute `json:"attributes"`
}

// HandleAdd archives a media file, then records any attributes and tags.
func (h *MediaHandler) HandleAdd(ctx context.Context, location string, values map[string]string, tags []string) (*entities.MediaFile, error) {
	file, err := h.directory.AddMediaFile(ctx, location)
	if err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := h.directory.RecordMediaAttributes(ctx, *file, values); err != nil {
			return nil, err
		}
	}
	for _, tag := range tags {
		if err := h.directory.TagMedia(ctx, *file, tag); err != nil {
			return nil, err
		}
	}
	return file, nil
}

// HandleFind looks up a media file by location.
func (h *MediaHandler) HandleFind(ctx context.Context, location string) (*MediaInfo, error) {
	file, err := h.directory.FindMediaFile(ctx, location)
	if err != nil {
		return nil, err
	}
	attrs, err := h.directory.MediaAttributes(ctx, *file)
	if err != nil {
		return nil, err
	}
	return &MediaInfo{File: *file, Attributes: attrs}, nil
}

// HandleAttributes records attributes for a media file.
func (h *MediaHandler) HandleAttributes(ctx context.Context, location string, values map[string]string) error {
	file, err := h.directory.FindMediaFile(ctx, location)
	if err != nil {
		return err
	}
	return h.directory.RecordMediaAttributes(ctx, *file, values)
}

// HandleTag adds tags to a media file.
func (h *MediaHandler) HandleTag(ctx context.Context, location string, tags []string) error {
	file, err := h.directory.FindMediaFile(ctx, location)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		if err := h.directory.TagMedia(ctx, *file, tag); err != nil {
			return err
		}
	}
	return nil
}

// HandleListTags lists the tag vocabulary.
func (h *MediaHandler) HandleListTags(ctx context.Context) ([]string, error) {
	return h.directory.ListTags(ctx)
}

// HandlePeople records the people appearing in a media file.
func (h *MediaHandler) HandlePeople(ctx context.Context, location string, refs []string) error {
	file, err := h.directory.FindMediaFile(ctx, location)
	if err != nil {
		return err
	}
	people, err := h.people.resolveAll(ctx, refs)
	if err != nil {
		return err
	}
	return h.directory.PeopleInMedia(ctx, *file, people)
}
