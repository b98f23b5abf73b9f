package services

import (
	"fmt"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// invalidArgf builds an ErrInvalidArgument with a formatted message.
func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ports.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func validatePerson(p entities.Person, role string) error {
	if !p.Valid() {
		return invalidArgf("%s must have a positive id (got %d)", role, p.ID)
	}
	return nil
}

func validateMediaFile(m entities.MediaFile) error {
	if !m.Valid() {
		return invalidArgf("media file must have a positive id (got %d)", m.ID)
	}
	return nil
}

func requireText(value, field string) error {
	if entities.IsBlank(value) {
		return invalidArgf("%s must not be empty", field)
	}
	return nil
}
