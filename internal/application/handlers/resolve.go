// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/domain/services"
)

// personResolver turns a CLI person argument into a recorded person.
// "#<id>" selects by id, anything else is an exact name.
type personResolver struct {
	directory *services.DirectoryService
}

func (r personResolver) resolve(ctx context.Context, ref string) (entities.Person, error) {
	ref = strings.TrimSpace(ref)
	if idText, ok := strings.CutPrefix(ref, "#"); ok {
		id, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return entities.Person{}, fmt.Errorf("%w: invalid person id %q", ports.ErrInvalidArgument, ref)
		}
		p, err := r.directory.FindPersonByID(ctx, id)
		if err != nil {
			return entities.Person{}, err
		}
		return *p, nil
	}

	p, err := r.directory.FindPerson(ctx, ref)
	if err != nil {
		return entities.Person{}, err
	}
	return *p, nil
}

func (r personResolver) resolveAll(ctx context.Context, refs []string) ([]entities.Person, error) {
	people := make([]entities.Person, 0, len(refs))
	for _, ref := range refs {
		p, err := r.resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}

func (r personResolver) resolvePair(ctx context.Context, a, b string) (entities.Person, entities.Person, error) {
	first, err := r.resolve(ctx, a)
	if err != nil {
		return entities.Person{}, entities.Person{}, err
	}
	second, err := r.resolve(ctx, b)
	if err != nil {
		return entities.Person{}, entities.Person{}, err
	}
	return first, second, nil
}
