package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// detailWorkers bounds concurrent detail lookups per query.
const detailWorkers = 8

// ParseDateRange builds an inclusive date range from optional bounds. A nil
// bound leaves that side open.
func ParseDateRange(start, end *string) (entities.DateRange, error) {
	var r entities.DateRange
	for _, b := range []struct {
		name  string
		value *string
		dst   **entities.PartialDate
	}{
		{"start date", start, &r.Start},
		{"end date", end, &r.End},
	} {
		if b.value == nil {
			continue
		}
		if entities.IsBlank(*b.value) {
			return entities.DateRange{}, invalidArgf("%s must not be empty", b.name)
		}
		d, err := entities.ParsePartialDate(*b.value)
		if err != nil {
			return entities.DateRange{}, invalidArgf("%s: %v", b.name, err)
		}
		*b.dst = &d
	}

	if r.Start != nil && r.End != nil && r.Start.Compare(*r.End) > 0 {
		return entities.DateRange{}, invalidArgf("start date %s is after end date %s", r.Start, r.End)
	}
	return r, nil
}

// MediaQueryService retrieves media by tag, location or the people in them,
// filtered by date and returned in chronological order.
type MediaQueryService struct {
	catalog ports.MediaCatalog
	lineage *LineageService
}

// NewMediaQueryService creates a new MediaQueryService.
func NewMediaQueryService(catalog ports.MediaCatalog, lineage *LineageService) *MediaQueryService {
	return &MediaQueryService{
		catalog: catalog,
		lineage: lineage,
	}
}

// FindMediaByTag returns media carrying tag within the date range.
func (s *MediaQueryService) FindMediaByTag(ctx context.Context, tag string, r entities.DateRange) ([]entities.MediaFile, error) {
	if err := requireText(tag, "tag"); err != nil {
		return nil, err
	}
	ids, err := s.catalog.MediaByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("finding media tagged %q: %w", tag, err)
	}
	return s.collect(ctx, ids, r)
}

// FindMediaByLocation returns media whose location attribute contains text.
func (s *MediaQueryService) FindMediaByLocation(ctx context.Context, text string, r entities.DateRange) ([]entities.MediaFile, error) {
	if err := requireText(text, "location"); err != nil {
		return nil, err
	}
	ids, err := s.catalog.MediaByLocationSubstring(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("finding media at %q: %w", text, err)
	}
	return s.collect(ctx, ids, r)
}

// FindIndividualsMedia returns media in which at least one of people appears.
func (s *MediaQueryService) FindIndividualsMedia(ctx context.Context, people []entities.Person, r entities.DateRange) ([]entities.MediaFile, error) {
	if len(people) == 0 {
		return []entities.MediaFile{}, nil
	}
	for _, p := range people {
		if err := validatePerson(p, "person"); err != nil {
			return nil, err
		}
	}

	ids, err := s.mediaForPeople(ctx, people)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, ids, r)
}

// FindBiologicalFamilyMedia returns media in which any of the person's
// immediate children appear. No date filter applies.
func (s *MediaQueryService) FindBiologicalFamilyMedia(ctx context.Context, person entities.Person) ([]entities.MediaFile, error) {
	children, err := s.lineage.Descendants(ctx, person, 1)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return []entities.MediaFile{}, nil
	}

	ids, err := s.mediaForPeople(ctx, children)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, ids, entities.DateRange{})
}

func (s *MediaQueryService) mediaForPeople(ctx context.Context, people []entities.Person) ([]int64, error) {
	var ids []int64
	for _, p := range people {
		found, err := s.catalog.MediaForPerson(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("finding media for person %d: %w", p.ID, err)
		}
		ids = append(ids, found...)
	}
	return ids, nil
}

// mediaDetail is a candidate media file with the fields used for filtering
// and ordering.
type mediaDetail struct {
	file entities.MediaFile
	date *entities.PartialDate
}

// collect deduplicates candidate ids, loads their details concurrently,
// applies the date range and sorts the survivors.
func (s *MediaQueryService) collect(ctx context.Context, ids []int64, r entities.DateRange) ([]entities.MediaFile, error) {
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return []entities.MediaFile{}, nil
	}

	details := make([]mediaDetail, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailWorkers)
	for i, id := range unique {
		i, id := i, id
		g.Go(func() error {
			location, err := s.catalog.MediaLocation(gctx, id)
			if err != nil {
				return fmt.Errorf("loading location of media %d: %w", id, err)
			}
			date, err := s.catalog.MediaDateAttribute(gctx, id)
			if err != nil {
				return fmt.Errorf("loading date of media %d: %w", id, err)
			}
			details[i] = mediaDetail{
				file: entities.MediaFile{ID: id, Location: location},
				date: date,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := details[:0]
	for _, d := range details {
		if r.Bounded() && (d.date == nil || !r.Contains(*d.date)) {
			continue
		}
		kept = append(kept, d)
	}
	sortMedia(kept)

	result := make([]entities.MediaFile, len(kept))
	for i, d := range kept {
		result[i] = d.file
	}
	return result, nil
}

// sortMedia orders by date ascending with dateless entries last, breaking
// ties by file location.
func sortMedia(details []mediaDetail) {
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		switch {
		case a.date != nil && b.date != nil:
			if c := a.date.Compare(*b.date); c != 0 {
				return c < 0
			}
		case a.date != nil:
			return true
		case b.date != nil:
			return false
		}
		return a.file.Location < b.file.Location
	})
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
