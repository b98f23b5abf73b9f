package handlers

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/services"
	"github.com/ersonp/lineage/internal/infrastructure/metrics"
)

// Report operation names, used as metric labels.
const (
	OpDescendants     = "descendants"
	OpAncestors       = "ancestors"
	OpRelation        = "relation"
	OpMediaByTag      = "media_by_tag"
	OpMediaByLocation = "media_by_location"
	OpPeopleMedia     = "people_media"
	OpFamilyMedia     = "family_media"
)

// DateFilter holds the optional bounds of a media query as typed by the
// user. A nil bound is open.
type DateFilter struct {
	From *string
	To   *string
}

// PeopleReport is the result of a lineage query.
type PeopleReport struct {
	Operation   string            `json:"operation"`
	Root        entities.Person   `json:"root"`
	Generations int               `json:"generations"`
	People      []entities.Person `json:"people"`
}

// RelationReport is the result of a relation query. Relation and Ancestor
// are nil when the two people share no ancestor.
type RelationReport struct {
	A           entities.Person              `json:"a"`
	B           entities.Person              `json:"b"`
	Relation    *entities.BiologicalRelation `json:"relation,omitempty"`
	Ancestor    *entities.Person             `json:"ancestor,omitempty"`
	Description string                       `json:"description"`
}

// MediaReport is the result of a media query, in chronological order.
type MediaReport struct {
	Operation string               `json:"operation"`
	Query     string               `json:"query,omitempty"`
	Media     []entities.MediaFile `json:"media"`
}

// ReportHandler runs the read-only family and media reports.
type ReportHandler struct {
	lineage   *services.LineageService
	relations *services.RelationService
	media     *services.MediaQueryService
	directory *services.DirectoryService
	people    personResolver
	metrics   *metrics.Metrics
	logger    *log.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(
	lineage *services.LineageService,
	relations *services.RelationService,
	media *services.MediaQueryService,
	directory *services.DirectoryService,
	m *metrics.Metrics,
	logger *log.Logger,
) *ReportHandler {
	return &ReportHandler{
		lineage:   lineage,
		relations: relations,
		media:     media,
		directory: directory,
		people:    personResolver{directory: directory},
		metrics:   m,
		logger:    logger,
	}
}

// HandleDescendants lists descendants of a person up to generations deep.
func (h *ReportHandler) HandleDescendants(ctx context.Context, ref string, generations int) (report *PeopleReport, err error) {
	start := time.Now()
	defer func() { h.observe(OpDescendants, start, peopleCount(report), err) }()

	root, err := h.people.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	people, err := h.lineage.Descendants(ctx, root, generations)
	if err != nil {
		return nil, err
	}
	return &PeopleReport{Operation: OpDescendants, Root: root, Generations: generations, People: people}, nil
}

// HandleAncestors lists ancestors of a person up to generations deep.
func (h *ReportHandler) HandleAncestors(ctx context.Context, ref string, generations int) (report *PeopleReport, err error) {
	start := time.Now()
	defer func() { h.observe(OpAncestors, start, peopleCount(report), err) }()

	root, err := h.people.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	people, err := h.lineage.Ancestors(ctx, root, generations)
	if err != nil {
		return nil, err
	}
	return &PeopleReport{Operation: OpAncestors, Root: root, Generations: generations, People: people}, nil
}

// HandleRelation classifies the biological relation between two people.
func (h *ReportHandler) HandleRelation(ctx context.Context, a, b string) (report *RelationReport, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if report != nil && report.Relation != nil {
			n = 1
		}
		h.observe(OpRelation, start, n, err)
	}()

	first, second, err := h.people.resolvePair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	rel, err := h.relations.FindRelation(ctx, first, second)
	if err != nil {
		return nil, err
	}

	report = &RelationReport{A: first, B: second, Description: "not related"}
	if rel == nil {
		return report, nil
	}
	ancestor, err := h.directory.FindPersonByID(ctx, rel.CommonAncestorID)
	if err != nil {
		return nil, err
	}
	report.Relation = rel
	report.Ancestor = ancestor
	report.Description = rel.Describe()
	return report, nil
}

// HandleMediaByTag lists media carrying tag.
func (h *ReportHandler) HandleMediaByTag(ctx context.Context, tag string, dates DateFilter) (report *MediaReport, err error) {
	start := time.Now()
	defer func() { h.observe(OpMediaByTag, start, mediaCount(report), err) }()

	r, err := services.ParseDateRange(dates.From, dates.To)
	if err != nil {
		return nil, err
	}
	media, err := h.media.FindMediaByTag(ctx, tag, r)
	if err != nil {
		return nil, err
	}
	return &MediaReport{Operation: OpMediaByTag, Query: tag, Media: media}, nil
}

// HandleMediaByLocation lists media whose location contains text.
func (h *ReportHandler) HandleMediaByLocation(ctx context.Context, text string, dates DateFilter) (report *MediaReport, err error) {
	start := time.Now()
	defer func() { h.observe(OpMediaByLocation, start, mediaCount(report), err) }()

	r, err := services.ParseDateRange(dates.From, dates.To)
	if err != nil {
		return nil, err
	}
	media, err := h.media.FindMediaByLocation(ctx, text, r)
	if err != nil {
		return nil, err
	}
	return &MediaReport{Operation: OpMediaByLocation, Query: text, Media: media}, nil
}

// HandlePeopleMedia lists media in which any of the people appear. An empty
// list succeeds with no media and no further validation.
func (h *ReportHandler) HandlePeopleMedia(ctx context.Context, refs []string, dates DateFilter) (report *MediaReport, err error) {
	start := time.Now()
	defer func() { h.observe(OpPeopleMedia, start, mediaCount(report), err) }()

	if len(refs) == 0 {
		return &MediaReport{Operation: OpPeopleMedia, Media: []entities.MediaFile{}}, nil
	}

	r, err := services.ParseDateRange(dates.From, dates.To)
	if err != nil {
		return nil, err
	}
	people, err := h.people.resolveAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	media, err := h.media.FindIndividualsMedia(ctx, people, r)
	if err != nil {
		return nil, err
	}
	return &MediaReport{Operation: OpPeopleMedia, Media: media}, nil
}

// HandleFamilyMedia lists media in which the person's children appear.
func (h *ReportHandler) HandleFamilyMedia(ctx context.Context, ref string) (report *MediaReport, err error) {
	start := time.Now()
	defer func() { h.observe(OpFamilyMedia, start, mediaCount(report), err) }()

	person, err := h.people.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	media, err := h.media.FindBiologicalFamilyMedia(ctx, person)
	if err != nil {
		return nil, err
	}
	return &MediaReport{Operation: OpFamilyMedia, Query: person.Name, Media: media}, nil
}

func (h *ReportHandler) observe(op string, start time.Time, results int, err error) {
	h.metrics.Observe(op, start, results, err)
	if err != nil {
		h.logger.Debug("query failed", "op", op, "err", err)
		return
	}
	h.logger.Debug("query", "op", op, "results", results, "elapsed", time.Since(start))
}

func peopleCount(r *PeopleReport) int {
	if r == nil {
		return 0
	}
	return len(r.People)
}

func mediaCount(r *MediaReport) int {
	if r == nil {
		return 0
	}
	return len(r.Media)
}
