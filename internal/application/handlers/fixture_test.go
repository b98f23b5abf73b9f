package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/mocks"
	"github.com/ersonp/lineage/internal/domain/services"
	"github.com/ersonp/lineage/internal/infrastructure/logging"
	"github.com/ersonp/lineage/internal/infrastructure/metrics"
)

type fixture struct {
	db      *mocks.RelationalDB
	metrics *metrics.Metrics
	family  *FamilyHandler
	media   *MediaHandler
	report  *ReportHandler
	audit   *AuditHandler
	imports *ImportHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := mocks.NewRelationalDB()
	m := metrics.New()
	logger := logging.Discard()

	directory := services.NewDirectoryService(db)
	lineage := services.NewLineageService(db)

	return &fixture{
		db:      db,
		metrics: m,
		family:  NewFamilyHandler(directory),
		media:   NewMediaHandler(directory),
		report: NewReportHandler(
			lineage,
			services.NewRelationService(db),
			services.NewMediaQueryService(db, lineage),
			directory,
			m,
			logger,
		),
		audit:   NewAuditHandler(directory),
		imports: NewImportHandler(services.NewImportService(directory, logger), logger),
	}
}

func (f *fixture) person(t *testing.T, name string) entities.Person {
	t.Helper()
	p, err := f.family.HandleAddPerson(context.Background(), name)
	require.NoError(t, err)
	return *p
}

func names(people []entities.Person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

func locations(files []entities.MediaFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Location
	}
	return out
}

func strPtr(s string) *string { return &s }
