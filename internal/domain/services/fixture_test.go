package services

import (
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/mocks"
)

// fixture wires every service to one in-memory store.
type fixture struct {
	db        *mocks.RelationalDB
	directory *DirectoryService
	lineage   *LineageService
	relations *RelationService
	media     *MediaQueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := mocks.NewRelationalDB()
	lineage := NewLineageService(db)
	return &fixture{
		db:        db,
		directory: NewDirectoryService(db),
		lineage:   lineage,
		relations: NewRelationService(db),
		media:     NewMediaQueryService(db, lineage),
	}
}

func (f *fixture) person(t *testing.T, name string) entities.Person {
	t.Helper()
	p, err := f.directory.AddPerson(context.Background(), name)
	require.NoError(t, err)
	return *p
}

func (f *fixture) child(t *testing.T, parent, child entities.Person) {
	t.Helper()
	_, err := f.directory.RecordChild(context.Background(), parent, child)
	require.NoError(t, err)
}

func (f *fixture) file(t *testing.T, location string, attrs map[string]string, tags ...string) entities.MediaFile {
	t.Helper()
	ctx := context.Background()
	m, err := f.directory.AddMediaFile(ctx, location)
	require.NoError(t, err)
	if len(attrs) > 0 {
		require.NoError(t, f.directory.RecordMediaAttributes(ctx, *m, attrs))
	}
	for _, tag := range tags {
		require.NoError(t, f.directory.TagMedia(ctx, *m, tag))
	}
	return *m
}

func ids(people []entities.Person) []int64 {
	out := make([]int64, len(people))
	for i, p := range people {
		out[i] = p.ID
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

func discardLogger() *log.Logger {
	return log.New(nopWriter{})
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
