package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/domain/services"
	"github.com/ersonp/lineage/internal/infrastructure/config"
	"github.com/ersonp/lineage/internal/infrastructure/logging"
	"github.com/ersonp/lineage/internal/infrastructure/parsers"
	"github.com/ersonp/lineage/internal/infrastructure/relationaldb/sqlite"
)

type engine struct {
	directory *services.DirectoryService
	lineage   *services.LineageService
	relations *services.RelationService
	media     *services.MediaQueryService
	imports   *services.ImportService
}

func openEngine(t *testing.T, path string) *engine {
	t.Helper()
	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))

	directory := services.NewDirectoryService(repo)
	lineage := services.NewLineageService(repo)
	return &engine{
		directory: directory,
		lineage:   lineage,
		relations: services.NewRelationService(repo),
		media:     services.NewMediaQueryService(repo, lineage),
		imports:   services.NewImportService(directory, logging.Discard()),
	}
}

func TestSQLiteIntegration_FileDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "lineage.db")
	e := openEngine(t, dbPath)
	ctx := context.Background()

	_, err := os.Stat(dbPath)
	require.NoError(t, err, "database file should exist")

	add := func(name string) entities.Person {
		p, err := e.directory.AddPerson(ctx, name)
		require.NoError(t, err)
		return *p
	}
	p1, p2, p3, p4 := add("P1"), add("P2"), add("P3"), add("P4")

	for _, link := range [][2]entities.Person{{p1, p3}, {p1, p4}, {p2, p4}} {
		added, err := e.directory.RecordChild(ctx, link[0], link[1])
		require.NoError(t, err)
		assert.True(t, added)
	}

	_, err = e.directory.RecordChild(ctx, p3, p4)
	require.ErrorIs(t, err, ports.ErrTooManyParents)

	added, err := e.directory.RecordChild(ctx, p1, p4)
	require.NoError(t, err)
	assert.False(t, added)

	descendants, err := e.lineage.Descendants(ctx, p1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{p3.ID, p4.ID}, idsOf(descendants))

	rel, err := e.relations.FindRelation(ctx, p3, p4)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, "siblings", rel.Describe())
	assert.Equal(t, p1.ID, rel.CommonAncestorID)

	t.Run("data survives reopening", func(t *testing.T) {
		reopened := openEngine(t, dbPath)
		ancestors, err := reopened.lineage.Ancestors(ctx, p4, 3)
		require.NoError(t, err)
		assert.Len(t, ancestors, 2)
	})
}

func TestSQLiteIntegration_MediaQueries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	e := openEngine(t, filepath.Join(t.TempDir(), "lineage.db"))
	ctx := context.Background()

	records := []parsers.RawRecord{
		{Kind: parsers.KindPerson, Subject: "mum", Value: "Mum", LineNum: 1},
		{Kind: parsers.KindPerson, Subject: "kid", Value: "Kid", LineNum: 2},
		{Kind: parsers.KindChild, Subject: "mum", Object: "kid", LineNum: 3},
		{Kind: parsers.KindMedia, Subject: "a.jpg", LineNum: 4},
		{Kind: parsers.KindMedia, Subject: "b.jpg", LineNum: 5},
		{Kind: parsers.KindMedia, Subject: "c.jpg", LineNum: 6},
		{Kind: parsers.KindMediaAttribute, Subject: "a.jpg", Key: "date", Value: "2021", LineNum: 7},
		{Kind: parsers.KindMediaAttribute, Subject: "a.jpg", Key: "location", Value: "Halifax, Nova Scotia", LineNum: 8},
		{Kind: parsers.KindMediaAttribute, Subject: "b.jpg", Key: "date", Value: "2020-05", LineNum: 9},
		{Kind: parsers.KindTag, Subject: "a.jpg", Value: "Travel", LineNum: 10},
		{Kind: parsers.KindTag, Subject: "b.jpg", Value: "Travel", LineNum: 11},
		{Kind: parsers.KindTag, Subject: "c.jpg", Value: "Travel", LineNum: 12},
		{Kind: parsers.KindAppears, Subject: "b.jpg", Object: "kid", LineNum: 13},
	}
	result, err := e.imports.Import(ctx, records, services.ImportOptions{})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Equal(t, len(records), result.Imported)

	files, err := e.media.FindMediaByTag(ctx, "Travel", entities.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "a.jpg", "c.jpg"}, locationsOf(files))

	r, err := services.ParseDateRange(nil, strPtr("2020-12"))
	require.NoError(t, err)
	files, err = e.media.FindMediaByTag(ctx, "Travel", r)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg"}, locationsOf(files))

	files, err = e.media.FindMediaByLocation(ctx, "Halifax", entities.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, locationsOf(files))

	mum, err := e.directory.FindPerson(ctx, "Mum")
	require.NoError(t, err)
	files, err = e.media.FindBiologicalFamilyMedia(ctx, *mum)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg"}, locationsOf(files))

	entries, err := e.directory.AuditLog(ctx, services.ActionTag, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, result.BatchID, entries[0].Details["batch"])
}

func idsOf(people []entities.Person) []int64 {
	out := make([]int64, len(people))
	for i, p := range people {
		out[i] = p.ID
	}
	return out
}

func locationsOf(files []entities.MediaFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Location
	}
	return out
}

func strPtr(s string) *string { return &s }
