package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/ports"
)

const familyJSON = `[
  {"kind": "person", "subject": "gran", "value": "Gran"},
  {"kind": "person", "subject": "alice", "value": "Alice"},
  {"kind": "child", "subject": "gran", "object": "alice"},
  {"kind": "media", "subject": "photos/picnic.jpg"},
  {"kind": "tag", "subject": "photos/picnic.jpg", "value": "summer"},
  {"kind": "appears", "subject": "photos/picnic.jpg", "object": "alice"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportHandler_Handle_JSONFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.imports.Handle(ctx, writeFile(t, "family.json", familyJSON), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 6, result.Imported)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.BatchID)

	report, err := f.report.HandleDescendants(ctx, "Gran", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, names(report.People))
}

func TestImportHandler_Handle_CSVFile(t *testing.T) {
	f := newFixture(t)

	content := "kind,subject,object,key,value\n" +
		"person,p1,,,Ann\n" +
		"attribute,p1,,date of birth,1901-02\n" +
		"note,p1,,,emigrated\n"

	result, err := f.imports.Handle(context.Background(), writeFile(t, "family.csv", content), ImportOptions{Format: "auto"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)

	info, err := f.family.HandleFind(context.Background(), "Ann")
	require.NoError(t, err)
	assert.Len(t, info.Attributes, 1)
	assert.Len(t, info.Annotations, 1)
}

func TestImportHandler_Handle_ExplicitFormat(t *testing.T) {
	f := newFixture(t)

	result, err := f.imports.Handle(context.Background(), writeFile(t, "family.txt", familyJSON), ImportOptions{Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, 6, result.Imported)
}

func TestImportHandler_Handle_DryRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.imports.Handle(ctx, writeFile(t, "family.json", familyJSON), ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 6, result.Imported)

	_, err = f.family.HandleFind(ctx, "Gran")
	assert.Equal(t, ports.KindNotFound, ports.KindOf(err))
}

func TestImportHandler_Handle_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unsupported format", func(t *testing.T) {
		_, err := f.imports.Handle(ctx, writeFile(t, "data.xml", "<data/>"), ImportOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported format")
		assert.Equal(t, ports.KindInvalidArgument, ports.KindOf(err))
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := f.imports.Handle(ctx, filepath.Join(t.TempDir(), "missing.json"), ImportOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening file")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := f.imports.Handle(ctx, writeFile(t, "bad.json", "{not json"), ImportOptions{})
		require.Error(t, err)
		assert.Equal(t, ports.KindInvalidArgument, ports.KindOf(err))
	})

	t.Run("empty file", func(t *testing.T) {
		result, err := f.imports.Handle(ctx, writeFile(t, "empty.json", "[]"), ImportOptions{})
		require.NoError(t, err)
		assert.Zero(t, result.Imported)
	})
}
