package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/ports"
)

func TestMediaHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.person(t, "Ann")
	f.person(t, "Bob")

	file, err := f.media.HandleAdd(ctx, "photos/wedding.jpg",
		map[string]string{"date": "1950-06", "location": "Halifax, Nova Scotia"},
		[]string{"wedding"})
	require.NoError(t, err)
	assert.Positive(t, file.ID)

	t.Run("duplicate location", func(t *testing.T) {
		_, err := f.media.HandleAdd(ctx, "photos/wedding.jpg", nil, nil)
		require.ErrorIs(t, err, ports.ErrDuplicate)
	})

	t.Run("find", func(t *testing.T) {
		info, err := f.media.HandleFind(ctx, "photos/wedding.jpg")
		require.NoError(t, err)
		assert.Equal(t, file.ID, info.File.ID)
		assert.Len(t, info.Attributes, 2)

		_, err = f.media.HandleFind(ctx, "photos/missing.jpg")
		assert.Equal(t, ports.KindNotFound, ports.KindOf(err))
	})

	t.Run("tags", func(t *testing.T) {
		require.NoError(t, f.media.HandleTag(ctx, "photos/wedding.jpg", []string{"family", "wedding"}))
		tags, err := f.media.HandleListTags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"family", "wedding"}, tags)
	})

	t.Run("attributes", func(t *testing.T) {
		require.NoError(t, f.media.HandleAttributes(ctx, "photos/wedding.jpg", map[string]string{"date": "1950-06-12"}))
		err := f.media.HandleAttributes(ctx, "photos/wedding.jpg", map[string]string{})
		assert.Equal(t, ports.KindInvalidArgument, ports.KindOf(err))
	})

	t.Run("people", func(t *testing.T) {
		require.NoError(t, f.media.HandlePeople(ctx, "photos/wedding.jpg", []string{"Ann", "Bob", "Ann"}))
		require.NoError(t, f.media.HandlePeople(ctx, "photos/wedding.jpg", nil))

		err := f.media.HandlePeople(ctx, "photos/wedding.jpg", []string{"Carol"})
		assert.Equal(t, ports.KindNotFound, ports.KindOf(err))

		report, err := f.report.HandlePeopleMedia(ctx, []string{"Bob"}, DateFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"photos/wedding.jpg"}, locations(report.Media))
	})
}
