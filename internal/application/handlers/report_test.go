package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/metrics"
)

// buildFamily records two grandparents, their two children and one
// grandchild per child.
//
//	Gran ─┬─ Alice ── Carol
//	      └─ Brian ── Dylan
func buildFamily(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"Gran", "Alice", "Brian", "Carol", "Dylan"} {
		f.person(t, name)
	}
	for _, link := range [][2]string{
		{"Gran", "Alice"}, {"Gran", "Brian"}, {"Alice", "Carol"}, {"Brian", "Dylan"},
	} {
		_, err := f.family.HandleChild(ctx, link[0], link[1])
		require.NoError(t, err)
	}
}

func TestReportHandler_Lineage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buildFamily(t, f)

	report, err := f.report.HandleDescendants(ctx, "Gran", 1)
	require.NoError(t, err)
	assert.Equal(t, OpDescendants, report.Operation)
	assert.Equal(t, []string{"Alice", "Brian"}, names(report.People))

	report, err = f.report.HandleDescendants(ctx, "Gran", 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alice", "Brian", "Carol", "Dylan"}, names(report.People))

	report, err = f.report.HandleAncestors(ctx, "Carol", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gran", "Alice"}, names(report.People))

	_, err = f.report.HandleAncestors(ctx, "Carol", -1)
	assert.Equal(t, ports.KindInvalidArgument, ports.KindOf(err))

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.QueriesTotal.WithLabelValues(OpDescendants, metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QueriesTotal.WithLabelValues(OpAncestors, metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QueriesTotal.WithLabelValues(OpAncestors, metrics.OutcomeError)))
}

func TestReportHandler_Relation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buildFamily(t, f)
	f.person(t, "Outsider")

	tests := []struct {
		a, b     string
		want     string
		ancestor string
	}{
		{"Alice", "Brian", "siblings", "Gran"},
		{"Carol", "Dylan", "1st cousins", "Gran"},
		{"Carol", "Brian", "sibling line, once removed", "Gran"},
		{"Gran", "Dylan", "direct line, 2 generations apart", "Gran"},
		{"Alice", "Carol", "parent and child", "Alice"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"-"+tt.b, func(t *testing.T) {
			report, err := f.report.HandleRelation(ctx, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Description)
			require.NotNil(t, report.Ancestor)
			assert.Equal(t, tt.ancestor, report.Ancestor.Name)
		})
	}

	report, err := f.report.HandleRelation(ctx, "Carol", "Outsider")
	require.NoError(t, err)
	assert.Nil(t, report.Relation)
	assert.Equal(t, "not related", report.Description)

	_, err = f.report.HandleRelation(ctx, "Carol", "Carol")
	assert.Equal(t, ports.KindInvalidArgument, ports.KindOf(err))
}

func TestReportHandler_Media(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buildFamily(t, f)

	for _, m := range []struct {
		location string
		attrs    map[string]string
		tags     []string
		people   []string
	}{
		{"a.jpg", map[string]string{"date": "2021", "location": "Halifax, Nova Scotia"}, []string{"Travel"}, []string{"Alice"}},
		{"b.jpg", map[string]string{"date": "2020-05"}, []string{"Travel"}, []string{"Carol"}},
		{"c.jpg", nil, []string{"Travel"}, []string{"Brian"}},
		{"d.jpg", map[string]string{"location": "Toronto"}, nil, []string{"Gran"}},
	} {
		_, err := f.media.HandleAdd(ctx, m.location, m.attrs, m.tags)
		require.NoError(t, err)
		require.NoError(t, f.media.HandlePeople(ctx, m.location, m.people))
	}

	report, err := f.report.HandleMediaByTag(ctx, "Travel", DateFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "a.jpg", "c.jpg"}, locations(report.Media))

	report, err = f.report.HandleMediaByTag(ctx, "Travel", DateFilter{From: strPtr("2020-06")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, locations(report.Media))

	_, err = f.report.HandleMediaByTag(ctx, "Travel", DateFilter{From: strPtr("2022"), To: strPtr("2021")})
	assert.Equal(t, ports.KindInvalidArgument, ports.KindOf(err))

	report, err = f.report.HandleMediaByLocation(ctx, "Halifax", DateFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, locations(report.Media))

	report, err = f.report.HandlePeopleMedia(ctx, []string{"Alice", "Brian"}, DateFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, locations(report.Media))

	report, err = f.report.HandleFamilyMedia(ctx, "Gran")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, locations(report.Media))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QueriesTotal.WithLabelValues(OpMediaByTag, metrics.OutcomeError)))
}

func TestReportHandler_PeopleMediaEmpty(t *testing.T) {
	f := newFixture(t)

	// An empty people list succeeds before the date bounds are looked at.
	report, err := f.report.HandlePeopleMedia(context.Background(), nil, DateFilter{From: strPtr("not a date")})
	require.NoError(t, err)
	assert.NotNil(t, report.Media)
	assert.Empty(t, report.Media)
}

func TestReportHandler_StorageFailure(t *testing.T) {
	f := newFixture(t)
	buildFamily(t, f)
	f.db.Err = errors.Join(ports.ErrCollaboratorUnavailable, errors.New("disk gone"))

	_, err := f.report.HandleDescendants(context.Background(), "Gran", 1)
	require.Error(t, err)
	assert.Equal(t, ports.KindCollaboratorUnavailable, ports.KindOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QueriesTotal.WithLabelValues(OpDescendants, metrics.OutcomeError)))
}
