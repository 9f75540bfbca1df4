package graph

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/company-brain/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelations_FixedWeights(t *testing.T) {
	tests := []struct {
		name string
		ds   *models.Dataset
	}{
		{
			name: "exactly four columns",
			ds: &models.Dataset{
				Columns: []string{"c0", "c1", "c2", "c3"},
				Rows:    [][]string{{"1", "2", "3", "4"}},
			},
		},
		{
			name: "extra columns and different values",
			ds: &models.Dataset{
				Columns: []string{"c0", "c1", "c2", "c3", "c4", "c5"},
				Rows:    [][]string{{"-99", "x", "", "1e9", "a", "b"}, {"0", "0", "0", "0", "0", "0"}},
			},
		},
		{
			name: "no rows at all",
			ds:   &models.Dataset{Columns: []string{"c0", "c1", "c2", "c3"}},
		},
	}

	want := []models.WeightedRelation{
		{Source: "c0", Target: "c1", Percent: 15},
		{Source: "c0", Target: "c2", Percent: -10},
		{Source: "c0", Target: "c3", Percent: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Relations(tt.ds)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRelations_TooFewColumns(t *testing.T) {
	for _, cols := range [][]string{nil, {"a"}, {"a", "b", "c"}} {
		rels, err := Relations(&models.Dataset{Columns: cols})
		assert.ErrorIs(t, err, ErrTooFewColumns)
		assert.Nil(t, rels)
	}
	_, err := Relations(nil)
	assert.ErrorIs(t, err, ErrTooFewColumns)
}

func TestBuild(t *testing.T) {
	rels, err := Relations(&models.Dataset{Columns: []string{"Umsatz", "Kosten", "Risiko", "NPS"}})
	require.NoError(t, err)

	g := Build(rels)
	assert.Equal(t, []string{"Umsatz", "Kosten", "Risiko", "NPS"}, g.Nodes)
	assert.Equal(t, []Edge{{0, 1, 15}, {0, 2, -10}, {0, 3, 5}}, g.Edges)
	assert.Equal(t, 3, g.OutDegree(0))
	assert.Equal(t, 0, g.OutDegree(1))
}

func TestLayout_TwoColumns(t *testing.T) {
	rels, err := Relations(&models.Dataset{Columns: []string{"Umsatz", "Kosten", "Risiko", "NPS"}})
	require.NoError(t, err)
	g := Build(rels)

	pos := layout(g)
	require.Len(t, pos, 4)
	assert.Equal(t, point{170, canvasHeight / 2}, pos[0])
	for i := 1; i < len(pos); i++ {
		assert.Equal(t, 550.0, pos[i].x)
		if i > 1 {
			assert.Greater(t, pos[i].y, pos[i-1].y)
		}
	}
	assert.Equal(t, pos, layout(g))
}

func TestTable(t *testing.T) {
	rows := Table([]models.WeightedRelation{
		{Source: "a", Target: "b", Percent: 15},
		{Source: "a", Target: "c", Percent: -10},
	})
	assert.Equal(t, []TableRow{
		{Source: "a", Target: "b", Weight: "+15 %"},
		{Source: "a", Target: "c", Weight: "-10 %"},
	}, rows)
}

func TestRenderPNG(t *testing.T) {
	rels, _ := Relations(&models.Dataset{Columns: []string{"Umsatz", "Kosten", "Risiko", "EinSehrLangerSpaltenname"}})
	g := Build(rels)

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(g, &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, canvasWidth, img.Bounds().Dx())
	assert.Equal(t, canvasHeight, img.Bounds().Dy())

	// deterministic layout: two renders are byte-identical
	var a, b bytes.Buffer
	require.NoError(t, RenderPNG(g, &a))
	require.NoError(t, RenderPNG(g, &b))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestDataURI(t *testing.T) {
	g := Build([]models.WeightedRelation{{Source: "a", Target: "b", Percent: 5}})
	uri, err := DataURI(g)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "kurz", truncate("kurz"))
	assert.Equal(t, "EinSehrLangerSpa..", truncate("EinSehrLangerSpaltenname"))
}
