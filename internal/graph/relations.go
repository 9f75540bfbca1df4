// Package graph builds and draws the illustrative influence graph shown for
// spreadsheets. The weights are placeholder constants: they never depend on
// the values in the dataset.
package graph

import (
	"errors"
	"fmt"

	"github.com/company-brain/backend/internal/models"
)

// MinColumns is the number of leading columns the heuristic reads.
const MinColumns = 4

// ErrTooFewColumns is returned for datasets narrower than MinColumns.
var ErrTooFewColumns = errors.New("dataset needs at least 4 columns")

// Notice accompanies every rendering of the weights.
const Notice = "Die Gewichte sind feste Platzhalterwerte und werden nicht aus den hochgeladenen Daten berechnet."

// placeholderWeights link column 0 to columns 1, 2 and 3.
var placeholderWeights = [MinColumns - 1]int{15, -10, 5}

// Relations returns the fixed relations between the first four columns.
func Relations(ds *models.Dataset) ([]models.WeightedRelation, error) {
	if ds == nil || len(ds.Columns) < MinColumns {
		n := 0
		if ds != nil {
			n = len(ds.Columns)
		}
		return nil, fmt.Errorf("%w: got %d", ErrTooFewColumns, n)
	}

	hub := ds.Columns[0]
	rels := make([]models.WeightedRelation, 0, len(placeholderWeights))
	for i, w := range placeholderWeights {
		rels = append(rels, models.WeightedRelation{
			Source:  hub,
			Target:  ds.Columns[i+1],
			Percent: w,
		})
	}
	return rels, nil
}

// Edge is a directed, weighted edge between node indexes.
type Edge struct {
	From   int
	To     int
	Weight int
}

// Graph is a small directed graph. Nodes keep first-seen order.
type Graph struct {
	Nodes []string
	Edges []Edge
}

// Build constructs a graph with one edge per relation.
func Build(relations []models.WeightedRelation) *Graph {
	g := &Graph{}
	index := make(map[string]int)
	node := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		index[name] = len(g.Nodes)
		g.Nodes = append(g.Nodes, name)
		return index[name]
	}
	for _, r := range relations {
		from := node(r.Source)
		to := node(r.Target)
		g.Edges = append(g.Edges, Edge{From: from, To: to, Weight: r.Percent})
	}
	return g
}

// OutDegree returns the number of edges leaving node i.
func (g *Graph) OutDegree(i int) int {
	n := 0
	for _, e := range g.Edges {
		if e.From == i {
			n++
		}
	}
	return n
}

// TableRow is one line of the companion table.
type TableRow struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight string `json:"weight"`
}

// Table returns the relations formatted for display.
func Table(relations []models.WeightedRelation) []TableRow {
	rows := make([]TableRow, len(relations))
	for i, r := range relations {
		rows[i] = TableRow{Source: r.Source, Target: r.Target, Weight: r.WeightLabel()}
	}
	return rows
}
