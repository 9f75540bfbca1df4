package models

import "fmt"

// Dataset is a parsed spreadsheet. Columns keep file order; Rows is a
// preview of the values, stringified, one slice per row.
type Dataset struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// WeightedRelation is an illustrative percentage association between two
// columns. Values are fixed constants, not derived from the data.
type WeightedRelation struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Percent int    `json:"percent"`
}

// WeightLabel formats the percentage with an explicit sign, e.g. "+15 %".
func (r WeightedRelation) WeightLabel() string {
	return fmt.Sprintf("%+d %%", r.Percent)
}
