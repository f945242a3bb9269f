package domain

import "fmt"

// FeatureType is the coarse per-column type tag recorded in a feature map.
type FeatureType string

const (
	FeatureInt    FeatureType = "int"
	FeatureFloat  FeatureType = "float"
	FeatureString FeatureType = "string"
)

// FeatureMap maps column names to coarse type tags. It is derived once at
// save time and trusted as metadata on load; it is never re-derived from
// the stored blob.
type FeatureMap map[string]FeatureType

// Table is an in-memory row/column matrix with typed columns paired by
// position with Columns.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NumRows reports the row count.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Head returns a single-record table holding only the first row. Used to
// bound sample-data artifacts for schema inference.
func (t *Table) Head() *Table {
	if len(t.Rows) == 0 {
		return &Table{Columns: t.Columns}
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:1]}
}

// Schema derives the feature map from the first row of the table.
func (t *Table) Schema() (FeatureMap, error) {
	fm := make(FeatureMap, len(t.Columns))
	if len(t.Rows) == 0 {
		for _, col := range t.Columns {
			fm[col] = FeatureString
		}
		return fm, nil
	}
	row := t.Rows[0]
	if len(row) != len(t.Columns) {
		return nil, fmt.Errorf("%w: row width %d does not match %d columns", ErrValidation, len(row), len(t.Columns))
	}
	for i, col := range t.Columns {
		ft, err := featureTypeOf(row[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		fm[col] = ft
	}
	return fm, nil
}

func featureTypeOf(v any) (FeatureType, error) {
	switch v.(type) {
	case int, int32, int64:
		return FeatureInt, nil
	case float32, float64:
		return FeatureFloat, nil
	case string:
		return FeatureString, nil
	default:
		return "", fmt.Errorf("%w: unsupported column value %T", ErrValidation, v)
	}
}

// Array is a one-dimensional numeric payload.
type Array []float64

// Head returns a single-element array.
func (a Array) Head() Array {
	if len(a) == 0 {
		return a
	}
	return a[:1]
}

// DataProfile is an optional statistical profile attached to a DataCard.
// Stats is persisted as an arbitrary object, HTML as a rendered report.
type DataProfile struct {
	Stats map[string]float64 `json:"stats"`
	HTML  string             `json:"-"`
}
