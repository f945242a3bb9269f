package codec

import (
	"encoding/json"
	"fmt"

	"github.com/thorrester/cardstore/internal/core/domain"
)

// columnarTable is the on-disk layout for tabular artifacts: one value
// slice per column, paired by position with Columns.
type columnarTable struct {
	Columns []string `json:"columns"`
	Values  [][]any  `json:"values"`
}

type tableCodec struct{}

func (tableCodec) Kind() domain.ArtifactKind { return domain.ArtifactTable }

func (tableCodec) Encode(artifact any) ([]byte, error) {
	table, ok := artifact.(*domain.Table)
	if !ok {
		return nil, fmt.Errorf("%w: expected *domain.Table, got %T", domain.ErrUnsupportedArtifact, artifact)
	}

	cols := columnarTable{
		Columns: table.Columns,
		Values:  make([][]any, len(table.Columns)),
	}
	for i := range cols.Values {
		cols.Values[i] = make([]any, 0, len(table.Rows))
	}
	for _, row := range table.Rows {
		if len(row) != len(table.Columns) {
			return nil, fmt.Errorf("%w: row width %d does not match %d columns",
				domain.ErrValidation, len(row), len(table.Columns))
		}
		for i, v := range row {
			cols.Values[i] = append(cols.Values[i], v)
		}
	}
	return json.Marshal(cols)
}

func (tableCodec) Decode(data []byte, into any) error {
	table, ok := into.(*domain.Table)
	if !ok {
		return fmt.Errorf("%w: expected *domain.Table target, got %T", domain.ErrUnsupportedArtifact, into)
	}

	var cols columnarTable
	if err := json.Unmarshal(data, &cols); err != nil {
		return fmt.Errorf("decode table: %w", err)
	}

	table.Columns = cols.Columns
	table.Rows = nil
	if len(cols.Values) == 0 {
		return nil
	}
	nrows := len(cols.Values[0])
	table.Rows = make([][]any, nrows)
	for r := 0; r < nrows; r++ {
		row := make([]any, len(cols.Values))
		for c := range cols.Values {
			row[c] = normalizeJSONValue(cols.Values[c][r])
		}
		table.Rows[r] = row
	}
	return nil
}

// normalizeJSONValue restores int columns that json decoding widened to
// float64. Values with a fractional part stay floats.
func normalizeJSONValue(v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	if f == float64(int64(f)) {
		return int(f)
	}
	return f
}

type arrayCodec struct{}

func (arrayCodec) Kind() domain.ArtifactKind { return domain.ArtifactArray }

func (arrayCodec) Encode(artifact any) ([]byte, error) {
	arr, ok := artifact.(domain.Array)
	if !ok {
		return nil, fmt.Errorf("%w: expected domain.Array, got %T", domain.ErrUnsupportedArtifact, artifact)
	}
	return json.Marshal(arr)
}

func (arrayCodec) Decode(data []byte, into any) error {
	arr, ok := into.(*domain.Array)
	if !ok {
		return fmt.Errorf("%w: expected *domain.Array target, got %T", domain.ErrUnsupportedArtifact, into)
	}
	return json.Unmarshal(data, arr)
}
