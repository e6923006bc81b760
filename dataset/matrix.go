// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"github.com/juju/errors"
)

// Matrix is a row-indexed sparse matrix built from parallel arrays of
// (row, col, value) triples. Entries absent from the triples are zero. The
// shape is inferred from the largest row and column indices seen.
type Matrix struct {
	numRows    int
	numCols    int
	numNonzero int
	rows       []map[int32]float32
}

// NewMatrix creates a sparse matrix from parallel arrays of row indices,
// column indices and values. Duplicate (row, col) pairs keep the last value.
func NewMatrix(rowIndices, colIndices []int32, values []float32) (*Matrix, error) {
	if len(rowIndices) != len(colIndices) || len(rowIndices) != len(values) {
		return nil, errors.Errorf("mismatched lengths: %d rows, %d cols, %d values",
			len(rowIndices), len(colIndices), len(values))
	}
	m := new(Matrix)
	for i := range rowIndices {
		if rowIndices[i] < 0 || colIndices[i] < 0 {
			return nil, errors.Errorf("negative index in triple (%d, %d)", rowIndices[i], colIndices[i])
		}
		if int(rowIndices[i]) >= m.numRows {
			m.numRows = int(rowIndices[i]) + 1
		}
		if int(colIndices[i]) >= m.numCols {
			m.numCols = int(colIndices[i]) + 1
		}
	}
	m.rows = make([]map[int32]float32, m.numRows)
	for i := range rowIndices {
		row := rowIndices[i]
		if m.rows[row] == nil {
			m.rows[row] = make(map[int32]float32)
		}
		if _, exist := m.rows[row][colIndices[i]]; !exist {
			m.numNonzero++
		}
		m.rows[row][colIndices[i]] = values[i]
	}
	return m, nil
}

// NumRows returns the number of rows.
func (m *Matrix) NumRows() int {
	return m.numRows
}

// NumCols returns the number of columns.
func (m *Matrix) NumCols() int {
	return m.numCols
}

// NumNonzero returns the number of stored entries.
func (m *Matrix) NumNonzero() int {
	return m.numNonzero
}

// Get looks up the entries at the co-indexed (rows[i], cols[i]) positions and
// returns them as a flat array. Missing entries are zero.
func (m *Matrix) Get(rows, cols []int32) ([]float32, error) {
	if len(rows) != len(cols) {
		return nil, errors.Errorf("mismatched index lengths: %d rows, %d cols", len(rows), len(cols))
	}
	values := make([]float32, len(rows))
	for i := range rows {
		if rows[i] < 0 || int(rows[i]) >= m.numRows {
			return nil, errors.Errorf("row index %d out of range [0, %d)", rows[i], m.numRows)
		}
		if cols[i] < 0 || int(cols[i]) >= m.numCols {
			return nil, errors.Errorf("column index %d out of range [0, %d)", cols[i], m.numCols)
		}
		if row := m.rows[rows[i]]; row != nil {
			values[i] = row[cols[i]]
		}
	}
	return values, nil
}
