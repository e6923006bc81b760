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

package mf

import (
	"bufio"
	"io"
	"os"

	"github.com/juju/errors"

	"github.com/gorse-io/mf/base/encoding"
)

// Parameters is a named snapshot of all model parameters plus the shape
// metadata needed to validate a restore. The bias fields are only populated
// when intercepts are fitted.
type Parameters struct {
	NumRows       int
	NumCols       int
	NFactors      int
	FitIntercepts bool
	GlobalBias    float32
	RowBiases     []float32
	ColBiases     []float32
	RowWeights    [][]float32
	ColWeights    [][]float32
}

// Marshal writes all parameter tensors and shape metadata to a byte stream.
func (m *MatrixFactorizer) Marshal(w io.Writer) error {
	if m.graph == nil {
		return errors.Trace(ErrNotInitialized)
	}
	g := m.graph
	header := checkpointHeader{
		NumRows:       g.numRows,
		NumCols:       g.numCols,
		NFactors:      g.nFactors,
		FitIntercepts: g.fitIntercepts,
	}
	if err := encoding.WriteGob(w, header); err != nil {
		return errors.Trace(err)
	}
	if g.fitIntercepts {
		if err := encoding.WriteVector(w, g.globalBias.Data()); err != nil {
			return errors.Trace(err)
		}
		if err := encoding.WriteVector(w, g.rowBiases.Data()); err != nil {
			return errors.Trace(err)
		}
		if err := encoding.WriteVector(w, g.colBiases.Data()); err != nil {
			return errors.Trace(err)
		}
	}
	if err := encoding.WriteVector(w, g.rowWeights.Data()); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteVector(w, g.colWeights.Data()); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// Unmarshal reads a checkpoint from a byte stream. The checkpoint must agree
// with the current shape, or with the configured NFactors and FitIntercepts
// when the model is still uninitialized; otherwise ErrShapeMismatch is
// returned and the model is left untouched. All tensors are read before any
// parameter is applied, so a truncated stream never corrupts the model.
func (m *MatrixFactorizer) Unmarshal(r io.Reader) error {
	var header checkpointHeader
	if err := encoding.ReadGob(r, &header); err != nil {
		return errors.Trace(err)
	}
	if header.NFactors != m.nFactors || header.FitIntercepts != m.fitIntercepts {
		return errors.Annotatef(ErrShapeMismatch,
			"checkpoint (NFactors=%d, FitIntercepts=%v) vs configuration (NFactors=%d, FitIntercepts=%v)",
			header.NFactors, header.FitIntercepts, m.nFactors, m.fitIntercepts)
	}
	if m.graph != nil && (header.NumRows != m.graph.numRows || header.NumCols != m.graph.numCols) {
		return errors.Annotatef(ErrShapeMismatch,
			"checkpoint shape (%d, %d) vs current shape (%d, %d)",
			header.NumRows, header.NumCols, m.graph.numRows, m.graph.numCols)
	}
	parameters := &Parameters{
		NumRows:       header.NumRows,
		NumCols:       header.NumCols,
		NFactors:      header.NFactors,
		FitIntercepts: header.FitIntercepts,
	}
	if header.FitIntercepts {
		globalBias := make([]float32, 1)
		if err := encoding.ReadVector(r, globalBias); err != nil {
			return errors.Trace(err)
		}
		parameters.GlobalBias = globalBias[0]
		parameters.RowBiases = make([]float32, header.NumRows)
		if err := encoding.ReadVector(r, parameters.RowBiases); err != nil {
			return errors.Trace(err)
		}
		parameters.ColBiases = make([]float32, header.NumCols)
		if err := encoding.ReadVector(r, parameters.ColBiases); err != nil {
			return errors.Trace(err)
		}
	}
	rowWeights := make([]float32, header.NumRows*header.NFactors)
	if err := encoding.ReadVector(r, rowWeights); err != nil {
		return errors.Trace(err)
	}
	colWeights := make([]float32, header.NumCols*header.NFactors)
	if err := encoding.ReadVector(r, colWeights); err != nil {
		return errors.Trace(err)
	}
	parameters.RowWeights = unflatten(rowWeights, header.NumRows, header.NFactors)
	parameters.ColWeights = unflatten(colWeights, header.NumCols, header.NFactors)
	// Everything is read and validated. Allocate the graph if needed, then
	// apply the snapshot.
	if m.graph == nil {
		if err := m.InitWithShape(header.NumRows, header.NumCols); err != nil {
			return errors.Trace(err)
		}
	}
	m.graph.apply(parameters)
	return nil
}

// Save persists the full parameter state to a file.
func (m *MatrixFactorizer) Save(path string) error {
	if m.graph == nil {
		return errors.Trace(ErrNotInitialized)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	if err := m.Marshal(writer); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(writer.Flush())
}

// Restore reloads the full parameter state from a file written by Save.
func (m *MatrixFactorizer) Restore(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	return errors.Trace(m.Unmarshal(bufio.NewReader(file)))
}

type checkpointHeader struct {
	NumRows       int
	NumCols       int
	NFactors      int
	FitIntercepts bool
}
