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
	"github.com/chewxy/math32"
	"github.com/juju/errors"

	"github.com/gorse-io/mf/base"
	"github.com/gorse-io/mf/common/nn"
	"github.com/gorse-io/mf/model"
)

// initStdDev is the standard deviation of initial latent factors.
const initStdDev = 0.01

// factorizationGraph owns the trainable parameters of a matrix factorization
// model and implements the forward prediction and the training step. The
// shape (numRows, numCols, nFactors) is fixed at construction; changing it
// requires building a new graph.
type factorizationGraph struct {
	numRows  int
	numCols  int
	nFactors int

	fitIntercepts bool
	implicit      bool
	logWeights    bool
	loss          string
	alpha         float32
	reg           float32

	globalBias *nn.Tensor // mu, scalar
	rowBiases  *nn.Tensor // b_i, (numRows)
	colBiases  *nn.Tensor // b_j, (numCols)
	rowWeights *nn.Tensor // P, (numRows, nFactors)
	colWeights *nn.Tensor // Q, (numCols, nFactors)

	optimizer nn.Optimizer
}

func newFactorizationGraph(m *MatrixFactorizer, numRows, numCols int) *factorizationGraph {
	g := &factorizationGraph{
		numRows:       numRows,
		numCols:       numCols,
		nFactors:      m.nFactors,
		fitIntercepts: m.fitIntercepts,
		implicit:      m.implicit,
		logWeights:    m.logWeights,
		loss:          m.loss,
		alpha:         m.alpha,
		reg:           m.reg,
	}
	// Biases start at zero, latent factors at small Gaussian noise. The row
	// factors are drawn before the column factors so that a fixed seed
	// reproduces the same initialization.
	g.rowWeights = nn.NewTensor(m.rng.NormalVector(numRows*m.nFactors, 0, initStdDev), numRows, m.nFactors)
	g.colWeights = nn.NewTensor(m.rng.NormalVector(numCols*m.nFactors, 0, initStdDev), numCols, m.nFactors)
	params := []*nn.Tensor{g.rowWeights, g.colWeights}
	if g.fitIntercepts {
		g.globalBias = nn.NewScalar(0)
		g.rowBiases = nn.Zeros(numRows)
		g.colBiases = nn.Zeros(numCols)
		params = append(params, g.globalBias, g.rowBiases, g.colBiases)
	}
	switch m.optimizer {
	case model.Ftrl:
		g.optimizer = nn.NewFtrl(params, m.lr)
	default:
		g.optimizer = nn.NewAdam(params, m.lr)
	}
	return g
}

// checkIndices validates co-indexed row and column indices against the fixed
// shape.
func (g *factorizationGraph) checkIndices(rows, cols []int32) error {
	if len(rows) != len(cols) {
		return errors.Errorf("mismatched index lengths: %d rows, %d cols", len(rows), len(cols))
	}
	for _, row := range rows {
		if row < 0 || int(row) >= g.numRows {
			return errors.Errorf("row index %d out of range [0, %d)", row, g.numRows)
		}
	}
	for _, col := range cols {
		if col < 0 || int(col) >= g.numCols {
			return errors.Errorf("column index %d out of range [0, %d)", col, g.numCols)
		}
	}
	return nil
}

// forward computes scores for co-indexed (row, col) pairs:
//
//	score[i] = mu + b_i[rows[i]] + b_j[cols[i]] + P[rows[i],:]*Q[cols[i],:]
//
// squashed through a sigmoid when the loss is logistic.
func (g *factorizationGraph) forward(rows, cols []int32) *nn.Tensor {
	p := nn.Embedding(g.rowWeights, rows)
	q := nn.Embedding(g.colWeights, cols)
	score := nn.Sum(nn.Mul(p, q), 1)
	if g.fitIntercepts {
		biases := nn.Add(nn.Embedding(g.rowBiases, rows), nn.Embedding(g.colBiases, cols))
		score = nn.Add(score, nn.Add(biases, g.globalBias))
	}
	if g.loss == model.LogisticLoss {
		score = nn.Sigmoid(score)
	}
	return score
}

// lossInputs maps raw observed values to training targets and confidence
// weights. For implicit feedback the target is the binarized indicator and
// the weight is 1+alpha*v (or 1+alpha*log1p(v)); for explicit ratings the
// target is the value itself and every weight is 1.
func lossInputs(values []float32, implicit, logWeights bool, alpha float32) (targets, weights []float32) {
	targets = make([]float32, len(values))
	weights = make([]float32, len(values))
	for i, v := range values {
		if implicit {
			targets[i] = math32.Min(math32.Max(v, 0), 1)
			if logWeights {
				weights[i] = 1 + alpha*math32.Log1p(v)
			} else {
				weights[i] = 1 + alpha*v
			}
		} else {
			targets[i] = v
			weights[i] = 1
		}
	}
	return
}

// train runs one optimization step on a batch and returns the within-step
// loss. The update is atomic with respect to the parameters: either the full
// step is applied or, on a failed precondition, nothing is touched.
func (g *factorizationGraph) train(rows, cols []int32, values []float32) (float32, error) {
	if err := g.checkIndices(rows, cols); err != nil {
		return 0, errors.Trace(err)
	}
	if len(values) != len(rows) {
		return 0, errors.Errorf("mismatched value length: %d values, %d indices", len(values), len(rows))
	}
	pred := g.forward(rows, cols)
	rawTargets, rawWeights := lossInputs(values, g.implicit, g.logWeights, g.alpha)
	targets := nn.NewTensor(rawTargets, len(rawTargets))
	weights := nn.NewTensor(rawWeights, len(rawWeights))

	var dataLoss *nn.Tensor
	if g.loss == model.LogisticLoss {
		dataLoss = nn.BinaryCrossEntropy(pred, targets, weights)
	} else {
		dataLoss = nn.MeanSquareError(pred, targets, weights)
	}
	// The L2 term covers the full latent matrices but only the biases looked
	// up by this batch.
	l2 := nn.Add(nn.L2Loss(g.rowWeights), nn.L2Loss(g.colWeights))
	if g.fitIntercepts {
		batchBiases := nn.Add(nn.L2Loss(nn.Embedding(g.rowBiases, rows)), nn.L2Loss(nn.Embedding(g.colBiases, cols)))
		l2 = nn.Add(l2, batchBiases)
	}
	cost := nn.Add(dataLoss, nn.Mul(l2, nn.NewScalar(g.reg)))

	g.optimizer.ZeroGrad()
	cost.Backward()
	g.optimizer.Step()
	return cost.Data()[0], nil
}

// predict computes scores without touching parameters.
func (g *factorizationGraph) predict(rows, cols []int32) ([]float32, error) {
	if err := g.checkIndices(rows, cols); err != nil {
		return nil, errors.Trace(err)
	}
	scores := make([]float32, len(rows))
	copy(scores, g.forward(rows, cols).Data())
	return scores, nil
}

// snapshot exports a deep copy of all current parameter values.
func (g *factorizationGraph) snapshot() *Parameters {
	parameters := &Parameters{
		NumRows:       g.numRows,
		NumCols:       g.numCols,
		NFactors:      g.nFactors,
		FitIntercepts: g.fitIntercepts,
		RowWeights:    unflatten(g.rowWeights.Data(), g.numRows, g.nFactors),
		ColWeights:    unflatten(g.colWeights.Data(), g.numCols, g.nFactors),
	}
	if g.fitIntercepts {
		parameters.GlobalBias = g.globalBias.Data()[0]
		parameters.RowBiases = append([]float32(nil), g.rowBiases.Data()...)
		parameters.ColBiases = append([]float32(nil), g.colBiases.Data()...)
	}
	return parameters
}

// apply loads parameter values from a snapshot. Shapes must agree with the
// graph; callers validate before applying.
func (g *factorizationGraph) apply(parameters *Parameters) {
	copy(g.rowWeights.Data(), flatten(parameters.RowWeights))
	copy(g.colWeights.Data(), flatten(parameters.ColWeights))
	if g.fitIntercepts {
		g.globalBias.Data()[0] = parameters.GlobalBias
		copy(g.rowBiases.Data(), parameters.RowBiases)
		copy(g.colBiases.Data(), parameters.ColBiases)
	}
}

func unflatten(data []float32, rows, cols int) [][]float32 {
	ret := make([][]float32, rows)
	for i := range ret {
		ret[i] = append([]float32(nil), data[i*cols:(i+1)*cols]...)
	}
	return ret
}

func flatten(m [][]float32) []float32 {
	ret := make([]float32, 0, len(m)*len(m[0]))
	for i := range m {
		ret = append(ret, m[i]...)
	}
	return ret
}

// sampleBatch draws row and column indices uniformly and independently from
// the full matrix extent. Most sampled cells are implicit zeros unless the
// matrix is dense; explicit-rating training is exposed to the same sampled
// zero cells on purpose.
func sampleBatch(rng base.RandomGenerator, numRows, numCols, batchSize int) (rows, cols []int32) {
	rows = rng.Int31Vector(batchSize, int32(numRows))
	cols = rng.Int31Vector(batchSize, int32(numCols))
	return
}
