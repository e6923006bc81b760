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

// Package mf implements latent-factor matrix factorization for
// recommender-style data. A sparse matrix R of observed ratings or
// interactions is factorized into low-rank matrices P and Q with optional
// global, per-row and per-column biases:
//
//	R[i,j] = mu + b_i[i] + b_j[j] + P[i,:]*Q[j,:]
//
// Explicit ratings are fitted by weighted squared error, implicit feedback
// by confidence-weighted classification (Hu et al. 2008) with linear or
// log-scaled confidence weights.
package mf

import (
	"context"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gorse-io/mf/base"
	"github.com/gorse-io/mf/base/log"
	"github.com/gorse-io/mf/base/progress"
	"github.com/gorse-io/mf/dataset"
	"github.com/gorse-io/mf/model"
)

// MatrixFactorizer fits a matrix factorization model by stochastic
// minibatch optimization. The model is uninitialized until its shape is
// fixed, either explicitly through InitWithShape or inferred from the first
// matrix passed to Fit or PartialFit. A MatrixFactorizer must not be shared
// across goroutines.
//
// Hyper-parameters:
//
//	NFactors      - The number of latent factors. Default is 5.
//	NEpochs       - The number of training iterations. Default is 500.
//	BatchSize     - The number of cells sampled per iteration. Default is 500.
//	Lr            - The learning rate. Default is 0.01.
//	Reg           - The regularization strength. Default is 0.02.
//	Alpha         - The confidence weighting strength for implicit
//	                feedback. Default is 1.
//	Implicit      - Treat values as implicit feedback. Default is false.
//	Loss          - The loss function, "squared" or "logistic". Default is
//	                "squared".
//	LogWeights    - Log-scale confidence weights. Defaults to true iff
//	                Implicit is set.
//	FitIntercepts - Fit the mu, b_i, b_j intercepts. Default is true.
//	WarmStart     - Reuse the previous solution on Fit instead of erasing
//	                it. Default is false.
//	Optimizer     - The optimizer rule, "Adam" or "Ftrl". Default is "Adam".
//	RandomState   - The random seed. Default is 0.
//	Verbose       - Render a progress bar while training. Default is true.
type MatrixFactorizer struct {
	Params model.Params
	// Hyper parameters
	nFactors      int
	nEpochs       int
	batchSize     int
	lr            float32
	reg           float32
	alpha         float32
	implicit      bool
	logWeights    bool
	fitIntercepts bool
	warmStart     bool
	verbose       bool
	loss          string
	optimizer     string
	// Session state
	rng     base.RandomGenerator
	graph   *factorizationGraph
	history []float32
}

// NewMatrixFactorizer creates a MatrixFactorizer. Invalid Loss or Optimizer
// values fail here, never inside a training step.
func NewMatrixFactorizer(params model.Params) (*MatrixFactorizer, error) {
	m := new(MatrixFactorizer)
	if err := m.SetParams(params); err != nil {
		return nil, errors.Trace(err)
	}
	return m, nil
}

// SetParams sets hyper-parameters and resets the random generator. The
// session (parameters and history) is left untouched.
func (m *MatrixFactorizer) SetParams(params model.Params) error {
	m.Params = params
	m.nFactors = m.Params.GetInt(model.NFactors, 5)
	m.nEpochs = m.Params.GetInt(model.NEpochs, 500)
	m.batchSize = m.Params.GetInt(model.BatchSize, 500)
	m.lr = m.Params.GetFloat32(model.Lr, 0.01)
	m.reg = m.Params.GetFloat32(model.Reg, 0.02)
	m.alpha = m.Params.GetFloat32(model.Alpha, 1)
	m.implicit = m.Params.GetBool(model.Implicit, false)
	m.logWeights = m.Params.GetBool(model.LogWeights, m.implicit)
	m.fitIntercepts = m.Params.GetBool(model.FitIntercepts, true)
	m.warmStart = m.Params.GetBool(model.WarmStart, false)
	m.verbose = m.Params.GetBool(model.Verbose, true)
	m.loss = m.Params.GetString(model.Loss, model.SquaredLoss)
	m.optimizer = m.Params.GetString(model.Optimizer, model.Adam)
	m.rng = base.NewRandomGenerator(m.Params.GetInt64(model.RandomState, 0))
	if m.nFactors <= 0 {
		return errors.Errorf("NFactors must be positive, got %d", m.nFactors)
	}
	if m.nEpochs <= 0 {
		return errors.Errorf("NEpochs must be positive, got %d", m.nEpochs)
	}
	if m.batchSize <= 0 {
		return errors.Errorf("BatchSize must be positive, got %d", m.batchSize)
	}
	if m.loss != model.SquaredLoss && m.loss != model.LogisticLoss {
		return errors.Errorf("unknown loss %q", m.loss)
	}
	if m.optimizer != model.Adam && m.optimizer != model.Ftrl {
		return errors.Errorf("unknown optimizer %q", m.optimizer)
	}
	return nil
}

// GetParams returns all hyper-parameters.
func (m *MatrixFactorizer) GetParams() model.Params {
	return m.Params
}

// Clear discards all parameters and the loss history, returning the model to
// the uninitialized state.
func (m *MatrixFactorizer) Clear() {
	m.graph = nil
	m.history = nil
}

// Invalid reports whether the model has no trained parameters.
func (m *MatrixFactorizer) Invalid() bool {
	return m == nil || m.graph == nil
}

// History returns the loss recorded after each completed training step. The
// history grows across PartialFit calls and resets on a fresh Fit.
func (m *MatrixFactorizer) History() []float32 {
	return m.history
}

// InitWithShape fixes the factorized matrix shape to (numRows, numCols) and
// allocates fresh parameters immediately, replacing previously fitted ones.
// The loss history is kept; use Clear to erase the whole session.
func (m *MatrixFactorizer) InitWithShape(numRows, numCols int) error {
	if numRows <= 0 || numCols <= 0 {
		return errors.Errorf("invalid shape (%d, %d)", numRows, numCols)
	}
	m.graph = newFactorizationGraph(m, numRows, numCols)
	return nil
}

// Fit trains the model on a sparse matrix. Unless WarmStart is set, the
// previous session is erased first.
func (m *MatrixFactorizer) Fit(ctx context.Context, data *dataset.Matrix) error {
	if !m.warmStart {
		m.Clear()
	}
	return m.PartialFit(ctx, data)
}

// PartialFit trains the model for NEpochs iterations, reusing existing
// parameters if the shape has been fixed and inferring it from the matrix
// otherwise. Each iteration samples one batch, runs one training step and
// appends the returned loss to the history. A failed step aborts the
// remaining iterations; the history keeps what accumulated.
func (m *MatrixFactorizer) PartialFit(ctx context.Context, data *dataset.Matrix) error {
	if m.graph == nil {
		if err := m.InitWithShape(data.NumRows(), data.NumCols()); err != nil {
			return errors.Trace(err)
		}
	}
	log.Logger().Info("fit mf",
		zap.Int("train_set_size", data.NumNonzero()),
		zap.Any("params", m.GetParams()))
	_, span := progress.Start(ctx, "MatrixFactorizer.Fit", m.nEpochs)
	var bar *progressbar.ProgressBar
	if m.verbose {
		bar = progressbar.Default(int64(m.nEpochs), "training")
	}
	for epoch := 1; epoch <= m.nEpochs; epoch++ {
		rows, cols := sampleBatch(m.rng, m.graph.numRows, m.graph.numCols, m.batchSize)
		values, err := data.Get(rows, cols)
		if err != nil {
			span.Fail(err)
			return errors.Trace(err)
		}
		loss, err := m.graph.train(rows, cols, values)
		if err != nil {
			span.Fail(err)
			return errors.Trace(err)
		}
		m.history = append(m.history, loss)
		span.Add(1)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	span.End()
	if bar != nil {
		_ = bar.Finish()
	}
	log.Logger().Debug("fit mf complete",
		zap.Float32("loss", m.history[len(m.history)-1]))
	return nil
}

// Predict computes scores for co-indexed (rows[i], cols[i]) pairs. For the
// logistic loss the scores are sigmoid probabilities, otherwise raw linear
// predictions.
func (m *MatrixFactorizer) Predict(rows, cols []int32) ([]float32, error) {
	if m.graph == nil {
		return nil, errors.Trace(ErrNotInitialized)
	}
	return m.graph.predict(rows, cols)
}

// Coef returns a named snapshot of all current parameter values.
func (m *MatrixFactorizer) Coef() (*Parameters, error) {
	if m.graph == nil {
		return nil, errors.Trace(ErrNotInitialized)
	}
	return m.graph.snapshot(), nil
}
