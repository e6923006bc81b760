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

package nn

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	x := NewTensor([]float32{1, 2, 3, 4}, 2, 2)
	y := NewTensor([]float32{10, 20}, 2)
	z := Add(x, y)
	assert.Equal(t, []float32{11, 22, 13, 24}, z.Data())

	Sum(z).Backward()
	assert.Equal(t, []float32{1, 1, 1, 1}, x.Grad().Data())
	assert.Equal(t, []float32{2, 2}, y.Grad().Data())
}

func TestSub(t *testing.T) {
	x := NewTensor([]float32{5, 6, 7}, 3)
	y := NewTensor([]float32{1, 2, 3}, 3)
	z := Sub(x, y)
	assert.Equal(t, []float32{4, 4, 4}, z.Data())

	Sum(z).Backward()
	assert.Equal(t, []float32{1, 1, 1}, x.Grad().Data())
	assert.Equal(t, []float32{-1, -1, -1}, y.Grad().Data())
}

func TestMul(t *testing.T) {
	x := NewTensor([]float32{1, 2, 3}, 3)
	y := NewTensor([]float32{4, 5, 6}, 3)
	z := Mul(x, y)
	assert.Equal(t, []float32{4, 10, 18}, z.Data())

	Sum(z).Backward()
	assert.Equal(t, []float32{4, 5, 6}, x.Grad().Data())
	assert.Equal(t, []float32{1, 2, 3}, y.Grad().Data())
}

func TestDiv(t *testing.T) {
	x := NewTensor([]float32{4, 9}, 2)
	y := NewTensor([]float32{2, 3}, 2)
	z := Div(x, y)
	assert.Equal(t, []float32{2, 3}, z.Data())

	Sum(z).Backward()
	assert.InDeltaSlice(t, []float32{0.5, 1.0 / 3}, x.Grad().Data(), 1e-6)
	assert.InDeltaSlice(t, []float32{-1, -1}, y.Grad().Data(), 1e-6)
}

func TestExp(t *testing.T) {
	x := NewTensor([]float32{0, 1, 2}, 3)
	z := Exp(x)
	e := math32.Exp(1)
	assert.InDeltaSlice(t, []float32{1, e, e * e}, z.Data(), 1e-4)

	// dy/dx = exp(x)
	Sum(z).Backward()
	assert.InDeltaSlice(t, []float32{1, e, e * e}, x.Grad().Data(), 1e-4)
}

func TestSquare(t *testing.T) {
	x := NewTensor([]float32{1, -2, 3}, 3)
	z := Square(x)
	assert.Equal(t, []float32{1, 4, 9}, z.Data())

	Sum(z).Backward()
	assert.Equal(t, []float32{2, -4, 6}, x.Grad().Data())
}

func TestLog(t *testing.T) {
	x := NewTensor([]float32{1, 2, 4}, 3)
	z := Log(x)
	assert.InDeltaSlice(t, []float32{0, 0.6931, 1.3863}, z.Data(), 1e-3)

	Sum(z).Backward()
	assert.InDeltaSlice(t, []float32{1, 0.5, 0.25}, x.Grad().Data(), 1e-6)
}

func TestSigmoid(t *testing.T) {
	x := NewTensor([]float32{0, 0, 0}, 3)
	z := Sigmoid(x)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5}, z.Data(), 1e-6)

	// dy/dx = y * (1 - y) = 0.25 at x = 0
	Sum(z).Backward()
	assert.InDeltaSlice(t, []float32{0.25, 0.25, 0.25}, x.Grad().Data(), 1e-6)
}

func TestSumAxis(t *testing.T) {
	x := NewTensor([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	z := Sum(x, 1)
	assert.Equal(t, []int{2}, z.Shape())
	assert.Equal(t, []float32{6, 15}, z.Data())

	Sum(z).Backward()
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, x.Grad().Data())
}

func TestMean(t *testing.T) {
	x := NewTensor([]float32{1, 2, 3, 4}, 4)
	z := Mean(x)
	assert.Equal(t, []float32{2.5}, z.Data())

	z.Backward()
	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, x.Grad().Data())
}

func TestEmbedding(t *testing.T) {
	w := NewTensor([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
	z := Embedding(w, []int32{0, 2, 0})
	assert.Equal(t, []int{3, 2}, z.Shape())
	assert.Equal(t, []float32{1, 2, 5, 6, 1, 2}, z.Data())

	// Gradients of repeated indices accumulate.
	Sum(z).Backward()
	assert.Equal(t, []float32{2, 2, 0, 0, 1, 1}, w.Grad().Data())

	assert.Panics(t, func() { Embedding(w, []int32{3}) })
	assert.Panics(t, func() { Embedding(w, []int32{-1}) })
}

func TestGradientAccumulation(t *testing.T) {
	// x is consumed by two operators; its gradient is the sum of both paths.
	x := NewTensor([]float32{1, 2, 3}, 3)
	loss := Add(Sum(Square(x)), Sum(x))
	loss.Backward()
	assert.Equal(t, []float32{3, 5, 7}, x.Grad().Data())
}

func TestMeanSquareError(t *testing.T) {
	yPred := NewTensor([]float32{1, 2, 3}, 3)
	yTrue := NewTensor([]float32{0, 2, 5}, 3)
	weight := NewTensor([]float32{1, 1, 2}, 3)
	loss := MeanSquareError(yPred, yTrue, weight)
	// (1*1 + 1*0 + 2*4) / 3 = 3
	assert.InDelta(t, float64(3), loss.Data()[0], 1e-6)

	loss.Backward()
	// d/dp = 2 * w * (p - t) / n
	assert.InDeltaSlice(t, []float32{2.0 / 3, 0, -8.0 / 3}, yPred.Grad().Data(), 1e-6)
}

func TestBinaryCrossEntropy(t *testing.T) {
	yPred := NewTensor([]float32{0.5, 0.5}, 2)
	yTrue := NewTensor([]float32{1, 0}, 2)
	weight := NewTensor([]float32{1, 2}, 2)
	loss := BinaryCrossEntropy(yPred, yTrue, weight)
	// (1 + 2) * log(2) / 2
	assert.InDelta(t, 1.5*math32.Log(2), loss.Data()[0], 1e-4)

	// Confident wrong predictions are penalized harder than confident right
	// ones.
	lowLoss := BinaryCrossEntropy(NewTensor([]float32{0.9}, 1), NewTensor([]float32{1}, 1), Ones(1))
	highLoss := BinaryCrossEntropy(NewTensor([]float32{0.1}, 1), NewTensor([]float32{1}, 1), Ones(1))
	assert.Less(t, lowLoss.Data()[0], highLoss.Data()[0])
}

func TestL2Loss(t *testing.T) {
	x := NewTensor([]float32{1, 2, 3}, 3)
	loss := L2Loss(x)
	assert.InDelta(t, float64(7), loss.Data()[0], 1e-6)

	loss.Backward()
	assert.InDeltaSlice(t, []float32{1, 2, 3}, x.Grad().Data(), 1e-6)
}
