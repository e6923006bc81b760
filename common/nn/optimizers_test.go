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

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gorse-io/mf/common/nn"
)

func testOptimizer(optimizerCreator func(params []*nn.Tensor, lr float32) nn.Optimizer, lr float32, epochs int) (losses []float32) {
	// Minimize mean((x - target)^2) starting from zero.
	target := nn.LinSpace(1, 2, 10)
	x := nn.Zeros(10)

	optimizer := optimizerCreator([]*nn.Tensor{x}, lr)
	for i := 0; i < epochs; i++ {
		loss := nn.Mean(nn.Square(nn.Sub(x, target)))
		losses = append(losses, loss.Data()[0])

		optimizer.ZeroGrad()
		loss.Backward()
		optimizer.Step()
	}
	return
}

func TestSGD(t *testing.T) {
	losses := testOptimizer(nn.NewSGD, 0.1, 500)
	assert.Greater(t, losses[0], float32(1))
	assert.Less(t, losses[len(losses)-1], float32(1e-3))
}

func TestAdam(t *testing.T) {
	losses := testOptimizer(nn.NewAdam, 0.1, 300)
	assert.Greater(t, losses[0], float32(1))
	assert.Less(t, losses[len(losses)-1], float32(1e-3))
}

func TestFtrl(t *testing.T) {
	losses := testOptimizer(nn.NewFtrl, 1, 200)
	assert.Greater(t, losses[0], float32(1))
	assert.Less(t, losses[len(losses)-1], float32(1e-3))
}
