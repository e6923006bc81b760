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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_Getters(t *testing.T) {
	p := Params{
		NFactors:    10,
		Lr:          0.05,
		Implicit:    true,
		Loss:        LogisticLoss,
		RandomState: 42,
	}
	assert.Equal(t, 10, p.GetInt(NFactors, 5))
	assert.Equal(t, 500, p.GetInt(NEpochs, 500))
	assert.Equal(t, float32(0.05), p.GetFloat32(Lr, 0.01))
	assert.Equal(t, float32(0.02), p.GetFloat32(Reg, 0.02))
	assert.True(t, p.GetBool(Implicit, false))
	assert.False(t, p.GetBool(WarmStart, false))
	assert.Equal(t, LogisticLoss, p.GetString(Loss, SquaredLoss))
	assert.Equal(t, SquaredLoss, p.GetString(Optimizer, SquaredLoss))
	assert.Equal(t, int64(42), p.GetInt64(RandomState, 0))
}

func TestParams_TypeMismatch(t *testing.T) {
	p := Params{NFactors: "ten"}
	assert.Equal(t, 5, p.GetInt(NFactors, 5))
}

func TestParams_Conversion(t *testing.T) {
	p := Params{Lr: 1, Alpha: float64(2.5), RandomState: 7}
	assert.Equal(t, float32(1), p.GetFloat32(Lr, 0))
	assert.Equal(t, float32(2.5), p.GetFloat32(Alpha, 0))
	assert.Equal(t, int64(7), p.GetInt64(RandomState, 0))
}

func TestParams_CopyOverwrite(t *testing.T) {
	p := Params{NFactors: 10, Lr: 0.05}
	q := p.Copy()
	q[NFactors] = 20
	assert.Equal(t, 10, p.GetInt(NFactors, 0))

	merged := p.Overwrite(Params{Lr: 0.1, Reg: 0.5})
	assert.Equal(t, 10, merged.GetInt(NFactors, 0))
	assert.Equal(t, float32(0.1), merged.GetFloat32(Lr, 0))
	assert.Equal(t, float32(0.5), merged.GetFloat32(Reg, 0))
}
