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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatrix(t *testing.T) {
	m, err := NewMatrix(
		[]int32{0, 0, 1, 1, 2, 2},
		[]int32{0, 1, 2, 0, 1, 2},
		[]float32{1, 1, 2, 2, 3, 3})
	assert.NoError(t, err)
	assert.Equal(t, 3, m.NumRows())
	assert.Equal(t, 3, m.NumCols())
	assert.Equal(t, 6, m.NumNonzero())

	// stored entries
	values, err := m.Get([]int32{0, 1, 2}, []int32{0, 2, 1})
	assert.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, values)

	// missing entries default to zero
	values, err = m.Get([]int32{0, 2}, []int32{2, 0})
	assert.NoError(t, err)
	assert.Equal(t, []float32{0, 0}, values)
}

func TestNewMatrix_Invalid(t *testing.T) {
	_, err := NewMatrix([]int32{0}, []int32{0, 1}, []float32{1, 2})
	assert.Error(t, err)
	_, err = NewMatrix([]int32{-1}, []int32{0}, []float32{1})
	assert.Error(t, err)
}

func TestMatrix_Duplicates(t *testing.T) {
	m, err := NewMatrix([]int32{0, 0}, []int32{0, 0}, []float32{1, 5})
	assert.NoError(t, err)
	assert.Equal(t, 1, m.NumNonzero())
	values, err := m.Get([]int32{0}, []int32{0})
	assert.NoError(t, err)
	assert.Equal(t, []float32{5}, values)
}

func TestMatrix_OutOfRange(t *testing.T) {
	m, err := NewMatrix([]int32{0, 1}, []int32{0, 1}, []float32{1, 2})
	assert.NoError(t, err)
	_, err = m.Get([]int32{2}, []int32{0})
	assert.Error(t, err)
	_, err = m.Get([]int32{0}, []int32{2})
	assert.Error(t, err)
	_, err = m.Get([]int32{0, 1}, []int32{0})
	assert.Error(t, err)
}
