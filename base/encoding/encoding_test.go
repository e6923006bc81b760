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

package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, WriteString(buf, "hello"))
	s, err := ReadString(buf)
	assert.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestGob(t *testing.T) {
	type header struct {
		Rows, Cols int
		Flag       bool
	}
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, WriteGob(buf, header{Rows: 3, Cols: 4, Flag: true}))
	var decoded header
	assert.NoError(t, ReadGob(buf, &decoded))
	assert.Equal(t, header{Rows: 3, Cols: 4, Flag: true}, decoded)
}

func TestVector(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, WriteVector(buf, []float32{1, 2, 3}))
	decoded := make([]float32, 3)
	assert.NoError(t, ReadVector(buf, decoded))
	assert.Equal(t, []float32{1, 2, 3}, decoded)
}

func TestMatrix(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, WriteMatrix(buf, [][]float32{{1, 2}, {3, 4}}))
	decoded := [][]float32{make([]float32, 2), make([]float32, 2)}
	assert.NoError(t, ReadMatrix(buf, decoded))
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}}, decoded)
}

func TestReadTruncated(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, WriteVector(buf, []float32{1, 2}))
	decoded := make([]float32, 3)
	assert.Error(t, ReadVector(buf, decoded))
}
