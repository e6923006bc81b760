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
	"github.com/juju/errors"
)

var (
	// ErrNotInitialized is returned when Predict, Coef, Save or Marshal is
	// called before the model shape has been fixed.
	ErrNotInitialized = errors.New("model is not initialized")
	// ErrShapeMismatch is returned when a checkpoint disagrees with the
	// current model shape or configuration.
	ErrShapeMismatch = errors.New("checkpoint shape mismatch")
)
