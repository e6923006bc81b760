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

// epsilon keeps logarithms away from zero in the cross-entropy loss.
const epsilon = 1e-7

// MeanSquareError returns the weighted mean squared error between predictions
// and targets:
//
//	mean(weight * (yPred - yTrue)^2)
func MeanSquareError(yPred, yTrue, weight *Tensor) *Tensor {
	return Mean(Mul(weight, Square(Sub(yPred, yTrue))))
}

// BinaryCrossEntropy returns the weighted binary cross-entropy between
// predictions and binary targets:
//
//	-mean(weight * (yTrue*log(yPred) + (1-yTrue)*log(1-yPred)))
//
// Predictions must lie in (0, 1), i.e. have been passed through Sigmoid.
func BinaryCrossEntropy(yPred, yTrue, weight *Tensor) *Tensor {
	eps := NewScalar(epsilon)
	one := Ones(yPred.shape...)
	positive := Mul(yTrue, Log(Add(yPred, eps)))
	negative := Mul(Sub(one, yTrue), Log(Add(Sub(one.clone(), yPred), eps)))
	return Neg(Mean(Mul(weight, Add(positive, negative))))
}

// L2Loss returns half the sum of squares of a tensor.
func L2Loss(x *Tensor) *Tensor {
	return Mul(Sum(Square(x)), NewScalar(0.5))
}
