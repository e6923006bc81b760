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
	"github.com/chewxy/math32"
)

type Optimizer interface {
	SetWeightDecay(rate float32)
	ZeroGrad()
	Step()
}

type baseOptimizer struct {
	params []*Tensor
	wd     float32
}

func (o *baseOptimizer) ZeroGrad() {
	for _, p := range o.params {
		p.grad = nil
	}
}

func (o *baseOptimizer) SetWeightDecay(wd float32) {
	o.wd = wd
}

type SGD struct {
	baseOptimizer
	lr float32
}

func NewSGD(params []*Tensor, lr float32) Optimizer {
	return &SGD{
		baseOptimizer: baseOptimizer{params: params},
		lr:            lr,
	}
}

func (s *SGD) Step() {
	for _, p := range s.params {
		for i := range p.data {
			p.data[i] -= s.lr * (p.grad.data[i] + p.data[i]*s.wd)
		}
	}
}

type Adam struct {
	baseOptimizer
	alpha float32
	beta1 float32
	beta2 float32
	eps   float32
	ms    map[*Tensor]*Tensor
	vs    map[*Tensor]*Tensor
	t     float32
}

func NewAdam(params []*Tensor, alpha float32) Optimizer {
	return &Adam{
		baseOptimizer: baseOptimizer{params: params},
		alpha:         alpha,
		beta1:         0.9,
		beta2:         0.999,
		eps:           1e-8,
		ms:            make(map[*Tensor]*Tensor),
		vs:            make(map[*Tensor]*Tensor),
	}
}

func (a *Adam) Step() {
	a.t++

	fix1 := 1 - math32.Pow(a.beta1, a.t)
	fix2 := 1 - math32.Pow(a.beta2, a.t)
	lr := a.alpha * math32.Sqrt(fix2) / fix1

	for _, p := range a.params {
		if _, ok := a.ms[p]; !ok {
			a.ms[p] = Zeros(p.shape...)
			a.vs[p] = Zeros(p.shape...)
		}
		m, v := a.ms[p], a.vs[p]
		for i := range p.data {
			g := p.grad.data[i] + a.wd*p.data[i]
			// m += (1 - beta1) * (grad - m)
			m.data[i] += (1 - a.beta1) * (g - m.data[i])
			// v += (1 - beta2) * (grad * grad - v)
			v.data[i] += (1 - a.beta2) * (g*g - v.data[i])
			p.data[i] -= lr * m.data[i] / (math32.Sqrt(v.data[i]) + a.eps)
		}
	}
}

// Ftrl implements the FTRL-Proximal online learning algorithm
// (McMahan et al. 2013) with a learning rate power of -0.5.
type Ftrl struct {
	baseOptimizer
	alpha        float32
	lambda1      float32
	lambda2      float32
	initialAccum float32
	ns           map[*Tensor]*Tensor
	zs           map[*Tensor]*Tensor
}

func NewFtrl(params []*Tensor, alpha float32) Optimizer {
	return &Ftrl{
		baseOptimizer: baseOptimizer{params: params},
		alpha:         alpha,
		lambda1:       0,
		lambda2:       0,
		initialAccum:  0.1,
		ns:            make(map[*Tensor]*Tensor),
		zs:            make(map[*Tensor]*Tensor),
	}
}

func (f *Ftrl) Step() {
	for _, p := range f.params {
		if _, ok := f.ns[p]; !ok {
			n := Zeros(p.shape...)
			for i := range n.data {
				n.data[i] = f.initialAccum
			}
			f.ns[p] = n
			f.zs[p] = Zeros(p.shape...)
		}
		n, z := f.ns[p], f.zs[p]
		for i := range p.data {
			g := p.grad.data[i] + f.wd*p.data[i]
			nNew := n.data[i] + g*g
			sigma := (math32.Sqrt(nNew) - math32.Sqrt(n.data[i])) / f.alpha
			z.data[i] += g - sigma*p.data[i]
			n.data[i] = nNew
			if math32.Abs(z.data[i]) <= f.lambda1 {
				p.data[i] = 0
			} else {
				sign := float32(1)
				if z.data[i] < 0 {
					sign = -1
				}
				p.data[i] = -(z.data[i] - sign*f.lambda1) /
					(math32.Sqrt(nNew)/f.alpha + f.lambda2)
			}
		}
	}
}
