package rnn

import "math"

// adam holds first and second moment estimates shaped like the model
// parameters, plus the step counter used for bias correction.
type adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64
	t       int

	mWx, vWx [][]float32
	mWh, vWh [][]float32
	mB, vB   []float32
	mWy, vWy []float32
	mBy, vBy float64
}

func newAdam(m *Model, cfg Config) *adam {
	h := m.hidden
	a := &adam{
		lr:      cfg.LearningRate,
		beta1:   cfg.Beta1,
		beta2:   cfg.Beta2,
		epsilon: cfg.Epsilon,
		mWx:     make([][]float32, 4*h),
		vWx:     make([][]float32, 4*h),
		mWh:     make([][]float32, 4*h),
		vWh:     make([][]float32, 4*h),
		mB:      make([]float32, 4*h),
		vB:      make([]float32, 4*h),
		mWy:     make([]float32, h),
		vWy:     make([]float32, h),
	}
	for r := 0; r < 4*h; r++ {
		a.mWx[r] = make([]float32, m.inputDim)
		a.vWx[r] = make([]float32, m.inputDim)
		a.mWh[r] = make([]float32, h)
		a.vWh[r] = make([]float32, h)
	}
	return a
}

// step applies one Adam update to the model parameters from the averaged
// batch gradients.
func (a *adam) step(m *Model, g *gradients) {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))

	for r := range m.wx {
		a.updateRow(m.wx[r], g.wx[r], a.mWx[r], a.vWx[r], c1, c2)
		a.updateRow(m.wh[r], g.wh[r], a.mWh[r], a.vWh[r], c1, c2)
	}
	a.updateRow(m.b, g.b, a.mB, a.vB, c1, c2)
	a.updateRow(m.wy, g.wy, a.mWy, a.vWy, c1, c2)

	a.mBy = a.beta1*a.mBy + (1-a.beta1)*float64(g.by)
	a.vBy = a.beta2*a.vBy + (1-a.beta2)*float64(g.by)*float64(g.by)
	m.by -= float32(a.lr * (a.mBy / c1) / (math.Sqrt(a.vBy/c2) + a.epsilon))
}

func (a *adam) updateRow(w, g, mo, vo []float32, c1, c2 float64) {
	for i := range w {
		gi := float64(g[i])
		mi := a.beta1*float64(mo[i]) + (1-a.beta1)*gi
		vi := a.beta2*float64(vo[i]) + (1-a.beta2)*gi*gi
		mo[i] = float32(mi)
		vo[i] = float32(vi)
		w[i] -= float32(a.lr * (mi / c1) / (math.Sqrt(vi/c2) + a.epsilon))
	}
}
