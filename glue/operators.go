package glue

import (
	"fmt"

	"github.com/notargets/DGGlue/element/library/gonudg"
	"gonum.org/v1/gonum/mat"
)

// Hanging cases
const (
	Whole = iota
	LeftHalf
	RightHalf
	NumCases
)

// ProjectionScale is the length of each case's target interval relative to
// the whole face
var ProjectionScale = [NumCases]float64{1, .5, .5}

// Operators carry the minus side face trace of order Nm to the glue grid
// of order N = max(Nm, Np), and back
type Operators struct {
	Nm, N, Nrp int
	R, W, WI   []float64

	// Interpolation[h] is [Nrp × Nm+1]: row i is glue node i, column j the
	// minus face node j. Interpolation[Whole] is nil when Nm == N.
	Interpolation [NumCases]*mat.Dense
	// MassProjection[h] is Interpolation[h]^T M ProjectionScale[h], [Nm+1 × Nrp]
	MassProjection [NumCases]*mat.Dense
	// ExactMass is the order N Gauss-Lobatto mass matrix
	ExactMass *mat.Dense
}

func BuildOperators(Nm, Np int) (*Operators, error) {
	if Nm < 1 || Np < 1 {
		return nil, fmt.Errorf("glue orders must be at least 1, have %d and %d", Nm, Np)
	}
	N := max(Nm, Np)
	op := &Operators{Nm: Nm, N: N, Nrp: N + 1}

	var err error
	if op.R, op.W, err = gonudg.LegendreGL(N); err != nil {
		return nil, err
	}
	op.WI = make([]float64, op.Nrp)
	for i, w := range op.W {
		op.WI[i] = 1 / w
	}

	var lr [NumCases][]float64
	lr[Whole] = op.R
	lr[LeftHalf] = make([]float64, op.Nrp)
	lr[RightHalf] = make([]float64, op.Nrp)
	for n, r := range op.R {
		lr[LeftHalf][n] = -.5 + .5*r
		lr[RightHalf][n] = .5 + .5*r
	}

	rm, _, err := gonudg.LegendreGL(Nm)
	if err != nil {
		return nil, err
	}
	Vm := gonudg.Vandermonde1D(Nm, rm)

	if op.ExactMass, err = gonudg.MassMatrix1D(gonudg.Vandermonde1D(N, op.R)); err != nil {
		return nil, err
	}

	for h := 0; h < NumCases; h++ {
		interp, err := gonudg.Interpolation1D(Nm, lr[h], Vm)
		if err != nil {
			return nil, fmt.Errorf("case %d interpolation: %w", h, err)
		}
		mp := mat.NewDense(Nm+1, op.Nrp, nil)
		mp.Product(interp.T(), op.ExactMass)
		mp.Scale(ProjectionScale[h], mp)
		op.MassProjection[h] = mp

		if h == Whole && Nm == N {
			continue
		}
		op.Interpolation[h] = interp
	}
	return op, nil
}

// Apply evaluates case h on minus face values in (length Nm+1), writing
// Nrp glue values to out. Without an operator the values are copied.
func (op *Operators) Apply(h int, in, out []float64) {
	I := op.Interpolation[h]
	if I == nil {
		copy(out[:op.Nrp], in)
		return
	}
	for i := 0; i < op.Nrp; i++ {
		var sum float64
		for j := 0; j <= op.Nm; j++ {
			sum += I.At(i, j) * in[j]
		}
		out[i] = sum
	}
}
