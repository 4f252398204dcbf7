package glue

import (
	"fmt"
	"testing"

	"github.com/notargets/DGGlue/element/library/gonudg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sumAll(m mat.Matrix) (s float64) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			s += m.At(i, j)
		}
	}
	return
}

func TestOperatorShapes(t *testing.T) {
	op, err := BuildOperators(2, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, op.N)
	assert.Equal(t, 5, op.Nrp)
	for h := 0; h < NumCases; h++ {
		require.NotNil(t, op.Interpolation[h])
		r, c := op.Interpolation[h].Dims()
		assert.Equal(t, [2]int{5, 3}, [2]int{r, c})
		r, c = op.MassProjection[h].Dims()
		assert.Equal(t, [2]int{3, 5}, [2]int{r, c})
	}

	op, err = BuildOperators(4, 2)
	require.NoError(t, err)
	assert.Nil(t, op.Interpolation[Whole])
	assert.NotNil(t, op.Interpolation[LeftHalf])

	_, err = BuildOperators(0, 2)
	assert.Error(t, err)
}

func TestMassConservation(t *testing.T) {
	for _, orders := range [][2]int{{1, 1}, {2, 4}, {4, 2}, {3, 3}, {5, 2}} {
		Nm, Np := orders[0], orders[1]
		t.Run(fmt.Sprintf("Nm=%d,Np=%d", Nm, Np), func(t *testing.T) {
			op, err := BuildOperators(Nm, Np)
			require.NoError(t, err)

			ones := make([]float64, Nm+1)
			for i := range ones {
				ones[i] = 1
			}
			glue := make([]float64, op.Nrp)
			var halves float64
			for h := 0; h < NumCases; h++ {
				op.Apply(h, ones, glue)
				for _, v := range glue {
					assert.InDelta(t, 1., v, 1.e-12)
				}
				var proj mat.VecDense
				proj.MulVec(op.MassProjection[h], mat.NewVecDense(op.Nrp, glue))
				total := sumAll(&proj)
				if h == Whole {
					assert.InDelta(t, 2., total, 1.e-12)
				} else {
					halves += total
				}
			}
			assert.InDelta(t, 2., halves, 1.e-12)
			assert.InDelta(t, 2., sumAll(op.ExactMass), 1.e-12)
		})
	}
}

func TestIdentityProjection(t *testing.T) {
	op, err := BuildOperators(3, 3)
	require.NoError(t, err)
	assert.Nil(t, op.Interpolation[Whole])
	assert.True(t, mat.EqualApprox(op.MassProjection[Whole], op.ExactMass, 1.e-12))

	in := []float64{1, 2, 3, 4}
	out := make([]float64, 4)
	op.Apply(Whole, in, out)
	assert.Equal(t, in, out)
}

func TestHalfInterpolation(t *testing.T) {
	Nm, Np := 3, 5
	op, err := BuildOperators(Nm, Np)
	require.NoError(t, err)
	rm, _, err := gonudg.LegendreGL(Nm)
	require.NoError(t, err)

	poly := func(r float64) float64 { return 2 - r + 3*r*r*r }
	in := make([]float64, Nm+1)
	for i, r := range rm {
		in[i] = poly(r)
	}
	out := make([]float64, op.Nrp)
	shift := [NumCases]func(float64) float64{
		func(r float64) float64 { return r },
		func(r float64) float64 { return -.5 + .5*r },
		func(r float64) float64 { return .5 + .5*r },
	}
	for h := 0; h < NumCases; h++ {
		op.Apply(h, in, out)
		for i, r := range op.R {
			assert.InDelta(t, poly(shift[h](r)), out[i], 1.e-12, "case %d node %d", h, i)
		}
	}
}
