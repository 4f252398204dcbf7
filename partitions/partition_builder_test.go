package partitions

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/notargets/DGGlue/fields"
	"github.com/notargets/DGGlue/glue"
	"github.com/notargets/DGGlue/quad"
	"github.com/notargets/DGGlue/subdomain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// grid builds an nx × ny mesh of unit squares
func grid(nx, ny int) *MeshData {
	v := func(i, j int) int { return j*(nx+1) + i }
	m := &MeshData{}
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.VX = append(m.VX, float64(i))
			m.VY = append(m.VY, float64(j))
		}
	}
	e := func(i, j int) int { return j*nx + i }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			k := e(i, j)
			m.EToV = append(m.EToV, [4]int{v(i, j), v(i+1, j), v(i, j+1), v(i+1, j+1)})
			toE := [4]int{k, k, k, k}
			toF := [4]int8{0, 1, 2, 3}
			if i > 0 {
				toE[0], toF[0] = e(i-1, j), 1
			}
			if i < nx-1 {
				toE[1], toF[1] = e(i+1, j), 0
			}
			if j > 0 {
				toE[2], toF[2] = e(i, j-1), 3
			}
			if j < ny-1 {
				toE[3], toF[3] = e(i, j+1), 2
			}
			m.EToE = append(m.EToE, toE)
			m.EToF = append(m.EToF, toF)
		}
	}
	return m
}

// hangingMesh has a coarse element [0,1]² next to two fine elements
// stacked on [1,2]×[0,1]
func hangingMesh() *MeshData {
	return &MeshData{
		VX:   []float64{0, 1, 2, 1, 2, 0, 1, 2},
		VY:   []float64{0, 0, 0, .5, .5, 1, 1, 1},
		EToV: [][4]int{{0, 1, 5, 6}, {1, 2, 3, 4}, {3, 4, 6, 7}},
		EToE: [][4]int{{0, 0, 0, 0}, {1, 1, 1, 2}, {2, 2, 1, 2}},
		EToF: [][4]int8{{0, 1, 2, 3}, {0, 1, 2, 2}, {0, 1, 3, 3}},
		Hanging: []HangingFace{
			{Coarse: 0, CoarseFace: 1, Fine: [2]int{1, 2}, FineFace: [2]int8{0, 0}},
		},
	}
}

func TestLayout(t *testing.T) {
	assert.Equal(t, []int{0, 0, 1, 1, 2}, PartitionElements(5, 3, BlockPartition))
	assert.Equal(t, []int{0, 1, 2, 0, 1}, PartitionElements(5, 3, RoundRobin))
	assert.Equal(t, []int{0, 0}, PartitionElements(2, 0, BlockPartition))

	l, err := NewLayout([]int{1, 0, 1, 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, l.NumPartitions)
	assert.Equal(t, []int{1}, l.Partitions[0].Elements)
	assert.Equal(t, []int{0, 2, 3}, l.Partitions[1].Elements)
	assert.Equal(t, 2, l.LocalElement(3))
	assert.Equal(t, -1, l.GetPartition(7))
	assert.Equal(t, 0, l.Rank(1))

	stats := l.PartitionStatistics()
	assert.Equal(t, 1, stats.MinElements)
	assert.Equal(t, 3, stats.MaxElements)
	assert.InDelta(t, 1.5, stats.Imbalance, 1.e-15)

	_, err = NewLayout([]int{0, 2}, nil)
	assert.Error(t, err, "partition 1 is empty")
	_, err = NewLayout([]int{0, 1}, []int{0})
	assert.Error(t, err)
}

func TestSubMesh(t *testing.T) {
	mesh := grid(2, 2)
	l, err := NewLayout([]int{0, 1, 0, 1}, nil)
	require.NoError(t, err)

	sub := SubMesh(l, mesh, 1)
	assert.Equal(t, [][4]int{mesh.EToV[1], mesh.EToV[3]}, sub.EToV)
	// face 0 now faces the other subdomain and is a boundary
	assert.Equal(t, [4]int{0, 0, 0, 1}, sub.EToE[0])
	assert.Equal(t, [4]int8{0, 1, 2, 2}, sub.EToF[0])
	assert.Equal(t, [4]int{1, 1, 0, 1}, sub.EToE[1])

	_, err = quad.New(quad.Config{N: 2}, sub)
	assert.NoError(t, err)
}

func TestBuildFaceEntries(t *testing.T) {
	l, err := NewLayout([]int{0, 1, 0, 1}, []int{0, 0})
	require.NoError(t, err)
	entries, err := BuildFaceEntries(l, grid(2, 2))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{0, 1}, {1, 0}}, SortedPairs(entries))
	require.Len(t, entries[Pair{0, 1}], 2)
	e := entries[Pair{0, 1}][1]
	assert.Equal(t, 1, e.K)
	assert.Equal(t, int8(1), e.F)
	assert.Equal(t, 1, e.NK)
	assert.Equal(t, int8(0), e.NF)
	assert.NoError(t, ValidateSymmetry(entries))

	l, err = NewLayout([]int{0, 1, 1}, nil)
	require.NoError(t, err)
	entries, err = BuildFaceEntries(l, hangingMesh())
	require.NoError(t, err)
	coarse := entries[Pair{0, 1}]
	require.Len(t, coarse, 2)
	assert.Equal(t, []int8{1, 2}, []int8{coarse[0].H, coarse[1].H})
	fine := entries[Pair{1, 0}]
	require.Len(t, fine, 2)
	assert.Equal(t, []int8{1, 2}, []int8{fine[0].NH, fine[1].NH})
	assert.Equal(t, []int{0, 1}, []int{fine[0].K, fine[1].K})
	assert.NoError(t, ValidateSymmetry(entries))

	// hanging faces must cross subdomains
	l, err = NewLayout([]int{0, 0, 1}, nil)
	require.NoError(t, err)
	_, err = BuildFaceEntries(l, hangingMesh())
	assert.Error(t, err)
}

func TestValidateSymmetry(t *testing.T) {
	l, err := NewLayout([]int{0, 1, 1}, nil)
	require.NoError(t, err)
	entries, err := BuildFaceEntries(l, hangingMesh())
	require.NoError(t, err)

	entries[Pair{1, 0}] = entries[Pair{1, 0}][:1]
	err = ValidateSymmetry(entries)
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)

	delete(entries, Pair{1, 0})
	err = ValidateSymmetry(entries)
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 1)
}

// setup builds the subdomains and glues of a mesh and fills q on both
func setup(t *testing.T, mesh *MeshData, eToP, orders []int,
	q func(x, y float64) float64) []*glue.Glue {
	t.Helper()
	l, err := NewLayout(eToP, nil)
	require.NoError(t, err)
	entries, err := BuildFaceEntries(l, mesh)
	require.NoError(t, err)
	require.NoError(t, ValidateSymmetry(entries))

	quads := make(map[int]*quad.Subdomain)
	for p := 0; p < l.NumPartitions; p++ {
		s, err := quad.New(quad.Config{ID: p, Name: "q", N: orders[p]}, SubMesh(l, mesh, p))
		require.NoError(t, err)
		require.Equal(t, fields.Added, s.FieldAdd("q"))
		require.NoError(t, s.FieldInit("q", 0, func(np int, _ string, _ float64,
			x, y, _ []float64, _ subdomain.Subdomain, _ any, f []float64) {
			for i := 0; i < np; i++ {
				f[i] = q(x[i], y[i])
			}
		}, nil))
		quads[p] = s
	}
	glues, err := BuildGlues(Config{}, l, quads, orders, entries)
	require.NoError(t, err)
	for _, g := range glues {
		g.FieldMinusAdd("q")
		g.FieldPlusAdd("q")
	}
	return glues
}

func checkPlus(t *testing.T, glues []*glue.Glue, q func(x, y float64) float64) {
	t.Helper()
	for _, g := range glues {
		x := g.Base().Fields.Get(quad.GridX)
		y := g.Base().Fields.Get(quad.GridY)
		want := make([]float64, len(x))
		for i := range want {
			want[i] = q(x[i], y[i])
		}
		got := g.Base().FieldsP.Get("q")
		assert.True(t, floats.EqualApprox(want, got, 1.e-12),
			"glue %s: want %v got %v", g.Base().Name, want, got)
	}
}

func TestExchangeConforming(t *testing.T) {
	q := func(x, y float64) float64 { return 1 + x + y*y }
	glues := setup(t, grid(2, 2), []int{0, 1, 0, 1}, []int{2, 3}, q)
	require.Len(t, glues, 2)
	assert.Equal(t, 4, glues[0].Np)
	require.NoError(t, Exchange(context.Background(), Config{}, glues, nil))
	checkPlus(t, glues, q)
}

func TestExchangeHanging(t *testing.T) {
	q := func(x, y float64) float64 { return 1 + 2*y + 3*y*y }
	glues := setup(t, hangingMesh(), []int{0, 1, 1}, []int{4, 2}, q)
	require.Len(t, glues, 2)
	require.NoError(t, Exchange(context.Background(), Config{}, glues, nil))
	checkPlus(t, glues, q)
}

func TestExchangeErrors(t *testing.T) {
	q := func(x, y float64) float64 { return x }
	glues := setup(t, grid(2, 1), []int{0, 1}, []int{2, 2}, q)

	err := Exchange(context.Background(), Config{Rank: 1}, glues, nil)
	assert.Error(t, err)

	err = Exchange(context.Background(), Config{}, glues[:1], nil)
	assert.Error(t, err)

	args := &subdomain.CommArgs{ScalarsM: []string{"nope"}, ScalarsP: []string{"q"}}
	err = Exchange(context.Background(), Config{}, glues, args)
	assert.ErrorIs(t, err, glue.ErrMissingField)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Exchange(ctx, Config{}, glues, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
