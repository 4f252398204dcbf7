package facemap

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConforming(t *testing.T) {
	entries := []Entry{
		{S: 0, K: 3, F: 1, NS: 1, NK: 0, NF: 0},
		{S: 0, K: 1, F: 1, NS: 1, NK: 2, NF: 0},
		{S: 0, K: 2, F: 1, NS: 1, NK: 1, NF: 0, O: 1},
	}
	m, err := Build(entries, 0, 1)
	require.NoError(t, err)

	want := &Map{
		EToEp: []int{2, 1, 0},
		EToEm: []int{1, 2, 3},
		EToFm: []int8{1, 1, 1},
		EToHm: []int8{0, 0, 0},
		EToOm: []int8{0, 1, 0},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("map mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, m.Len())
	// GI records the input position
	assert.Equal(t, 1, entries[0].GI)
}

// Coarse subdomain 0 element 0 face 1 meets fine subdomain 1 elements 0
// and 1 on face 0, plus one conforming face below them.
func hangingPair() (coarse, fine []Entry) {
	coarse = []Entry{
		{NP: 1, NS: 1, NK: 1, NF: 0, NH: 0, S: 0, K: 0, F: 1, H: 2},
		{NP: 1, NS: 1, NK: 0, NF: 0, NH: 0, S: 0, K: 0, F: 1, H: 1},
		{NP: 1, NS: 1, NK: 2, NF: 3, NH: 0, S: 0, K: 4, F: 2, H: 0, O: 1},
	}
	fine = []Entry{
		{NP: 0, NS: 0, NK: 4, NF: 2, NH: 0, S: 1, K: 2, F: 3, H: 0, O: 1},
		{NP: 0, NS: 0, NK: 0, NF: 1, NH: 2, S: 1, K: 1, F: 0, H: 0},
		{NP: 0, NS: 0, NK: 0, NF: 1, NH: 1, S: 1, K: 0, F: 0, H: 0},
	}
	return
}

func TestSortIsComplementary(t *testing.T) {
	coarse, fine := hangingPair()
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		rng.Shuffle(len(coarse), func(i, j int) { coarse[i], coarse[j] = coarse[j], coarse[i] })
		rng.Shuffle(len(fine), func(i, j int) { fine[i], fine[j] = fine[j], fine[i] })

		cm, err := Build(coarse, 0, 1)
		require.NoError(t, err)
		fm, err := Build(fine, 1, 0)
		require.NoError(t, err)

		// what one side writes to slot I the other reads at glue element I
		for _, pair := range [][2][]Entry{{coarse, fine}, {fine, coarse}} {
			for _, e := range pair[0] {
				r := pair[1][e.I]
				assert.Equal(t, e.NK, r.K)
				assert.Equal(t, e.NF, r.F)
				assert.Equal(t, e.NH, r.H)
				assert.Equal(t, e.K, r.NK)
				assert.Equal(t, e.H, r.NH)
			}
		}
		assert.Equal(t, []int{0, 0, 4}, cm.EToEm)
		assert.Equal(t, []int8{1, 2, 0}, cm.EToHm)
		assert.Equal(t, []int{0, 1, 2}, fm.EToEm)
	}
}

func TestSortRejectsTies(t *testing.T) {
	entries := []Entry{
		{NS: 1, NK: 0, NF: 0, K: 0, F: 1},
		{NS: 1, NK: 0, NF: 0, K: 1, F: 1},
	}
	assert.ErrorIs(t, Sort(entries), ErrTie)

	entries = []Entry{
		{NS: 1, NK: 0, NF: 0, K: 0, F: 1},
		{NS: 1, NK: 1, NF: 0, K: 0, F: 1},
	}
	assert.ErrorIs(t, Sort(entries), ErrTie)
}

func TestBuildMismatch(t *testing.T) {
	coarse, _ := hangingPair()
	_, err := Build(coarse, 0, 2)
	assert.ErrorIs(t, err, ErrMismatch)
	_, err = Build(coarse, 1, 1)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestCompareOrders(t *testing.T) {
	a := Entry{NP: 0, NS: 1, NK: 5, K: 0}
	b := Entry{NP: 0, NS: 1, NK: 2, K: 9}
	assert.Equal(t, 1, SendCompare(a, b))
	assert.Equal(t, -1, RecvCompare(a, b))
	assert.Equal(t, 0, SendCompare(a, a))
	c := a
	c.O = 1
	assert.Equal(t, -1, RecvCompare(a, c))
}
