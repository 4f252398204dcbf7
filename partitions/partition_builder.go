package partitions

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/notargets/DGGlue/element"
	"github.com/notargets/DGGlue/facemap"
	"github.com/notargets/DGGlue/glue"
	"github.com/notargets/DGGlue/quad"
	"github.com/notargets/DGGlue/utils"
)

// MeshData is a global quadrilateral mesh. Faces on the domain boundary
// and both sides of every hanging face point to themselves in EToE; the
// hanging connections are listed in Hanging.
type MeshData struct {
	VX, VY  []float64
	EToV    [][4]int
	EToE    [][4]int
	EToF    [][4]int8
	Hanging []HangingFace
}

// HangingFace is a coarse face split between two fine faces. Fine[0]
// covers the first half of the coarse face in its node order.
type HangingFace struct {
	Coarse     int
	CoarseFace int8
	Fine       [2]int
	FineFace   [2]int8
	// Orientation of the fine faces relative to the coarse face
	O int8
}

// Pair names the interface seen from subdomain Minus towards Plus
type Pair struct {
	Minus, Plus int
}

func (p Pair) Mirror() Pair { return Pair{Minus: p.Plus, Plus: p.Minus} }

func (p Pair) String() string { return fmt.Sprintf("%d->%d", p.Minus, p.Plus) }

// SortedPairs lists the keys of entries in ascending order
func SortedPairs(entries map[Pair][]facemap.Entry) []Pair {
	pairs := make([]Pair, 0, len(entries))
	for p := range entries {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Minus != pairs[j].Minus {
			return pairs[i].Minus < pairs[j].Minus
		}
		return pairs[i].Plus < pairs[j].Plus
	})
	return pairs
}

// SubMesh extracts the mesh of partition p with subdomain local element
// ids. Faces shared with other partitions become boundary faces.
func SubMesh(layout *Layout, mesh *MeshData, p int) quad.Mesh {
	part := layout.Partitions[p]
	sub := quad.Mesh{
		VX: mesh.VX,
		VY: mesh.VY,
		ElementConnectivity: element.ElementConnectivity{
			EToV: make([][4]int, part.NumElements),
			EToE: make([][4]int, part.NumElements),
			EToF: make([][4]int8, part.NumElements),
		},
	}
	for local, k := range part.Elements {
		sub.EToV[local] = mesh.EToV[k]
		for f := 0; f < element.QuadNfaces; f++ {
			nb := mesh.EToE[k][f]
			if nb != k && layout.GetPartition(nb) == p {
				sub.EToE[local][f] = layout.LocalElement(nb)
				sub.EToF[local][f] = mesh.EToF[k][f]
				continue
			}
			sub.EToE[local][f] = local
			sub.EToF[local][f] = int8(f)
		}
	}
	return sub
}

// BuildFaceEntries emits one face map entry per local face instance that
// faces another subdomain, grouped by interface. The coarse side of a
// hanging face emits one entry per half.
func BuildFaceEntries(layout *Layout, mesh *MeshData) (map[Pair][]facemap.Entry, error) {
	K := len(mesh.EToV)
	if len(mesh.EToE) != K || len(mesh.EToF) != K || layout.TotalElements != K {
		return nil, fmt.Errorf("mesh has %d elements, EToE %d, EToF %d, layout %d",
			K, len(mesh.EToE), len(mesh.EToF), layout.TotalElements)
	}
	entries := make(map[Pair][]facemap.Entry)
	add := func(e facemap.Entry) {
		pair := Pair{Minus: e.S, Plus: e.NS}
		entries[pair] = append(entries[pair], e)
	}

	for k := 0; k < K; k++ {
		p := layout.EToP[k]
		for f := 0; f < element.QuadNfaces; f++ {
			nb := mesh.EToE[k][f]
			if nb == k {
				continue
			}
			if nb < 0 || nb >= K {
				return nil, fmt.Errorf("element %d face %d: neighbor %d out of range", k, f, nb)
			}
			np := layout.EToP[nb]
			if np == p {
				continue
			}
			nf, o := element.NeighborFace(mesh.EToF[k][f])
			add(facemap.Entry{
				NP: layout.Rank(np), NS: np, NK: layout.LocalElement(nb), NF: nf,
				S: p, K: layout.LocalElement(k), F: int8(f), O: o,
			})
		}
	}

	for i, hf := range mesh.Hanging {
		if hf.Coarse < 0 || hf.Coarse >= K {
			return nil, fmt.Errorf("hanging face %d: coarse element %d out of range", i, hf.Coarse)
		}
		pc := layout.EToP[hf.Coarse]
		for half, fine := range hf.Fine {
			if fine < 0 || fine >= K {
				return nil, fmt.Errorf("hanging face %d: fine element %d out of range", i, fine)
			}
			pf := layout.EToP[fine]
			if pf == pc {
				return nil, fmt.Errorf("hanging face %d: elements %d and %d share subdomain %d",
					i, hf.Coarse, fine, pc)
			}
			h := int8(half + 1)
			add(facemap.Entry{
				NP: layout.Rank(pf), NS: pf, NK: layout.LocalElement(fine), NF: hf.FineFace[half],
				S: pc, K: layout.LocalElement(hf.Coarse), F: hf.CoarseFace, H: h, O: hf.O,
			})
			add(facemap.Entry{
				NP: layout.Rank(pc), NS: pc, NK: layout.LocalElement(hf.Coarse), NF: hf.CoarseFace, NH: h,
				S: pf, K: layout.LocalElement(fine), F: hf.FineFace[half], O: hf.O,
			})
		}
	}
	return entries, nil
}

type faceKey struct {
	S, K   int
	F, H   int8
	NS, NK int
	NF, NH int8
	O      int8
}

func keyOf(e facemap.Entry) faceKey {
	return faceKey{S: e.S, K: e.K, F: e.F, H: e.H, NS: e.NS, NK: e.NK, NF: e.NF, NH: e.NH, O: e.O}
}

func mirrorKey(e facemap.Entry) faceKey {
	return faceKey{S: e.NS, K: e.NK, F: e.NF, H: e.NH, NS: e.S, NK: e.K, NF: e.F, NH: e.H, O: e.O}
}

// ValidateSymmetry checks that every face instance seen from one side is
// seen from the other, reporting every problem found
func ValidateSymmetry(entries map[Pair][]facemap.Entry) error {
	var result error
	for _, pair := range SortedPairs(entries) {
		mine := entries[pair]
		theirs, ok := entries[pair.Mirror()]
		if !ok {
			result = multierror.Append(result,
				fmt.Errorf("subdomain %d sends %d faces to %d, which sends none back",
					pair.Minus, len(mine), pair.Plus))
			continue
		}
		if len(mine) != len(theirs) {
			result = multierror.Append(result,
				fmt.Errorf("count mismatch: %v has %d faces, %v has %d",
					pair, len(mine), pair.Mirror(), len(theirs)))
		}
		seen := make(map[faceKey]bool, len(theirs))
		for _, e := range theirs {
			seen[keyOf(e)] = true
		}
		for _, e := range mine {
			if e.S != pair.Minus || e.NS != pair.Plus {
				result = multierror.Append(result,
					fmt.Errorf("entry %v filed under %v", e, pair))
				continue
			}
			if !seen[mirrorKey(e)] {
				result = multierror.Append(result,
					fmt.Errorf("entry %v has no mirror in %v", e, pair.Mirror()))
			}
		}
	}
	return result
}

// BuildGlues creates the glue subdomains of every interface whose minus
// side is owned by cfg.Rank. orders[p] is the polynomial order of
// partition p. Entries are sorted in place.
func BuildGlues(cfg Config, layout *Layout, quads map[int]*quad.Subdomain,
	orders []int, entries map[Pair][]facemap.Entry) ([]*glue.Glue, error) {
	logger := utils.OrNull(cfg.Logger)
	if len(orders) != layout.NumPartitions {
		return nil, fmt.Errorf("%d orders for %d partitions", len(orders), layout.NumPartitions)
	}
	var glues []*glue.Glue
	for _, pair := range SortedPairs(entries) {
		if layout.Rank(pair.Minus) != cfg.Rank {
			continue
		}
		minus, ok := quads[pair.Minus]
		if !ok {
			return nil, fmt.Errorf("interface %v: subdomain %d is not local", pair, pair.Minus)
		}
		g, err := glue.New(glue.Config{
			ID:     len(glues),
			Name:   fmt.Sprintf("glue_%d_%d", pair.Minus, pair.Plus),
			OrderP: orders[pair.Plus],
			RankM:  layout.Rank(pair.Minus),
			RankP:  layout.Rank(pair.Plus),
			IDM:    pair.Minus + 1,
			IDP:    pair.Plus + 1,
			Logger: logger,
		}, minus, nil, entries[pair])
		if err != nil {
			return nil, fmt.Errorf("interface %v: %w", pair, err)
		}
		glues = append(glues, g)
	}
	return glues, nil
}
