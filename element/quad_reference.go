package element

import (
	"fmt"

	"github.com/notargets/DGGlue/element/library/gonudg"
	"gonum.org/v1/gonum/mat"
)

const (
	QuadNfaces   = 4
	QuadNcorners = 4
	// Hanging cases: whole face, left half, right half
	QuadNh = 3
	// Orientations: same or reversed node order
	QuadNo = 2
)

// QuadReference is the tensor product Gauss-Lobatto quadrilateral of order
// N. Node (m,n), with m the r index and n the s index, is stored at
// Nrp*n + m.
type QuadReference struct {
	N, Nrp, Np, Nfp int

	// 1D Gauss-Lobatto nodes, weights and inverse weights
	R, W, WI []float64

	// Tensor node coordinates, length Np
	NodeR, NodeS []float64

	// 1D operators, [Nrp × Nrp]
	V, Vinv, M, Minv, Dr *mat.Dense

	// Fmask[f] lists the volume node indices on face f, faces ordered
	// -r, +r, -s, +s
	Fmask [QuadNfaces][]int
}

// NewQuadReference builds the order N reference quadrilateral
func NewQuadReference(N int) (*QuadReference, error) {
	if N < 1 {
		return nil, fmt.Errorf("quadrilateral order must be at least 1, have %d", N)
	}
	Nrp := N + 1
	qr := &QuadReference{
		N:   N,
		Nrp: Nrp,
		Np:  Nrp * Nrp,
		Nfp: Nrp,
	}

	var err error
	if qr.R, qr.W, err = gonudg.LegendreGL(N); err != nil {
		return nil, fmt.Errorf("order %d nodes: %w", N, err)
	}
	qr.WI = make([]float64, Nrp)
	for i, w := range qr.W {
		qr.WI[i] = 1 / w
	}

	qr.V = gonudg.Vandermonde1D(N, qr.R)
	qr.Vinv = mat.NewDense(Nrp, Nrp, nil)
	if err = qr.Vinv.Inverse(qr.V); err != nil {
		return nil, fmt.Errorf("order %d Vandermonde: %w", N, err)
	}
	if qr.Dr, err = gonudg.Dmatrix1D(N, qr.R, qr.V); err != nil {
		return nil, err
	}
	if qr.M, err = gonudg.MassMatrix1D(qr.V); err != nil {
		return nil, err
	}
	qr.Minv = mat.NewDense(Nrp, Nrp, nil)
	qr.Minv.Mul(qr.V, qr.V.T())

	qr.NodeR = make([]float64, qr.Np)
	qr.NodeS = make([]float64, qr.Np)
	for n := 0; n < Nrp; n++ {
		for m := 0; m < Nrp; m++ {
			qr.NodeR[Nrp*n+m] = qr.R[m]
			qr.NodeS[Nrp*n+m] = qr.R[n]
		}
	}

	qr.Fmask = QuadFmask(N)
	return qr, nil
}

// QuadFmask returns the face node table of an order N quadrilateral. It
// depends only on N.
func QuadFmask(N int) (fmask [QuadNfaces][]int) {
	for f := range fmask {
		fmask[f] = make([]int, N+1)
	}
	for i := 0; i < N+1; i++ {
		fmask[0][i] = i * (N + 1)     // -x
		fmask[1][i] = (i+1)*(N+1) - 1 // +x
		fmask[2][i] = i               // -y
		fmask[3][i] = (N+1)*N + i     // +y
	}
	return
}

func (qr *QuadReference) Name() string {
	return fmt.Sprintf("Gauss-Lobatto Quadrilateral Order %d", qr.N)
}
func (qr *QuadReference) ShortName() string { return fmt.Sprintf("Quad%d", qr.N) }

// NIp is the number of strictly interior nodes
func (qr *QuadReference) NIp() int { return (qr.Nrp - 2) * (qr.Nrp - 2) }

func (qr *QuadReference) VertexPoints() []int {
	Nrp := qr.Nrp
	return []int{0, Nrp - 1, Nrp * (Nrp - 1), Nrp*Nrp - 1}
}

func (qr *QuadReference) FacePoints() [][]int {
	fp := make([][]int, QuadNfaces)
	for f := range fp {
		fp[f] = append([]int(nil), qr.Fmask[f]...)
	}
	return fp
}

func (qr *QuadReference) InteriorPoints() []int {
	var ip []int
	for n := 1; n < qr.Nrp-1; n++ {
		for m := 1; m < qr.Nrp-1; m++ {
			ip = append(ip, qr.Nrp*n+m)
		}
	}
	return ip
}

func (qr *QuadReference) GetProperties() ElementProperties {
	return ElementProperties{
		Name:       qr.Name(),
		ShortName:  qr.ShortName(),
		Type:       Quad,
		Order:      qr.N,
		Np:         qr.Np,
		NFp:        qr.Nfp,
		NVp:        QuadNcorners,
		NIp:        qr.NIp(),
		NFaces:     QuadNfaces,
		Dimensions: D2,
	}
}

func (qr *QuadReference) GetReferenceGeometry() ReferenceGeometry {
	return ReferenceGeometry{
		R:              qr.NodeR,
		S:              qr.NodeS,
		VertexPoints:   qr.VertexPoints(),
		FacePoints:     qr.FacePoints(),
		InteriorPoints: qr.InteriorPoints(),
	}
}

func (qr *QuadReference) GetNodalModal() NodalModalMatrices {
	return NodalModalMatrices{V: qr.V, Vinv: qr.Vinv, M: qr.M, Minv: qr.Minv}
}

func (qr *QuadReference) GetReferenceOperators() ReferenceOperators {
	return ReferenceOperators{Dr: qr.Dr}
}
