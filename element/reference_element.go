package element

import (
	"gonum.org/v1/gonum/mat"
)

// Dimensionality represents the spatial dimension of an element
type Dimensionality uint8

const (
	D0 Dimensionality = iota // 0D elements (points)
	D1                       // 1D elements (lines, edges)
	D2                       // 2D elements (quadrilaterals)
)

// ElementProperties contains metadata describing an element type
type ElementProperties struct {
	Name       string          // Full descriptive name (e.g., "Gauss-Lobatto Quadrilateral Order 3")
	ShortName  string          // Abbreviated name (e.g., "Quad3")
	Type       ElementGeometry // Element shape
	Order      int             // Polynomial order
	Np         int             // Total number of nodes/points in element
	NFp        int             // Number of nodes per face
	NVp        int             // Number of vertex nodes (equals number of vertices)
	NIp        int             // Number of strictly interior nodes
	NFaces     int             // Number of faces in each element
	Dimensions Dimensionality  // Spatial dimension
}

// ReferenceGeometry defines the layout of nodes in reference space [-1,1]^d
type ReferenceGeometry struct {
	// Node coordinates in reference space, length Np each
	R, S []float64

	// Node classification by topological entity
	VertexPoints   []int   // Indices of nodes located at vertices
	FacePoints     [][]int // [face_num][point_indices] - nodes on each face
	InteriorPoints []int   // Indices of nodes strictly inside the element
}

// NodalModalMatrices contains transformation matrices between nodal and
// modal representations. For tensor product elements these are the 1D
// factors, [Nrp × Nrp].
type NodalModalMatrices struct {
	V    mat.Matrix // Vandermonde matrix: modal to nodal transformation
	Vinv mat.Matrix // Inverse Vandermonde: nodal to modal transformation
	M    mat.Matrix // Mass matrix in nodal space
	Minv mat.Matrix // Inverse mass matrix
}

// ReferenceOperators contains differential operators in reference space
type ReferenceOperators struct {
	// 1D differentiation matrix, applied along r or s by tensor product
	Dr mat.Matrix // [Nrp × Nrp]
}

// ReferenceElement defines element properties and operators in reference space
type ReferenceElement interface {
	// Element metadata and properties
	GetProperties() ElementProperties

	// Node distribution in reference space
	GetReferenceGeometry() ReferenceGeometry

	// Transformation between nodal and modal bases
	GetNodalModal() NodalModalMatrices

	// Differential operators in reference space
	GetReferenceOperators() ReferenceOperators
}
