package element

import "gonum.org/v1/gonum/mat"

// GeometricTransform maps between reference space [-1,1]^2 and physical space.
// Every matrix is a [K × Np] view over a contiguous field array: row k
// holds the Np nodal values of element k, so element k starts at k*Np.
type GeometricTransform struct {
	// Scaled inverse metric terms, J times ∂ξ/∂x
	Jrx, Jry mat.Matrix // J*∂r/∂x = ∂y/∂s, J*∂r/∂y = -∂x/∂s
	Jsx, Jsy mat.Matrix // J*∂s/∂x = -∂y/∂r, J*∂s/∂y = ∂x/∂r

	// Jacobian determinant |∂(x,y)/∂(r,s)| and its reciprocal
	J, JI mat.Matrix
}

// SurfaceGeometry contains geometric information for element faces
// Used for numerical flux computations and boundary conditions
type SurfaceGeometry struct {
	// Unit outward normal vectors at face points
	// Dimension: [K × NFaces*NFp] where columns are ordered as:
	//   [face0_point0, face0_point1, ..., face0_pointNfp-1,
	//    face1_point0, face1_point1, ..., face1_pointNfp-1, ...]
	Nx, Ny mat.Matrix

	// Surface Jacobian (physical face length / reference face length)
	// Dimension: [K × NFaces*NFp]
	SJ mat.Matrix
}

// ElementConnectivity defines quadrilateral mesh topology
type ElementConnectivity struct {
	// Corner vertices a,b,c,d of element k: a=(-1,-1) b=(1,-1) c=(-1,1) d=(1,1)
	EToV [][4]int
	// Element k, face f connects to element EToE[k][f]
	EToE [][4]int
	// Element k, face f connects to face EToF[k][f]%4 of the neighbor, with
	// orientation EToF[k][f]/4 (1 means the neighbor traverses the face in
	// reverse)
	EToF [][4]int8
}

// NeighborFace splits an EToF code into face and orientation
func NeighborFace(code int8) (face, orientation int8) {
	return code % 4, code / 4
}
