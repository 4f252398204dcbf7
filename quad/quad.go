package quad

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/notargets/DGGlue/element"
	"github.com/notargets/DGGlue/element/library/gonudg"
	"github.com/notargets/DGGlue/fields"
	"github.com/notargets/DGGlue/subdomain"
	"github.com/notargets/DGGlue/utils"
	"gonum.org/v1/gonum/mat"
)

const Tag = "_subdomain_dgx_quad"

var ErrBadMesh = errors.New("invalid quadrilateral mesh")

// Grid field names
const (
	GridX   = "_grid_x"
	GridY   = "_grid_y"
	GridZ   = "_grid_z"
	GridJrx = "_grid_Jrx"
	GridJry = "_grid_Jry"
	GridJsx = "_grid_Jsx"
	GridJsy = "_grid_Jsy"
	GridJ   = "_grid_J"
	GridJI  = "_grid_JI"
	GridNx  = "_grid_nx"
	GridNy  = "_grid_ny"
	GridSJ  = "_grid_sJ"
)

type Config struct {
	ID     int
	Name   string
	N      int
	Logger hclog.Logger
}

// Mesh is the vertex and connectivity input of one subdomain. VZ may be nil.
type Mesh struct {
	VX, VY, VZ []float64
	element.ElementConnectivity
}

// Subdomain is a collection of K quadrilateral elements of one order
type Subdomain struct {
	base subdomain.Base
	*element.QuadReference

	K        int
	Nfaces   int
	Ncorners int
	Nh, No   int

	// Volume node of every face point, and the matching neighbor node.
	// Indexed k*Nfaces*Nfp + f*Nfp + n.
	VmapM, VmapP []int

	logger hclog.Logger
}

// New builds the grid, metric terms and face geometry of a subdomain
func New(cfg Config, mesh Mesh) (*Subdomain, error) {
	if err := validate(mesh); err != nil {
		return nil, err
	}
	ref, err := element.NewQuadReference(cfg.N)
	if err != nil {
		return nil, fmt.Errorf("subdomain %q: %w", cfg.Name, err)
	}

	s := &Subdomain{
		base:          subdomain.NewBase(cfg.ID, cfg.Name),
		QuadReference: ref,
		K:             len(mesh.EToV),
		Nfaces:        element.QuadNfaces,
		Ncorners:      element.QuadNcorners,
		Nh:            element.QuadNh,
		No:            element.QuadNo,
		logger:        utils.OrNull(cfg.Logger).Named("quad"),
	}
	s.base.Tags.Add(Tag)

	K, Np := s.K, s.Np
	for _, name := range []string{GridX, GridY, GridZ, GridJrx, GridJry,
		GridJsx, GridJsy, GridJ, GridJI} {
		if res := s.FieldAdd(name); res != fields.Added {
			return nil, fmt.Errorf("adding %s to %q: %v", name, cfg.Name, res)
		}
	}
	for _, name := range []string{GridNx, GridNy, GridSJ} {
		if res := s.FieldFaceAdd(name); res != fields.Added {
			return nil, fmt.Errorf("adding %s to %q: %v", name, cfg.Name, res)
		}
	}

	f := s.base.Fields
	x, y, z := f.Get(GridX), f.Get(GridY), f.Get(GridZ)
	for i := range z {
		z[i] = 0
	}
	blendGrid(ref, mesh.VX, mesh.VY, mesh.VZ, mesh.EToV, x, y, z)

	g := geo2D(ref, K, x, y)
	copy(f.Get(GridJrx), g.Jrx)
	copy(f.Get(GridJry), g.Jry)
	copy(f.Get(GridJsx), g.Jsx)
	copy(f.Get(GridJsy), g.Jsy)
	copy(f.Get(GridJ), g.J)
	JI := f.Get(GridJI)
	for n := 0; n < K*Np; n++ {
		JI[n] = 1 / g.J[n]
	}
	ff := s.base.FieldsFace
	copy(ff.Get(GridNx), g.Nx)
	copy(ff.Get(GridNy), g.Ny)
	copy(ff.Get(GridSJ), g.SJ)

	s.VmapM, s.VmapP = buildMaps(K, Np, s.Nfp, s.Nfaces, mesh.EToE, mesh.EToF, s.Fmask)

	s.logger.Debug("subdomain created", "name", cfg.Name, "id", cfg.ID,
		"K", K, "N", cfg.N, "Np", Np)
	return s, nil
}

func validate(mesh Mesh) error {
	K := len(mesh.EToV)
	Nv := len(mesh.VX)
	if len(mesh.VY) != Nv || (mesh.VZ != nil && len(mesh.VZ) != Nv) {
		return fmt.Errorf("%w: vertex arrays differ in length", ErrBadMesh)
	}
	if len(mesh.EToE) != K || len(mesh.EToF) != K {
		return fmt.Errorf("%w: K=%d but EToE has %d rows and EToF %d",
			ErrBadMesh, K, len(mesh.EToE), len(mesh.EToF))
	}
	for k := 0; k < K; k++ {
		for c := 0; c < element.QuadNcorners; c++ {
			if v := mesh.EToV[k][c]; v < 0 || v >= Nv {
				return fmt.Errorf("%w: element %d corner %d is vertex %d of %d",
					ErrBadMesh, k, c, v, Nv)
			}
		}
		for f := 0; f < element.QuadNfaces; f++ {
			if e := mesh.EToE[k][f]; e < 0 || e >= K {
				return fmt.Errorf("%w: element %d face %d neighbor %d out of range",
					ErrBadMesh, k, f, e)
			}
			if c := mesh.EToF[k][f]; c < 0 || c >= element.QuadNfaces*element.QuadNo {
				return fmt.Errorf("%w: element %d face %d has face code %d",
					ErrBadMesh, k, f, c)
			}
		}
	}
	return nil
}

// buildMaps fills vmapM with the volume index of every face point and
// vmapP with the matching node of the neighbor across the face
func buildMaps(K, Np, Nfp, Nfaces int, EToE [][4]int, EToF [][4]int8,
	fmask [element.QuadNfaces][]int) (vmapM, vmapP []int) {
	vmapM = make([]int, K*Nfaces*Nfp)
	vmapP = make([]int, K*Nfaces*Nfp)
	sk := 0
	for k1 := 0; k1 < K; k1++ {
		for f1 := 0; f1 < Nfaces; f1++ {
			k2 := EToE[k1][f1]
			f2, o := element.NeighborFace(EToF[k1][f1])
			for n := 0; n < Nfp; n++ {
				vmapM[sk+n] = Np*k1 + fmask[f1][n]
				if o != 0 {
					vmapP[sk+n] = Np*k2 + fmask[f2][Nfp-1-n]
				} else {
					vmapP[sk+n] = Np*k2 + fmask[f2][n]
				}
			}
			sk += Nfp
		}
	}
	return
}

func (s *Subdomain) Base() *subdomain.Base { return &s.base }
func (s *Subdomain) Kind() subdomain.Kind  { return subdomain.KindQuad }

// FieldAdd registers a volume field of Np*K values
func (s *Subdomain) FieldAdd(name string) fields.AddResult {
	return s.base.Fields.AddNaN(name, s.Np*s.K)
}

// FieldFaceAdd registers a face field of Nfaces*Nfp*K values
func (s *Subdomain) FieldFaceAdd(name string) fields.AddResult {
	return s.base.FieldsFace.AddNaN(name, s.Nfaces*s.Nfp*s.K)
}

// FieldInit evaluates fn over the volume grid into the named field
func (s *Subdomain) FieldInit(name string, time float64, fn subdomain.InitFunc, arg any) error {
	field := s.base.Fields.Get(name)
	if field == nil {
		return fmt.Errorf("init: %w: %q in subdomain %q", fields.ErrNotFound, name, s.base.Name)
	}
	f := s.base.Fields
	fn(s.Np*s.K, name, time, f.Get(GridX), f.Get(GridY), f.Get(GridZ), s, arg, field)
	return nil
}

// Transform returns [K × Np] views of the metric fields
func (s *Subdomain) Transform() element.GeometricTransform {
	view := func(name string) mat.Matrix {
		return mat.NewDense(s.K, s.Np, s.base.Fields.Get(name))
	}
	return element.GeometricTransform{
		Jrx: view(GridJrx),
		Jry: view(GridJry),
		Jsx: view(GridJsx),
		Jsy: view(GridJsy),
		J:   view(GridJ),
		JI:  view(GridJI),
	}
}

// Surface returns [K × Nfaces*Nfp] views of the face geometry
func (s *Subdomain) Surface() element.SurfaceGeometry {
	view := func(name string) mat.Matrix {
		return mat.NewDense(s.K, s.Nfaces*s.Nfp, s.base.FieldsFace.Get(name))
	}
	return element.SurfaceGeometry{
		Nx: view(GridNx),
		Ny: view(GridNy),
		SJ: view(GridSJ),
	}
}

// FaceIndex is the position of face point n of face f of element k in a
// face field
func (s *Subdomain) FaceIndex(k, f, n int) int {
	return n + s.Nfp*(f+s.Nfaces*k)
}

func (s *Subdomain) Free() {
	s.base.Free()
	s.VmapM, s.VmapP = nil, nil
}

// Resample interpolates a volume field to Nout+1 equispaced points per
// direction, returning K*(Nout+1)^2 values in the same tensor layout
func (s *Subdomain) Resample(Nout int, field []float64) ([]float64, error) {
	Nd := Nout + 1
	if Nd <= 1 {
		return nil, fmt.Errorf("resample needs at least two points per direction, have %d", Nd)
	}
	if len(field) != s.K*s.Np {
		return nil, fmt.Errorf("resample: field has %d values, want %d", len(field), s.K*s.Np)
	}
	interp, err := gonudg.Interpolation1D(s.N, gonudg.EquispacedNodes(Nout), s.V)
	if err != nil {
		return nil, err
	}

	Ns := s.Nrp
	out := make([]float64, s.K*Nd*Nd)
	tmp := make([]float64, Nd*Ns)
	for k := 0; k < s.K; k++ {
		src := field[k*s.Np : (k+1)*s.Np]
		dst := out[k*Nd*Nd : (k+1)*Nd*Nd]
		// r direction first, then s
		for l := 0; l < Ns; l++ {
			for i := 0; i < Nd; i++ {
				var sum float64
				for m := 0; m < Ns; m++ {
					sum += interp.At(i, m) * src[l*Ns+m]
				}
				tmp[l*Nd+i] = sum
			}
		}
		for j := 0; j < Nd; j++ {
			for i := 0; i < Nd; i++ {
				var sum float64
				for l := 0; l < Ns; l++ {
					sum += interp.At(j, l) * tmp[l*Nd+i]
				}
				dst[j*Nd+i] = sum
			}
		}
	}
	return out, nil
}

// As returns the quadrilateral subdomain behind s, if that is what it is
func As(s subdomain.Subdomain) (*Subdomain, bool) {
	if s.Kind() != subdomain.KindQuad {
		return nil, false
	}
	q, ok := s.(*Subdomain)
	return q, ok
}
