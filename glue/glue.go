// Package glue couples a quadrilateral subdomain to a neighboring one
// across a shared, possibly non-conforming, interface.
package glue

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/notargets/DGGlue/element"
	"github.com/notargets/DGGlue/facemap"
	"github.com/notargets/DGGlue/fields"
	"github.com/notargets/DGGlue/quad"
	"github.com/notargets/DGGlue/subdomain"
	"github.com/notargets/DGGlue/utils"
)

const Tag = "_subdomain_dgx_quad_glue"

var (
	ErrBufferSize   = errors.New("buffer size does not match comm info")
	ErrMissingField = errors.New("exchange field not registered")
	ErrBadCode      = errors.New("glue element code out of range")
)

type Config struct {
	ID   int
	Name string
	// Polynomial order of the plus side
	OrderP int
	// Ranks owning each side
	RankM, RankP int
	// Signed subdomain identifiers; the subdomain index is |id|-1
	IDM, IDP int
	Logger   hclog.Logger
}

// Glue is a one dimensional subdomain laid along the faces shared by the
// minus subdomain and one neighbor. Glue element k sits on face EToFm[k]
// of minus element EToEm[k] and is written to slot EToEp[k] of the send
// buffer.
type Glue struct {
	base subdomain.Base

	OrderM, OrderP int
	N, Np          int
	Nfp, Nfaces    int
	Ncorners       int
	K              int

	RankM, RankP int
	IDM, IDP     int
	SM, SP       int

	Minus *quad.Subdomain
	Ops   *Operators

	EToEp []int
	EToEm []int
	EToFm []int8
	EToHm []int8
	EToOm []int8

	logger hclog.Logger
}

// New sorts the face map entries of one interface and builds the glue
// grid over the minus side. ktok maps the local element ids of the
// entries to elements of minus; nil means identity.
func New(cfg Config, minus *quad.Subdomain, ktok []int, entries []facemap.Entry) (*Glue, error) {
	if minus == nil {
		return nil, fmt.Errorf("glue %q: no minus subdomain", cfg.Name)
	}
	ops, err := BuildOperators(minus.N, cfg.OrderP)
	if err != nil {
		return nil, fmt.Errorf("glue %q: %w", cfg.Name, err)
	}
	g := &Glue{
		base:     subdomain.NewBase(cfg.ID, cfg.Name),
		OrderM:   minus.N,
		OrderP:   cfg.OrderP,
		N:        ops.N,
		Np:       ops.Nrp,
		Nfp:      1,
		Nfaces:   2,
		Ncorners: 2,
		K:        len(entries),
		RankM:    cfg.RankM,
		RankP:    cfg.RankP,
		IDM:      cfg.IDM,
		IDP:      cfg.IDP,
		SM:       abs(cfg.IDM) - 1,
		SP:       abs(cfg.IDP) - 1,
		Minus:    minus,
		Ops:      ops,
		logger:   utils.OrNull(cfg.Logger).Named("glue"),
	}
	g.base.Tags.Add(Tag)

	m, err := facemap.Build(entries, g.SM, g.SP)
	if err != nil {
		return nil, fmt.Errorf("glue %q: %w", cfg.Name, err)
	}
	g.EToEp, g.EToFm, g.EToHm, g.EToOm = m.EToEp, m.EToFm, m.EToHm, m.EToOm
	g.EToEm = make([]int, g.K)
	for k, e := range m.EToEm {
		if ktok == nil {
			g.EToEm[k] = e
			continue
		}
		if e < 0 || e >= len(ktok) {
			return nil, fmt.Errorf("glue %q: %w: element %d outside ktok of length %d",
				cfg.Name, ErrBadCode, e, len(ktok))
		}
		g.EToEm[k] = ktok[e]
	}
	if err = g.Validate(); err != nil {
		return nil, fmt.Errorf("glue %q: %w", cfg.Name, err)
	}

	if err = g.buildGrid(); err != nil {
		return nil, fmt.Errorf("glue %q: %w", cfg.Name, err)
	}
	g.logger.Debug("glue created", "name", cfg.Name, "K", g.K, "N", g.N,
		"id_m", g.IDM, "id_p", g.IDP)
	return g, nil
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// buildGrid traces the minus side coordinates onto the glue nodes
func (g *Glue) buildGrid() error {
	names := [3]string{quad.GridX, quad.GridY, quad.GridZ}
	for _, name := range names {
		if res := g.FieldAdd(name); res != fields.Added {
			return fmt.Errorf("adding %s: %v", name, res)
		}
	}
	trace := make([]float64, g.Minus.Nfp)
	for _, name := range names {
		src := g.Minus.Base().Fields.Get(name)
		dst := g.base.Fields.Get(name)
		for k := 0; k < g.K; k++ {
			g.minusTrace(k, src, trace)
			g.Ops.Apply(int(g.EToHm[k]), trace, dst[k*g.Np:(k+1)*g.Np])
		}
	}
	return nil
}

// minusTrace gathers the face values of a minus volume field under glue
// element k
func (g *Glue) minusTrace(k int, src, trace []float64) {
	fmask := g.Minus.Fmask[g.EToFm[k]]
	elem := src[g.EToEm[k]*g.Minus.Np:]
	for j := range trace {
		trace[j] = elem[fmask[j]]
	}
}

// Validate checks the glue element tables
func (g *Glue) Validate() error {
	var result error
	seen := make([]bool, g.K)
	for k := 0; k < g.K; k++ {
		if p := g.EToEp[k]; p < 0 || p >= g.K {
			result = multierror.Append(result,
				fmt.Errorf("element %d: send slot %d outside [0,%d)", k, p, g.K))
		} else if seen[p] {
			result = multierror.Append(result,
				fmt.Errorf("element %d: send slot %d used twice", k, p))
		} else {
			seen[p] = true
		}
		if err := g.checkElement(k); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

func (g *Glue) checkElement(k int) error {
	switch {
	case g.EToEm[k] < 0 || g.EToEm[k] >= g.Minus.K:
		return fmt.Errorf("%w: element %d minus element %d of %d",
			ErrBadCode, k, g.EToEm[k], g.Minus.K)
	case g.EToFm[k] < 0 || int(g.EToFm[k]) >= element.QuadNfaces:
		return fmt.Errorf("%w: element %d face %d", ErrBadCode, k, g.EToFm[k])
	case g.EToHm[k] < 0 || int(g.EToHm[k]) >= NumCases:
		return fmt.Errorf("%w: element %d hanging case %d", ErrBadCode, k, g.EToHm[k])
	case g.EToOm[k] < 0 || int(g.EToOm[k]) >= element.QuadNo:
		return fmt.Errorf("%w: element %d orientation %d", ErrBadCode, k, g.EToOm[k])
	}
	return nil
}

func (g *Glue) Base() *subdomain.Base { return &g.base }
func (g *Glue) Kind() subdomain.Kind  { return subdomain.KindGlue }

// FieldAdd registers a glue field of Np*K values
func (g *Glue) FieldAdd(name string) fields.AddResult {
	return g.base.Fields.AddNaN(name, g.Np*g.K)
}

// FieldMinusAdd registers a field filled from the minus side on send
func (g *Glue) FieldMinusAdd(name string) fields.AddResult {
	return g.base.FieldsM.AddNaN(name, g.Np*g.K)
}

// FieldPlusAdd registers a field filled from the receive buffer
func (g *Glue) FieldPlusAdd(name string) fields.AddResult {
	return g.base.FieldsP.AddNaN(name, g.Np*g.K)
}

func (g *Glue) FieldInit(name string, time float64, fn subdomain.InitFunc, arg any) error {
	field := g.base.Fields.Get(name)
	if field == nil {
		return fmt.Errorf("init: %w: %q in subdomain %q", fields.ErrNotFound, name, g.base.Name)
	}
	f := g.base.Fields
	fn(g.Np*g.K, name, time, f.Get(quad.GridX), f.Get(quad.GridY), f.Get(quad.GridZ), g, arg, field)
	return nil
}

func (g *Glue) Free() {
	g.base.Free()
	g.EToEp, g.EToEm = nil, nil
	g.EToFm, g.EToHm, g.EToOm = nil, nil, nil
}

// As returns the glue subdomain behind s, if that is what it is
func As(s subdomain.Subdomain) (*Glue, bool) {
	if s.Kind() != subdomain.KindGlue {
		return nil, false
	}
	g, ok := s.(*Glue)
	return g, ok
}
