package glue

import (
	"fmt"

	"github.com/notargets/DGGlue/quad"
	"github.com/notargets/DGGlue/subdomain"
)

// CommInfo reports the neighbor rank, the sort keys and the byte sizes of
// the buffers exchanged with it. Without args every minus field is sent and
// every plus field received.
func (g *Glue) CommInfo(args *subdomain.CommArgs) subdomain.CommInfo {
	sendNum := g.base.FieldsM.Len()
	recvNum := g.base.FieldsP.Len()
	if args != nil {
		sendNum = args.SendCount()
		recvNum = args.RecvCount()
	}
	info := subdomain.CommInfo{
		Rank:     g.RankP,
		Sort:     [2]int{g.IDP, g.IDM},
		SendSize: sendNum * g.K * g.Np * subdomain.RealSize,
		RecvSize: recvNum * g.K * g.Np * subdomain.RealSize,
	}
	g.logger.Debug("comm info", "rank", info.Rank, "ms", g.IDM, "ns", g.IDP,
		"send_sz", info.SendSize, "recv_sz", info.RecvSize)
	return info
}

// packer walks the send buffer one exchanged quantity at a time
type packer struct {
	g      *Glue
	buffer []float64
	field  int
	trace  [4][]float64
}

func (g *Glue) newPacker(buffer []float64) *packer {
	p := &packer{g: g, buffer: buffer}
	for c := range p.trace {
		p.trace[c] = make([]float64, g.Minus.Nfp)
	}
	return p
}

// slot returns the block of quantity field+c in the buffer
func (p *packer) slot(c int) []float64 {
	n := p.g.Np * p.g.K
	off := (p.field + c) * n
	return p.buffer[off : off+n]
}

// emit interpolates the first len(glue) traces of element k onto the glue
// grid and copies them to the send slots, reversed when the neighbor runs
// the other way
func (p *packer) emit(k int, glue [][]float64) {
	g := p.g
	Np := g.Np
	h := int(g.EToHm[k])
	s := g.EToEp[k] * Np
	for c, field := range glue {
		elem := field[k*Np : (k+1)*Np]
		g.Ops.Apply(h, p.trace[c], elem)
		send := p.slot(c)[s : s+Np]
		if g.EToOm[k] != 0 {
			for n := 0; n < Np; n++ {
				send[n] = elem[Np-1-n]
			}
		} else {
			copy(send, elem)
		}
	}
}

func (p *packer) scalar(name string, glue []float64) error {
	g := p.g
	src := g.Minus.Base().Fields.Get(name)
	if src == nil || glue == nil {
		return fmt.Errorf("%w: scalar %q", ErrMissingField, name)
	}
	for k := 0; k < g.K; k++ {
		if err := g.checkElement(k); err != nil {
			return err
		}
		g.minusTrace(k, src, p.trace[0])
		p.emit(k, [][]float64{glue})
	}
	p.field++
	return nil
}

func (p *packer) channels(prefix string) ([][]float64, error) {
	glue := make([][]float64, len(subdomain.ChannelSuffixes))
	for c, suffix := range subdomain.ChannelSuffixes {
		if glue[c] = p.g.base.FieldsM.Get(prefix + suffix); glue[c] == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, prefix+suffix)
		}
	}
	return glue, nil
}

func (p *packer) minusFields(names []string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i, name := range names {
		if out[i] = p.g.Minus.Base().Fields.Get(name); out[i] == nil {
			return nil, fmt.Errorf("%w: component %q", ErrMissingField, name)
		}
	}
	return out, nil
}

// vector splits v into its normal part vn and the residual v - vn n at
// every minus face node
func (p *packer) vector(prefix string, comps [3]string) error {
	g := p.g
	glue, err := p.channels(prefix)
	if err != nil {
		return err
	}
	v, err := p.minusFields(comps[:])
	if err != nil {
		return err
	}
	nx := g.Minus.Base().FieldsFace.Get(quad.GridNx)
	ny := g.Minus.Base().FieldsFace.Get(quad.GridNy)
	for k := 0; k < g.K; k++ {
		if err = g.checkElement(k); err != nil {
			return err
		}
		em, face := g.EToEm[k], int(g.EToFm[k])
		fmask := g.Minus.Fmask[face]
		for j, fm := range fmask {
			f := g.Minus.FaceIndex(em, face, j)
			vi := em*g.Minus.Np + fm
			vn := nx[f]*v[0][vi] + ny[f]*v[1][vi]
			p.trace[0][j] = vn
			p.trace[1][j] = v[0][vi] - vn*nx[f]
			p.trace[2][j] = v[1][vi] - vn*ny[f]
			p.trace[3][j] = v[2][vi]
		}
		p.emit(k, glue)
	}
	p.field += 4
	return nil
}

// tensor splits the traction S n of a symmetric tensor into its normal
// part and the residual, with components ordered S11 S12 S13 S22 S23 S33
func (p *packer) tensor(prefix string, comps [6]string) error {
	g := p.g
	glue, err := p.channels(prefix)
	if err != nil {
		return err
	}
	S, err := p.minusFields(comps[:])
	if err != nil {
		return err
	}
	S11, S12, S13, S22, S23 := S[0], S[1], S[2], S[3], S[4]
	nx := g.Minus.Base().FieldsFace.Get(quad.GridNx)
	ny := g.Minus.Base().FieldsFace.Get(quad.GridNy)
	for k := 0; k < g.K; k++ {
		if err = g.checkElement(k); err != nil {
			return err
		}
		em, face := g.EToEm[k], int(g.EToFm[k])
		fmask := g.Minus.Fmask[face]
		for j, fm := range fmask {
			f := g.Minus.FaceIndex(em, face, j)
			vi := em*g.Minus.Np + fm
			n1, n2 := nx[f], ny[f]
			Tp1 := S11[vi]*n1 + S12[vi]*n2
			Tp2 := S12[vi]*n1 + S22[vi]*n2
			Tp3 := S13[vi]*n1 + S23[vi]*n2
			Tn := n1*Tp1 + n2*Tp2
			p.trace[0][j] = Tn
			p.trace[1][j] = Tp1 - n1*Tn
			p.trace[2][j] = Tp2 - n2*Tn
			p.trace[3][j] = Tp3
		}
		p.emit(k, glue)
	}
	p.field += 4
	return nil
}

// PutSendBuffer fills the minus glue fields from the minus subdomain and
// writes them to buffer in the neighbor's element order
func (g *Glue) PutSendBuffer(buffer []float64, args *subdomain.CommArgs) error {
	info := g.CommInfo(args)
	if len(buffer)*subdomain.RealSize != info.SendSize {
		return fmt.Errorf("%w: send buffer holds %d bytes, want %d",
			ErrBufferSize, len(buffer)*subdomain.RealSize, info.SendSize)
	}
	p := g.newPacker(buffer)

	if args == nil {
		return g.base.FieldsM.Range("", p.scalar)
	}
	for _, name := range args.ScalarsM {
		if err := p.scalar(name, g.base.FieldsM.Get(name)); err != nil {
			return err
		}
	}
	if len(args.VectorComponentsM) < len(args.VectorsM) {
		return fmt.Errorf("%w: %d vectors but %d component triples",
			ErrMissingField, len(args.VectorsM), len(args.VectorComponentsM))
	}
	for v, prefix := range args.VectorsM {
		if err := p.vector(prefix, args.VectorComponentsM[v]); err != nil {
			return err
		}
	}
	if len(args.TensorComponentsM) < len(args.TensorsM) {
		return fmt.Errorf("%w: %d tensors but %d component sets",
			ErrMissingField, len(args.TensorsM), len(args.TensorComponentsM))
	}
	for t, prefix := range args.TensorsM {
		if err := p.tensor(prefix, args.TensorComponentsM[t]); err != nil {
			return err
		}
	}
	return nil
}

// GetRecvBuffer copies buffer into the plus glue fields. Received data is
// already in this side's element order.
func (g *Glue) GetRecvBuffer(buffer []float64, args *subdomain.CommArgs) error {
	info := g.CommInfo(args)
	if len(buffer)*subdomain.RealSize != info.RecvSize {
		return fmt.Errorf("%w: receive buffer holds %d bytes, want %d",
			ErrBufferSize, len(buffer)*subdomain.RealSize, info.RecvSize)
	}
	n := g.K * g.Np
	field := 0
	unpack := func(name string, dst []float64) error {
		if dst == nil {
			return fmt.Errorf("%w: plus %q", ErrMissingField, name)
		}
		copy(dst, buffer[field*n:(field+1)*n])
		field++
		return nil
	}

	if args == nil {
		return g.base.FieldsP.Range("", unpack)
	}
	fp := g.base.FieldsP
	for _, name := range args.ScalarsP {
		if err := unpack(name, fp.Get(name)); err != nil {
			return err
		}
	}
	for _, prefixes := range [][]string{args.VectorsP, args.TensorsP} {
		for _, prefix := range prefixes {
			for _, suffix := range subdomain.ChannelSuffixes {
				if err := unpack(prefix+suffix, fp.Get(prefix+suffix)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
