package device

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/notargets/DGGlue/element"
	"github.com/notargets/DGGlue/glue"
	"github.com/notargets/gocca"
	"gonum.org/v1/gonum/mat"
)

const scalarPackKernel = `
@kernel void glueScalarPack(const int_t *EToEm,
                            const int_t *EToFm,
                            const int_t *EToHm,
                            const int_t *EToOm,
                            const int_t *EToEp,
                            const int_t *fmask,
                            const real_t *field,
                            real_t *glue,
                            real_t *send) {
  for (int k = 0; k < KGLUE; ++k; @outer) {
    for (int i = 0; i < NRP; ++i; @inner) {
      const int_t face = EToFm[k];
      const int_t h = EToHm[k];
      const real_t *elem = field + EToEm[k] * NPM;
      real_t v = REAL_ZERO;
      for (int j = 0; j < NFPM; ++j) {
        const real_t u = elem[fmask[face * NFPM + j]];
        if (h == 0) {
          v += INTERP0[i][j] * u;
        } else if (h == 1) {
          v += INTERP1[i][j] * u;
        } else {
          v += INTERP2[i][j] * u;
        }
      }
      glue[k * NRP + i] = v;
      const int n = EToOm[k] ? NRP - 1 - i : i;
      send[EToEp[k] * NRP + n] = v;
    }
  }
}
`

// ScalarPacker runs the scalar send pack of one glue subdomain on a
// device. The interpolation operators are compiled into the kernel.
type ScalarPacker struct {
	dev    *gocca.OCCADevice
	kernel *gocca.OCCAKernel

	K, Np       int // glue elements and nodes
	KMinus, NpM int
	index       []*gocca.OCCAMemory
	field       *gocca.OCCAMemory
	glue, send  *gocca.OCCAMemory
	fieldBytes  int64
	glueBytes   int64
	Source      string
}

// packSource writes the defines, the static operators and the kernel
func packSource(g *glue.Glue) string {
	var sb strings.Builder
	sb.WriteString("typedef double real_t;\n")
	sb.WriteString("typedef int int_t;\n")
	sb.WriteString("#define REAL_ZERO 0.0\n\n")
	sb.WriteString(fmt.Sprintf("#define KGLUE %d\n", g.K))
	sb.WriteString(fmt.Sprintf("#define NRP %d\n", g.Np))
	sb.WriteString(fmt.Sprintf("#define NPM %d\n", g.Minus.Np))
	sb.WriteString(fmt.Sprintf("#define NFPM %d\n\n", g.Minus.Nfp))
	for h := 0; h < glue.NumCases; h++ {
		var I mat.Matrix = g.Ops.Interpolation[h]
		if g.Ops.Interpolation[h] == nil {
			I = identity(g.Np)
		}
		sb.WriteString(element.FormatStaticMatrix(fmt.Sprintf("INTERP%d", h), I, element.FLOAT64))
	}
	sb.WriteString(scalarPackKernel)
	return sb.String()
}

func identity(n int) *mat.Dense {
	I := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, 1)
	}
	return I
}

func toInt32[T int | int8](in []T) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

// NewScalarPacker compiles the pack kernel for g and uploads its element
// tables
func NewScalarPacker(dev *gocca.OCCADevice, g *glue.Glue) (*ScalarPacker, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if g.K == 0 {
		return nil, fmt.Errorf("glue %q has no elements", g.Base().Name)
	}
	sp := &ScalarPacker{
		dev:    dev,
		K:      g.K,
		Np:     g.Np,
		KMinus: g.Minus.K,
		NpM:    g.Minus.Np,
		Source: packSource(g),
	}
	var err error
	if sp.kernel, err = buildKernel(dev, sp.Source, "glueScalarPack"); err != nil {
		return nil, err
	}

	var fmask []int
	for f := 0; f < element.QuadNfaces; f++ {
		fmask = append(fmask, g.Minus.Fmask[f]...)
	}
	for _, table := range [][]int32{
		toInt32(g.EToEm), toInt32(g.EToFm), toInt32(g.EToHm),
		toInt32(g.EToOm), toInt32(g.EToEp), toInt32(fmask),
	} {
		mem := dev.Malloc(int64(len(table)*4), unsafe.Pointer(&table[0]), nil)
		sp.index = append(sp.index, mem)
	}

	sp.fieldBytes = int64(sp.KMinus * sp.NpM * 8)
	sp.glueBytes = int64(sp.K * sp.Np * 8)
	sp.field = dev.Malloc(sp.fieldBytes, nil, nil)
	sp.glue = dev.Malloc(sp.glueBytes, nil, nil)
	sp.send = dev.Malloc(sp.glueBytes, nil, nil)
	return sp, nil
}

// Pack interpolates the minus volume field onto the glue grid, writing the
// glue field and its send buffer slice in the neighbor's order
func (sp *ScalarPacker) Pack(field, glueField, send []float64) error {
	if int64(len(field)*8) != sp.fieldBytes {
		return fmt.Errorf("%w: field has %d values, want %d",
			glue.ErrBufferSize, len(field), sp.KMinus*sp.NpM)
	}
	if int64(len(glueField)*8) != sp.glueBytes || int64(len(send)*8) != sp.glueBytes {
		return fmt.Errorf("%w: glue %d and send %d values, want %d",
			glue.ErrBufferSize, len(glueField), len(send), sp.K*sp.Np)
	}
	sp.field.CopyFrom(unsafe.Pointer(&field[0]), sp.fieldBytes)

	args := make([]interface{}, 0, len(sp.index)+3)
	for _, mem := range sp.index {
		args = append(args, mem)
	}
	args = append(args, sp.field, sp.glue, sp.send)
	if err := sp.kernel.RunWithArgs(args...); err != nil {
		return fmt.Errorf("kernel execution failed: %w", err)
	}
	sp.dev.Finish()

	sp.glue.CopyTo(unsafe.Pointer(&glueField[0]), sp.glueBytes)
	sp.send.CopyTo(unsafe.Pointer(&send[0]), sp.glueBytes)
	return nil
}

func (sp *ScalarPacker) Free() {
	if sp.kernel != nil {
		sp.kernel.Free()
	}
	for _, mem := range sp.index {
		mem.Free()
	}
	for _, mem := range []*gocca.OCCAMemory{sp.field, sp.glue, sp.send} {
		if mem != nil {
			mem.Free()
		}
	}
	sp.index = nil
}
