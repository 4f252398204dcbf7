package subdomain

import (
	"fmt"

	"github.com/notargets/DGGlue/fields"
)

// Kind tags the concrete subdomain variant
type Kind uint8

const (
	KindQuad Kind = iota
	KindGlue
)

func (k Kind) String() string {
	switch k {
	case KindQuad:
		return "quad"
	case KindGlue:
		return "glue"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Base holds the state shared by every subdomain variant
type Base struct {
	ID   int
	Name string
	Tags fields.Tags

	// Volume fields, Np*K values each
	Fields *fields.Store
	// Face fields, Nfaces*Nfp*K values each
	FieldsFace *fields.Store
	// Minus and plus side fields of a glue subdomain
	FieldsM *fields.Store
	FieldsP *fields.Store
}

func NewBase(id int, name string) Base {
	return Base{
		ID:         id,
		Name:       name,
		Tags:       fields.Tags{},
		Fields:     fields.NewStore(),
		FieldsFace: fields.NewStore(),
		FieldsM:    fields.NewStore(),
		FieldsP:    fields.NewStore(),
	}
}

// Free drops every field array
func (b *Base) Free() {
	b.Fields.Clear()
	b.FieldsFace.Clear()
	b.FieldsM.Clear()
	b.FieldsP.Clear()
}

// InitFunc fills the npoints values of field given the node coordinates
type InitFunc func(npoints int, name string, time float64, x, y, z []float64,
	s Subdomain, arg any, field []float64)

// Subdomain is the capability set shared by every variant
type Subdomain interface {
	Base() *Base
	Kind() Kind
	FieldAdd(name string) fields.AddResult
	FieldInit(name string, time float64, fn InitFunc, arg any) error
	Free()
}

// Exchanger is implemented by subdomains that couple across a face
type Exchanger interface {
	Subdomain
	CommInfo(args *CommArgs) CommInfo
	PutSendBuffer(buffer []float64, args *CommArgs) error
	GetRecvBuffer(buffer []float64, args *CommArgs) error
}

// AsExchanger dispatches on the kind tag
func AsExchanger(s Subdomain) (Exchanger, bool) {
	if s.Kind() != KindGlue {
		return nil, false
	}
	ex, ok := s.(Exchanger)
	return ex, ok
}
