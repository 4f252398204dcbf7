package element

type ElementGeometry uint8

const (
	Line ElementGeometry = iota
	Quad
)

func (g ElementGeometry) String() string {
	switch g {
	case Line:
		return "Line"
	case Quad:
		return "Quad"
	}
	return "Unknown"
}
