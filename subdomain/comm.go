package subdomain

import "unsafe"

// RealSize is the size in bytes of one exchanged value
const RealSize = int(unsafe.Sizeof(float64(0)))

// Channel suffixes of the normal/tangential decomposition of a vector or
// traction
var ChannelSuffixes = [4]string{"n", "p1", "p2", "p3"}

// CommArgs selects the fields moved by one exchange. Without it every
// minus field is sent and every plus field received.
type CommArgs struct {
	ScalarsM []string
	ScalarsP []string

	// Vector prefixes; the decomposed channels are stored under
	// prefix+ChannelSuffixes[c]
	VectorsM          []string
	VectorsP          []string
	VectorComponentsM [][3]string

	// Symmetric tensor prefixes; components ordered S11 S12 S13 S22 S23 S33
	TensorsM          []string
	TensorsP          []string
	TensorComponentsM [][6]string
}

// SendCount is the number of exchanged quantities on the minus side
func (a *CommArgs) SendCount() int {
	return len(a.ScalarsM) + 4*len(a.VectorsM) + 4*len(a.TensorsM)
}

// RecvCount is the number of exchanged quantities on the plus side
func (a *CommArgs) RecvCount() int {
	return len(a.ScalarsP) + 4*len(a.VectorsP) + 4*len(a.TensorsP)
}

// CommInfo carries what a transport needs to move one glue buffer
type CommInfo struct {
	Rank int
	// Sort[0] is the neighbor id, Sort[1] this side's id
	Sort     [2]int
	SendSize int // bytes
	RecvSize int // bytes
}
