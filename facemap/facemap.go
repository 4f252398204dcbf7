// Package facemap orders the face correspondences of a glue interface so
// that both sides derive complementary element orderings independently.
package facemap

import (
	"cmp"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrTie      = errors.New("face map entries are not distinct")
	ErrMismatch = errors.New("face map entry belongs to another interface")
)

// Entry is one local face instance facing a neighboring subdomain. The
// neighbor identity is (NP, NS, NK, NF, NH), the local identity
// (S, K, F, H). GI and I are scratch positions filled by Sort.
type Entry struct {
	NP int  // neighbor rank
	NS int  // neighbor subdomain
	NK int  // neighbor element
	NF int8 // neighbor face
	NH int8 // neighbor hanging case

	S int  // local subdomain
	K int  // local element
	F int8 // local face
	H int8 // local hanging case
	O int8 // orientation relative to the neighbor

	GI int // input position
	I  int // position in send order
}

func (e Entry) String() string {
	return fmt.Sprintf("{S:%d K:%d F:%d H:%d O:%d -> P:%d S:%d K:%d F:%d H:%d}",
		e.S, e.K, e.F, e.H, e.O, e.NP, e.NS, e.NK, e.NF, e.NH)
}

func sendKey(a, b Entry) int {
	return cmpChain(
		cmp.Compare(a.NP, b.NP),
		cmp.Compare(a.NS, b.NS),
		cmp.Compare(a.NK, b.NK),
		cmp.Compare(a.NF, b.NF),
		cmp.Compare(a.NH, b.NH))
}

func recvKey(a, b Entry) int {
	return cmpChain(
		cmp.Compare(a.S, b.S),
		cmp.Compare(a.K, b.K),
		cmp.Compare(a.F, b.F),
		cmp.Compare(a.H, b.H))
}

// SendCompare orders by neighbor identity, then local identity
func SendCompare(a, b Entry) int {
	if c := sendKey(a, b); c != 0 {
		return c
	}
	return cmpChain(recvKey(a, b), cmp.Compare(a.O, b.O))
}

// RecvCompare orders by local identity, then neighbor identity
func RecvCompare(a, b Entry) int {
	if c := recvKey(a, b); c != 0 {
		return c
	}
	return cmpChain(sendKey(a, b), cmp.Compare(a.O, b.O))
}

func cmpChain(c ...int) int {
	for _, v := range c {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Sort puts entries in receive order, with I holding each entry's slot in
// send order. Two entries sharing a neighbor identity or a local identity
// are rejected.
func Sort(entries []Entry) error {
	for i := range entries {
		entries[i].GI = i
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return SendCompare(entries[i], entries[j]) < 0
	})
	for i := range entries {
		if i > 0 && sendKey(entries[i-1], entries[i]) == 0 {
			return fmt.Errorf("%w: %v and %v share a neighbor face",
				ErrTie, entries[i-1], entries[i])
		}
		entries[i].I = i
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return RecvCompare(entries[i], entries[j]) < 0
	})
	for i := 1; i < len(entries); i++ {
		if recvKey(entries[i-1], entries[i]) == 0 {
			return fmt.Errorf("%w: %v and %v share a local face",
				ErrTie, entries[i-1], entries[i])
		}
	}
	return nil
}

// Map is the element correspondence of one glue interface, one slot per
// glue element in receive order
type Map struct {
	EToEp []int  // send buffer slot
	EToEm []int  // local volume element
	EToFm []int8 // local face
	EToHm []int8 // local hanging case
	EToOm []int8 // orientation
}

func (m *Map) Len() int { return len(m.EToEp) }

// Build sorts entries and extracts the correspondence between subdomain
// sMinus and its neighbor sPlus
func Build(entries []Entry, sMinus, sPlus int) (*Map, error) {
	for _, e := range entries {
		if e.S != sMinus || e.NS != sPlus {
			return nil, fmt.Errorf("%w: %v on interface %d->%d",
				ErrMismatch, e, sMinus, sPlus)
		}
	}
	if err := Sort(entries); err != nil {
		return nil, err
	}
	K := len(entries)
	m := &Map{
		EToEp: make([]int, K),
		EToEm: make([]int, K),
		EToFm: make([]int8, K),
		EToHm: make([]int8, K),
		EToOm: make([]int8, K),
	}
	for k, e := range entries {
		m.EToEp[k] = e.I
		m.EToEm[k] = e.K
		m.EToFm[k] = e.F
		m.EToHm[k] = e.H
		m.EToOm[k] = e.O
	}
	return m, nil
}
