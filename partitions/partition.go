package partitions

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-hclog"
)

// Config carries the rank running this process
type Config struct {
	Rank   int
	Logger hclog.Logger
}

// Partition is the set of global elements forming one subdomain. The
// local element id of Elements[i] is i.
type Partition struct {
	ID          int
	Elements    []int
	NumElements int
}

// Layout is the decomposition of a global quad mesh into subdomains
type Layout struct {
	Partitions    []Partition
	NumPartitions int
	TotalElements int

	// Element k belongs to partition EToP[k]
	EToP []int
	// PToR[p] is the rank owning partition p; nil means every partition is
	// local to rank 0
	PToR []int

	// local index of every global element inside its partition
	eToLocal []int
}

// NewLayout groups elements by their partition
func NewLayout(EToP []int, PToR []int) (*Layout, error) {
	numPartitions := 0
	for k, p := range EToP {
		if p < 0 {
			return nil, fmt.Errorf("element %d has no partition", k)
		}
		numPartitions = max(numPartitions, p+1)
	}
	if PToR != nil && len(PToR) != numPartitions {
		return nil, fmt.Errorf("rank table has %d entries for %d partitions",
			len(PToR), numPartitions)
	}

	l := &Layout{
		Partitions:    make([]Partition, numPartitions),
		NumPartitions: numPartitions,
		TotalElements: len(EToP),
		EToP:          EToP,
		PToR:          PToR,
		eToLocal:      make([]int, len(EToP)),
	}
	for i := range l.Partitions {
		l.Partitions[i].ID = i
	}
	for k, p := range EToP {
		part := &l.Partitions[p]
		l.eToLocal[k] = part.NumElements
		part.Elements = append(part.Elements, k)
		part.NumElements++
	}
	for _, p := range l.Partitions {
		if p.NumElements == 0 {
			return nil, fmt.Errorf("partition %d is empty", p.ID)
		}
	}
	return l, nil
}

// GetPartition returns the partition containing element k
func (l *Layout) GetPartition(elementID int) int {
	if elementID < 0 || elementID >= len(l.EToP) {
		return -1
	}
	return l.EToP[elementID]
}

// LocalElement returns the position of a global element in its partition
func (l *Layout) LocalElement(elementID int) int {
	return l.eToLocal[elementID]
}

// Rank returns the rank owning partition p
func (l *Layout) Rank(p int) int {
	if l.PToR == nil {
		return 0
	}
	return l.PToR[p]
}

// PartitionStatistics computes load balance metrics
func (l *Layout) PartitionStatistics() PartitionStats {
	stats := PartitionStats{
		NumPartitions: l.NumPartitions,
		MinElements:   math.MaxInt32,
		AvgElements:   float64(l.TotalElements) / float64(l.NumPartitions),
	}
	for _, p := range l.Partitions {
		stats.MinElements = min(stats.MinElements, p.NumElements)
		stats.MaxElements = max(stats.MaxElements, p.NumElements)
	}
	stats.Imbalance = float64(stats.MaxElements) / stats.AvgElements
	return stats
}

type PartitionStats struct {
	NumPartitions int
	MinElements   int
	MaxElements   int
	AvgElements   float64
	Imbalance     float64 // MaxElements / AvgElements
}

// PartitionStrategy assigns elements to partitions
type PartitionStrategy int

const (
	BlockPartition PartitionStrategy = iota // Consecutive elements
	RoundRobin                              // Distribute cyclically
)

// PartitionElements builds an element to partition table for K elements
func PartitionElements(K, numPartitions int, strategy PartitionStrategy) []int {
	numPartitions = max(1, min(numPartitions, K))
	eToP := make([]int, K)
	switch strategy {
	case RoundRobin:
		for i := range eToP {
			eToP[i] = i % numPartitions
		}
	default:
		for i := range eToP {
			eToP[i] = i * numPartitions / K
		}
	}
	return eToP
}
