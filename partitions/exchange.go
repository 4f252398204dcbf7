package partitions

import (
	"context"
	"fmt"

	"github.com/notargets/DGGlue/glue"
	"github.com/notargets/DGGlue/subdomain"
	"github.com/notargets/DGGlue/utils"
	"golang.org/x/sync/errgroup"
)

// Exchange runs one full exchange between glue subdomains that all live in
// this process: every send buffer is packed concurrently, handed to the
// glue whose sort keys mirror its own, then every receive buffer is
// unpacked concurrently.
func Exchange(ctx context.Context, cfg Config, glues []*glue.Glue, args *subdomain.CommArgs) error {
	logger := utils.OrNull(cfg.Logger).Named("exchange")

	infos := make([]subdomain.CommInfo, len(glues))
	send := make([][]float64, len(glues))
	recv := make([][]float64, len(glues))
	// keyed by (own id, neighbor id)
	bySort := make(map[[2]int]int, len(glues))
	for i, g := range glues {
		info := g.CommInfo(args)
		if info.Rank != cfg.Rank || g.RankM != cfg.Rank {
			return fmt.Errorf("glue %q links rank %d to rank %d; only rank %d is local",
				g.Base().Name, g.RankM, info.Rank, cfg.Rank)
		}
		key := [2]int{info.Sort[1], info.Sort[0]}
		if j, dup := bySort[key]; dup {
			return fmt.Errorf("glues %q and %q share sort keys %v",
				glues[j].Base().Name, g.Base().Name, info.Sort)
		}
		bySort[key] = i
		infos[i] = info
		send[i] = make([]float64, info.SendSize/subdomain.RealSize)
		recv[i] = make([]float64, info.RecvSize/subdomain.RealSize)
	}

	eg, ectx := errgroup.WithContext(ctx)
	for i, g := range glues {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			return g.PutSendBuffer(send[i], args)
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	for i, info := range infos {
		j, ok := bySort[[2]int{info.Sort[0], info.Sort[1]}]
		if !ok {
			return fmt.Errorf("glue %q: no glue with id %d facing id %d",
				glues[i].Base().Name, info.Sort[0], info.Sort[1])
		}
		if len(send[j]) != len(recv[i]) {
			return fmt.Errorf("glue %q receives %d values but %q sends %d",
				glues[i].Base().Name, len(recv[i]), glues[j].Base().Name, len(send[j]))
		}
		copy(recv[i], send[j])
		logger.Trace("moved buffer", "from", glues[j].Base().Name,
			"to", glues[i].Base().Name, "bytes", info.RecvSize)
	}

	eg, ectx = errgroup.WithContext(ctx)
	for i, g := range glues {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			return g.GetRecvBuffer(recv[i], args)
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("unpack: %w", err)
	}
	return nil
}
