package scan

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/floedb/floe"
)

// ReadAll plans the scan and reads every partition, fanning out across at
// most parallelism workers. produce may be called concurrently from
// different workers; rows within one partition arrive in order. The first
// failure cancels the remaining workers.
func (s *BatchScan) ReadAll(ctx context.Context, parallelism int, produce func(floe.Row) error) error {
	partitions, err := s.PlanPartitions(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, partition := range partitions {
		partition := partition
		g.Go(func() error {
			reader, err := NewTaskReader(partition)
			if err != nil {
				return errors.Wrap(err, "couldn't open task reader")
			}

			for {
				if err := ctx.Err(); err != nil {
					reader.Close()
					return err
				}
				ok, err := reader.Next()
				if err != nil {
					reader.Close()
					return err
				}
				if !ok {
					return reader.Close()
				}
				if err := produce(reader.Row()); err != nil {
					reader.Close()
					return err
				}
			}
		})
	}
	return g.Wait()
}
