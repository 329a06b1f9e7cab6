package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sudhirj/rangeproxy/internal/probe"
)

func newProbeCmd() *cobra.Command {
	var workers int
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "probe <url> [url...]",
		Short: "Check whether one or more origins are range-aware",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				res := probe.One(cmd.Context(), args[0], timeout)
				cmd.Println(res.String())
				if res.Err != nil {
					return res.Err
				}
				return nil
			}

			results := probe.Many(cmd.Context(), args, workers, timeout)
			for _, res := range results {
				cmd.Println(res.String())
			}
			return nil
		},
	}

	c.Flags().IntVar(&workers, "workers", 8, "maximum concurrent probes in flight")
	c.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-batch probe timeout")
	return c
}
