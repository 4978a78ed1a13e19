package main

import (
	"fmt"
	"time"

	"github.com/baserah/baserah/internal/inference"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var selftestInputs = []string{
	"مرحباً",
	"من أنت؟",
	"ما هو بصيرة؟",
	"من صنعك؟",
	"كيف تعمل؟",
	"ما هي النظريات التي تعتمد عليها؟",
	"شكراً لك",
}

var selftestParallel int

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the canned conversation and print statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		poolConfig := *cfg.Pool
		if selftestParallel > 0 {
			poolConfig.Workers = selftestParallel
			poolConfig.MaxConcurrent = selftestParallel
		}
		pool := inference.NewPool(a.Engine, &poolConfig)
		defer func() {
			if err := pool.Shutdown(5 * time.Second); err != nil {
				logger.Warn("pool shutdown failed", zap.Error(err))
			}
		}()

		printBanner()
		failed := 0
		for i, res := range pool.ProcessBatch(ctx, selftestInputs) {
			fmt.Printf("%d. %s\n", i+1, promptStyle.Render(res.Input))
			if res.Error != nil {
				failed++
				fmt.Println(errorStyle.Render(fmt.Sprintf("   error: %v", res.Error)))
				continue
			}
			fmt.Println(replyStyle.Render(res.Response.Text))
			fmt.Println(meta("   %s (%.2f) | %s | %.2f | %s",
				res.Response.Intent, res.Response.IntentConfidence,
				res.Response.Method, res.Response.Confidence, res.Latency.Round(time.Microsecond)))
		}

		printStats(a.Engine.Stats(ctx))

		m := pool.GetMetrics()
		fmt.Println(meta("pool: %d requests | %d ok | %d failed | avg %s",
			m.TotalRequests, m.CompletedOK, m.CompletedError, m.AverageLatency))

		if failed > 0 {
			return fmt.Errorf("%d of %d inputs failed", failed, len(selftestInputs))
		}
		return nil
	},
}

func init() {
	selftestCmd.Flags().IntVar(&selftestParallel, "parallel", 0, "number of workers, 0 uses the pool configuration")
}
