package main

import (
	"fmt"

	"github.com/baserah/baserah/internal/equation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var walkSteps int

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Randomly perturb the response-shaping coefficients",
	Long: `Walk applies bounded random perturbations to the coefficients of
Σ α/(1+e^(−k·x)) + β·x and prints the score before and after each step.
The walk explores, it does not optimize.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eq, err := equation.New(equation.DefaultCoefficients(), cfg.Equation)
		if err != nil {
			return err
		}

		xs := []float64{-2, -1, -0.5, 0, 0.5, 1, 2}
		target := equation.Evaluate(equation.DefaultCoefficients(), xs)
		for i := range target {
			target[i] += 0.1 * xs[i]
		}

		fmt.Println(headerStyle.Render("Coefficient walk"))
		for _, snap := range eq.Walk(xs, target, walkSteps) {
			fmt.Printf("step %3d  strength %.3f  score %.4f → %.4f\n",
				snap.Step, snap.Strength, snap.ScoreBefore, snap.ScoreAfter)
		}

		c := eq.Coefficients()
		fmt.Println(meta("alpha %v", rounded(c.Alpha)))
		fmt.Println(meta("k     %v", rounded(c.K)))
		fmt.Println(meta("beta  %v", rounded(c.Beta)))
		return nil
	},
}

func rounded(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprintf("%.3f", v)
	}
	return out
}

func init() {
	walkCmd.Flags().IntVar(&walkSteps, "steps", 10, "number of perturbation steps")
	walkCmd.Flags().Int64("seed", 0, "random seed, 0 seeds from the clock")
	viper.BindPFlag("equation.seed", walkCmd.Flags().Lookup("seed"))
}
