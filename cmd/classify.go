package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/candidate"
)

var (
	classifyR1, classifyR2, classifyR3 string
	classifyJSON                       bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <status>",
	Short: "Classify a tracker status into its dashboard category",
	Long: `Applies the configured classifier rules to one status and its round
columns, which is handy when checking how a new status value will be counted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c := candidate.NewClassifier(cfg.Classifier)
		cat, round := c.Classify(args[0], classifyR1, classifyR2, classifyR3)

		if classifyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"category":        cat,
				"reject_round":    round,
				"label":           cat.Label(round, true),
				"quality_of_hire": candidate.QualityOfHire(cat),
			})
		}

		fmt.Printf("%s\n", colorCategory(cat.Label(round, true)))
		fmt.Printf("  Quality of hire: %s\n", candidate.QualityOfHire(cat))
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyR1, "r1", "", "round 1 status")
	classifyCmd.Flags().StringVar(&classifyR2, "r2", "", "round 2 status")
	classifyCmd.Flags().StringVar(&classifyR3, "r3", "", "round 3 status")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(classifyCmd)
}
