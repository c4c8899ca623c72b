package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartcharge/chargest/core/estimate"
	"github.com/smartcharge/chargest/core/model"
	"github.com/smartcharge/chargest/infra/logger"
)

var (
	estimateMode   string
	estimateAmount float64
	estimateStart  string
	queueFile      string
	paramsFile     string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Compute a one-shot estimate from snapshot files",
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateMode, "mode", "fast", "charging mode (fast|slow)")
	estimateCmd.Flags().Float64Var(&estimateAmount, "amount", 50, "requested amount in kWh")
	estimateCmd.Flags().StringVar(&estimateStart, "start", "", "start time (RFC3339, defaults to now)")
	estimateCmd.Flags().StringVar(&queueFile, "queue", "", "queue status snapshot JSON file")
	estimateCmd.Flags().StringVar(&paramsFile, "params", "", "system parameters JSON file")
	_ = estimateCmd.MarkFlagRequired("params")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	var params model.SystemParameters
	if err := readJSONFile(paramsFile, &params); err != nil {
		return fmt.Errorf("read params: %w", err)
	}
	var queue *model.QueueSnapshot
	if queueFile != "" {
		queue = &model.QueueSnapshot{}
		if err := readJSONFile(queueFile, queue); err != nil {
			return fmt.Errorf("read queue: %w", err)
		}
	}

	req := model.Request{Mode: model.Mode(estimateMode), RequestedKWh: estimateAmount}
	if estimateStart != "" {
		start, err := time.Parse(time.RFC3339, estimateStart)
		if err != nil {
			return fmt.Errorf("parse start time: %w", err)
		}
		req.StartTime = start
	}
	if err := req.Validate(); err != nil {
		return err
	}

	engine := estimate.NewEngine(logger.New("estimate-command"))
	est, err := engine.Estimate(req, &params, queue)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(est)
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
