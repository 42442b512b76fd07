package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nickandperla.net/superopt"
)

var (
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List archived optimization runs",
		Args:  cobra.NoArgs,
		RunE:  listHistory,
	}
)

func init() {
	historyCmd.Flags().StringVar(&optArchive, "archive", "", "SQLite file runs were recorded in")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
}

func listHistory(cmd *cobra.Command, args []string) error {
	config, err := loadToolConfig()
	if err != nil {
		return err
	}
	if optArchive == "" && config.Archive.Name == "" {
		return errors.New("no archive given, use --archive or the [archive] config section")
	}

	archive, err := superopt.NewArchive(archiveConfig(config))
	if err != nil {
		return err
	}
	defer archive.Close()

	runs, err := archive.Recent(historyLimit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "When", "Strategy", "Target", "Input", "Output", "Evaluated", "Elapsed", "Cancelled"})
	for _, run := range runs {
		table.Append([]string{
			strconv.FormatUint(uint64(run.ID), 10),
			run.CreatedAt.Format(time.DateTime),
			run.Strategy,
			run.Target,
			strconv.Itoa(run.InputLength),
			strconv.Itoa(run.ResultLength),
			strconv.FormatInt(run.Evaluated, 10),
			(time.Duration(run.ElapsedMS) * time.Millisecond).String(),
			strconv.FormatBool(run.Cancelled),
		})
	}
	table.Render()
	return nil
}
