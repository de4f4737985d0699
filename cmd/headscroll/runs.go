package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/headscroll/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tFRAMES\tDEAD ZONE\tSTEP\tOFFSET")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\t%.0f\t%.0fpx\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.DeadZone,
			run.Step,
			run.FinalOffset,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	records, err := st.LoadRecords(runID)
	if err != nil {
		return err
	}

	ys := make([]float64, 0, len(records))
	baselines := make([]float64, 0, len(records))
	offsets := make([]float64, 0, len(records))
	for _, r := range records {
		offsets = append(offsets, r.Offset)
		if r.Detected {
			ys = append(ys, r.Point.Y)
			baselines = append(baselines, r.Baseline)
		}
	}
	if len(ys) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("samples: %d\n\n", len(records))

	fmt.Println(asciigraph.PlotMany([][]float64{ys, baselines},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow),
		asciigraph.Caption("nose y / baseline"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(offsets,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("page offset (px)"),
	))

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	records, err := storage.New(dataDir).LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteRecordsCSV(os.Stdout, records)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	records, err := st.LoadRecords(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, records)
}
