package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/headscroll/internal/config"
	"github.com/san-kum/headscroll/internal/indicator"
	"github.com/san-kum/headscroll/internal/metrics"
	"github.com/san-kum/headscroll/internal/session"
	"github.com/san-kum/headscroll/internal/source"
	"github.com/san-kum/headscroll/internal/storage"
	"github.com/san-kum/headscroll/internal/viewport"
	"github.com/san-kum/headscroll/internal/viz"
)

type built struct {
	sess      *session.Session
	src       source.Source
	view      *viewport.Viewport
	indicator *indicator.State
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func buildSource(ctx context.Context, cfg *config.Config, log *logrus.Entry) (source.Source, error) {
	switch cfg.Source {
	case "synthetic":
		return source.NewSynthetic(cfg.SyntheticConfig())
	case "remote":
		return source.DialRemote(ctx, cfg.RemoteConfig(), log)
	case "replay":
		if replayRun == "" {
			return nil, fmt.Errorf("replay source needs --run")
		}
		records, err := storage.New(dataDir).LoadRecords(replayRun)
		if err != nil {
			return nil, err
		}
		return source.NewReplay(session.Frames(records)), nil
	}
	return nil, fmt.Errorf("unknown source: %s", cfg.Source)
}

func buildSession(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*built, error) {
	ctrl, err := cfg.NewController()
	if err != nil {
		return nil, err
	}

	src, err := buildSource(ctx, cfg, log)
	if err != nil {
		log.WithError(err).WithField("source", cfg.Source).Error("frame source unavailable")
		return nil, err
	}

	view := cfg.NewViewport()
	ind := indicator.New()
	sess := session.New(ctrl, src, view, ind, cfg.SessionConfig())
	sess.SetLogger(log.WithField("source", cfg.Source))
	for _, m := range metrics.Default() {
		sess.AddMetric(m)
	}

	return &built{sess: sess, src: src, view: view, indicator: ind}, nil
}

func saveRun(cfg *config.Config, result *session.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunMetadata{
		Source:        cfg.Source,
		DeadZone:      cfg.DeadZone,
		Step:          cfg.Step,
		LandmarkIndex: cfg.LandmarkIndex,
	}, result)
}

func printResult(w io.Writer, result *session.Result) {
	fmt.Fprintf(w, "frames: %d (skipped %d)\n", result.Frames, result.Skipped)
	fmt.Fprintf(w, "calibrations: %d\n", result.Calibrations)
	fmt.Fprintf(w, "page offset: %.0fpx\n", result.FinalOffset)
	fmt.Fprintln(w, "\nmetrics:")

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, result.Metrics[name])
	}
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := buildSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.src.Close()

	fmt.Printf("running %s session...\n", cfg.Source)
	start := time.Now()

	result, err := b.sess.Run(ctx)
	if err != nil && ctx.Err() == nil {
		log.WithError(err).Error("session failed")
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	if !noSave {
		runID, err := saveRun(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	printResult(os.Stdout, result)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := buildSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.src.Close()

	title := fmt.Sprintf("headscroll · %s", cfg.Source)
	m := viz.NewModel(ctx, b.sess, b.view, b.indicator, cfg.FPS, title)

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}

	fm, ok := final.(viz.Model)
	if !ok {
		return nil
	}
	if fm.Err() != nil {
		log.WithError(fm.Err()).Error("session failed")
	}

	records := fm.Records()
	if noSave || len(records) == 0 {
		return fm.Err()
	}
	result := b.sess.Stats()
	result.Records = records
	runID, err := saveRun(cfg, &result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return fm.Err()
}
