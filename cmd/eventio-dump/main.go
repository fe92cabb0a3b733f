package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	eventio "github.com/sixy6e/go-eventio"
)

// dumpOne drives a single EventIO file's assembler to completion,
// writing a JSON summary alongside it: the run header, telescope
// descriptions, and every array event assembled along the way.
func dumpOne(path, outdirUri string, skipCalibration bool) error {
	dir, file := filepath.Split(path)
	if outdirUri == "" {
		outdirUri = dir
	}

	log.Println("Processing EventIO file:", path)

	var warnings []eventio.Warning
	asm, err := eventio.Open(path,
		eventio.WithSkipCalibration(skipCalibration),
		eventio.WithWarnFunc(func(w eventio.Warning) { warnings = append(warnings, w) }),
	)
	if err != nil {
		return err
	}

	var events []*eventio.ArrayEvent
	for {
		ev, err := asm.NextArrayEvent()
		if err != nil {
			return err
		}
		if ev == nil {
			break
		}
		events = append(events, ev)
	}

	summary := map[string]any{
		"header":                 asm.Header,
		"n_telescopes":           asm.NTelescopes,
		"telescope_descriptions": asm.TelescopeDescriptions,
		"mc_run_headers":         asm.MCRunHeaders,
		"history":                asm.History,
		"warnings":               warnings,
		"array_events":           events,
	}

	outUri := filepath.Join(outdirUri, file+"-summary.json")
	log.Println("Writing summary:", outUri)
	_, err = eventio.WriteJSONFile(outUri, summary)
	return err
}

// dumpTrawl submits every *.eventio (and any *.gz) file under uri to
// a fixed worker pool sized at 2 * n_CPUs, the same pool shape the
// upstream's convert_gsf_list uses to spread work across a directory of
// files, cancellable via Ctrl+C.
func dumpTrawl(uri, outdirUri string, skipCalibration bool) error {
	var items []string
	err := filepath.WalkDir(uri, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".eventio" || ext == ".gz" {
			items = append(items, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Println("Number of files to process:", len(items))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, name := range items {
		itemPath := name
		pool.Submit(func() {
			if err := dumpOne(itemPath, outdirUri, skipCalibration); err != nil {
				log.Println("error processing", itemPath, ":", err)
			}
		})
	}

	return nil
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name: "dump",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Path to an EventIO file.",
					},
					&cli.StringFlag{
						Name:  "outdir",
						Usage: "Output directory for the JSON summary.",
					},
					&cli.BoolFlag{
						Name:  "skip-calibration",
						Usage: "Skip assembling calibration events.",
					},
				},
				Action: func(cCtx *cli.Context) error {
					return dumpOne(cCtx.String("path"), cCtx.String("outdir"), cCtx.Bool("skip-calibration"))
				},
			},
			{
				Name: "dump-dir",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "uri",
						Usage: "Directory containing EventIO files.",
					},
					&cli.StringFlag{
						Name:  "outdir",
						Usage: "Output directory for the JSON summaries.",
					},
					&cli.BoolFlag{
						Name:  "skip-calibration",
						Usage: "Skip assembling calibration events.",
					},
				},
				Action: func(cCtx *cli.Context) error {
					return dumpTrawl(cCtx.String("uri"), cCtx.String("outdir"), cCtx.Bool("skip-calibration"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
