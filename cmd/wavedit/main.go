// This tool applies interval edits to a mono wav file, either from flags or
// from a TOML/YAML edit script, and writes the result as wav and optionally
// as aiff.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"

	"github.com/cwbudde/wavedit"
)

var errMissingInput = errors.New("missing input file, set -in or input in the script")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wavedit", flag.ContinueOnError)

	input := flagSet.String("in", "", "wav file to edit")
	output := flagSet.String("out", "", "where to write the edited wav (default <in>-edited.wav)")
	aiffPath := flagSet.String("aiff", "", "also export the result as 16-bit aiff")
	scriptPath := flagSet.String("script", "", "TOML or YAML edit script")
	op := flagSet.String("op", "", "edit to apply: delete, beep, fade-in, fade-out, volume or undo")
	start := flagSet.Float64("start", 0, "selection start in seconds")
	end := flagSet.Float64("end", 0, "selection end in seconds")
	level := flagSet.Int("level", 0, "volume level between -5 and 5")
	undoDepth := flagSet.Int("undo-depth", wavedit.DefaultUndoDepth, "number of edits that can be undone")
	verbose := flagSet.Bool("v", false, "log session internals")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	sc := &script{}
	if *scriptPath != "" {
		sc, err = loadScript(*scriptPath)
		if err != nil {
			return err
		}
	}

	// flags win over the script
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			sc.Input = *input
		case "out":
			sc.Output = *output
		case "aiff":
			sc.AIFF = *aiffPath
		case "undo-depth":
			sc.UndoDepth = undoDepth
		}
	})

	if *op != "" {
		sc.Edits = append(sc.Edits, step{Op: *op, Start: *start, End: *end, Level: *level})
	}

	if sc.Input == "" {
		return errMissingInput
	}

	if sc.Output == "" {
		sc.Output = strings.TrimSuffix(sc.Input, filepath.Ext(sc.Input)) + "-edited.wav"
	}

	opts := []wavedit.Option{
		wavedit.WithRefresher(wavedit.RefreshFunc(func(ev wavedit.Event) {
			if ev.Err != nil {
				log.Printf("refresh after %s failed: %v", ev.Kind, ev.Err)
				return
			}

			log.Printf("%s done, duration %s", ev.Kind, wavedit.FormatDuration(ev.Duration).Formatted)
		})),
	}

	if sc.UndoDepth != nil {
		opts = append(opts, wavedit.WithUndoDepth(*sc.UndoDepth))
	}

	if *verbose {
		opts = append(opts, wavedit.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	session, err := openSession(sc.Input, opts...)
	if err != nil {
		return err
	}
	defer session.Close()

	for i, st := range sc.Edits {
		if err := applyStep(session, st); err != nil {
			return fmt.Errorf("edit %d (%s): %w", i+1, st.Op, err)
		}
	}

	exp, err := session.Export()
	if err != nil {
		return err
	}

	if err := writeWAV(sc.Output, exp.WAV); err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s (%d samples, %s)\n", sc.Output, len(exp.Buffer.Data),
		wavedit.FormatDuration(exp.WAV.Duration()).Formatted)

	if sc.AIFF != "" {
		if err := writeAIFF(sc.AIFF, exp.Buffer); err != nil {
			return err
		}

		fmt.Fprintf(out, "wrote %s\n", sc.AIFF)
	}

	return nil
}

func openSession(path string, opts ...wavedit.Option) (*wavedit.Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer file.Close()

	return wavedit.Open(file, opts...)
}

// applyStep runs one edit and the deferred work it scheduled.
func applyStep(session *wavedit.Session, st step) error {
	kind, err := wavedit.ParseEditKind(st.Op)
	if err != nil {
		return err
	}

	if kind == wavedit.KindUndo {
		_, err := session.Undo()
		if errors.Is(err, wavedit.ErrNothingToUndo) {
			log.Printf("nothing to undo, skipping")
			return nil
		}

		if err != nil {
			return err
		}
	} else {
		res, err := session.Apply(wavedit.Edit{Kind: kind, Volume: st.Level}, []float64{st.Start, st.End})
		if err != nil {
			return err
		}

		log.Printf("%s samples [%d, %d)", kind, res.Range.Start, res.Range.End)
	}

	session.Tick()

	return nil
}

func writeWAV(path string, data wavedit.WAV) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer file.Close()

	if _, err := data.WriteTo(file); err != nil {
		return err
	}

	return file.Close()
}

func writeAIFF(path string, buf *audio.Float32Buffer) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer file.Close()

	encoder := aiff.NewEncoder(file, buf.Format.SampleRate, 16, 1)

	intBuf := &audio.IntBuffer{
		Format:         buf.Format,
		SourceBitDepth: 16,
		Data:           make([]int, len(buf.Data)),
	}
	for i, v := range buf.Data {
		intBuf.Data[i] = int(wavedit.Quantize16(v))
	}

	if err := encoder.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write aiff samples: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize aiff: %w", err)
	}

	return file.Close()
}
