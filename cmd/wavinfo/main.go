// This tool prints the format and duration of the passed wav file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/wavedit"
)

const missingPathMessage = "You must pass the path of the file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	dec := wavedit.NewDecoder(file)
	dec.ReadInfo()

	if err := dec.Err(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Format: %d\n", dec.WavAudioFormat)
	fmt.Fprintf(out, "Channels: %d\n", dec.NumChans)
	fmt.Fprintf(out, "SampleRate: %d\n", dec.SampleRate)
	fmt.Fprintf(out, "BitDepth: %d\n", dec.BitDepth)

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		if errors.Is(err, wavedit.ErrNotMono) {
			fmt.Fprintln(out, "Editable: no (not mono)")
			return nil
		}

		return err
	}

	info := wavedit.FormatDuration(float64(len(buf.Data)) / float64(buf.Format.SampleRate))

	fmt.Fprintf(out, "Samples: %d\n", len(buf.Data))
	fmt.Fprintf(out, "Duration: %s (%.3f sec)\n", info.Formatted, info.Seconds)
	fmt.Fprintln(out, "Editable: yes")

	return nil
}
