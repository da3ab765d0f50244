// This tool writes a mono 16-bit sine wave, handy as input for wavedit.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"

	"github.com/cwbudde/wavedit"
)

var errInvalidLength = errors.New("length must produce at least one sample")

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	sampleRate := flagSet.Int("rate", 48000, "sample rate in hertz")
	amplitude := flagSet.Float64("amplitude", 1, "peak amplitude between 0 and 1")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	numSamples := int(float64(*sampleRate) * *length)
	if numSamples <= 0 {
		return fmt.Errorf("%w: %g sec at %d hz", errInvalidLength, *length, *sampleRate)
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	data := make([]float32, numSamples)
	for i := range data {
		data[i] = float32(*amplitude * math.Sin(float64(i)/float64(*sampleRate)**frequency*2*math.Pi))
	}

	encoded, err := wavedit.EncodeFull(&audio.Float32Buffer{
		Data:   data,
		Format: &audio.Format{NumChannels: 1, SampleRate: *sampleRate},
	})
	if err != nil {
		return err
	}

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}
	defer file.Close()

	if _, err := encoded.WriteTo(file); err != nil {
		return err
	}

	return file.Close()
}
