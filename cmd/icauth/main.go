// Command icauth authenticates an IC package photograph and prints a verdict.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"ic-authenticator/internal/datasheet"
	"ic-authenticator/internal/ocr"
	"ic-authenticator/internal/partid"
	"ic-authenticator/internal/pipeline"
)

func main() {
	imagePath := flag.String("image", "", "Path to chip photo (PNG, JPEG, or TIFF)")
	libPath := flag.String("library", "", "Optional prefix-library JSON override")
	recordPath := flag.String("datasheet", "", "Optional datasheet record JSON (external finder output)")
	timeout := flag.Duration("timeout", 30*time.Second, "Datasheet lookup timeout")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: icauth -image <path> [-library lib.json] [-datasheet record.json]")
		os.Exit(1)
	}

	engine, err := ocr.NewEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start OCR engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	auth := pipeline.New(engine, loadFinder(*recordPath))

	if *libPath != "" {
		lib, err := partid.LoadLibrary(*libPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load prefix library: %v\n", err)
			os.Exit(1)
		}
		auth.Library = lib
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := auth.AuthenticateFile(ctx, *imagePath)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrImageLoad):
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		case errors.Is(err, pipeline.ErrNoPartNumber):
			fmt.Fprintf(os.Stderr, "Error: no part number detected\n")
			if res.Transcript != "" {
				fmt.Fprintf(os.Stderr, "Transcript: %s\n", res.Transcript)
			}
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	printResult(res)
}

// loadFinder returns a finder backed by a pre-produced record file, or the
// not-found finder when no record was supplied. The datasheet discovery
// subsystem itself lives outside this tool.
func loadFinder(path string) datasheet.Finder {
	if path == "" {
		return datasheet.NotFoundFinder{}
	}
	return &fileFinder{path: path}
}

// fileFinder serves a datasheet record from a JSON file.
type fileFinder struct {
	path string
}

func (f *fileFinder) Find(context.Context, string, string) (datasheet.Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return datasheet.Record{}, fmt.Errorf("cannot read datasheet record: %w", err)
	}
	var rec datasheet.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return datasheet.Record{}, fmt.Errorf("cannot parse datasheet record: %w", err)
	}
	return rec, nil
}

func printResult(res *pipeline.Result) {
	fmt.Printf("\nPart number:   %s\n", res.PartNumber)
	fmt.Printf("Manufacturer:  %s\n", res.Manufacturer)
	fmt.Printf("Orientation:   %d degrees\n", res.OrientationAngle)
	fmt.Printf("Best variant:  %s\n", res.WinningVariant)
	fmt.Printf("Transcript:    %s\n", res.Transcript)
	fmt.Printf("Datasheet:     found=%v\n", res.DatasheetFound)
	fmt.Printf("Marking:       valid=%v\n", res.MarkingValid)
	fmt.Printf("Suspicion:     %d\n", res.Suspicion.Score)
	for _, f := range res.Suspicion.Flags {
		fmt.Printf("  - %s\n", f)
	}
	fmt.Printf("Confidence:    %d/100\n", res.Confidence)
	fmt.Printf("Verdict:       %s\n", res.Verdict)
}
