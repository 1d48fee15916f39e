// Command labelgen writes a labeled synthetic training dataset as CSV.
// Labels are assigned by the clinical rule engine, so a model trained on the
// output learns the same decision surface the service documents.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/medlink/dosage-service/internal/dataset"
	"github.com/medlink/dosage-service/internal/dosage"
)

func main() {
	var (
		n    = flag.Int("n", 50000, "number of rows to generate")
		seed = flag.Int64("seed", 42, "random seed")
		out  = flag.String("o", "dosage_dataset.csv", "output file, - for stdout")
	)
	flag.Parse()

	if *n <= 0 {
		fmt.Fprintln(os.Stderr, "row count must be positive")
		os.Exit(1)
	}

	gen := dataset.NewGenerator(*seed, dosage.DefaultProfiles())
	rows, err := gen.Generate(*n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate dataset: %v\n", err)
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := dataset.WriteCSV(w, rows); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	if *out != "-" {
		fmt.Printf("Wrote %d rows to %s\n", len(rows), *out)
	}
}
