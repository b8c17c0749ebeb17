package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hupe1980/crosscat"
	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/testutil"
)

func main() {
	seed := uint64(4711)
	rows := 2000
	steps := 20

	rng := testutil.NewRNG(int64(seed))
	ds, truth := rng.PlantedDataset(rows, testutil.Plant{
		Views:      []int{6, 4, 2},
		Groups:     4,
		Separation: 8,
		Noise:      1,
	})

	dir, err := os.MkdirTemp("", "crosscat-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	store := blobstore.NewLocalStore(dir)

	fmt.Println("--- Bootstrap ---")
	fmt.Println("Rows:", ds.Rows())
	fmt.Println("Features:", ds.Features())
	fmt.Println("Planted views:", len(truth.RowGroups))

	start := time.Now()

	eng, err := crosscat.FromDataset(ds).
		Seed(seed).
		Parallel(true).
		Checkpoints(store).
		Build()
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	fmt.Printf("Seconds: %.2f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Inference ---")

	ctx := context.Background()

	start = time.Now()

	stats, err := eng.Run(ctx, steps)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Steps:", stats.Steps)
	fmt.Println("Feature moves:", stats.Moved)
	fmt.Println("Kind births:", stats.Born)
	fmt.Println("Kind deaths:", stats.Died)
	fmt.Printf("Seconds: %.2f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Structure ---")

	fmt.Println("Occupied kinds:", eng.Stats().Kinds)
	fmt.Println("Mapping:", eng.Model().Mapping())
	acc := testutil.CoassignmentAccuracy(truth.FeatureViews, eng.Model().Mapping())
	fmt.Printf("Co-assignment accuracy: %.2f\n\n", acc)

	fmt.Println("--- Checkpoint ---")

	start = time.Now()

	name, err := eng.Checkpoint(ctx)
	if err != nil {
		log.Fatal(err)
	}

	restored, err := crosscat.NewFromCheckpoint(ctx, store)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Committed:", name)
	fmt.Println("Restored step:", restored.StepCount())
	fmt.Printf("Seconds: %.2f\n\n", time.Since(start).Seconds())

	if err := restored.Close(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- Sample ---")

	start = time.Now()

	drawn, err := eng.Sample().Rows(5).Seed(seed).Collect()
	if err != nil {
		log.Fatal(err)
	}

	printRows(drawn)

	fmt.Printf("Seconds: %.8f\n", time.Since(start).Seconds())
}

func printRows(rows []model.Row) {
	for _, r := range rows {
		fmt.Printf("ID: %d, Values: %.2f\n", r.ID, r.Values)
	}
}
