// Command dataset_gen is a tiny helper utility to generate deterministic
// CSV datasets for bulk-loading ragedb (internal/peered's LoadNodesCSV and
// LoadRelationshipsCSV) outside of `go test`.
//
// It writes two files: a node CSV with a "key" column plus a synthetic
// "name:key" string property, and a relationship CSV with
// "start_key:<type>"/"end_key:<type>" columns wiring each node to a
// neighbor chosen from the requested distribution.
//
// Usage:
//
//	go run ./tools/dataset_gen -n 1000000 -dist=zipf -seed=42 \
//	    -type Person -rel-type KNOWS -nodes-out nodes.csv -rels-out rels.csv
//
// Flags:
//
//	-n          number of nodes to generate (default 1e6)
//	-dist       neighbor-selection distribution: "uniform" or "zipf" (default uniform)
//	-zipfs      Zipf s parameter (>1) (default 1.2)
//	-zipfv      Zipf v parameter (>=1) (default 1.0)
//	-seed       RNG seed (default current time)
//	-type       node type name embedded in the relationship header (default "Person")
//	-rel-type   relationship type name, informational only (default "KNOWS")
//	-nodes-out  node CSV output file (default stdout)
//	-rels-out   relationship CSV output file (required for relationship output)
//
// The program is embarrassingly simple but placed under version control so
// any contributor can regenerate the exact dataset used in a performance
// regression hunt.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"
)

func main() {
	var (
		n        = flag.Int("n", 1_000_000, "number of nodes to generate")
		dist     = flag.String("dist", "uniform", "neighbor distribution: uniform or zipf")
		zipfS    = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV    = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		seedVal  = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		nodeType = flag.String("type", "Person", "node type name embedded in the relationship header")
		nodesOut = flag.String("nodes-out", "", "node CSV output file (default stdout)")
		relsOut  = flag.String("rels-out", "", "relationship CSV output file (skipped if empty)")
	)
	flag.String("rel-type", "KNOWS", "relationship type name, informational only")
	flag.Parse()

	rnd := rand.New(rand.NewSource(*seedVal))

	nodesW, closeNodes, err := openOut(*nodesOut)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dataset_gen:", err)
		os.Exit(1)
	}
	defer closeNodes()

	if err := writeNodesCSV(nodesW, *n); err != nil {
		fmt.Fprintln(os.Stderr, "dataset_gen:", err)
		os.Exit(1)
	}

	if *relsOut == "" {
		return
	}
	relsW, closeRels, err := openOut(*relsOut)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dataset_gen:", err)
		os.Exit(1)
	}
	defer closeRels()

	var gen func() uint64
	switch *dist {
	case "uniform":
		gen = rnd.Uint64
	case "zipf":
		if *zipfS <= 1.0 || *zipfV < 1 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, uint64(*n-1))
		gen = z.Uint64
	default:
		fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
		os.Exit(1)
	}

	if err := writeRelationshipsCSV(relsW, *n, *nodeType, gen); err != nil {
		fmt.Fprintln(os.Stderr, "dataset_gen:", err)
		os.Exit(1)
	}
}

func openOut(path string) (*bufio.Writer, func(), error) {
	if path == "" {
		w := bufio.NewWriterSize(os.Stdout, 1<<20)
		return w, func() { w.Flush() }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := bufio.NewWriterSize(f, 1<<20)
	return w, func() { w.Flush(); f.Close() }, nil
}

func writeNodesCSV(w *bufio.Writer, n int) error {
	if _, err := fmt.Fprintln(w, "key,name:key"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		key := nodeKey(i)
		if _, err := fmt.Fprintf(w, "%s,%s\n", key, key); err != nil {
			return err
		}
	}
	return nil
}

func writeRelationshipsCSV(w *bufio.Writer, n int, nodeType string, gen func() uint64) error {
	if _, err := fmt.Fprintf(w, "start_key:%s,end_key:%s\n", nodeType, nodeType); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		neighbor := int(gen() % uint64(n))
		if neighbor == i {
			neighbor = (neighbor + 1) % n
		}
		if _, err := fmt.Fprintf(w, "%s,%s\n", nodeKey(i), nodeKey(neighbor)); err != nil {
			return err
		}
	}
	return nil
}

func nodeKey(i int) string {
	return "key-" + strconv.Itoa(i)
}
