package estflow

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

func writeSequence(w *bufio.Writer, bases string) {
	w.WriteString(bases)
	w.WriteByte('\n')
}

// WriteConsensus writes one ">contig N" record per contig. The variants of
// a branched contig follow its header on separate lines.
func WriteConsensus(w io.Writer, res *Result) error {
	bw := bufio.NewWriter(w)
	for i, c := range res.Contigs {
		fmt.Fprintf(bw, ">contig %d\n", i+1)
		for _, s := range c.Sequences() {
			writeSequence(bw, s)
		}
	}
	return bw.Flush()
}

// WriteSingletons writes every singleton fragment with its original header.
func WriteSingletons(w io.Writer, store *Store, res *Result) error {
	bw := bufio.NewWriter(w)
	for _, i := range res.Singletons {
		seq, err := store.Get(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, ">%s\n", seq.Header())
		writeSequence(bw, seq.Bases)
	}
	return bw.Flush()
}

// WriteCounts writes, per contig, its root fragment and the number of
// fragments used, followed by the totals.
func WriteCounts(w io.Writer, store *Store, res *Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#contig\troot\tused\tlength")
	for i, c := range res.Contigs {
		root, err := store.Get(c.Root)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "contig %d\t%s\t%d\t%d\n", i+1, root.Name(), c.Used(), len(c.Sequence))
	}
	sum := Summarize(store.Len(), res)
	fmt.Fprintf(bw, "#used\t%d\tof\t%d\n", sum.Used, sum.Fragments)
	fmt.Fprintf(bw, "#singletons\t%d\n", sum.Singletons)
	return bw.Flush()
}

// WriteBranches writes the branch side channel: one record per branch with
// the breakpoint and its member fragments in the header.
func WriteBranches(w io.Writer, res *Result) error {
	bw := bufio.NewWriter(w)
	for i, c := range res.Contigs {
		for j, b := range c.Branches {
			fmt.Fprintf(bw, ">contig %d branch %d breakpoint %s members %v\n", i+1, j+1, b.Breakpoint, b.Members)
			writeSequence(bw, b.Sequence)
		}
	}
	return bw.Flush()
}

// WriteFile creates filename and writes to it with write. An empty name is
// skipped.
func WriteFile(filename string, write func(io.Writer) error) error {
	if filename == "" {
		return nil
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return file.Close()
}
