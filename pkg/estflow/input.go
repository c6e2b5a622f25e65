package estflow

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/estflow-go/internal/quality"
	"github.com/aria-lang/estflow-go/internal/sequence"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// Decompress wraps r in a gzip or zstd decoder when the stream starts with
// the matching magic bytes. Plain input is returned unchanged.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		return zstdReadCloser{zr}, nil
	}
	return io.NopCloser(br), nil
}

// open opens a possibly compressed file. Closing the result closes the file.
func open(filename string) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	rc, err := Decompress(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &fileReader{ReadCloser: rc, file: file}, nil
}

type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (f *fileReader) Close() error {
	err := f.ReadCloser.Close()
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// IsFASTQ guesses the format from the file name, ignoring compression
// suffixes.
func IsFASTQ(filename string) bool {
	name := strings.ToLower(filename)
	for _, ext := range []string{".gz", ".zst", ".zstd"} {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.HasSuffix(name, ".fastq") || strings.HasSuffix(name, ".fq")
}

// ReadFASTA reads fragments from a plain, gzip or zstd FASTA file.
func ReadFASTA(filename string) ([]*Sequence, error) {
	r, err := open(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ParseFASTA(r)
}

// ParseFASTA parses FASTA records. Identifiers of the form "name_start_end"
// or "start.length" set the fragment's presumed Start.
func ParseFASTA(r io.Reader) ([]*Sequence, error) {
	sequences := make([]*Sequence, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header string
	var bases strings.Builder
	started := false
	lineNum := 0

	flush := func() error {
		if !started {
			return nil
		}
		id, desc := sequence.SplitHeader(header)
		seq, err := sequence.WithMetadata(bases.String(), id, desc)
		if err != nil {
			return fmt.Errorf("record %q before line %d: %w", id, lineNum, err)
		}
		sequences = append(sequences, seq)
		bases.Reset()
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			header = line[1:]
			started = true
			continue
		}
		if !started {
			return nil, fmt.Errorf("line %d: sequence data before the first header", lineNum)
		}
		bases.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return sequences, nil
}

// Read is a FASTQ record.
type Read struct {
	Sequence *Sequence
	Quality  *quality.Scores
}

// ReadFASTQ reads records from a plain, gzip or zstd FASTQ file.
func ReadFASTQ(filename string, offset int) ([]*Read, error) {
	r, err := open(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ParseFASTQ(r, offset)
}

// ParseFASTQ parses four-line FASTQ records with qualities in the given
// Phred offset.
func ParseFASTQ(r io.Reader, offset int) ([]*Read, error) {
	reads := make([]*Read, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	var header, bases string
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		switch (lineNum - 1) % 4 {
		case 0:
			if len(line) == 0 || line[0] != '@' {
				return nil, fmt.Errorf("line %d: expected header starting with @", lineNum)
			}
			header = line[1:]
		case 1:
			bases = line
		case 2:
			if len(line) == 0 || line[0] != '+' {
				return nil, fmt.Errorf("line %d: expected '+' line", lineNum)
			}
		case 3:
			id, desc := sequence.SplitHeader(header)
			seq, err := sequence.WithMetadata(bases, id, desc)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			qual, err := quality.Decode(line, offset)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if qual.Len() != seq.Len() {
				return nil, fmt.Errorf("line %d: %w", lineNum,
					&quality.LengthMismatchError{Bases: seq.Len(), Scores: qual.Len()})
			}
			reads = append(reads, &Read{Sequence: seq, Quality: qual})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if lineNum%4 != 0 {
		return nil, fmt.Errorf("line %d: truncated FASTQ record", lineNum)
	}
	return reads, nil
}

// ClipReads end-clips reads and returns the fragments that are long enough.
func ClipReads(reads []*Read, clipper *quality.Clipper) ([]*Sequence, quality.Summary, error) {
	seqs := make([]*Sequence, len(reads))
	quals := make([]*quality.Scores, len(reads))
	for i, r := range reads {
		seqs[i] = r.Sequence
		quals[i] = r.Quality
	}
	kept, sum, err := clipper.ClipAll(seqs, quals)
	if err != nil {
		return nil, sum, err
	}
	log.Infof("quality clipping: %s", sum)
	return kept, sum, nil
}

// Load reads fragments from filename. FASTQ input, chosen by format or by
// extension when format is "auto", is end-clipped with clipper when it is
// not nil.
func Load(filename, format string, offset int, clipper *quality.Clipper) ([]*Sequence, error) {
	fastq := strings.EqualFold(format, "fastq") || (strings.EqualFold(format, "auto") && IsFASTQ(filename))
	if !fastq {
		return ReadFASTA(filename)
	}
	reads, err := ReadFASTQ(filename, offset)
	if err != nil {
		return nil, err
	}
	if clipper == nil {
		seqs := make([]*Sequence, len(reads))
		for i, r := range reads {
			seqs[i] = r.Sequence
		}
		return seqs, nil
	}
	seqs, _, err := ClipReads(reads, clipper)
	return seqs, err
}
