// Package bio provides nucleotide sequences and FASTA input/output.
package bio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NNuc is the number of nucleotide states.
const NNuc = 4

// Alphabet is the nucleotide alphabet. The position of a letter is its
// state number everywhere in seqgen.
const Alphabet = "ACGT"

var (
	// rAlphabet is reverse nucleotide alphabet (letter to a number).
	rAlphabet = map[byte]byte{'A': 0, 'C': 1, 'G': 2, 'T': 3}
)

// State returns the state number of a nucleotide letter (upper or
// lower case). ok is false for any other character.
func State(c byte) (s byte, ok bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	s, ok = rAlphabet[c]
	return
}

// Letter returns the nucleotide letter of a state number.
func Letter(s byte) byte {
	return Alphabet[s]
}

// Encode converts a nucleotide string into state numbers. U is
// treated as T.
func Encode(seq string) ([]byte, error) {
	res := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c == 'U' || c == 'u' {
			c = 'T'
		}
		s, ok := State(c)
		if !ok {
			return nil, fmt.Errorf("unknown nucleotide %q at position %d", seq[i], i+1)
		}
		res[i] = s
	}
	return res, nil
}

// Decode converts state numbers back into a nucleotide string.
func Decode(states []byte) string {
	var b strings.Builder
	b.Grow(len(states))
	for _, s := range states {
		b.WriteByte(Letter(s))
	}
	return b.String()
}

// Sequence is a type which is intended for storing nucleotide
// sequence with it's name.
type Sequence struct {
	Name     string `json:"name"`
	Sequence string `json:"sequence"`
}

// Sequences stores multiple sequences. E.g. a sequence alignment.
type Sequences []Sequence

// ParseFasta parses FASTA sequences from a reader.
func ParseFasta(rd io.Reader) (seqs Sequences, err error) {
	seqs = make(Sequences, 0, 10)
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			seq := Sequence{Name: strings.TrimSpace(line[1:])}
			seqs = append(seqs, seq)
		} else {
			if len(seqs) == 0 {
				return nil, errors.New("sequence w/o prefix")
			}
			line = strings.ToUpper(strings.Replace(line, " ", "", -1))
			seqs[len(seqs)-1].Sequence += line
		}
	}
	return seqs, scanner.Err()
}

// Wrap inputs a string and wraps it so string length is n characters
// or less. n <= 0 disables wrapping.
func Wrap(seq string, n int) (s string) {
	if n <= 0 {
		return seq + "\n"
	}
	var b strings.Builder
	for i := 0; i < len(seq); i += n {
		end := i + n
		if end > len(seq) {
			end = len(seq)
		}
		b.WriteString(seq[i:end])
		b.WriteByte('\n')
	}
	return b.String()
}

// String returns a sequence in FASTA format.
func (seq Sequence) String() (s string) {
	s = ">" + seq.Name + "\n" + Wrap(seq.Sequence, 80)
	return
}

// String returns sequences in FASTA format.
func (seqs Sequences) String() (s string) {
	for _, seq := range seqs {
		s += seq.String()
	}
	if len(s) == 0 {
		return s
	}
	return s[:len(s)-1]
}

// WriteFasta writes sequences to w, one header line and one sequence
// line per record.
func (seqs Sequences) WriteFasta(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, seq := range seqs {
		if _, err := fmt.Fprintf(bw, ">%s\n%s\n", seq.Name, seq.Sequence); err != nil {
			return err
		}
	}
	return bw.Flush()
}
