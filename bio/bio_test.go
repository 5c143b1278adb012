package bio

import (
	"bytes"
	"testing"
)

const fasta1 = `>a
ACGT
acgt
>b desc
TTTT
`

func TestParseFasta(tst *testing.T) {
	seqs, err := ParseFasta(bytes.NewBufferString(fasta1))
	if err != nil {
		tst.Fatal("Error parsing fasta:", err)
	}
	if len(seqs) != 2 {
		tst.Fatal("Expected 2 sequences, got", len(seqs))
	}
	if seqs[0].Name != "a" || seqs[0].Sequence != "ACGTACGT" {
		tst.Error("Wrong first sequence:", seqs[0])
	}
	if seqs[1].Name != "b desc" || seqs[1].Sequence != "TTTT" {
		tst.Error("Wrong second sequence:", seqs[1])
	}
}

func TestParseFastaNoHeader(tst *testing.T) {
	_, err := ParseFasta(bytes.NewBufferString("ACGT\n"))
	if err == nil {
		tst.Error("Expected an error for a sequence without a header")
	}
}

func TestEncodeDecode(tst *testing.T) {
	states, err := Encode("ACGTUacgt")
	if err != nil {
		tst.Fatal("Error encoding:", err)
	}
	exp := []byte{0, 1, 2, 3, 3, 0, 1, 2, 3}
	if !bytes.Equal(states, exp) {
		tst.Error("Wrong states:", states)
	}
	if s := Decode(states); s != "ACGTTACGT" {
		tst.Error("Wrong decoded string:", s)
	}
	if _, err := Encode("ACNT"); err == nil {
		tst.Error("Expected an error for N")
	}
}

func TestWriteFasta(tst *testing.T) {
	seqs := Sequences{{"a", "ACGT"}, {"b", "GG"}}
	var b bytes.Buffer
	if err := seqs.WriteFasta(&b); err != nil {
		tst.Fatal(err)
	}
	if b.String() != ">a\nACGT\n>b\nGG\n" {
		tst.Errorf("Wrong output: %q", b.String())
	}
	if seqs.String() != ">a\nACGT\n>b\nGG" {
		tst.Errorf("Wrong string: %q", seqs.String())
	}
}

func TestWrap(tst *testing.T) {
	if s := Wrap("ACGTA", 2); s != "AC\nGT\nA\n" {
		tst.Errorf("Wrong wrap: %q", s)
	}
}
