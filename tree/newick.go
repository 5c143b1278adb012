package tree

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"
)

type mode int

const (
	normal mode = iota
	length
)

// IsSpecial returns true for the Newick structural characters.
func IsSpecial(c rune) bool {
	switch c {
	case '(', ')', ':', ';', ',', '[', ']':
		return true
	}
	return false
}

// NewickSplit is a bufio.SplitFunc producing Newick tokens: single
// structural characters and words.
func NewickSplit(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	// Skip leading spaces; and return 1-char tokens.
	for width := 0; start < len(data); start += width {
		var r rune
		r, width = utf8.DecodeRune(data[start:])
		if IsSpecial(r) {
			return start + width, data[start : start+width], nil
		}
		if !unicode.IsSpace(r) {
			break
		}
	}
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	// Scan until space or special character.
	for width, i := 0, start; i < len(data); i += width {
		var r rune
		r, width = utf8.DecodeRune(data[i:])
		if unicode.IsSpace(r) || IsSpecial(r) {
			return i, data[start:i], nil
		}
	}
	// If we're at EOF, we have a final, non-empty, non-terminated word. Return it.
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	// Request more data.
	return 0, nil, nil
}

// NewickReader reads consecutive ';'-terminated trees from a stream.
type NewickReader struct {
	scanner *bufio.Scanner
}

// NewNewickReader creates a reader of Newick trees.
func NewNewickReader(rd io.Reader) *NewickReader {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	scanner.Split(NewickSplit)
	return &NewickReader{scanner: scanner}
}

// Next returns the next tree in the stream. io.EOF is returned when
// there are no more trees.
func (nr *NewickReader) Next() (tree *Tree, err error) {
	nodeID := 0
	leafID := 0

	var node *Node
	md := normal
	comment := 0

	for nr.scanner.Scan() {
		text := nr.scanner.Text()
		if comment > 0 {
			switch text {
			case "[":
				comment++
			case "]":
				comment--
			}
			continue
		}
		if text == "[" {
			comment++
			continue
		}
		if node == nil {
			// first token of a tree
			node = NewNode(nil, nodeID)
			tree = &Tree{Node: node}
			nodeID++
		}
		switch text {
		case "(":
			subNode := NewNode(nil, nodeID)
			nodeID++
			node.AddChild(subNode)
			node = subNode
		case ",":
			if node.Parent == nil {
				return nil, errors.New("top level comma mismatch")
			}
			subNode := NewNode(nil, nodeID)
			nodeID++
			node.Parent.AddChild(subNode)
			node = subNode
		case ")":
			if node.Parent == nil {
				return nil, errors.New("brackets mismatch")
			}
			node = node.Parent
		case ":":
			md = length
		case "]":
			return nil, errors.New("unexpected ]")
		case ";":
			if node.Parent != nil {
				return nil, errors.New("brackets mismatch")
			}
			tree.setLeafIDs(&leafID)
			return tree, nil
		default:
			switch md {
			case length:
				l, err := strconv.ParseFloat(text, 64)
				if err != nil {
					return nil, err
				}
				node.BranchLength = l
				md = normal
			default:
				node.Name = text
			}
		}
	}
	if err := nr.scanner.Err(); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, io.EOF
	}
	if node.Parent != nil {
		return nil, errors.New("unexpected end of tree")
	}
	// tolerate a missing final semicolon
	tree.setLeafIDs(&leafID)
	return tree, nil
}

// setLeafIDs numbers the terminal nodes in pre-order.
func (tree *Tree) setLeafIDs(leafID *int) {
	tree.Walk(func(node *Node) {
		if node.IsTerminal() {
			node.LeafID = *leafID
			*leafID++
		}
	})
}

// ParseNewick parses the first tree from a reader.
func ParseNewick(rd io.Reader) (tree *Tree, err error) {
	tree, err = NewNewickReader(rd).Next()
	if err == io.EOF {
		return nil, errors.New("no tree found")
	}
	return
}
