package compare

import (
	"fmt"
	"strings"
)

// TextDiffResult holds the tokenized words of a page pair and the edit
// script between them
type TextDiffResult struct {
	Words1  []string `json:"-"`
	Words2  []string `json:"-"`
	Opcodes []Opcode `json:"opcodes"`
}

// Tokenize splits page text on maximal runs of whitespace.
// Empty tokens are never produced.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// DiffText tokenizes both page texts and computes their edit script
func DiffText(text1, text2 string) *TextDiffResult {
	words1 := Tokenize(text1)
	words2 := Tokenize(text2)
	return &TextDiffResult{
		Words1:  words1,
		Words2:  words2,
		Opcodes: DiffWords(words1, words2),
	}
}

// Changes returns the non-equal opcodes in order
func (r *TextDiffResult) Changes() []Opcode {
	if r == nil {
		return nil
	}
	var changes []Opcode
	for _, op := range r.Opcodes {
		if op.Tag != OpEqual {
			changes = append(changes, op)
		}
	}
	return changes
}

// HasChanges reports whether any opcode is not Equal
func (r *TextDiffResult) HasChanges() bool {
	return len(r.Changes()) > 0
}

// ReportLines renders one line per non-equal opcode with the literal source
// and target words it covers
func (r *TextDiffResult) ReportLines() []string {
	var lines []string
	for _, op := range r.Changes() {
		lines = append(lines, fmt.Sprintf("Text difference [%s] - file1: %s | file2: %s",
			op.Tag,
			strings.Join(r.Words1[op.I1:op.I2], " "),
			strings.Join(r.Words2[op.J1:op.J2], " ")))
	}
	return lines
}
