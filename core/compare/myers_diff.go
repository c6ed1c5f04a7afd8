package compare

// OpTag identifies the kind of edit an Opcode describes
type OpTag int

const (
	OpEqual OpTag = iota
	OpReplace
	OpDelete
	OpInsert
)

func (t OpTag) String() string {
	switch t {
	case OpEqual:
		return "Equal"
	case OpReplace:
		return "Replace"
	case OpDelete:
		return "Delete"
	case OpInsert:
		return "Insert"
	default:
		return "Unknown"
	}
}

// MarshalText renders the tag by name in JSON reports
func (t OpTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Opcode is one entry of an edit script: source range [I1,I2) relates to
// target range [J1,J2) as described by Tag
type Opcode struct {
	Tag OpTag `json:"tag"`
	I1  int   `json:"i1"`
	I2  int   `json:"i2"`
	J1  int   `json:"j1"`
	J2  int   `json:"j2"`
}

type matchPair struct {
	i1, i2 int
}

// DiffWords computes a minimal edit script turning a into b.
// The returned opcodes are ordered and partition both sequences exactly.
func DiffWords(a, b []string) []Opcode {
	return buildOpcodes(findMatches(a, b), len(a), len(b))
}

// findMatches returns the index pairs of a longest common subsequence of a
// and b in ascending order.
// Based on "An O(ND) Difference Algorithm and Its Variations" by Eugene W. Myers
func findMatches(a, b []string) []matchPair {
	return appendMatches(nil, a, b, 0, 0)
}

// greedyLimit is the largest combined length solved by the greedy search.
// Longer inputs are bisected first, which keeps memory linear in the input
// size.
const greedyLimit = 512

// appendMatches appends the matches of a and b, offset by i and j. The
// common prefix and suffix are matched directly.
func appendMatches(matches []matchPair, a, b []string, i, j int) []matchPair {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		matches = append(matches, matchPair{i1: i + prefix, i2: j + prefix})
		prefix++
	}
	a, b = a[prefix:], b[prefix:]
	i, j = i+prefix, j+prefix

	suffix := 0
	for suffix < len(a) && suffix < len(b) && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}
	a, b = a[:len(a)-suffix], b[:len(b)-suffix]

	switch {
	case len(a) == 0 || len(b) == 0:
	case len(a)+len(b) <= greedyLimit:
		for _, m := range myersMatches(a, b) {
			matches = append(matches, matchPair{i1: m.i1 + i, i2: m.i2 + j})
		}
	default:
		if x, y, ok := bisect(a, b); ok {
			matches = appendMatches(matches, a[:x], b[:y], i, j)
			matches = appendMatches(matches, a[x:], b[y:], i+x, j+y)
		}
	}

	for k := 0; k < suffix; k++ {
		matches = append(matches, matchPair{i1: i + len(a) + k, i2: j + len(b) + k})
	}
	return matches
}

// bisect runs the greedy search from both ends at once and returns a point
// on an optimal path where the two searches meet, so both halves can be
// solved independently. ok is false when a and b have nothing in common.
func bisect(a, b []string) (x, y int, ok bool) {
	n, m := len(a), len(b)
	maxD := (n + m + 1) / 2
	offset := maxD
	size := 2 * maxD

	// forward[k] is the furthest x on diagonal k = x-y from the start;
	// backward[k] is the furthest distance back from the end on diagonal
	// k = (n-x)-(m-y). -1 marks diagonals not reached yet.
	forward := make([]int, size)
	backward := make([]int, size)
	for i := range forward {
		forward[i] = -1
		backward[i] = -1
	}
	forward[offset+1] = 0
	backward[offset+1] = 0

	delta := n - m
	// With an odd delta the paths meet while extending forward
	front := delta%2 != 0

	// Diagonals that ran off the grid are trimmed from later steps
	fStart, fEnd, bStart, bEnd := 0, 0, 0, 0

	for d := 0; d < maxD; d++ {
		for k := -d + fStart; k <= d-fEnd; k += 2 {
			i := offset + k
			var fx int
			if k == -d || (k != d && forward[i-1] < forward[i+1]) {
				fx = forward[i+1]
			} else {
				fx = forward[i-1] + 1
			}
			fy := fx - k
			for fx < n && fy < m && a[fx] == b[fy] {
				fx++
				fy++
			}
			forward[i] = fx

			switch {
			case fx > n:
				fEnd += 2
			case fy > m:
				fStart += 2
			case front:
				j := offset + delta - k
				if j >= 0 && j < size && backward[j] != -1 && fx >= n-backward[j] {
					return fx, fy, true
				}
			}
		}

		for k := -d + bStart; k <= d-bEnd; k += 2 {
			i := offset + k
			var bx int
			if k == -d || (k != d && backward[i-1] < backward[i+1]) {
				bx = backward[i+1]
			} else {
				bx = backward[i-1] + 1
			}
			by := bx - k
			for bx < n && by < m && a[n-1-bx] == b[m-1-by] {
				bx++
				by++
			}
			backward[i] = bx

			switch {
			case bx > n:
				bEnd += 2
			case by > m:
				bStart += 2
			case !front:
				j := offset + delta - k
				if j >= 0 && j < size && forward[j] != -1 {
					fx := forward[j]
					fy := fx - (j - offset)
					if fx >= n-bx {
						return fx, fy, true
					}
				}
			}
		}
	}
	return 0, 0, false
}

// myersMatches runs the greedy forward search keeping the furthest-reaching
// paths of every edit distance, then backtracks through them collecting the
// diagonal (equal) moves.
func myersMatches(a, b []string) []matchPair {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	maxD := n + m
	offset := maxD
	v := make([]int, 2*maxD+2)
	// trace[d] holds v on diagonals -(d-1)..d-1 as it stood before step d
	trace := make([][]int, 0, 16)

search:
	for d := 0; d <= maxD; d++ {
		if d == 0 {
			trace = append(trace, nil)
		} else {
			trace = append(trace, append([]int(nil), v[offset-d+1:offset+d]...))
		}

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1] // step down: insertion from b
			} else {
				x = v[offset+k-1] + 1 // step right: deletion from a
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				break search
			}
		}
	}

	var matches []matchPair
	x, y := n, m
	for d := len(trace) - 1; d > 0; d-- {
		prev, base := trace[d], d-1
		k := x - y

		var prevK int
		if k == -d || (k != d && prev[base+k-1] < prev[base+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[base+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			matches = append(matches, matchPair{i1: x, i2: y})
		}
		x, y = prevX, prevY
	}
	for x > 0 && y > 0 {
		x--
		y--
		matches = append(matches, matchPair{i1: x, i2: y})
	}

	// Built backwards
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return matches
}

// buildOpcodes groups ascending matches into Equal runs and turns every gap
// between runs into a Replace, Delete or Insert opcode
func buildOpcodes(matches []matchPair, n, m int) []Opcode {
	var opcodes []Opcode
	i, j := 0, 0

	emitGap := func(i2, j2 int) {
		switch {
		case i < i2 && j < j2:
			opcodes = append(opcodes, Opcode{Tag: OpReplace, I1: i, I2: i2, J1: j, J2: j2})
		case i < i2:
			opcodes = append(opcodes, Opcode{Tag: OpDelete, I1: i, I2: i2, J1: j, J2: j})
		case j < j2:
			opcodes = append(opcodes, Opcode{Tag: OpInsert, I1: i, I2: i, J1: j, J2: j2})
		}
	}

	for idx := 0; idx < len(matches); {
		start := matches[idx]
		emitGap(start.i1, start.i2)

		end := idx + 1
		for end < len(matches) &&
			matches[end].i1 == matches[end-1].i1+1 &&
			matches[end].i2 == matches[end-1].i2+1 {
			end++
		}
		run := end - idx
		opcodes = append(opcodes, Opcode{
			Tag: OpEqual,
			I1:  start.i1,
			I2:  start.i1 + run,
			J1:  start.i2,
			J2:  start.i2 + run,
		})
		i, j = start.i1+run, start.i2+run
		idx = end
	}
	emitGap(n, m)

	return opcodes
}
