package ldpc

import (
	"fmt"
	"math/bits"
	"math/rand"

	mapset "github.com/deckarep/golang-set"
	mat "github.com/nathanhack/sparsemat"
)

const (
	// maxBuildAttempts bounds full matrix redraws when validation
	// rejects a candidate (duplicate columns, lost coverage).
	maxBuildAttempts = 64
	// maxRepairRounds bounds dependent-row resampling inside a single
	// candidate before it is abandoned.
	maxRepairRounds = 16
)

// matrixStore holds one immutable parity-check matrix in every shape
// the codec needs: packed rows reduced to systematic form for the
// encoder, a sparse copy for algebraic validation, and adjacency lists
// for message passing.
type matrixStore struct {
	n, m, k int
	kWords  int

	h mat.SparseMat

	// checkCols lists, for each check node, its variable neighbors in
	// ascending order. Edges are numbered check-major, so the edge ids
	// of row i start at the running total of earlier row degrees.
	checkCols [][]int32
	// varChecks is the transposed adjacency: for each variable node,
	// the check nodes it participates in.
	varChecks   [][]int32
	edges       int
	maxCheckDeg int

	// colPerm maps systematic position to original column: positions
	// [0,k) carry message bits, [k,n) carry parity bits.
	colPerm []int
	// parityRows holds the dense parity equations over message
	// positions, packed k bits per row.
	parityRows [][]uint64
	identity   bool
}

func newMatrixStore(p CodeParameters) (*matrixStore, error) {
	rng := rand.New(rand.NewSource(int64(p.Seed)))
	var lastErr error
	for attempt := 0; attempt < maxBuildAttempts; attempt++ {
		rows := gallagerRows(p, rng)
		colPerm, parityRows, ok := systematize(p, rows, rng)
		if !ok {
			lastErr = fmt.Errorf("rank deficiency persisted through row repair")
			continue
		}
		ms := buildStore(p, rows, colPerm, parityRows)
		if err := ms.validate(); err != nil {
			lastErr = err
			continue
		}
		return ms, nil
	}
	return nil, fmt.Errorf("%w: seed %d: %v", ErrMatrixConstruction, p.Seed, lastErr)
}

// gallagerRows draws a (wc, wr)-regular band matrix. Band zero covers
// the columns in consecutive blocks of wr; every further band applies
// the same block pattern to a freshly shuffled column order.
func gallagerRows(p CodeParameters, rng *rand.Rand) [][]uint64 {
	m := p.N - p.K
	band := m / p.WC
	words := wordsFor(p.N)
	rows := make([][]uint64, m)
	for i := range rows {
		rows[i] = make([]uint64, words)
	}
	for i := 0; i < band; i++ {
		for j := i * p.WR; j < (i+1)*p.WR; j++ {
			setRowBit(rows[i], j)
		}
	}
	order := make([]int, p.N)
	for b := 1; b < p.WC; b++ {
		for j := range order {
			order[j] = j
		}
		rng.Shuffle(len(order), func(x, y int) {
			order[x], order[y] = order[y], order[x]
		})
		for j := 0; j < p.N; j++ {
			setRowBit(rows[order[j]/p.WR+b*band], j)
		}
	}
	return rows
}

// randomRow replaces a dependent row with a fresh draw of the same
// weight.
func randomRow(p CodeParameters, rng *rand.Rand) []uint64 {
	row := make([]uint64, wordsFor(p.N))
	for _, c := range rng.Perm(p.N)[:p.WR] {
		setRowBit(row, c)
	}
	return row
}

// systematize brings rows to full rank and derives the systematic
// column permutation and parity equations. Band matrices always carry
// wc-1 dependent rows, so those rows are resampled in place until an
// elimination pass succeeds. The returned permutation and parity rows
// describe the final state of rows.
func systematize(p CodeParameters, rows [][]uint64, rng *rand.Rand) ([]int, [][]uint64, bool) {
	for round := 0; round < maxRepairRounds; round++ {
		work := cloneRows(rows)
		pivotColOf := gaussJordan(work, p.N)
		deficient := false
		for _, c := range pivotColOf {
			if c < 0 {
				deficient = true
				break
			}
		}
		if !deficient {
			colPerm, parityRows := extractSystematic(p, work, pivotColOf)
			return colPerm, parityRows, true
		}
		for i, c := range pivotColOf {
			if c < 0 {
				rows[i] = randomRow(p, rng)
			}
		}
	}
	return nil, nil, false
}

// gaussJordan reduces work to reduced row-echelon form over GF(2),
// preferring pivots in the rightmost columns so message positions stay
// near the front of the codeword. It returns the pivot column of each
// row, -1 for dependent rows (which end up all zero).
func gaussJordan(work [][]uint64, n int) []int {
	m := len(work)
	pivotColOf := make([]int, m)
	for i := range pivotColOf {
		pivotColOf[i] = -1
	}
	rank := 0
	for c := n - 1; c >= 0 && rank < m; c-- {
		pr := -1
		for i := 0; i < m; i++ {
			if pivotColOf[i] < 0 && rowBit(work[i], c) == 1 {
				pr = i
				break
			}
		}
		if pr < 0 {
			continue
		}
		pivotColOf[pr] = c
		rank++
		for i := 0; i < m; i++ {
			if i != pr && rowBit(work[i], c) == 1 {
				xorRowInto(work[i], work[pr])
			}
		}
	}
	return pivotColOf
}

// extractSystematic reads the column permutation and packed parity
// equations out of a fully reduced matrix. Parity position i of the
// codeword equals the dot product of parityRows[i] with the message.
func extractSystematic(p CodeParameters, work [][]uint64, pivotColOf []int) ([]int, [][]uint64) {
	m, n, k := p.N-p.K, p.N, p.K
	isPivot := make([]bool, n)
	rowOfPivot := make([]int, n)
	for i, c := range pivotColOf {
		isPivot[c] = true
		rowOfPivot[c] = i
	}
	colPerm := make([]int, 0, n)
	for c := 0; c < n; c++ {
		if !isPivot[c] {
			colPerm = append(colPerm, c)
		}
	}
	for c := 0; c < n; c++ {
		if isPivot[c] {
			colPerm = append(colPerm, c)
		}
	}
	kWords := wordsFor(k)
	parityRows := make([][]uint64, m)
	for i := range parityRows {
		parityRows[i] = make([]uint64, kWords)
	}
	for i := 0; i < m; i++ {
		src := work[rowOfPivot[colPerm[k+i]]]
		for s := 0; s < k; s++ {
			if rowBit(src, colPerm[s]) == 1 {
				setRowBit(parityRows[i], s)
			}
		}
	}
	return colPerm, parityRows
}

func buildStore(p CodeParameters, rows [][]uint64, colPerm []int, parityRows [][]uint64) *matrixStore {
	m, n, k := p.N-p.K, p.N, p.K
	ms := &matrixStore{
		n:          n,
		m:          m,
		k:          k,
		kWords:     wordsFor(k),
		h:          mat.CSRMat(m, n),
		checkCols:  make([][]int32, m),
		varChecks:  make([][]int32, n),
		colPerm:    colPerm,
		parityRows: parityRows,
		identity:   identityPerm(colPerm),
	}
	for i, row := range rows {
		cols := rowColumns(row)
		ms.checkCols[i] = cols
		ms.edges += len(cols)
		if len(cols) > ms.maxCheckDeg {
			ms.maxCheckDeg = len(cols)
		}
		for _, c := range cols {
			ms.h.Set(i, int(c), 1)
		}
	}
	for c := 0; c < n; c++ {
		nz := ms.h.Column(c).NonzeroArray()
		vc := make([]int32, len(nz))
		for i, r := range nz {
			vc[i] = int32(r)
		}
		ms.varChecks[c] = vc
	}
	return ms
}

// validate rejects structurally degenerate draws. Duplicate column
// supports would leave the minimum distance at two, and an uncovered
// column would never receive check messages; both are fixable by a
// redraw. The generator check is algebraic: every generator row must
// lie in the null space of H.
func (ms *matrixStore) validate() error {
	sigs := mapset.NewThreadUnsafeSet()
	for c := 0; c < ms.n; c++ {
		if len(ms.varChecks[c]) == 0 {
			return fmt.Errorf("column %d is isolated", c)
		}
		if !sigs.Add(fmt.Sprint(ms.varChecks[c])) {
			return fmt.Errorf("column %d duplicates another column support", c)
		}
	}
	covered := mapset.NewThreadUnsafeSet()
	for i, cols := range ms.checkCols {
		if len(cols) == 0 {
			return fmt.Errorf("check row %d is empty", i)
		}
		for _, c := range cols {
			covered.Add(int(c))
		}
	}
	if covered.Cardinality() != ms.n {
		return fmt.Errorf("%d of %d columns uncovered", ms.n-covered.Cardinality(), ms.n)
	}
	for s := 0; s < ms.k; s++ {
		syn := mat.CSRVec(ms.m)
		syn.MatMul(ms.h, ms.generatorRow(s))
		if !syn.IsZero() {
			return fmt.Errorf("generator row %d violates a parity check", s)
		}
	}
	return nil
}

// generatorRow materializes row s of the systematic generator as a
// sparse vector over the original column order.
func (ms *matrixStore) generatorRow(s int) mat.SparseVector {
	g := mat.CSRVec(ms.n)
	g.Set(ms.colPerm[s], 1)
	for i := 0; i < ms.m; i++ {
		if rowBit(ms.parityRows[i], s) == 1 {
			g.Set(ms.colPerm[ms.k+i], 1)
		}
	}
	return g
}

func identityPerm(perm []int) bool {
	for i, c := range perm {
		if i != c {
			return false
		}
	}
	return true
}

func rowColumns(row []uint64) []int32 {
	var cols []int32
	for w, word := range row {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			cols = append(cols, int32(w*wordBits+b))
			word &= word - 1
		}
	}
	return cols
}

func setRowBit(row []uint64, i int) {
	row[i>>6] |= 1 << (uint(i) & 63)
}

func rowBit(row []uint64, i int) uint64 {
	return row[i>>6] >> (uint(i) & 63) & 1
}

func xorRowInto(dst, src []uint64) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func cloneRows(rows [][]uint64) [][]uint64 {
	out := make([][]uint64, len(rows))
	for i, r := range rows {
		out[i] = append([]uint64(nil), r...)
	}
	return out
}
