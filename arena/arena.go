package arena

import "errors"

// ErrDeadBlock reports an operation addressed to a deleted or never-allocated block.
var ErrDeadBlock = errors.New("arena: block is deleted or unknown")

// BlockID is a stable logical identifier for one allocated block.
// Identifiers are assigned monotonically from 1 and are never reused
// within the lifetime of an Arena, even after the block is deleted.
// The zero value denotes no block.
type BlockID int32

// None is the zero BlockID.
const None BlockID = 0

const freeEnd = -1

// A slot is one position of the backing sequence. While used it records its
// owning block and the offset inside that block. While free the offset field
// holds the index of the next free slot, keeping the free list threaded
// through the sequence in ascending position order.
type slot struct {
	block  BlockID
	offset int
}

type blockRec struct {
	first  int
	length int
	live   bool
}

// Arena hands out contiguous integer ranges (blocks) of stable logical
// identifiers over an append-only backing sequence. Deleting a block returns
// its slots to a free list without compacting the sequence, so the positions
// of every other block never shift. Freed runs are reused first-fit with ties
// broken by the lowest starting position; only when no free run is large
// enough does the sequence grow.
type Arena struct {
	slots    []slot
	blocks   []blockRec
	freeHead int
	freeN    int
	liveN    int
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{freeHead: freeEnd}
}

// Len reports the total length of the backing sequence, used and free slots
// alike. A caller keeping an external array in lockstep with the arena must
// keep that array exactly this long.
func (a *Arena) Len() int { return len(a.slots) }

// FreeCount reports how many slots are currently on the free list.
func (a *Arena) FreeCount() int { return a.freeN }

// LiveCount reports how many blocks are currently live.
func (a *Arena) LiveCount() int { return a.liveN }

// Live reports whether id refers to a live block.
func (a *Arena) Live(id BlockID) bool {
	return id >= 1 && int(id) <= len(a.blocks) && a.blocks[id-1].live
}

// EnsureCapacity reports how many fresh slots NewBlock(n) would append to the
// backing sequence: zero when a contiguous free run of at least n slots
// exists, n minus the length of the trailing free run when that run abuts the
// end of the sequence, and n otherwise. It never mutates the arena, so the
// caller can grow any lockstep arrays before allocating the block.
func (a *Arena) EnsureCapacity(n int) int {
	if n < 1 {
		panic("arena: block size must be positive")
	}
	run, tail := 0, 0
	prev := -2
	for i := a.freeHead; i != freeEnd; i = a.slots[i].offset {
		if prev+1 == i {
			run++
		} else {
			run = 1
		}
		prev = i
		if run >= n {
			return 0
		}
		if i == len(a.slots)-1 {
			tail = run
		}
	}
	return n - tail
}

// NewBlock allocates a contiguous block of n slots and returns its identifier.
// Freed space is reused before the sequence grows. Panics if n < 1.
func (a *Arena) NewBlock(n int) BlockID {
	if n < 1 {
		panic("arena: block size must be positive")
	}
	first := a.take(n)
	if first < 0 {
		first = a.grow(n)
	}
	id := BlockID(len(a.blocks) + 1)
	a.blocks = append(a.blocks, blockRec{first: first, length: n, live: true})
	for k := 0; k < n; k++ {
		a.slots[first+k] = slot{block: id, offset: k}
	}
	a.liveN++
	return id
}

// take unlinks the lowest contiguous free run of exactly n slots and returns
// its first position, or -1 when no run is long enough.
func (a *Arena) take(n int) int {
	runStart, runLen := -1, 0
	beforeRun := freeEnd // free-list node preceding runStart
	prev := freeEnd      // previous node while walking
	for i := a.freeHead; i != freeEnd; i = a.slots[i].offset {
		if runLen > 0 && prev+1 == i {
			runLen++
		} else {
			runStart, runLen = i, 1
			beforeRun = prev
		}
		if runLen == n {
			tail := a.slots[i].offset
			if beforeRun == freeEnd {
				a.freeHead = tail
			} else {
				a.slots[beforeRun].offset = tail
			}
			a.freeN -= n
			return runStart
		}
		prev = i
	}
	return -1
}

// grow extends the backing sequence so that a free run of n slots ends it,
// absorbing a trailing free run when one abuts the end, and returns the run's
// first position. The appended slots are claimed immediately by NewBlock.
func (a *Arena) grow(n int) int {
	tail := 0
	prev := -2
	for i := a.freeHead; i != freeEnd; i = a.slots[i].offset {
		if prev+1 == i {
			tail++
		} else {
			tail = 1
		}
		prev = i
	}
	if prev != len(a.slots)-1 {
		tail = 0
	}
	if tail > 0 {
		a.unlink(len(a.slots)-tail, tail)
	}
	start := len(a.slots) - tail
	for k := 0; k < n-tail; k++ {
		a.slots = append(a.slots, slot{})
	}
	return start
}

// unlink removes the free run [first, first+n) from the free list.
func (a *Arena) unlink(first, n int) {
	beforeRun := freeEnd
	for i := a.freeHead; i != freeEnd; i = a.slots[i].offset {
		if i == first {
			break
		}
		beforeRun = i
	}
	tail := a.slots[first+n-1].offset
	if beforeRun == freeEnd {
		a.freeHead = tail
	} else {
		a.slots[beforeRun].offset = tail
	}
	a.freeN -= n
}

// DeleteBlock returns the block's slots to the free list and invalidates its
// identifier. The positions of every other block are unaffected; the freed
// run becomes reusable by later allocations. Deleting a dead or unknown block
// reports ErrDeadBlock.
func (a *Arena) DeleteBlock(id BlockID) error {
	if !a.Live(id) {
		return ErrDeadBlock
	}
	b := &a.blocks[id-1]
	b.live = false
	a.liveN--

	// Chain the freed run internally, then splice it into the list at its
	// ascending position so contiguous runs stay detectable by adjacency.
	first, n := b.first, b.length
	for k := 0; k < n-1; k++ {
		a.slots[first+k] = slot{block: None, offset: first + k + 1}
	}
	a.slots[first+n-1] = slot{block: None, offset: freeEnd}

	beforeRun := freeEnd
	after := a.freeHead
	for after != freeEnd && after < first {
		beforeRun = after
		after = a.slots[after].offset
	}
	a.slots[first+n-1].offset = after
	if beforeRun == freeEnd {
		a.freeHead = first
	} else {
		a.slots[beforeRun].offset = first
	}
	a.freeN += n
	return nil
}

// Resolve returns the current backing-sequence position of the block's slot
// at the given offset. Positions are assigned once at allocation and never
// shift, so the cost is constant regardless of how many blocks were deleted
// before. Resolving a dead block or an out-of-range offset is a programming
// error and panics.
func (a *Arena) Resolve(id BlockID, offset int) int {
	b := a.mustLive(id)
	if offset < 0 || offset >= b.length {
		panic("arena: offset out of block range")
	}
	return b.first + offset
}

// ResolveAll returns the positions of every slot of the block, in order.
func (a *Arena) ResolveAll(id BlockID) []int {
	b := a.mustLive(id)
	out := make([]int, b.length)
	for k := range out {
		out[k] = b.first + k
	}
	return out
}

// BlockLen reports the length of a live block.
func (a *Arena) BlockLen(id BlockID) int {
	return a.mustLive(id).length
}

// LiveBlocks returns every live block identifier in ascending order.
func (a *Arena) LiveBlocks() []BlockID {
	out := make([]BlockID, 0, a.liveN)
	for i, b := range a.blocks {
		if b.live {
			out = append(out, BlockID(i+1))
		}
	}
	return out
}

func (a *Arena) mustLive(id BlockID) blockRec {
	if !a.Live(id) {
		panic("arena: resolve on deleted or unknown block")
	}
	return a.blocks[id-1]
}
