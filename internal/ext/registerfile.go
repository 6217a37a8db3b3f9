package ext

import "github.com/bitsysim/bitsysim/internal/types"

// RegisterFile is a small addressable memory: its outgoing port "rdata"
// combinationally tracks whatever "addr" currently selects; a write
// staged via "wdata"/"we" takes effect on the next Clock, mirroring the
// simulator's own two-phase register semantics (spec.md §4.8 "Register
// semantics") one level down inside a black box.
type RegisterFile struct {
	width uint64
	words []types.WordValue

	addr, wdata, we types.Value
}

// NewRegisterFile builds a register file of depth words, each wordWidth
// bits wide, reset to zero.
func NewRegisterFile(depth int, wordWidth uint64) *RegisterFile {
	words := make([]types.WordValue, depth)
	for i := range words {
		words[i] = types.NewWord(0, wordWidth)
	}
	return &RegisterFile{
		width: wordWidth,
		words: words,
		addr:  types.X,
		wdata: types.X,
		we:    types.X,
	}
}

func (*RegisterFile) IncomingPorts() []string { return []string{"addr", "wdata", "we"} }

func (rf *RegisterFile) Update(port string, value types.Value) []PortUpdate {
	switch port {
	case "addr":
		rf.addr = value
	case "wdata":
		rf.wdata = value
	case "we":
		rf.we = value
	default:
		return nil
	}
	return rf.readUpdate()
}

func (rf *RegisterFile) Clock() []PortUpdate {
	if idx, ok := rf.index(); ok && asserted(rf.we) {
		if w, ok := rf.wdata.(types.WordValue); ok {
			rf.words[idx] = types.NewWord(w.Val, rf.width)
		}
	}
	return rf.readUpdate()
}

func (rf *RegisterFile) Reset() {
	for i := range rf.words {
		rf.words[i] = types.NewWord(0, rf.width)
	}
	rf.addr, rf.wdata, rf.we = types.X, types.X, types.X
}

func (rf *RegisterFile) readUpdate() []PortUpdate {
	idx, ok := rf.index()
	if !ok {
		return []PortUpdate{{Port: "rdata", Value: types.X}}
	}
	return []PortUpdate{{Port: "rdata", Value: rf.words[idx]}}
}

func (rf *RegisterFile) index() (int, bool) {
	w, ok := rf.addr.(types.WordValue)
	if !ok || int(w.Val) >= len(rf.words) {
		return 0, false
	}
	return int(w.Val), true
}

func asserted(v types.Value) bool {
	w, ok := v.(types.WordValue)
	return ok && w.Val != 0
}
