package telescope

import (
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

// RootEventSource reads the flat analysis tree of a beam test run.
type RootEventSource struct {
	File     *riofs.File
	Filename string
	Tree     rtree.Tree
}

// Branch names of the analysis tree.
const (
	BranchXPos     = "xPos"
	BranchYPos     = "yPos"
	BranchDxDz     = "dxdz"
	BranchDyDz     = "dydz"
	BranchChi2     = "chi2"
	BranchNdof     = "ndof"
	BranchNPixHits = "nPixHits"
	BranchCol      = "col"
	BranchRow      = "row"
)

func OpenRootEventSource(filename, treeName string) (*RootEventSource, error) {
	f, err := groot.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	obj, err := f.Get(treeName)
	if err != nil {
		f.Close()
		return nil, &ErrTreeNotFound{Filename: filename, Tree: treeName}
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		f.Close()
		return nil, &ErrTreeNotFound{Filename: filename, Tree: treeName}
	}
	return &RootEventSource{File: f, Filename: filename, Tree: tree}, nil
}

func (r *RootEventSource) NumEvents() int64 {
	return r.Tree.Entries()
}

type rootEventBuffer struct {
	xPos     []float64
	yPos     []float64
	dxdz     []float64
	dydz     []float64
	chi2     []float64
	ndof     []float64
	nPixHits int32
	col      []int32
	row      []int32
}

func (b *rootEventBuffer) readVars() []rtree.ReadVar {
	return []rtree.ReadVar{
		{Name: BranchXPos, Value: &b.xPos},
		{Name: BranchYPos, Value: &b.yPos},
		{Name: BranchDxDz, Value: &b.dxdz},
		{Name: BranchDyDz, Value: &b.dydz},
		{Name: BranchChi2, Value: &b.chi2},
		{Name: BranchNdof, Value: &b.ndof},
		{Name: BranchNPixHits, Value: &b.nPixHits},
		{Name: BranchCol, Value: &b.col},
		{Name: BranchRow, Value: &b.row},
	}
}

func toInts(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

func cloneFloats(in []float64) []float64 {
	return append([]float64(nil), in...)
}

func (b *rootEventBuffer) fill(evt *Event, entry int64) {
	evt.Reset()
	evt.Entry = entry
	evt.Telescope = TelescopeEvent{
		XPos: cloneFloats(b.xPos),
		YPos: cloneFloats(b.yPos),
		DxDz: cloneFloats(b.dxdz),
		DyDz: cloneFloats(b.dydz),
		Chi2: cloneFloats(b.chi2),
		Ndof: cloneFloats(b.ndof),
	}
	evt.Fei4 = Fei4Event{
		NPixHits: int(b.nPixHits),
		Col:      toInts(b.col),
		Row:      toInts(b.row),
	}
}

func (r *RootEventSource) ReadEvents(fn func(entry int64, evt *Event) error) error {
	var buf rootEventBuffer
	reader, err := rtree.NewReader(r.Tree, buf.readVars())
	if err != nil {
		return fmt.Errorf("error creating reader for %q: %w", r.Filename, err)
	}
	defer reader.Close()

	var evt Event
	err = reader.Read(func(ctx rtree.RCtx) error {
		buf.fill(&evt, ctx.Entry)
		return fn(ctx.Entry, &evt)
	})
	return err
}

func (r *RootEventSource) Close() error {
	return r.File.Close()
}
