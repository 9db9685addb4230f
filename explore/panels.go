package explore

import (
	"github.com/vkngwrapper/explorer/offsetalloc"
)

// Tree widget id spaces for the metadata panel. Node subtree ids come from
// raw node handles, which are always below 1<<32.
const (
	binsRootTreeID uint64 = 1 << 40
	binTreeIDBase  uint64 = 1 << 32
)

// fatal escalates consistency failures. This tool exists to expose allocator
// bugs; a divergent registry or a corrupt traversal must stop the frame
// loudly instead of rendering a lie.
func fatal(err error) {
	if err != nil {
		panic(err)
	}
}

func (e *Explorer) controlPanel(frontend Frontend) {
	if e.session == nil {
		frontend.InputUint32("Size", &e.capacityInput)
		frontend.InputUint32("Max Allocations", &e.maxAllocsInput)

		if frontend.Button("Create Allocator (N)") || e.pressed(frontend, KeyNew) {
			e.createSession()
		}
		return
	}

	session := e.session
	allocator := session.Allocator()

	report := allocator.StorageReport()
	frontend.Text("Total free space: %d", report.TotalFreeSpace)
	frontend.Text("Largest free region: %d", report.LargestFreeRegion)
	frontend.NewLine()

	frontend.Text("Free regions:")
	for _, bin := range allocator.StorageReportFull() {
		if bin.Count > 0 {
			frontend.Text("Count: %d, size: %d", bin.Count, bin.BinApproxSize)
		}
	}
	frontend.NewLine()

	frontend.Text("Allocations:")
	var freeOffset uint32
	requestedFree := false
	for i, allocation := range session.Registry().Allocations() {
		frontend.PushID(i)
		frontend.Text("Offset: %d, size: %d", allocation.Offset, allocator.AllocationSize(allocation))
		frontend.SameLine()
		if frontend.Button("Free") {
			freeOffset = allocation.Offset
			requestedFree = true
		}
		frontend.PopID()
	}

	if requestedFree {
		fatal(session.FreeAt(freeOffset))
	}

	frontend.NewLine()
	if frontend.Button("Clear (C)") || e.pressed(frontend, KeyClear) {
		session.Clear()
	}

	frontend.NewLine()
	frontend.InputUint32("Size", &e.sizeInput)
	frontend.SameLine()
	if frontend.Button("Allocate (A)") || e.pressed(frontend, KeyAllocate) {
		session.Allocate(e.sizeInput)
	}

	frontend.NewLine()
	if frontend.Button("New Allocator (D)") || e.pressed(frontend, KeyDestroy) {
		e.destroySession()
	}
}

func (e *Explorer) visualizationPanel(frontend Frontend) {
	if e.session == nil {
		return
	}

	session := e.session
	state := session.Allocator().RawState()

	layout := GridLayout{
		RowBytes: FitRowBytes(frontend.ContentWidth(), e.cfg.CellWidth),
		CellW:    e.cfg.CellWidth,
		CellH:    e.cfg.CellHeight,
	}
	if layout.RowBytes == 0 {
		return
	}

	reader := NewStateReader(state)
	regions, err := reader.Regions()
	fatal(err)

	if regions == nil {
		// A fully-allocated buffer has no free bins to anchor a chain walk,
		// so render from the registry's view instead.
		for _, allocation := range session.Registry().Allocations() {
			regions = append(regions, Region{
				Offset: allocation.Offset,
				Size:   session.Allocator().AllocationSize(allocation),
				Used:   true,
				Node:   offsetalloc.NoNode,
			})
		}
	}

	frontend.Advance(layout.PixelWidth(), layout.PixelHeight(state.Size))

	for _, region := range regions {
		drawRegion(frontend, layout, region)
	}

	if x, y, ok := frontend.PointerPos(); ok {
		e.handleHover(frontend, layout, regions, x, y, state.Size)
	}

	frontend.NewLine()
	legendCell := Rect{W: e.cfg.CellWidth, H: e.cfg.CellHeight}

	frontend.Advance(e.cfg.CellWidth, e.cfg.CellHeight)
	frontend.DrawRect(legendCell, StyleFreeOutline)
	frontend.DrawRect(legendCell.Inset(1), StyleFreeFill)
	frontend.SameLine()
	frontend.Text("Free block")

	frontend.Advance(e.cfg.CellWidth, e.cfg.CellHeight)
	frontend.DrawRect(legendCell, StyleUsedOutline)
	frontend.DrawRect(legendCell.Inset(1), StyleUsedFill)
	frontend.SameLine()
	frontend.Text("Allocated block")
}

// handleHover inverts the pointer position to a byte offset, highlights the
// region covering it, and frees used regions on click.
func (e *Explorer) handleHover(frontend Frontend, layout GridLayout, regions []Region, x, y int, capacity uint32) {
	offset, inGrid := layout.Unproject(x, y)
	if !inGrid || offset >= capacity {
		return
	}

	region, found := regionAt(regions, offset)
	if !found {
		return
	}

	for _, r := range layout.Project(region.Offset, region.Size) {
		frontend.DrawRect(r, StyleHighlight)
	}
	frontend.Tooltip("Offset: %d, size: %d", region.Offset, region.Size)

	if region.Used && frontend.PointerClicked() {
		fatal(e.session.FreeAt(region.Offset))
	}
}

func drawRegion(frontend Frontend, layout GridLayout, region Region) {
	fill, outline := StyleFreeFill, StyleFreeOutline
	if region.Used {
		fill, outline = StyleUsedFill, StyleUsedOutline
	}

	for _, r := range layout.Project(region.Offset, region.Size) {
		frontend.DrawRect(r, outline)
		frontend.DrawRect(r.Inset(1), fill)
	}
}

// regionAt finds the region whose byte interval covers offset. Regions arrive
// in physical order, so the scan is bounded by the active node count.
func regionAt(regions []Region, offset uint32) (Region, bool) {
	for _, region := range regions {
		if offset >= region.Offset && offset < region.End() {
			return region, true
		}
	}
	return Region{}, false
}

func (e *Explorer) metadataPanel(frontend Frontend) {
	if e.session == nil {
		return
	}

	state := e.session.Allocator().RawState()
	frontend.Text("Size: %d", state.Size)
	frontend.Text("Max allocs: %d", state.MaxAllocs)
	frontend.Text("Free storage: %d", state.FreeStorage)

	reader := NewStateReader(state)

	var stats DetailedStatistics
	stats.Clear()
	fatal(reader.CollectStatistics(&stats))
	frontend.Text("Allocations: %d (%d bytes)", stats.AllocationCount, stats.AllocationBytes)
	frontend.Text("Free regions: %d (%d bytes)", stats.FreeRegionCount, stats.FreeBytes)

	hierarchy := NewHierarchy(state)
	sink := frontendTreeSink{frontend: frontend}

	if !frontend.TreeNode(binsRootTreeID, "Used bins") {
		return
	}

	err := reader.VisitBins(func(top, leaf uint32, head offsetalloc.NodeHandle) error {
		binIndex := offsetalloc.BinIndex(top, leaf)
		if !frontend.TreeNode(binTreeIDBase+uint64(binIndex), "Bin: %d", binIndex) {
			return nil
		}

		frontend.Indent()
		err := hierarchy.Visit(head, sink)
		frontend.Unindent()
		frontend.TreePop()
		return err
	})
	fatal(err)

	frontend.TreePop()
}
