package allocation

// StickerFloor is the session-frozen count of rolls already physically
// realized per machine allocation. Sticker printing is irreversible, so these
// counts only ever grow; within an edit session they are fetched once, in one
// batch, and treated as a fixed lower bound.
//
// The floor can move on the server while a session is open. The persister
// re-checks it inside the commit transaction; this snapshot only guards the
// local edit loop.
type StickerFloor struct {
	counts map[string]int
}

// NewStickerFloor builds a frozen floor from per-allocation sticker counts.
// The input map is copied; later mutation by the caller has no effect.
func NewStickerFloor(counts map[string]int) StickerFloor {
	frozen := make(map[string]int, len(counts))
	for id, n := range counts {
		if n > 0 {
			frozen[id] = n
		}
	}
	return StickerFloor{counts: frozen}
}

// Floor returns the printed-sticker count for a machine allocation.
// Unknown allocations have no printed rolls and return 0.
func (f StickerFloor) Floor(machineAllocationID string) int {
	return f.counts[machineAllocationID]
}
