package allocation

import "context"

// LotService loads a lot and its previously committed allocations.
// Backed by the mill's order database; read-only from this core's view.
type LotService interface {
	// GetLot retrieves the lot and its existing machine allocations
	GetLot(ctx context.Context, lotID string) (*Lot, []*MachineAllocation, error)
}

// MachineCatalog lists the knitting machines available for allocation
type MachineCatalog interface {
	// GetMachines retrieves all machines in the catalog
	GetMachines(ctx context.Context) ([]Machine, error)

	// GetMachine retrieves a single machine by id
	GetMachine(ctx context.Context, machineID string) (Machine, error)
}

// StickerLedger reads printed-sticker counts from the external printing
// workflow. Counts are non-negative and monotonically non-decreasing over a
// lot's lifetime; this core only ever reads them.
type StickerLedger interface {
	// GetGeneratedStickers returns the printed-sticker count for one
	// machine allocation
	GetGeneratedStickers(ctx context.Context, machineAllocationID string) (int, error)

	// GetLotStickerFloor returns the frozen floor for every allocation of a
	// lot in a single batch fetch
	GetLotStickerFloor(ctx context.Context, lotID string) (StickerFloor, error)
}

// AllocationPersister commits a validated allocation set.
//
// The commit must be atomic: either every allocation in the set is stored or
// none is. Because the sticker floor can move while a session is open, the
// persister must re-check it at commit time and reject with a floor violation
// if it has; callers treat that rejection as an ordinary persistence failure,
// not an internal bug.
type AllocationPersister interface {
	Commit(ctx context.Context, lotID string, allocations []*MachineAllocation) error
}
