package model

// Resource is a homogeneous compute node a task can be placed on.
// Only the IDLE/BUSY state matters for placement; capacity attributes
// are carried through to the oracle's feature encoding and the reward
// model but never matched against task requirements.
type Resource struct {
	ID       int           `json:"id"`
	MIPS     float64       `json:"mips"`
	MemoryMB int64         `json:"memory_mb"`
	State    ResourceState `json:"state"`
}

// NewResource creates an IDLE resource.
func NewResource(id int, mips float64, memoryMB int64) *Resource {
	return &Resource{
		ID:       id,
		MIPS:     mips,
		MemoryMB: memoryMB,
		State:    ResourceStateIdle,
	}
}
