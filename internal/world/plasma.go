package world

import (
	"sync"
)

// PlasmaPoint is one pickable point of a plasma spawner.
type PlasmaPoint struct {
	ID uint8
	// World CID of the player currently picking the point (0 = free).
	OwnerCID int32
}

// PlasmaState is a zone plasma spawner with a set of pickable points.
// Points are picked first-come-first-served across sessions, so access
// is serialized here.
type PlasmaState struct {
	ActiveEntityState

	mu     sync.Mutex
	points map[uint8]*PlasmaPoint
}

func NewPlasmaState(entityID int32, x, y float64, pointIDs []uint8) *PlasmaState {
	p := &PlasmaState{
		ActiveEntityState: ActiveEntityState{EntityID: entityID, X: x, Y: y},
		points:            make(map[uint8]*PlasmaPoint, len(pointIDs)),
	}
	for _, id := range pointIDs {
		p.points[id] = &PlasmaPoint{ID: id}
	}
	return p
}

// Point returns the point with the given ID, or nil.
func (p *PlasmaState) Point(id uint8) *PlasmaPoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.points[id]
}

// PickPoint claims a point for a player. Fails when the point does not
// exist or is already claimed by someone else.
func (p *PlasmaState) PickPoint(id uint8, worldCID int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	point, ok := p.points[id]
	if !ok {
		return false
	}
	if point.OwnerCID != 0 && point.OwnerCID != worldCID {
		return false
	}
	if point.OwnerCID == worldCID {
		return false // already picking it
	}
	point.OwnerCID = worldCID
	return true
}

// ReleasePoint frees a point claimed by the given player. Releasing a
// point someone else owns is a no-op.
func (p *PlasmaState) ReleasePoint(id uint8, worldCID int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if point, ok := p.points[id]; ok && point.OwnerCID == worldCID {
		point.OwnerCID = 0
	}
}
