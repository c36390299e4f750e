package world

// DemonState wraps the partner demon currently summoned beside a
// character.
type DemonState struct {
	ActiveEntityState
	Entity *Demon
}

func NewDemonState(d *Demon) *DemonState {
	return &DemonState{
		ActiveEntityState: ActiveEntityState{
			EntityID: NextEntityID(),
			UID:      d.UID,
		},
		Entity: d,
	}
}
