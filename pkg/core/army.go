package core

// Army is the per-player collection of zombie slots. Slot positions are the
// externally visible zombie ids and never move.
type Army struct {
	Owner   Identity           `json:"owner" yaml:"owner"`
	Zombies [MaxZombies]Zombie `json:"zombies" yaml:"zombies"`

	// Version is the storage sequence number used for optimistic writes.
	// Game operations never touch it.
	Version uint64 `json:"version" yaml:"version"`
}

// NewArmy returns an army with every slot empty.
func NewArmy(owner Identity) Army {
	return Army{Owner: owner}
}

// ValidZombieID reports whether id addresses a slot.
func ValidZombieID(id uint8) bool {
	return int(id) < MaxZombies
}

// Slot returns a pointer to the zombie at id.
func (a *Army) Slot(id uint8) (*Zombie, error) {
	if !ValidZombieID(id) {
		return nil, ErrInvalidZombieID
	}
	return &a.Zombies[id], nil
}

// AddZombie places z into the lowest-indexed empty slot and returns that index.
// A full army is left untouched.
func (a *Army) AddZombie(z Zombie) (int, error) {
	for i := range a.Zombies {
		if a.Zombies[i].IsEmpty() {
			a.Zombies[i] = z
			return i, nil
		}
	}
	return -1, ErrNoEmptySlot
}

// Count returns the number of occupied slots.
func (a *Army) Count() int {
	n := 0
	for _, z := range a.Zombies {
		if !z.IsEmpty() {
			n++
		}
	}
	return n
}
