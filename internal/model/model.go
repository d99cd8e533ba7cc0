package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Army{},
	&Zombie{},
	&Battle{},
}

// Army is one owner's roster. Version backs optimistic concurrency on save.
type Army struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Owner     string    `json:"owner" gorm:"size:64;uniqueIndex:idx_army_owner;not null"`
	Version   uint64    `json:"version" gorm:"not null;default:0"`
	Zombies   []Zombie  `json:"zombies" gorm:"foreignKey:ArmyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (*Army) TableName() string {
	return "armies"
}

// Zombie is one slot of an army. Every army always has all of its slots
// stored; an empty slot has DNA 0.
//
// DNA and XP are unsigned 64-bit in the game but bigint columns are signed,
// so they are stored bit-for-bit as int64.
type Zombie struct {
	ID        uint  `json:"id" gorm:"primarykey;autoIncrement"`
	ArmyID    uint  `json:"armyId" gorm:"uniqueIndex:idx_zombie_army_slot;not null"`
	Slot      uint8 `json:"slot" gorm:"uniqueIndex:idx_zombie_army_slot;not null"`
	DNA       int64 `json:"dna" gorm:"not null;default:0"`
	LastFight int64 `json:"lastFight" gorm:"not null;default:0"`
	XP        int64 `json:"xp" gorm:"not null;default:0"`
}

func (*Zombie) TableName() string {
	return "zombies"
}

// Battle is the audit record of a resolved battle.
type Battle struct {
	ID            string         `json:"id" gorm:"primarykey;size:36"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"index:idx_battle_created_at"`
	Owner         string         `json:"owner" gorm:"size:64;index:idx_battle_owner;not null"`
	ZombieID      uint8          `json:"zombieId"`
	Selection     uint8          `json:"selection"`
	Candidates    datatypes.JSON `json:"candidates"`
	ShuffledOrder datatypes.JSON `json:"shuffledOrder"`
	Outcome       uint8          `json:"outcome"`
	State         uint8          `json:"state"`
	Tick          int64          `json:"tick"`
	ResolvedAt    int64          `json:"resolvedAt"`
	SpawnSlot     int            `json:"spawnSlot"`
}

func (*Battle) TableName() string {
	return "battles"
}
