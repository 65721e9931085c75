package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/escolaware/horario/core/audit"
	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/snapshot"
	"github.com/escolaware/horario/core/user"
)

type (
	DB struct {
		user     *userTable
		schedule *scheduleTable
		audit    *auditTable
		snapshot *snapshotTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
		seq   int
	}

	scheduleTable struct {
		sync.RWMutex
		table map[int64]*schedule.SlotRecord
		seq   int64
	}

	auditTable struct {
		sync.RWMutex
		table map[int64]*audit.Entry
		seq   int64
	}

	snapshotTable struct {
		sync.RWMutex
		table map[uuid.UUID]*snapshot.Snapshot
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[int]*user.User)},
		schedule: &scheduleTable{table: make(map[int64]*schedule.SlotRecord)},
		audit:    &auditTable{table: make(map[int64]*audit.Entry)},
		snapshot: &snapshotTable{table: make(map[uuid.UUID]*snapshot.Snapshot)},
	}
	return db, nil
}
