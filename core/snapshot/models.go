package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/escolaware/horario/core"
	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/user"
)

// Snapshot is a named, immutable full copy of the multi-group timetable at a
// point in time.
type Snapshot struct {
	ID        uuid.UUID          `json:"id"`
	Nome      string             `json:"nome"`
	Descricao *string            `json:"descricao"`
	Dados     schedule.Timetable `json:"dados"`
	Usuario   user.Ref           `json:"usuario"`
	CriadoEm  time.Time          `json:"criadoEm"` // UTC
}

// NewSnapshot contains information needed to create a Snapshot.
type NewSnapshot struct {
	Nome      string             `json:"nome" validate:"required"`
	Descricao string             `json:"descricao"`
	Dados     schedule.Timetable `json:"dados" validate:"required"`
}

func (ns *NewSnapshot) Validate() error {
	ns.Nome = core.CleanString(ns.Nome)
	ns.Descricao = core.CleanString(ns.Descricao)
	return core.Validate.Struct(ns)
}

// FieldDiff is one field-level difference between a snapshot and the live
// timetable, in lesson-number space.
type FieldDiff struct {
	Dia   string `json:"dia"`
	Aula  int    `json:"aula"`
	Campo string `json:"campo"` // turma | disciplina | professor
	De    string `json:"de"`
	Para  string `json:"para"`
}
