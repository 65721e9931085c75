package schedule

import (
	"github.com/escolaware/horario/core"
)

// SlotType distinguishes teachable slots from breaks. Breaks never hold content
// and never receive a lesson number.
type SlotType string

const (
	SlotAula      SlotType = "aula"
	SlotIntervalo SlotType = "intervalo"
)

type Slot struct {
	ID    int      `json:"id"`
	Label string   `json:"label"`
	Tipo  SlotType `json:"tipo"`
}

// Lesson is the content of one teachable slot. The empty string and an absent
// value mean the same thing everywhere lessons are compared.
type Lesson struct {
	Disciplina string `json:"disciplina"`
	Professor  string `json:"professor"`
	Turma      string `json:"turma"`
}

// IsEmpty reports whether the lesson carries no content at all.
func (l *Lesson) IsEmpty() bool {
	return l == nil || (l.Disciplina == "" && l.Professor == "" && l.Turma == "")
}

func (l *Lesson) Clone() *Lesson {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

type (
	// DaySchedule maps a raw slot id to its content; nil means empty.
	DaySchedule map[int]*Lesson

	// GroupSchedule maps a weekday name to that day's slots.
	GroupSchedule map[string]DaySchedule

	// Timetable maps a group id to its weekly schedule.
	Timetable map[string]GroupSchedule
)

func (gs GroupSchedule) Clone() GroupSchedule {
	if gs == nil {
		return nil
	}
	c := make(GroupSchedule, len(gs))
	for dia, slots := range gs {
		ds := make(DaySchedule, len(slots))
		for id, lesson := range slots {
			ds[id] = lesson.Clone()
		}
		c[dia] = ds
	}
	return c
}

func (tt Timetable) Clone() Timetable {
	if tt == nil {
		return nil
	}
	c := make(Timetable, len(tt))
	for grupo, gs := range tt {
		c[grupo] = gs.Clone()
	}
	return c
}

// Group is a cohort of classes sharing one daily slot layout.
type Group struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	Slots     []Slot `json:"slots"`
}

// Slot returns the typed slot with the given raw id.
func (g Group) Slot(id int) (Slot, bool) {
	for _, s := range g.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// LessonCount is the number of teachable slots per day.
func (g Group) LessonCount() int {
	var n int
	for _, s := range g.Slots {
		if s.Tipo == SlotAula {
			n++
		}
	}
	return n
}

// Layout is the slot-layout configuration, injected explicitly so the builders
// and analyzers stay pure functions of their inputs.
type Layout struct {
	Dias   []string `json:"dias"`
	Grupos []Group  `json:"grupos"`
}

func (l Layout) Group(id string) (Group, bool) {
	for _, g := range l.Grupos {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

func (l Layout) HasDay(dia string) bool {
	for _, d := range l.Dias {
		if d == dia {
			return true
		}
	}
	return false
}

// DefaultLayout is the school's stock configuration: two shifts with the break
// after the 3rd and 4th lesson respectively, Monday through Friday.
func DefaultLayout() Layout {
	return Layout{
		Dias: []string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta"},
		Grupos: []Group{
			{
				ID:        "fund2",
				Nome:      "6º ao 8º ano",
				Descricao: "Intervalo às 9h30 (após a 3ª aula)",
				Slots: []Slot{
					{ID: 1, Label: "07:00 - 07:50 (Aula 1)", Tipo: SlotAula},
					{ID: 2, Label: "07:50 - 08:40 (Aula 2)", Tipo: SlotAula},
					{ID: 3, Label: "08:40 - 09:30 (Aula 3)", Tipo: SlotAula},
					{ID: 4, Label: "09:30 - 09:50 (Intervalo)", Tipo: SlotIntervalo},
					{ID: 5, Label: "09:50 - 10:40 (Aula 4)", Tipo: SlotAula},
					{ID: 6, Label: "10:40 - 11:30 (Aula 5)", Tipo: SlotAula},
					{ID: 7, Label: "11:30 - 12:20 (Aula 6)", Tipo: SlotAula},
				},
			},
			{
				ID:        "medio",
				Nome:      "9º ano e Ensino Médio",
				Descricao: "Intervalo às 10h20 (após a 4ª aula)",
				Slots: []Slot{
					{ID: 1, Label: "07:00 - 07:50 (Aula 1)", Tipo: SlotAula},
					{ID: 2, Label: "07:50 - 08:40 (Aula 2)", Tipo: SlotAula},
					{ID: 3, Label: "08:40 - 09:30 (Aula 3)", Tipo: SlotAula},
					{ID: 4, Label: "09:30 - 10:20 (Aula 4)", Tipo: SlotAula},
					{ID: 5, Label: "10:20 - 10:40 (Intervalo)", Tipo: SlotIntervalo},
					{ID: 6, Label: "10:40 - 11:30 (Aula 5)", Tipo: SlotAula},
					{ID: 7, Label: "11:30 - 12:20 (Aula 6)", Tipo: SlotAula},
				},
			},
		},
	}
}

// SlotInput is the payload to save one slot's content.
type SlotInput struct {
	GrupoID    string `json:"grupoId" validate:"required"`
	Dia        string `json:"dia" validate:"required"`
	SlotID     int    `json:"slotId" validate:"required"`
	Disciplina string `json:"disciplina"`
	Professor  string `json:"professor"`
	Turma      string `json:"turma"`
}

func (in *SlotInput) Validate(layout Layout) error {
	in.GrupoID = core.CleanString(in.GrupoID)
	in.Dia = core.CleanString(in.Dia)
	in.Disciplina = core.CleanString(in.Disciplina)
	in.Professor = core.CleanString(in.Professor)
	in.Turma = core.CleanString(in.Turma)

	if err := core.Validate.Struct(in); err != nil {
		return err
	}
	return validateCoordinates(layout, in.GrupoID, in.Dia, in.SlotID)
}

// ClearInput identifies one slot to clear.
type ClearInput struct {
	GrupoID string `json:"grupoId" validate:"required"`
	Dia     string `json:"dia" validate:"required"`
	SlotID  int    `json:"slotId" validate:"required"`
}

func (in *ClearInput) Validate(layout Layout) error {
	in.GrupoID = core.CleanString(in.GrupoID)
	in.Dia = core.CleanString(in.Dia)

	if err := core.Validate.Struct(in); err != nil {
		return err
	}
	return validateCoordinates(layout, in.GrupoID, in.Dia, in.SlotID)
}

func validateCoordinates(layout Layout, grupoID, dia string, slotID int) error {
	grupo, ok := layout.Group(grupoID)
	if !ok {
		return core.NewValidationError(ErrUnknownGroup, core.FieldError{Field: "grupoId", Error: ErrUnknownGroup.Error()})
	}
	if !layout.HasDay(dia) {
		return core.NewValidationError(ErrUnknownDay, core.FieldError{Field: "dia", Error: ErrUnknownDay.Error()})
	}
	slot, ok := grupo.Slot(slotID)
	if !ok {
		return core.NewValidationError(ErrUnknownSlot, core.FieldError{Field: "slotId", Error: ErrUnknownSlot.Error()})
	}
	if slot.Tipo != SlotAula {
		return core.NewValidationError(ErrBreakSlot, core.FieldError{Field: "slotId", Error: ErrBreakSlot.Error()})
	}
	return nil
}
