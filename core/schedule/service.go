package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/escolaware/horario/core/audit"
	"github.com/escolaware/horario/core/user"
)

var (
	// errors
	ErrSlotNotFound = errors.New("slot not found")
	ErrUnknownGroup = errors.New("unknown group")
	ErrUnknownDay   = errors.New("unknown day")
	ErrUnknownSlot  = errors.New("unknown slot")
	ErrBreakSlot    = errors.New("breaks cannot hold lessons")
)

const tableHorarios = "horarios"

type (
	// SlotRecord is one stored row of the timetable.
	SlotRecord struct {
		ID      int64
		GrupoID string
		Dia     string
		SlotID  int
		Aula    *Lesson // nil when the row holds no content
	}

	Repository interface {
		GetTimetable(ctx context.Context) (Timetable, error)
		GetGroupTimetable(ctx context.Context, grupoID string) (GroupSchedule, error)
		GetSlot(ctx context.Context, grupoID, dia string, slotID int) (SlotRecord, error)
		GetGroupSlots(ctx context.Context, grupoID string) ([]SlotRecord, error)
		InsertSlot(ctx context.Context, rec SlotRecord, usuarioID int) (int64, error)
		UpdateSlot(ctx context.Context, id int64, aula *Lesson, usuarioID int) error
		ClearSlot(ctx context.Context, grupoID, dia string, slotID, usuarioID int) error
		ClearGroup(ctx context.Context, grupoID string, usuarioID int) error
	}

	// SaveResult reports the affected row and whether it was created.
	SaveResult struct {
		ID     int64 `json:"id"`
		Criado bool  `json:"criado"`
	}

	Service struct {
		repo   Repository
		audit  *audit.Service
		layout Layout
	}
)

func NewService(repo Repository, auditSvc *audit.Service, layout Layout) *Service {
	return &Service{repo: repo, audit: auditSvc, layout: layout}
}

func (svc *Service) Layout() Layout { return svc.layout }

// Timetable returns every group's schedule, normalized so each configured day
// and teachable slot is present (nil when empty).
func (svc *Service) Timetable(ctx context.Context) (Timetable, error) {
	tt, err := svc.repo.GetTimetable(ctx)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		tt = make(Timetable)
	}
	for _, grupo := range svc.layout.Grupos {
		tt[grupo.ID] = svc.normalize(tt[grupo.ID], grupo)
	}
	return tt, nil
}

func (svc *Service) GroupTimetable(ctx context.Context, grupoID string) (GroupSchedule, error) {
	grupo, ok := svc.layout.Group(grupoID)
	if !ok {
		return nil, ErrUnknownGroup
	}
	horario, err := svc.repo.GetGroupTimetable(ctx, grupoID)
	if err != nil {
		return nil, err
	}
	return svc.normalize(horario, grupo), nil
}

// normalize fills the configured days and teachable slots a group is missing.
func (svc *Service) normalize(horario GroupSchedule, grupo Group) GroupSchedule {
	if horario == nil {
		horario = make(GroupSchedule, len(svc.layout.Dias))
	}
	for _, dia := range svc.layout.Dias {
		if horario[dia] == nil {
			horario[dia] = make(DaySchedule, len(grupo.Slots))
		}
		for _, slot := range grupo.Slots {
			if slot.Tipo != SlotAula {
				continue
			}
			if _, ok := horario[dia][slot.ID]; !ok {
				horario[dia][slot.ID] = nil
			}
		}
	}
	return horario
}

// SaveSlot creates or updates one slot's content. On update, one audit entry is
// written per changed field; on create, a single entry carries the whole lesson.
func (svc *Service) SaveSlot(ctx context.Context, in SlotInput, actor user.User) (SaveResult, error) {
	if err := in.Validate(svc.layout); err != nil {
		return SaveResult{}, err
	}

	aula := &Lesson{Disciplina: in.Disciplina, Professor: in.Professor, Turma: in.Turma}
	if aula.IsEmpty() {
		aula = nil
	}

	existente, err := svc.repo.GetSlot(ctx, in.GrupoID, in.Dia, in.SlotID)
	if err != nil && err != ErrSlotNotFound {
		return SaveResult{}, err
	}

	if err == ErrSlotNotFound {
		id, err := svc.repo.InsertSlot(ctx, SlotRecord{
			GrupoID: in.GrupoID,
			Dia:     in.Dia,
			SlotID:  in.SlotID,
			Aula:    aula,
		}, actor.ID)
		if err != nil {
			return SaveResult{}, err
		}

		if _, err = svc.audit.Record(ctx, audit.NewEntry{
			TipoAlteracao: audit.KindCriar,
			Tabela:        tableHorarios,
			RegistroID:    &id,
			GrupoID:       &in.GrupoID,
			Dia:           &in.Dia,
			SlotID:        &in.SlotID,
			ValorNovo:     lessonValue(aula),
			UsuarioID:     actor.ID,
			Detalhes:      fmt.Sprintf("Horário criado: %s - %s - %s", in.Disciplina, in.Professor, in.Turma),
		}); err != nil {
			return SaveResult{}, err
		}
		return SaveResult{ID: id, Criado: true}, nil
	}

	// per-field entries, before the row is touched
	for _, mudanca := range fieldChanges(existente.Aula, aula) {
		campo := mudanca.campo
		if _, err = svc.audit.Record(ctx, audit.NewEntry{
			TipoAlteracao: audit.KindAtualizar,
			Tabela:        tableHorarios,
			RegistroID:    &existente.ID,
			GrupoID:       &in.GrupoID,
			Dia:           &in.Dia,
			SlotID:        &in.SlotID,
			CampoAlterado: &campo,
			ValorAnterior: strValue(mudanca.anterior),
			ValorNovo:     strValue(mudanca.novo),
			UsuarioID:     actor.ID,
			Detalhes: fmt.Sprintf("%s de %q para %q",
				fieldLabel(campo), orEmptyLabel(mudanca.anterior), orEmptyLabel(mudanca.novo)),
		}); err != nil {
			return SaveResult{}, err
		}
	}

	if err = svc.repo.UpdateSlot(ctx, existente.ID, aula, actor.ID); err != nil {
		return SaveResult{}, err
	}
	return SaveResult{ID: existente.ID, Criado: false}, nil
}

// ClearSlot empties one slot, recording a single coarse entry when it had
// content. Clearing an already empty slot is a no-op on the audit trail.
func (svc *Service) ClearSlot(ctx context.Context, in ClearInput, actor user.User) error {
	if err := in.Validate(svc.layout); err != nil {
		return err
	}

	existente, err := svc.repo.GetSlot(ctx, in.GrupoID, in.Dia, in.SlotID)
	if err != nil && err != ErrSlotNotFound {
		return err
	}

	if err == nil && !existente.Aula.IsEmpty() {
		if _, err = svc.audit.Record(ctx, audit.NewEntry{
			TipoAlteracao: audit.KindLimpar,
			Tabela:        tableHorarios,
			RegistroID:    &existente.ID,
			GrupoID:       &in.GrupoID,
			Dia:           &in.Dia,
			SlotID:        &in.SlotID,
			ValorAnterior: lessonValue(existente.Aula),
			UsuarioID:     actor.ID,
			Detalhes: fmt.Sprintf("Horário limpo: %s - %s - %s",
				existente.Aula.Disciplina, existente.Aula.Professor, existente.Aula.Turma),
		}); err != nil {
			return err
		}
	}

	return svc.repo.ClearSlot(ctx, in.GrupoID, in.Dia, in.SlotID, actor.ID)
}

// ClearGroup empties every slot of one group, recording one entry per slot that
// had content.
func (svc *Service) ClearGroup(ctx context.Context, grupoID string, actor user.User) error {
	if _, ok := svc.layout.Group(grupoID); !ok {
		return ErrUnknownGroup
	}

	registros, err := svc.repo.GetGroupSlots(ctx, grupoID)
	if err != nil {
		return err
	}
	for _, rec := range registros {
		if rec.Aula.IsEmpty() {
			continue
		}
		rec := rec
		if _, err = svc.audit.Record(ctx, audit.NewEntry{
			TipoAlteracao: audit.KindLimpar,
			Tabela:        tableHorarios,
			RegistroID:    &rec.ID,
			GrupoID:       &grupoID,
			Dia:           &rec.Dia,
			SlotID:        &rec.SlotID,
			ValorAnterior: lessonValue(rec.Aula),
			UsuarioID:     actor.ID,
			Detalhes: fmt.Sprintf("Grupo limpo: %s - %s - %s",
				rec.Aula.Disciplina, rec.Aula.Professor, rec.Aula.Turma),
		}); err != nil {
			return err
		}
	}

	return svc.repo.ClearGroup(ctx, grupoID, actor.ID)
}

// TeacherGrade builds the teacher-view projection of one group.
func (svc *Service) TeacherGrade(ctx context.Context, grupoID string) (TeacherGrade, error) {
	grupo, ok := svc.layout.Group(grupoID)
	if !ok {
		return nil, ErrUnknownGroup
	}
	horario, err := svc.GroupTimetable(ctx, grupoID)
	if err != nil {
		return nil, err
	}
	return BuildTeacherGrade(horario, grupo, svc.layout.Dias), nil
}

// ClassGrade builds the class-view projection of one group.
func (svc *Service) ClassGrade(ctx context.Context, grupoID string) (ClassGrade, error) {
	grupo, ok := svc.layout.Group(grupoID)
	if !ok {
		return nil, ErrUnknownGroup
	}
	horario, err := svc.GroupTimetable(ctx, grupoID)
	if err != nil {
		return nil, err
	}
	return BuildClassGrade(horario, grupo, svc.layout.Dias), nil
}

// Conflicts runs the cross-group double-booking check over the live timetable.
func (svc *Service) Conflicts(ctx context.Context) ([]TeacherConflict, error) {
	tt, err := svc.Timetable(ctx)
	if err != nil {
		return nil, err
	}
	return TeacherConflicts(tt, svc.layout), nil
}

// Alerts runs the per-class quality checks for one group.
func (svc *Service) Alerts(ctx context.Context, grupoID string) ([]ClassAlert, error) {
	grupo, ok := svc.layout.Group(grupoID)
	if !ok {
		return nil, ErrUnknownGroup
	}
	horario, err := svc.GroupTimetable(ctx, grupoID)
	if err != nil {
		return nil, err
	}
	return ClassAlerts(horario, grupo, svc.layout.Dias), nil
}

type fieldChange struct {
	campo    string
	anterior string
	novo     string
}

// fieldChanges compares two lessons field by field, treating nil as all-empty.
func fieldChanges(antes, depois *Lesson) []fieldChange {
	var a, d Lesson
	if antes != nil {
		a = *antes
	}
	if depois != nil {
		d = *depois
	}

	var mudancas []fieldChange
	if a.Disciplina != d.Disciplina {
		mudancas = append(mudancas, fieldChange{campo: "disciplina", anterior: a.Disciplina, novo: d.Disciplina})
	}
	if a.Professor != d.Professor {
		mudancas = append(mudancas, fieldChange{campo: "professor", anterior: a.Professor, novo: d.Professor})
	}
	if a.Turma != d.Turma {
		mudancas = append(mudancas, fieldChange{campo: "turma", anterior: a.Turma, novo: d.Turma})
	}
	return mudancas
}

func fieldLabel(campo string) string {
	switch campo {
	case "disciplina":
		return "Disciplina alterada"
	case "professor":
		return "Professor alterado"
	case "turma":
		return "Turma alterada"
	}
	return campo
}

// strValue maps the empty string to a JSON null, preserving the storage
// convention that "" and absent mean the same thing.
func strValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// lessonValue is the object form stored on coarse-grained entries.
func lessonValue(aula *Lesson) interface{} {
	if aula.IsEmpty() {
		return nil
	}
	return map[string]interface{}{
		"disciplina": strValue(aula.Disciplina),
		"professor":  strValue(aula.Professor),
		"turma":      strValue(aula.Turma),
	}
}

func orEmptyLabel(s string) string {
	if s == "" {
		return "vazio"
	}
	return s
}
