package schedule

import "strings"

// Derived grades are read-only projections of one group's schedule, recomputed
// from the live data on every read and never persisted. They are keyed by the
// 1-based lesson number, which counts only aula-typed slots: lesson 1 is the
// first teachable slot of the day regardless of its raw slot id.

type (
	TeacherLesson struct {
		Disciplina string `json:"disciplina"`
		Turma      string `json:"turma"`
	}

	// TeacherGrade: professor → dia → lesson number → lesson.
	TeacherGrade map[string]map[string]map[int]TeacherLesson

	ClassLesson struct {
		Disciplina string `json:"disciplina"`
		Professor  string `json:"professor"`
	}

	// ClassGrade: turma → dia → lesson number → lesson.
	ClassGrade map[string]map[string]map[int]ClassLesson
)

// LessonSlotID converts a 1-based lesson number to the raw slot id it occupies,
// skipping breaks. The second return is false when the group has fewer lessons.
func LessonSlotID(slots []Slot, numAula int) (int, bool) {
	var contador int
	for _, slot := range slots {
		if slot.Tipo != SlotAula {
			continue
		}
		contador++
		if contador == numAula {
			return slot.ID, true
		}
	}
	return 0, false
}

// BuildTeacherGrade projects one group's schedule by teacher. Slots whose
// professor is empty after trimming contribute nothing, even when other fields
// are set.
func BuildTeacherGrade(horario GroupSchedule, grupo Group, dias []string) TeacherGrade {
	grade := make(TeacherGrade)

	for _, dia := range dias {
		var numAula int
		for _, slot := range grupo.Slots {
			if slot.Tipo != SlotAula {
				continue
			}
			numAula++

			aula := horario[dia][slot.ID]
			if aula == nil {
				continue
			}
			prof := strings.TrimSpace(aula.Professor)
			if prof == "" {
				continue
			}

			if grade[prof] == nil {
				grade[prof] = make(map[string]map[int]TeacherLesson)
			}
			if grade[prof][dia] == nil {
				grade[prof][dia] = make(map[int]TeacherLesson)
			}
			grade[prof][dia][numAula] = TeacherLesson{
				Disciplina: aula.Disciplina,
				Turma:      aula.Turma,
			}
		}
	}
	return grade
}

// BuildClassGrade projects one group's schedule by class section, mirroring
// BuildTeacherGrade with turma as the key field.
func BuildClassGrade(horario GroupSchedule, grupo Group, dias []string) ClassGrade {
	grade := make(ClassGrade)

	for _, dia := range dias {
		var numAula int
		for _, slot := range grupo.Slots {
			if slot.Tipo != SlotAula {
				continue
			}
			numAula++

			aula := horario[dia][slot.ID]
			if aula == nil {
				continue
			}
			turma := strings.TrimSpace(aula.Turma)
			if turma == "" {
				continue
			}

			if grade[turma] == nil {
				grade[turma] = make(map[string]map[int]ClassLesson)
			}
			if grade[turma][dia] == nil {
				grade[turma][dia] = make(map[int]ClassLesson)
			}
			grade[turma][dia][numAula] = ClassLesson{
				Disciplina: aula.Disciplina,
				Professor:  aula.Professor,
			}
		}
	}
	return grade
}
