package schedule

import (
	"fmt"
	"sort"
	"strings"
)

type (
	ConflictOccurrence struct {
		Grupo      string `json:"grupo"`
		Turma      string `json:"turma"`
		Disciplina string `json:"disciplina"`
	}

	// TeacherConflict reports the same teacher scheduled in two or more groups
	// at the same (dia, lesson number). Lesson ordinals are the unit of
	// comparison across groups, not wall-clock time: groups with different break
	// placement keep their own numbering, so nominally simultaneous lessons may
	// start at different times. The check reports ordinal collisions only.
	TeacherConflict struct {
		Dia         string               `json:"dia"`
		Aula        int                  `json:"aula"`
		Professor   string               `json:"professor"`
		Ocorrencias []ConflictOccurrence `json:"ocorrencias"`
	}

	// ClassAlert groups one class section's quality messages.
	ClassAlert struct {
		Turma     string   `json:"turma"`
		Mensagens []string `json:"mensagens"`
	}
)

// TeacherConflicts scans every group of the timetable at once and collects the
// occurrences of each (dia, lesson number, professor) key. Keys hit by two or
// more occurrences are conflicts. Output order is deterministic: layout day
// order, then lesson number, then teacher name.
func TeacherConflicts(tt Timetable, layout Layout) []TeacherConflict {
	type key struct {
		dia  string
		aula int
		prof string
	}
	mapa := make(map[key][]ConflictOccurrence)

	for _, grupo := range layout.Grupos {
		horario := tt[grupo.ID]
		if horario == nil {
			continue
		}

		for _, dia := range layout.Dias {
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

				k := key{dia: dia, aula: numAula, prof: prof}
				mapa[k] = append(mapa[k], ConflictOccurrence{
					Grupo:      grupo.Nome,
					Turma:      aula.Turma,
					Disciplina: aula.Disciplina,
				})
			}
		}
	}

	diaIdx := make(map[string]int, len(layout.Dias))
	for i, d := range layout.Dias {
		diaIdx[d] = i
	}

	conflitos := make([]TeacherConflict, 0)
	for k, lista := range mapa {
		if len(lista) < 2 {
			continue
		}
		conflitos = append(conflitos, TeacherConflict{
			Dia:         k.dia,
			Aula:        k.aula,
			Professor:   k.prof,
			Ocorrencias: lista,
		})
	}
	sort.Slice(conflitos, func(i, j int) bool {
		a, b := conflitos[i], conflitos[j]
		if diaIdx[a.Dia] != diaIdx[b.Dia] {
			return diaIdx[a.Dia] < diaIdx[b.Dia]
		}
		if a.Aula != b.Aula {
			return a.Aula < b.Aula
		}
		return a.Professor < b.Professor
	})
	return conflitos
}

// ClassAlerts inspects one group's class-view for timetable-quality issues:
// holes (an empty lesson with occupied lessons on both sides, at most one
// message per day) and runs of three or more consecutive lessons of the same
// subject (one message per run). Holes are measured in lesson-number space;
// breaks are excluded entirely.
func ClassAlerts(horario GroupSchedule, grupo Group, dias []string) []ClassAlert {
	gradeTurma := BuildClassGrade(horario, grupo, dias)

	turmas := make([]string, 0, len(gradeTurma))
	for turma := range gradeTurma {
		turmas = append(turmas, turma)
	}
	sort.Strings(turmas)

	numAulas := grupo.LessonCount()
	alertas := make([]ClassAlert, 0)

	for _, turma := range turmas {
		var mensagens []string

		for _, dia := range dias {
			aulasDia := gradeTurma[turma][dia]
			vetor := make([]*ClassLesson, numAulas)
			for i := 0; i < numAulas; i++ {
				if aula, ok := aulasDia[i+1]; ok {
					a := aula
					vetor[i] = &a
				}
			}

			if hasHole(vetor) {
				mensagens = append(mensagens, fmt.Sprintf("Dia %s: há buracos entre aulas.", dia))
			}

			for _, disc := range repeatedSubjects(vetor) {
				mensagens = append(mensagens, fmt.Sprintf("Dia %s: muitas aulas seguidas da disciplina %q.", dia, disc))
			}
		}

		if len(mensagens) > 0 {
			alertas = append(alertas, ClassAlert{Turma: turma, Mensagens: mensagens})
		}
	}
	return alertas
}

// hasHole reports whether some interior position is empty with at least one
// occupied position strictly before and one strictly after it.
func hasHole(vetor []*ClassLesson) bool {
	for i := 1; i < len(vetor)-1; i++ {
		if vetor[i] != nil {
			continue
		}
		var antes, depois bool
		for _, v := range vetor[:i] {
			if v != nil {
				antes = true
				break
			}
		}
		for _, v := range vetor[i+1:] {
			if v != nil {
				depois = true
				break
			}
		}
		if antes && depois {
			return true
		}
	}
	return false
}

// repeatedSubjects returns one entry per run of >= 3 consecutive equal subjects.
// A subject forming two separate qualifying runs in the same day appears twice.
func repeatedSubjects(vetor []*ClassLesson) []string {
	var (
		atual     string
		contador  int
		repetidas []string
	)
	for _, info := range vetor {
		var disc string
		if info != nil {
			disc = strings.TrimSpace(info.Disciplina)
		}
		if disc != "" && disc == atual {
			contador++
			continue
		}
		if atual != "" && contador >= 3 {
			repetidas = append(repetidas, atual)
		}
		atual = disc
		if disc != "" {
			contador = 1
		} else {
			contador = 0
		}
	}
	if atual != "" && contador >= 3 {
		repetidas = append(repetidas, atual)
	}
	return repetidas
}
