package snapshot

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/escolaware/horario/core/schedule"
)

// UnifiedDiff renders the snapshot/live comparison of one group as a unified
// text diff over the printable grid, one line per (day, lesson). Meant for the
// export surface; the structured form is Service.Diff.
func UnifiedDiff(snap Snapshot, grupoID string, live schedule.Timetable, layout schedule.Layout) (string, error) {
	grupo, ok := layout.Group(grupoID)
	if !ok {
		return "", ErrUnknownGroup
	}

	diff := difflib.UnifiedDiff{
		A:        gridLines(snap.Dados[grupoID], grupo, layout.Dias),
		B:        gridLines(live[grupoID], grupo, layout.Dias),
		FromFile: fmt.Sprintf("snapshot %q (%s)", snap.Nome, snap.CriadoEm.Format("2006-01-02 15:04")),
		ToFile:   "horário atual",
		Context:  2,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func gridLines(horario schedule.GroupSchedule, grupo schedule.Group, dias []string) []string {
	var lines []string
	for _, dia := range dias {
		var numAula int
		for _, slot := range grupo.Slots {
			if slot.Tipo != schedule.SlotAula {
				continue
			}
			numAula++

			aula := horario[dia][slot.ID]
			if aula.IsEmpty() {
				lines = append(lines, fmt.Sprintf("%s aula %d: -\n", dia, numAula))
				continue
			}
			lines = append(lines, fmt.Sprintf("%s aula %d: %s | %s | %s\n",
				dia, numAula, aula.Disciplina, aula.Professor, aula.Turma))
		}
	}
	return lines
}
