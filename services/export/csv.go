// Package exportsvc renders derived timetable views as CSV, one row per
// person-and-day (or class-and-day) with lesson numbers as columns.
package exportsvc

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/escolaware/horario/core/schedule"
)

// WriteTeacherGrid writes the teacher-view grid. Cells carry
// "disciplina (turma)"; empty lessons stay blank.
func WriteTeacherGrid(w io.Writer, grade schedule.TeacherGrade, dias []string, aulas int) error {
	cw := csv.NewWriter(w)

	header := []string{"Professor", "Dia"}
	for n := 1; n <= aulas; n++ {
		header = append(header, fmt.Sprintf("Aula %d", n))
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	professores := make([]string, 0, len(grade))
	for prof := range grade {
		professores = append(professores, prof)
	}
	sort.Strings(professores)

	for _, prof := range professores {
		for _, dia := range dias {
			row := []string{prof, dia}
			for n := 1; n <= aulas; n++ {
				var cell string
				if aula, ok := grade[prof][dia][n]; ok {
					cell = aula.Disciplina
					if aula.Turma != "" {
						cell = fmt.Sprintf("%s (%s)", aula.Disciplina, aula.Turma)
					}
				}
				row = append(row, cell)
			}
			if err := cw.Write(row); err != nil {
				return errors.Wrap(err, "writing teacher row")
			}
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing teacher grid")
}

// WriteClassGrid writes the class-view grid. Cells carry
// "disciplina - professor"; empty lessons stay blank.
func WriteClassGrid(w io.Writer, grade schedule.ClassGrade, dias []string, aulas int) error {
	cw := csv.NewWriter(w)

	header := []string{"Turma", "Dia"}
	for n := 1; n <= aulas; n++ {
		header = append(header, fmt.Sprintf("Aula %d", n))
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	turmas := make([]string, 0, len(grade))
	for turma := range grade {
		turmas = append(turmas, turma)
	}
	sort.Strings(turmas)

	for _, turma := range turmas {
		for _, dia := range dias {
			row := []string{turma, dia}
			for n := 1; n <= aulas; n++ {
				var cell string
				if aula, ok := grade[turma][dia][n]; ok {
					cell = aula.Disciplina
					if aula.Professor != "" {
						cell = fmt.Sprintf("%s - %s", aula.Disciplina, aula.Professor)
					}
				}
				row = append(row, cell)
			}
			if err := cw.Write(row); err != nil {
				return errors.Wrap(err, "writing class row")
			}
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing class grid")
}
