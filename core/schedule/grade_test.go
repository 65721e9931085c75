package schedule

import (
	"reflect"
	"testing"
)

// testGroup has three morning lessons, a break, then one more lesson.
func testGroup() Group {
	return Group{
		ID:   "fund2",
		Nome: "6º ao 8º ano",
		Slots: []Slot{
			{ID: 1, Label: "Aula 1", Tipo: SlotAula},
			{ID: 2, Label: "Aula 2", Tipo: SlotAula},
			{ID: 3, Label: "Aula 3", Tipo: SlotAula},
			{ID: 4, Label: "Intervalo", Tipo: SlotIntervalo},
			{ID: 5, Label: "Aula 4", Tipo: SlotAula},
		},
	}
}

var testDias = []string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta"}

func TestLessonSlotID(t *testing.T) {
	slots := testGroup().Slots

	tests := []struct {
		name    string
		numAula int
		wantID  int
		wantOK  bool
	}{
		{name: "first lesson", numAula: 1, wantID: 1, wantOK: true},
		{name: "third lesson", numAula: 3, wantID: 3, wantOK: true},
		{name: "lesson after the break", numAula: 4, wantID: 5, wantOK: true},
		{name: "beyond the last lesson", numAula: 5, wantOK: false},
		{name: "zero", numAula: 0, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := LessonSlotID(slots, tt.numAula)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("LessonSlotID(%d) = (%d, %v); want (%d, %v)", tt.numAula, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestBuildTeacherGrade_numbering(t *testing.T) {
	grupo := testGroup()
	horario := GroupSchedule{
		"Segunda": {
			1: &Lesson{Disciplina: "Matemática", Professor: "Alice", Turma: "6A"},
			3: &Lesson{Disciplina: "História", Professor: "Alice", Turma: "6B"},
			4: &Lesson{Disciplina: "Fantasma", Professor: "Alice", Turma: "6C"}, // break slot, ignored
			5: &Lesson{Disciplina: "Ciências", Professor: "Alice", Turma: "6A"},
		},
	}

	grade := BuildTeacherGrade(horario, grupo, testDias)

	want := map[int]TeacherLesson{
		1: {Disciplina: "Matemática", Turma: "6A"},
		3: {Disciplina: "História", Turma: "6B"},
		4: {Disciplina: "Ciências", Turma: "6A"},
	}
	if got := grade["Alice"]["Segunda"]; !reflect.DeepEqual(got, want) {
		t.Errorf("grade[Alice][Segunda] = %v; want %v", got, want)
	}
	if _, ok := grade["Alice"]["Segunda"][5]; ok {
		t.Error("break slot produced a lesson number")
	}
}

func TestBuildTeacherGrade_emptyProfessor(t *testing.T) {
	grupo := testGroup()
	horario := GroupSchedule{
		"Terça": {
			1: &Lesson{Disciplina: "Matemática", Professor: "", Turma: "6A"},
			2: &Lesson{Disciplina: "História", Professor: "   ", Turma: "6B"},
			3: &Lesson{Disciplina: "Ciências", Professor: "Bruno", Turma: "6A"},
		},
	}

	grade := BuildTeacherGrade(horario, grupo, testDias)

	if len(grade) != 1 {
		t.Fatalf("len(grade) = %d; want 1", len(grade))
	}
	if _, ok := grade["Bruno"]; !ok {
		t.Error("expected Bruno in the teacher view")
	}
	if _, ok := grade[""]; ok {
		t.Error("empty professor leaked into the teacher view")
	}
}

func TestBuildClassGrade_emptyTurma(t *testing.T) {
	grupo := testGroup()
	horario := GroupSchedule{
		"Quarta": {
			1: &Lesson{Disciplina: "Matemática", Professor: "Alice", Turma: " "},
			2: &Lesson{Disciplina: "História", Professor: "Alice", Turma: "6B"},
		},
	}

	grade := BuildClassGrade(horario, grupo, testDias)

	if len(grade) != 1 {
		t.Fatalf("len(grade) = %d; want 1", len(grade))
	}
	if got := grade["6B"]["Quarta"][2]; got.Disciplina != "História" {
		t.Errorf("grade[6B][Quarta][2] = %v; want História", got)
	}
}

// Scenario: saving slots 1, 3 and 5 lands on lesson numbers 1, 3 and 4 (slot 4
// is a break), so the class view of 6A has a gap at lesson 2.
func TestBuildClassGrade_scenario(t *testing.T) {
	grupo := testGroup()
	aula := &Lesson{Disciplina: "Matemática", Professor: "Alice", Turma: "6A"}
	horario := GroupSchedule{
		"Segunda": {1: aula, 3: aula, 5: aula},
	}

	grade := BuildClassGrade(horario, grupo, testDias)

	want := map[int]ClassLesson{
		1: {Disciplina: "Matemática", Professor: "Alice"},
		3: {Disciplina: "Matemática", Professor: "Alice"},
		4: {Disciplina: "Matemática", Professor: "Alice"},
	}
	if got := grade["6A"]["Segunda"]; !reflect.DeepEqual(got, want) {
		t.Errorf("grade[6A][Segunda] = %v; want %v", got, want)
	}

	alertas := ClassAlerts(horario, grupo, []string{"Segunda"})
	if len(alertas) != 1 {
		t.Fatalf("len(alertas) = %d; want 1", len(alertas))
	}
	want2 := []string{"Dia Segunda: há buracos entre aulas."}
	if !reflect.DeepEqual(alertas[0].Mensagens, want2) {
		t.Errorf("mensagens = %v; want %v", alertas[0].Mensagens, want2)
	}
}
