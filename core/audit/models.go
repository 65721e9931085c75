package audit

import (
	"time"

	"github.com/escolaware/horario/core/user"
)

// Kind is the closed set of alteration kinds. Storage persists the raw string;
// parse once at the boundary.
type Kind string

const (
	KindCriar     Kind = "criar"
	KindAtualizar Kind = "atualizar"
	KindDeletar   Kind = "deletar"
	KindLimpar    Kind = "limpar"
)

// ParseKind validates a raw alteration-kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCriar, KindAtualizar, KindDeletar, KindLimpar:
		return k, nil
	}
	return "", ErrInvalidKind
}

// Entry is one immutable record of a single mutation. Slot coordinates and the
// changed field are nullable: coarse-grained entries (snapshot restores, whole
// slot creations) leave them unset. Values round-trip through their stored JSON
// form: strings stay strings, objects stay objects, null stays nil.
type Entry struct {
	ID            int64       `json:"id"`
	TipoAlteracao Kind        `json:"tipoAlteracao"`
	Tabela        string      `json:"tabela"`
	RegistroID    *int64      `json:"registroId"`
	GrupoID       *string     `json:"grupoId"`
	Dia           *string     `json:"dia"`
	SlotID        *int        `json:"slotId"`
	CampoAlterado *string     `json:"campoAlterado"`
	ValorAnterior interface{} `json:"valorAnterior"`
	ValorNovo     interface{} `json:"valorNovo"`
	Usuario       user.Ref    `json:"usuario"`
	Timestamp     time.Time   `json:"timestamp"` // UTC
	Detalhes      *string     `json:"detalhes"`
}

// NewEntry carries one mutation into the log. UsuarioID must reference an
// existing user; the write fails otherwise.
type NewEntry struct {
	TipoAlteracao Kind
	Tabela        string
	RegistroID    *int64
	GrupoID       *string
	Dia           *string
	SlotID        *int
	CampoAlterado *string
	ValorAnterior interface{}
	ValorNovo     interface{}
	UsuarioID     int
	Timestamp     time.Time
	Detalhes      string
}

// Filter narrows a query; zero values mean "no filter" and all present fields
// are combined with AND. Timestamp bounds are inclusive.
type Filter struct {
	GrupoID       string
	Dia           string
	SlotID        int
	UsuarioID     int
	TipoAlteracao Kind
	DataInicio    time.Time
	DataFim       time.Time
	Limite        int
}

type (
	KindCount struct {
		Tipo       Kind `json:"tipo"`
		Quantidade int  `json:"quantidade"`
	}

	UserCount struct {
		Nome       string    `json:"nome"`
		Perfil     user.Role `json:"perfil"`
		Quantidade int       `json:"quantidade"`
	}

	Stats struct {
		TotalAlteracoes   int         `json:"totalAlteracoes"`
		TotalUsuarios     int         `json:"totalUsuarios"`
		TotalGrupos       int         `json:"totalGrupos"`
		PrimeiraAlteracao *time.Time  `json:"primeiraAlteracao"`
		UltimaAlteracao   *time.Time  `json:"ultimaAlteracao"`
		PorTipo           []KindCount `json:"porTipo"`
		PorUsuario        []UserCount `json:"porUsuario"` // top 10 by entry count
	}

	// StatsFilter bounds the statistics window; zero values mean unbounded.
	StatsFilter struct {
		DataInicio time.Time
		DataFim    time.Time
	}
)
