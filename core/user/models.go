package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/escolaware/horario/core"
)

// Role is the closed set of staff profiles. Storage persists them as plain
// strings; parsing happens once at the boundary.
type Role string

const (
	RoleDirecao     Role = "direcao"
	RoleViceDirecao Role = "vice_direcao"
	RoleCoordenacao Role = "coordenacao"
	RoleGOE         Role = "goe"
	RoleAOE         Role = "aoe"
	RoleProfessor   Role = "professor"
)

var (
	AllRoles = []Role{RoleDirecao, RoleViceDirecao, RoleCoordenacao, RoleGOE, RoleAOE, RoleProfessor}

	roleLabels = map[Role]string{
		RoleDirecao:     "Direção",
		RoleViceDirecao: "Vice-direção",
		RoleCoordenacao: "Coordenação",
		RoleGOE:         "GOE",
		RoleAOE:         "AOE",
		RoleProfessor:   "Professor",
	}
)

// ParseRole validates a raw profile string against the closed enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if _, ok := roleLabels[r]; !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) Label() string { return roleLabels[r] }

// CanEdit reports whether the role may mutate timetables, clear schedules and
// create/restore snapshots. All other roles are read-only for those operations.
func (r Role) CanEdit() bool {
	return r == RoleDirecao || r == RoleViceDirecao
}

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Nome         string    `json:"nome"`
	Perfil       Role      `json:"perfil"`
	PasswordHash []byte    `json:"-"`
	CriadoEm     time.Time `json:"criadoEm"`     // UTC
	AtualizadoEm time.Time `json:"atualizadoEm"` // UTC
}

// Ref is the attribution shape embedded in audit entries and snapshots.
type Ref struct {
	ID     int    `json:"id"`
	Nome   string `json:"nome"`
	Perfil Role   `json:"perfil"`
}

func (u User) Ref() Ref {
	return Ref{ID: u.ID, Nome: u.Nome, Perfil: u.Perfil}
}

func (u User) CanEdit() bool { return u.Perfil.CanEdit() }

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email  string `json:"email" validate:"required,email"`
	Nome   string `json:"nome" validate:"required"`
	Senha  string `json:"senha" validate:"required,min=4"`
	Perfil string `json:"perfil" validate:"required"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Nome = core.CleanString(nu.Nome)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	if _, err := ParseRole(nu.Perfil); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "perfil", Error: err.Error()})
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}
