package user

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Role
		wantErr bool
	}{
		{name: "direcao", in: "direcao", want: RoleDirecao},
		{name: "professor", in: "professor", want: RoleProfessor},
		{name: "mixed case and spaces", in: "  Vice_Direcao ", want: RoleViceDirecao},
		{name: "unknown", in: "chefe", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v; wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRole_CanEdit(t *testing.T) {
	editors := map[Role]bool{
		RoleDirecao:     true,
		RoleViceDirecao: true,
		RoleCoordenacao: false,
		RoleGOE:         false,
		RoleAOE:         false,
		RoleProfessor:   false,
	}
	for _, r := range AllRoles {
		if got := r.CanEdit(); got != editors[r] {
			t.Errorf("%s.CanEdit() = %v; want %v", r, got, editors[r])
		}
	}
}

func TestUser_SetPassword(t *testing.T) {
	var usr User
	if err := usr.SetPassword("s3nha123"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	if len(usr.PasswordHash) == 0 {
		t.Fatal("SetPassword() left an empty hash")
	}
	if err := usr.CheckPassword("s3nha123"); err != nil {
		t.Errorf("CheckPassword() failed on the right password: %v", err)
	}
	if err := usr.CheckPassword("lol"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}
