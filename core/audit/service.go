package audit

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrInvalidKind  = errors.New("invalid alteration kind")
	ErrUserRequired = errors.New("audit entry requires an acting user")
)

type (
	Repository interface {
		// CreateEntry appends one entry. It must fail when the acting user does
		// not exist (referential integrity); entries are never updated or
		// deleted afterwards.
		CreateEntry(ctx context.Context, ne NewEntry) (Entry, error)
		// FilterEntries applies AND on available Filter fields, newest first.
		FilterEntries(ctx context.Context, filter Filter) ([]Entry, error)
		EntryStats(ctx context.Context, filter StatsFilter) (Stats, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends one immutable entry. Persistence errors propagate to the
// caller; a missing acting user is a programming error and fails fast.
func (svc *Service) Record(ctx context.Context, ne NewEntry) (Entry, error) {
	if ne.UsuarioID == 0 {
		return Entry{}, ErrUserRequired
	}
	if ne.Timestamp.IsZero() {
		ne.Timestamp = time.Now().UTC()
	}
	return svc.repo.CreateEntry(ctx, ne)
}

func (svc *Service) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	return svc.repo.FilterEntries(ctx, filter)
}

// SlotHistory returns every entry scoped to one slot, newest first.
func (svc *Service) SlotHistory(ctx context.Context, grupoID, dia string, slotID int) ([]Entry, error) {
	return svc.repo.FilterEntries(ctx, Filter{GrupoID: grupoID, Dia: dia, SlotID: slotID})
}

func (svc *Service) Statistics(ctx context.Context, filter StatsFilter) (Stats, error) {
	return svc.repo.EntryStats(ctx, filter)
}
