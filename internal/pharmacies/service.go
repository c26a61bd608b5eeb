package pharmacies

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the read-only pharmacy surface.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*PharmacyDTO, error)
	List(ctx context.Context) ([]PharmacyDTO, error)
}

type service struct {
	repo Repository
}

// NewService builds a pharmacy service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pharmacy repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PharmacyDTO, error) {
	pharmacy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Pharmacy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pharmacy")
	}
	return FromModel(pharmacy), nil
}

func (s *service) List(ctx context.Context) ([]PharmacyDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pharmacies")
	}
	out := make([]PharmacyDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
