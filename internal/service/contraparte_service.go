package service

import (
	"context"
	"strings"

	"kairo/internal/dto"
	"kairo/internal/model"
	"kairo/internal/repository"

	"github.com/google/uuid"
)

type ContraparteService interface {
	Crear(ctx context.Context, empresaID uuid.UUID, req dto.ContraparteRequest) (*dto.ContraparteResponse, error)
	ObtenerPorID(ctx context.Context, empresaID, id uuid.UUID) (*dto.ContraparteResponse, error)
	Listar(ctx context.Context, empresaID uuid.UUID, tipo string, page, limit int) (*dto.ContraparteListResponse, error)
	Eliminar(ctx context.Context, empresaID, id uuid.UUID) error
}

type contraparteService struct {
	repo repository.ContraparteRepository
}

func NewContraparteService(repo repository.ContraparteRepository) ContraparteService {
	return &contraparteService{repo: repo}
}

func (s *contraparteService) Crear(ctx context.Context, empresaID uuid.UUID, req dto.ContraparteRequest) (*dto.ContraparteResponse, error) {
	c := &model.Contraparte{
		EmpresaID:      empresaID,
		Tipo:           req.Tipo,
		Nombre:         strings.TrimSpace(req.Nombre),
		Identificacion: req.Identificacion,
		Email:          req.Email,
		Telefono:       req.Telefono,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := toContraparteResponse(c)
	return &resp, nil
}

func (s *contraparteService) ObtenerPorID(ctx context.Context, empresaID, id uuid.UUID) (*dto.ContraparteResponse, error) {
	c, err := s.repo.FindByID(ctx, empresaID, id)
	if err != nil {
		return nil, notFound(err, "contraparte")
	}
	resp := toContraparteResponse(c)
	return &resp, nil
}

func (s *contraparteService) Listar(ctx context.Context, empresaID uuid.UUID, tipo string, page, limit int) (*dto.ContraparteListResponse, error) {
	items, total, err := s.repo.List(ctx, empresaID, tipo, page, limit)
	if err != nil {
		return nil, err
	}
	out := &dto.ContraparteListResponse{Data: make([]dto.ContraparteResponse, 0, len(items)), Total: total}
	for i := range items {
		out.Data = append(out.Data, toContraparteResponse(&items[i]))
	}
	return out, nil
}

// Eliminar only deactivates: existing accounts keep pointing at the row.
func (s *contraparteService) Eliminar(ctx context.Context, empresaID, id uuid.UUID) error {
	return notFound(s.repo.SoftDelete(ctx, empresaID, id), "contraparte")
}
