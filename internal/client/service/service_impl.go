package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freelanceflow/internal/client/domain"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: c,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	req = req.Normalize()
	if errs := domain.ValidateCreate(req); len(errs) > 0 {
		return domain.Client{}, errs
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return domain.Client{}, err
	}
	if taken {
		return domain.Client{}, domain.ErrEmailTaken
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:        s.genID.Generate(),
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		Phone:     req.Phone,
		Address:   req.Address,
		Status:    req.Status,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, &client); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Client{}, domain.ErrEmailTaken
		}
		return domain.Client{}, err
	}

	s.log.Info("client created", zap.String("client_id", client.ID.String()))
	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) ([]domain.Client, error) {
	filter := domain.ListClientFilter{Search: req.Search}
	switch status := strings.ToLower(strings.TrimSpace(req.Status)); status {
	case "", "all":
	default:
		filter.Status = domain.ClientStatus(status)
		if !filter.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}
	return clients, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Client, error) {
	clientID, err := s.parseID(id)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, upd domain.UpdateClientRequest) (domain.Client, error) {
	clientID, err := s.parseID(id)
	if err != nil {
		return domain.Client{}, err
	}

	req := domain.CreateClientRequest(upd).Normalize()
	if errs := domain.ValidateCreate(req); len(errs) > 0 {
		return domain.Client{}, errs
	}

	item, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if taken {
		return domain.Client{}, domain.ErrEmailTaken
	}

	client := *item
	client.Name = req.Name
	client.Email = req.Email
	client.Company = req.Company
	client.Phone = req.Phone
	client.Address = req.Address
	client.Status = req.Status
	client.Notes = req.Notes
	client.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, &client); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Client{}, domain.ErrEmailTaken
		}
		return domain.Client{}, err
	}

	s.log.Info("client updated", zap.String("client_id", client.ID.String()))
	return client, nil
}

// Delete removes the client. Invoices keep the client name they were issued
// to and are not touched.
func (s *Service) Delete(ctx context.Context, id string) error {
	clientID, err := s.parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, clientID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.log.Info("client deleted", zap.String("client_id", clientID.String()))
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
