package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/player"
	"github.com/brightpath/brightpath-backend/internal/requestdata"
)

type PlayerService interface {
	StartSession(ctx context.Context, unitID uuid.UUID) (*player.Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*player.Session, error)
	SubmitAnswer(ctx context.Context, sessionID uuid.UUID, answer player.Answer) (*player.Session, error)
	Advance(ctx context.Context, sessionID uuid.UUID) (*player.Session, error)
}

type playerService struct {
	db      *gorm.DB
	log     *logger.Logger
	manager *player.Manager
	units   UnitService
}

func NewPlayerService(db *gorm.DB, log *logger.Logger, manager *player.Manager, units UnitService) PlayerService {
	svc := &playerService{
		db:      db,
		log:     log.With("service", "PlayerService"),
		manager: manager,
		units:   units,
	}
	manager.OnComplete = svc.onComplete
	return svc
}

func (ps *playerService) StartSession(ctx context.Context, unitID uuid.UUID) (*player.Session, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	unit, err := ps.units.GetUnit(ctx, nil, unitID)
	if err != nil {
		return nil, err
	}
	blocks, err := ps.units.DecodeBlocks(unit)
	if err != nil {
		return nil, err
	}
	return ps.manager.Start(rd.UserID, unitID, blocks)
}

func (ps *playerService) GetSession(ctx context.Context, sessionID uuid.UUID) (*player.Session, error) {
	return ps.ownedSession(ctx, sessionID)
}

func (ps *playerService) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, answer player.Answer) (*player.Session, error) {
	if _, err := ps.ownedSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return ps.manager.Submit(sessionID, answer)
}

func (ps *playerService) Advance(ctx context.Context, sessionID uuid.UUID) (*player.Session, error) {
	if _, err := ps.ownedSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return ps.manager.Advance(sessionID)
}

func (ps *playerService) ownedSession(ctx context.Context, sessionID uuid.UUID) (*player.Session, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	s, err := ps.manager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if s.UserID != rd.UserID {
		return nil, player.ErrSessionNotFound
	}
	return s, nil
}

func (ps *playerService) onComplete(s player.Session) {
	ps.log.Info("lesson session completed",
		"session_id", s.ID, "user_id", s.UserID, "unit_id", s.UnitID, "blocks", len(s.Blocks))
}
