package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/config"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/policy"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
)

// RFQService RFQ lifecycle: officer drafts, approval with automatic
// supplier selection, visibility, and the deadline sweep.
type RFQService struct {
	rfqs      *repository.RFQRepository
	suppliers *repository.SupplierRepository
	db        *gorm.DB
	cfg       config.RFQConfig
	notifier  *Notifier
	logger    *zap.Logger
}

func NewRFQService(
	rfqs *repository.RFQRepository,
	suppliers *repository.SupplierRepository,
	db *gorm.DB,
	cfg config.RFQConfig,
	notifier *Notifier,
	logger *zap.Logger,
) *RFQService {
	return &RFQService{
		rfqs:      rfqs,
		suppliers: suppliers,
		db:        db,
		cfg:       cfg,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateDraftInput officer-created RFQ. No invitations until approval.
type CreateDraftInput struct {
	Title               string          `json:"title" binding:"required"`
	Description         string          `json:"description"`
	Category            string          `json:"category" binding:"required"`
	Budget              decimal.Decimal `json:"budget"`
	Currency            string          `json:"currency"`
	Deadline            time.Time       `json:"deadline" binding:"required"`
	InvitationBatchSize int             `json:"invitation_batch_size"`
}

func (s *RFQService) CreateDraft(ctx context.Context, actor Actor, in CreateDraftInput) (*entity.RFQ, error) {
	if !policy.Allows(actor.Role, policy.CapCreateDraftRFQ) {
		return nil, fmt.Errorf("%w: procurement officer role required", ErrForbidden)
	}
	if !in.Deadline.After(time.Now()) {
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrValidation)
	}
	if in.Budget.IsNegative() {
		return nil, fmt.Errorf("%w: budget cannot be negative", ErrValidation)
	}
	if in.Currency == "" {
		in.Currency = "ZMW"
	}
	batch := in.InvitationBatchSize
	if batch <= 0 {
		batch = s.cfg.InvitationBatchSize
	}

	number, err := s.rfqs.GenerateNumber(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	rfq := &entity.RFQ{
		RFQNumber:           number,
		Title:               in.Title,
		Description:         in.Description,
		Category:            in.Category,
		Budget:              in.Budget,
		Currency:            in.Currency,
		Deadline:            in.Deadline,
		Status:              entity.RFQDraft,
		InvitationBatchSize: batch,
		CreatedByID:         actor.ID,
	}
	if err := s.rfqs.Create(ctx, rfq); err != nil {
		return nil, err
	}
	return rfq, nil
}

// ApproveDraft opens a draft RFQ and invites suppliers automatically:
// active suppliers serving the category, least invited first, capped at
// the batch size.
func (s *RFQService) ApproveDraft(ctx context.Context, actor Actor, id uint) (*entity.RFQ, error) {
	if !policy.Allows(actor.Role, policy.CapApproveDraftRFQ) {
		return nil, fmt.Errorf("%w: procurement role required", ErrForbidden)
	}

	rfq, err := s.rfqs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rfq.Status != entity.RFQDraft {
		return nil, fmt.Errorf("%w: RFQ %s is %s, only drafts can be approved",
			entity.ErrInvalidTransition, rfq.RFQNumber, rfq.Status)
	}

	batch := rfq.InvitationBatchSize
	if batch <= 0 {
		batch = s.cfg.InvitationBatchSize
	}
	candidates, err := s.suppliers.FindCandidates(ctx, rfq.Category, batch)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no active suppliers serve category %q", ErrConflict, rfq.Category)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRFQs := repository.NewRFQRepository(tx)
		txSuppliers := repository.NewSupplierRepository(tx)

		if err := rfq.Transition(entity.RFQOpen); err != nil {
			return err
		}
		if err := txRFQs.Update(ctx, rfq); err != nil {
			return err
		}

		now := time.Now()
		for i := range candidates {
			sup := &candidates[i]
			inv := &entity.Invitation{
				RFQID:      rfq.ID,
				SupplierID: sup.ID,
				Status:     entity.InvitationInvited,
				InvitedAt:  now,
			}
			if err := tx.Create(inv).Error; err != nil {
				return err
			}
			sup.InvitationsSent++
			sup.LastInvitedAt = &now
			if err := txSuppliers.Update(ctx, sup); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, sup := range candidates {
		if sup.User != nil {
			s.notifier.NotifyEmail(sup.User.Email,
				"Invitation to quote: "+rfq.Title,
				fmt.Sprintf("You have been invited to quote on RFQ %s. Deadline: %s.",
					rfq.RFQNumber, rfq.Deadline.Format("2006-01-02 15:04")))
		}
	}
	return s.rfqs.FindByID(ctx, id)
}

// DeleteDraft discards a draft RFQ.
func (s *RFQService) DeleteDraft(ctx context.Context, actor Actor, id uint) error {
	if !policy.Allows(actor.Role, policy.CapApproveDraftRFQ) {
		return fmt.Errorf("%w: procurement role required", ErrForbidden)
	}
	rfq, err := s.rfqs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rfq.Status != entity.RFQDraft {
		return fmt.Errorf("%w: only draft RFQs can be discarded", ErrConflict)
	}
	return s.rfqs.Delete(ctx, id)
}

// List shows all RFQs to procurement roles and invited RFQs to
// suppliers.
func (s *RFQService) List(ctx context.Context, actor Actor, page, pageSize int, filters map[string]string) ([]entity.RFQ, int64, error) {
	if policy.Allows(actor.Role, policy.CapViewAllRFQs) {
		return s.rfqs.FindAll(ctx, page, pageSize, filters)
	}
	if actor.Role == entity.RoleSupplier {
		sup, err := s.suppliers.FindByUserID(ctx, actor.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: no supplier profile", ErrForbidden)
		}
		items, err := s.rfqs.FindForSupplier(ctx, sup.ID, false)
		return items, int64(len(items)), err
	}
	return nil, 0, fmt.Errorf("%w: role cannot view RFQs", ErrForbidden)
}

// Get returns an RFQ. Suppliers must be invited; draft RFQs are only
// visible to procurement roles.
func (s *RFQService) Get(ctx context.Context, actor Actor, id uint) (*entity.RFQ, error) {
	rfq, err := s.rfqs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if policy.Allows(actor.Role, policy.CapViewAllRFQs) {
		return rfq, nil
	}
	if actor.Role == entity.RoleSupplier && rfq.Status != entity.RFQDraft {
		sup, err := s.suppliers.FindByUserID(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: no supplier profile", ErrForbidden)
		}
		if _, err := s.rfqs.FindInvitation(ctx, rfq.ID, sup.ID); err == nil {
			return rfq, nil
		}
	}
	return nil, fmt.Errorf("%w: not permitted to view this RFQ", ErrForbidden)
}

// CloseExpired moves open RFQs past their deadline to closed and lifts
// the sealed-bid lock. Run by the background sweep.
func (s *RFQService) CloseExpired(ctx context.Context) (int, error) {
	expired, err := s.rfqs.FindExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	closed := 0
	for i := range expired {
		rfq := &expired[i]
		if err := rfq.Transition(entity.RFQClosed); err != nil {
			continue
		}
		rfq.ResponseLocked = false
		if err := s.rfqs.Update(ctx, rfq); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// RunExpirySweep ticks CloseExpired until the context is cancelled.
func (s *RFQService) RunExpirySweep(ctx context.Context) {
	interval := s.cfg.ExpirySweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CloseExpired(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("RFQ expiry sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("Closed expired RFQs", zap.Int("count", n))
			}
		}
	}
}
