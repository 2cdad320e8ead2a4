// Package postgres is the gorm-backed repository.Store.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store serves both roles: the root Store and, inside WithinTx, the Tx bound
// to the gorm transaction.
type Store struct {
	db *gorm.DB
}

var (
	_ repository.Store = (*Store)(nil)
	_ repository.Tx    = (*Store)(nil)
)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	return translate(err)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) FindGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	if err := s.db.WithContext(ctx).First(&gig, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &gig, nil
}

func (s *Store) FindBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	if err := s.db.WithContext(ctx).First(&bid, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &bid, nil
}

func (s *Store) ListGigs(ctx context.Context, filter repository.GigFilter) ([]models.Gig, error) {
	q := s.db.WithContext(ctx).Model(&models.Gig{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.MaxBudget > 0 {
		q = q.Where("budget <= ?", filter.MaxBudget)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		q = q.Where("(title ILIKE ? OR description ILIKE ?)", like, like)
	}

	gigs := make([]models.Gig, 0)
	if err := q.Order("created_at DESC").Find(&gigs).Error; err != nil {
		return nil, translate(err)
	}
	return gigs, nil
}

func (s *Store) ListBidsByGig(ctx context.Context, gigID uuid.UUID) ([]models.Bid, error) {
	bids := make([]models.Bid, 0)
	err := s.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order("created_at DESC").
		Find(&bids).Error
	if err != nil {
		return nil, translate(err)
	}
	return bids, nil
}

func (s *Store) ListBidsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	bids := make([]models.Bid, 0)
	err := s.db.WithContext(ctx).
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&bids).Error
	if err != nil {
		return nil, translate(err)
	}
	return bids, nil
}

func (s *Store) GigCategories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Gig{}).
		Where("status = ?", models.GigStatusOpen).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).
		Error
	if err != nil {
		return nil, translate(err)
	}
	return categories, nil
}

func (s *Store) LockGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&gig, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &gig, nil
}

func (s *Store) LockBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bid, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &bid, nil
}

func (s *Store) FindBidByGigAndFreelancer(ctx context.Context, gigID, freelancerID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := s.db.WithContext(ctx).
		Where("gig_id = ? AND freelancer_id = ?", gigID, freelancerID).
		First(&bid).Error
	if err != nil {
		return nil, translate(err)
	}
	return &bid, nil
}

func (s *Store) CountBidsByGig(ctx context.Context, gigID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Bid{}).Where("gig_id = ?", gigID).Count(&n).Error
	return n, translate(err)
}

func (s *Store) CreateGig(ctx context.Context, gig *models.Gig) error {
	if gig.ID == uuid.Nil {
		gig.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(gig).Error)
}

func (s *Store) CreateBid(ctx context.Context, bid *models.Bid) error {
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(bid).Error)
}

func (s *Store) UpdateGigDetails(ctx context.Context, id uuid.UUID, d repository.GigDetails) error {
	updates := map[string]any{}
	if d.Title != nil {
		updates["title"] = *d.Title
	}
	if d.Description != nil {
		updates["description"] = *d.Description
	}
	if d.Budget != nil {
		updates["budget"] = *d.Budget
	}
	if d.Category != nil {
		updates["category"] = *d.Category
	}
	if d.Skills != nil {
		updates["skills"] = datatypes.JSONSlice[string](d.Skills)
	}
	if len(updates) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).Model(&models.Gig{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteGig(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Gig{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) AssignGig(ctx context.Context, gigID, freelancerID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.Gig{}).
		Where("id = ? AND status = ?", gigID, models.GigStatusOpen).
		Updates(map[string]any{
			"status":      models.GigStatusAssigned,
			"assigned_to": freelancerID,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrStale
	}
	return nil
}

func (s *Store) TransitionBid(ctx context.Context, bidID uuid.UUID, from, to models.BidStatus, reason *string) error {
	updates := map[string]any{"status": to}
	if reason != nil {
		updates["rejection_reason"] = *reason
	}
	result := s.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("id = ? AND status = ?", bidID, from).
		Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrStale
	}
	return nil
}

func (s *Store) RejectPendingBids(ctx context.Context, gigID, exceptBidID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("gig_id = ? AND id <> ? AND status = ?", gigID, exceptBidID, models.BidStatusPending).
		Update("status", models.BidStatusRejected)
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	return result.RowsAffected, nil
}

// translate maps gorm's sentinels onto the repository ones. Everything else
// (driver, network, serialization failures) is passed through untouched.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	}
	return err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
