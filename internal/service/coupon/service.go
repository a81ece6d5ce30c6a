// Package coupon holds the admin coupon back-office: a rules engine for
// validating drafts and thin CRUD calls over the upstream admin endpoints.
// CRUD failures are flattened into Result values rather than returned as
// errors; the storefront-facing coupon application lives in the cart
// aggregate.
package coupon

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"storefront-gateway/internal/domain"
)

type api interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Scoped(path string) string
}

type Service struct {
	api    api
	logger *log.Logger

	loading atomic.Bool

	mu      sync.Mutex
	rules   domain.CouponRules
	coupons []domain.AdminCoupon

	now func() time.Time
}

func New(api api, logger *log.Logger) *Service {
	return &Service{
		api:    api,
		logger: logger,
		rules:  domain.DefaultCouponRules(),
		now:    time.Now,
	}
}

// IsLoading reports whether a CRUD call is in flight.
func (s *Service) IsLoading() bool {
	return s.loading.Load()
}

// Coupons returns the last fetched coupon list.
func (s *Service) Coupons() []domain.AdminCoupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AdminCoupon, len(s.coupons))
	copy(out, s.coupons)
	return out
}

// Rules returns the active rule set.
func (s *Service) Rules() domain.CouponRules {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules
}

// SetRules merges non-zero overrides into the active rule set.
func (s *Service) SetRules(overrides domain.CouponRules) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if overrides.MinAmount != 0 {
		s.rules.MinAmount = overrides.MinAmount
	}
	if overrides.MaxDiscount != 0 {
		s.rules.MaxDiscount = overrides.MaxDiscount
	}
	if overrides.MaxUsagePerUser != 0 {
		s.rules.MaxUsagePerUser = overrides.MaxUsagePerUser
	}
	if overrides.ExpirationDays != 0 {
		s.rules.ExpirationDays = overrides.ExpirationDays
	}
	if overrides.AllowedCategories != nil {
		s.rules.AllowedCategories = overrides.AllowedCategories
	}
	if overrides.ExcludedProducts != nil {
		s.rules.ExcludedProducts = overrides.ExcludedProducts
	}
}

// CouponStatus reports expiry/active flags for a coupon against the current
// clock.
func (s *Service) CouponStatus(c domain.AdminCoupon) (isExpired, isActive bool) {
	return Status(c, s.now())
}

type listResponse struct {
	Coupons []domain.AdminCoupon `json:"coupons"`
}

// List fetches a page of coupons and caches it.
func (s *Service) List(ctx context.Context, page int) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)
	if page < 1 {
		page = 1
	}

	var resp listResponse
	path := fmt.Sprintf("%s?page=%d", s.api.Scoped("/admin/coupons"), page)
	if err := s.api.Get(ctx, path, &resp); err != nil {
		return domain.FailErr(err, "failed to load coupons")
	}

	s.mu.Lock()
	s.coupons = resp.Coupons
	s.mu.Unlock()
	return domain.OK("")
}

// CreateDraft is a coupon draft plus the optional admin-entered due date;
// when DueDate is empty the expiry falls out of the rule window.
type CreateDraft struct {
	domain.AdminCoupon
	DueDateInput string
}

// Create validates a draft against the rules, computes its expiry, and posts
// it. The list is refreshed on success.
func (s *Service) Create(ctx context.Context, draft CreateDraft) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)

	rules := s.Rules()
	if !ValidateDraft(draft.AdminCoupon, rules) {
		return domain.Fail("coupon does not satisfy the configured rules")
	}

	due, err := ComputeExpiry(draft.DueDateInput, rules.ExpirationDays, s.now())
	if err != nil {
		return domain.FailErr(err, "failed to create coupon")
	}
	payload := draft.AdminCoupon
	payload.DueDate = due

	if err := s.api.Post(ctx, s.api.Scoped("/admin/coupon"), wrap(payload), nil); err != nil {
		return domain.FailErr(err, "failed to create coupon")
	}
	return s.refresh(ctx)
}

// Update replaces a coupon and refreshes the list on success.
func (s *Service) Update(ctx context.Context, c domain.AdminCoupon) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)

	if err := s.api.Put(ctx, s.api.Scoped("/admin/coupon/"+c.ID), wrap(c), nil); err != nil {
		return domain.FailErr(err, "failed to update coupon")
	}
	return s.refresh(ctx)
}

// Delete removes a coupon and refreshes the list on success.
func (s *Service) Delete(ctx context.Context, id string) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)

	if err := s.api.Delete(ctx, s.api.Scoped("/admin/coupon/"+id), nil); err != nil {
		return domain.FailErr(err, "failed to delete coupon")
	}
	return s.refresh(ctx)
}

// Verify checks a code against the storefront verification endpoint without
// touching cart state.
func (s *Service) Verify(ctx context.Context, code string) domain.Result {
	var resp struct {
		Message string `json:"message"`
	}
	if err := s.api.Post(ctx, s.api.Scoped("/coupon"), wrap(map[string]string{"code": code}), &resp); err != nil {
		return domain.FailErr(err, "coupon verification failed")
	}
	return domain.OK(resp.Message)
}

func (s *Service) refresh(ctx context.Context) domain.Result {
	var resp listResponse
	path := fmt.Sprintf("%s?page=%d", s.api.Scoped("/admin/coupons"), 1)
	if err := s.api.Get(ctx, path, &resp); err != nil {
		s.logger.Printf("refresh coupons: %v", err)
		return domain.OK("saved, but refreshing the list failed")
	}
	s.mu.Lock()
	s.coupons = resp.Coupons
	s.mu.Unlock()
	return domain.OK("")
}

func wrap(v any) any {
	return struct {
		Data any `json:"data"`
	}{Data: v}
}
