package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feedesk/internal/clients"
	"feedesk/internal/domain"
	"feedesk/internal/repository"

	"github.com/google/uuid"
)

type FeePlanCatalogStore interface {
	GetByID(ctx context.Context, id string) (domain.FeePlan, error)
	List(ctx context.Context, f repository.FeePlansFilter) ([]domain.FeePlan, error)
	ExistsByCourseAndYear(ctx context.Context, course, academicYear string) (bool, error)
	Insert(ctx context.Context, p domain.FeePlan) error
	Update(ctx context.Context, p domain.FeePlan) error
	Delete(ctx context.Context, id string) error
}

const (
	feePlanListCacheKey = "fee_plans:all"
	feePlanListCacheTTL = 5 * time.Minute
)

// FeePlanService manages the fee plan catalog. The unfiltered list is the
// hot read (admin dashboards poll it) and is cached in Redis; every
// mutation drops the cached copy.
type FeePlanService struct {
	plans FeePlanCatalogStore
	redis *clients.RedisClient
}

func NewFeePlanService(plans FeePlanCatalogStore, redis *clients.RedisClient) *FeePlanService {
	return &FeePlanService{plans: plans, redis: redis}
}

func (s *FeePlanService) Create(ctx context.Context, p domain.FeePlan) (domain.FeePlan, error) {
	if err := validateFeePlan(p); err != nil {
		return domain.FeePlan{}, err
	}

	exists, err := s.plans.ExistsByCourseAndYear(ctx, p.Course, p.AcademicYear)
	if err != nil {
		return domain.FeePlan{}, err
	}
	if exists {
		return domain.FeePlan{}, &domain.ConflictError{
			Message: fmt.Sprintf("fee plan for %s %s already exists", p.Course, p.AcademicYear),
		}
	}

	p.ID = uuid.NewString()
	if err := s.plans.Insert(ctx, p); err != nil {
		return domain.FeePlan{}, err
	}
	s.dropListCache(ctx)
	return p, nil
}

func (s *FeePlanService) Get(ctx context.Context, id string) (domain.FeePlan, error) {
	return s.plans.GetByID(ctx, id)
}

// List dispatches on the provided filters: course+year, course only, year
// only, or everything. The unfiltered variant is served from cache when
// possible.
func (s *FeePlanService) List(ctx context.Context, course, academicYear *string) ([]domain.FeePlan, error) {
	if course == nil && academicYear == nil {
		if cached, ok := s.listFromCache(ctx); ok {
			return cached, nil
		}
	}

	plans, err := s.plans.List(ctx, repository.FeePlansFilter{Course: course, AcademicYear: academicYear})
	if err != nil {
		return nil, err
	}

	if course == nil && academicYear == nil {
		s.storeListCache(ctx, plans)
	}
	return plans, nil
}

func (s *FeePlanService) Update(ctx context.Context, id string, p domain.FeePlan) (domain.FeePlan, error) {
	if err := validateFeePlan(p); err != nil {
		return domain.FeePlan{}, err
	}

	current, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return domain.FeePlan{}, err
	}

	// Moving the plan onto another (course, year) pair must not collide
	// with an existing plan there.
	if p.Course != current.Course || p.AcademicYear != current.AcademicYear {
		exists, err := s.plans.ExistsByCourseAndYear(ctx, p.Course, p.AcademicYear)
		if err != nil {
			return domain.FeePlan{}, err
		}
		if exists {
			return domain.FeePlan{}, &domain.ConflictError{
				Message: fmt.Sprintf("fee plan for %s %s already exists", p.Course, p.AcademicYear),
			}
		}
	}

	p.ID = id
	if err := s.plans.Update(ctx, p); err != nil {
		return domain.FeePlan{}, err
	}
	s.dropListCache(ctx)
	return p, nil
}

func (s *FeePlanService) Delete(ctx context.Context, id string) error {
	if err := s.plans.Delete(ctx, id); err != nil {
		return err
	}
	s.dropListCache(ctx)
	return nil
}

func validateFeePlan(p domain.FeePlan) error {
	if p.Course == "" {
		return &domain.ValidationError{Message: "course is required"}
	}
	if _, _, err := domain.ParseAcademicYear(p.AcademicYear); err != nil {
		return &domain.ValidationError{Message: "academic year must be in format YYYY-YYYY"}
	}
	for _, amount := range []float64{p.Tuition, p.Hostel, p.Library, p.Lab, p.Sports} {
		if amount < 0 {
			return &domain.ValidationError{Message: "fee amounts must be non-negative"}
		}
	}
	return nil
}

func (s *FeePlanService) listFromCache(ctx context.Context) ([]domain.FeePlan, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, feePlanListCacheKey)
	if err != nil {
		return nil, false
	}
	var plans []domain.FeePlan
	if err := json.Unmarshal([]byte(data), &plans); err != nil {
		return nil, false
	}
	return plans, true
}

func (s *FeePlanService) storeListCache(ctx context.Context, plans []domain.FeePlan) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(plans)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, feePlanListCacheKey, string(data), feePlanListCacheTTL)
}

func (s *FeePlanService) dropListCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, feePlanListCacheKey)
}
