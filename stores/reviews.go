package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/models"
)

// ReviewsStore — публичные отзывы.
type ReviewsStore struct {
	signal
	mu sync.Mutex

	api *api.Client

	reviews   []models.Review
	current   *models.Review
	isLoading bool
	err       string
}

func NewReviewsStore(client *api.Client) *ReviewsStore {
	return &ReviewsStore{api: client}
}

func (s *ReviewsStore) Reviews() []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Review(nil), s.reviews...)
}

func (s *ReviewsStore) Current() *models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	r := *s.current
	return &r
}

func (s *ReviewsStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *ReviewsStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ReviewsStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

func (s *ReviewsStore) ClearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.notify()
}

// LoadReviews целиком заменяет локальный список.
func (s *ReviewsStore) LoadReviews(ctx context.Context) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	var reviews []models.Review
	err := s.api.Get(ctx, "/reviews", &reviews)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить отзывы"
	} else {
		s.reviews = reviews
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

func (s *ReviewsStore) LoadReview(ctx context.Context, id int) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.current = nil
	s.mu.Unlock()
	s.notify()

	var review models.Review
	err := s.api.Get(ctx, fmt.Sprintf("/reviews/%d", id), &review)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить отзыв"
	} else {
		s.current = &review
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

// CreateReview добавляет новый отзыв в начало списка — свежие отзывы
// сервер тоже отдаёт первыми.
func (s *ReviewsStore) CreateReview(ctx context.Context, req models.CreateReviewRequest) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	var created models.Review
	if err := s.api.Post(ctx, "/reviews", req, &created); err != nil {
		s.mu.Lock()
		s.err = "Не удалось отправить отзыв"
		s.mu.Unlock()
		s.notify()
		return false
	}

	s.mu.Lock()
	s.reviews = append([]models.Review{created}, s.reviews...)
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *ReviewsStore) DeleteReview(ctx context.Context, id int) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	if err := s.api.Delete(ctx, fmt.Sprintf("/reviews/%d", id), nil); err != nil {
		s.mu.Lock()
		s.err = "Не удалось удалить отзыв"
		s.mu.Unlock()
		s.notify()
		return false
	}

	s.mu.Lock()
	kept := s.reviews[:0]
	for _, r := range s.reviews {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.reviews = kept
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *ReviewsStore) Reset() {
	s.mu.Lock()
	s.reviews = nil
	s.current = nil
	s.isLoading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()
}
