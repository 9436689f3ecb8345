package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/parking"
	reviewDomain "github.com/parkmate/service-parking/internal/domain/review"
	"github.com/parkmate/service-parking/internal/pkg/auth"
)

type fakeReviewRepo struct {
	reviews map[uuid.UUID]*reviewDomain.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*reviewDomain.Review)}
}

func (f *fakeReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, apperr.NewNotFoundError("review", id.String())
	}
	return r, nil
}

func (f *fakeReviewRepo) FindByLotID(_ context.Context, lotID uuid.UUID, page, limit int) ([]*reviewDomain.Review, int64, error) {
	var out []*reviewDomain.Review
	for _, r := range f.reviews {
		if r.LotID() == lotID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) AverageRating(_ context.Context, lotID uuid.UUID) (float64, int64, error) {
	var sum, count int64
	for _, r := range f.reviews {
		if r.LotID() == lotID {
			sum += int64(r.Rating())
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (f *fakeReviewRepo) Save(_ context.Context, r *reviewDomain.Review) error {
	f.reviews[r.ID()] = r
	return nil
}

func (f *fakeReviewRepo) Update(_ context.Context, r *reviewDomain.Review) error {
	f.reviews[r.ID()] = r
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.reviews, id)
	return nil
}

type fakeLotRepo struct {
	lots map[uuid.UUID]*parking.Lot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[uuid.UUID]*parking.Lot)}
}

func (f *fakeLotRepo) FindByID(_ context.Context, id uuid.UUID) (*parking.Lot, error) {
	lot, ok := f.lots[id]
	if !ok {
		return nil, apperr.NewNotFoundError("lot", id.String())
	}
	return lot, nil
}

func (f *fakeLotRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*parking.Lot, error) {
	var out []*parking.Lot
	for _, lot := range f.lots {
		if lot.IsOwnedBy(ownerID) {
			out = append(out, lot)
		}
	}
	return out, nil
}

func (f *fakeLotRepo) ListPublic(_ context.Context, city string, page, limit int) ([]*parking.Lot, int64, error) {
	var out []*parking.Lot
	for _, lot := range f.lots {
		if city == "" || lot.City() == city {
			out = append(out, lot)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeLotRepo) CountAvailableSlots(_ context.Context, lotIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return map[uuid.UUID]int64{}, nil
}

func (f *fakeLotRepo) SaveWithSlots(_ context.Context, lot *parking.Lot, _ []*parking.Slot) error {
	f.lots[lot.ID()] = lot
	return nil
}

func (f *fakeLotRepo) Update(_ context.Context, lot *parking.Lot) error {
	f.lots[lot.ID()] = lot
	return nil
}

func (f *fakeLotRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.lots, id)
	return nil
}

func (f *fakeLotRepo) add(t *testing.T, ownerID uuid.UUID) uuid.UUID {
	t.Helper()
	lot, err := parking.NewLot(ownerID, "Test Lot", "", "", "Pune", "", "411001", 0, 0, 5, false)
	require.NoError(t, err)
	f.lots[lot.ID()] = lot
	return lot.ID()
}

func newReviewService(reviews *fakeReviewRepo, lots *fakeLotRepo) *ReviewService {
	return NewReviewService(reviews, lots, zap.NewNop())
}

func TestCreateReview_UnknownLot(t *testing.T) {
	svc := newReviewService(newFakeReviewRepo(), newFakeLotRepo())

	_, err := svc.CreateReview(context.Background(), uuid.New(), uuid.New(), ReviewRequest{Rating: 4})
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind())
}

func TestCreateReview(t *testing.T) {
	reviews := newFakeReviewRepo()
	lots := newFakeLotRepo()
	lotID := lots.add(t, uuid.New())
	svc := newReviewService(reviews, lots)

	userID := uuid.New()
	dto, err := svc.CreateReview(context.Background(), userID, lotID, ReviewRequest{Rating: 5, Text: "spotless"})
	require.NoError(t, err)
	assert.Equal(t, 5, dto.Rating)
	assert.Equal(t, userID, dto.UserID)

	page, err := svc.GetLotReviews(context.Background(), lotID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestUpdateReview_Authorization(t *testing.T) {
	reviews := newFakeReviewRepo()
	lots := newFakeLotRepo()
	lotID := lots.add(t, uuid.New())
	svc := newReviewService(reviews, lots)

	author := uuid.New()
	dto, err := svc.CreateReview(context.Background(), author, lotID, ReviewRequest{Rating: 4})
	require.NoError(t, err)

	stranger := auth.Actor{AccountID: uuid.New(), Role: auth.RoleUser}
	_, err = svc.UpdateReview(context.Background(), stranger, dto.ID, ReviewRequest{Rating: 1})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindForbidden, appErr.Kind())

	asAuthor := auth.Actor{AccountID: author, Role: auth.RoleUser}
	updated, err := svc.UpdateReview(context.Background(), asAuthor, dto.ID, ReviewRequest{Rating: 2, Text: "got worse"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)

	admin := auth.Actor{AccountID: uuid.New(), Role: auth.RoleAdmin}
	_, err = svc.UpdateReview(context.Background(), admin, dto.ID, ReviewRequest{Rating: 3})
	assert.NoError(t, err, "admins may edit any review")
}

func TestDeleteReview(t *testing.T) {
	reviews := newFakeReviewRepo()
	lots := newFakeLotRepo()
	lotID := lots.add(t, uuid.New())
	svc := newReviewService(reviews, lots)

	author := uuid.New()
	dto, err := svc.CreateReview(context.Background(), author, lotID, ReviewRequest{Rating: 4})
	require.NoError(t, err)

	stranger := auth.Actor{AccountID: uuid.New(), Role: auth.RoleUser}
	require.Error(t, svc.DeleteReview(context.Background(), stranger, dto.ID))

	asAuthor := auth.Actor{AccountID: author, Role: auth.RoleUser}
	require.NoError(t, svc.DeleteReview(context.Background(), asAuthor, dto.ID))

	_, err = svc.UpdateReview(context.Background(), asAuthor, dto.ID, ReviewRequest{Rating: 3})
	assert.Error(t, err, "deleted review is gone")
}
