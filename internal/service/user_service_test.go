package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"fitclub/internal/database"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newUserFixture(t *testing.T) (*mockRepo, *UserService) {
	t.Helper()
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	return repo, NewUserService(repo, &logger)
}

func TestFindOrCreateByTelegram_New(t *testing.T) {
	repo, svc := newUserFixture(t)
	ctx := context.Background()

	repo.On("GetUserByExternalID", ctx, "123456").Return(nil, database.ErrUserNotFound).Once()
	repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := svc.FindOrCreateByTelegram(ctx, 123456, "anna_k", "Анна", "Ким", "en")
	assert.NoError(t, err)
	assert.Equal(t, "123456", user.ExternalID)
	// Неподдерживаемый язык откатывается на русский
	assert.Equal(t, models.LanguageRu, user.Language)
	repo.AssertExpectations(t)
}

func TestFindOrCreateByTelegram_RefreshesProfile(t *testing.T) {
	repo, svc := newUserFixture(t)
	ctx := context.Background()

	existing := &models.User{ID: 7, ExternalID: "123456", Username: "old_name", FirstName: "Анна"}
	repo.On("GetUserByExternalID", ctx, "123456").Return(existing, nil).Once()
	repo.On("UpdateUserProfile", ctx, int64(7), "Анна", "", "new_name").Return(nil).Once()

	user, err := svc.FindOrCreateByTelegram(ctx, 123456, "new_name", "Анна", "", "ru")
	assert.NoError(t, err)
	assert.Equal(t, "new_name", user.Username)
	repo.AssertExpectations(t)
}

func TestFindOrCreateByPhone(t *testing.T) {
	repo, svc := newUserFixture(t)
	ctx := context.Background()

	repo.On("GetUserByPhone", ctx, "998901234567").Return(nil, database.ErrUserNotFound).Once()
	repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := svc.FindOrCreateByPhone(ctx, "+998 (90) 123-45-67", "Тимур", "")
	assert.NoError(t, err)
	assert.Equal(t, "phone-998901234567", user.ExternalID)
	assert.Equal(t, "998901234567", user.Phone)
	repo.AssertExpectations(t)
}

func TestFindOrCreateByPhone_Invalid(t *testing.T) {
	_, svc := newUserFixture(t)

	_, err := svc.FindOrCreateByPhone(context.Background(), "нет телефона", "А", "Б")
	assert.ErrorIs(t, err, database.ErrInvalidPhone)
}

func TestCreateManual_DedupsByPhone(t *testing.T) {
	repo, svc := newUserFixture(t)
	ctx := context.Background()

	existing := &models.User{ID: 7, Phone: "998901234567"}
	repo.On("GetUserByPhone", ctx, "998901234567").Return(existing, nil).Once()

	user, err := svc.CreateManual(ctx, "Тимур", "", "+998901234567")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUpdateLanguage_Validation(t *testing.T) {
	repo, svc := newUserFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.UpdateLanguage(ctx, "123", "de"), database.ErrInvalidLanguage)

	repo.On("UpdateUserLanguage", ctx, "123", models.LanguageUz).Return(nil).Once()
	assert.NoError(t, svc.UpdateLanguage(ctx, "123", models.LanguageUz))
	repo.AssertExpectations(t)
}

func TestMergeDuplicatePhones(t *testing.T) {
	repo, svc := newUserFixture(t)
	ctx := context.Background()

	// Отсортировано по created_at: телефонная запись старше телеграмной,
	// но выживает телеграмная.
	users := []*models.User{
		{ID: 1, ExternalID: "phone-998901234567", Phone: "998901234567"},
		{ID: 2, ExternalID: "123456", Phone: "+998 90 123 45 67"},
		{ID: 3, ExternalID: "777", Phone: "998907777777"},
	}

	repo.On("UsersWithPhone", ctx).Return(users, nil).Once()
	repo.On("MergeUserGroup", ctx, int64(2), []int64{1}, "998901234567").Return(nil).Once()

	result, err := svc.MergeDuplicatePhones(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, []string{"998901234567"}, result.MergedPhones)
	repo.AssertExpectations(t)
}

func TestMergeDuplicatePhones_FailedGroupSkipped(t *testing.T) {
	repo, svc := newUserFixture(t)
	ctx := context.Background()

	users := []*models.User{
		{ID: 1, ExternalID: "phone-998901111111", Phone: "998901111111"},
		{ID: 2, ExternalID: "111", Phone: "998901111111"},
		{ID: 3, ExternalID: "phone-998902222222", Phone: "998902222222"},
		{ID: 4, ExternalID: "222", Phone: "998902222222"},
	}

	repo.On("UsersWithPhone", ctx).Return(users, nil).Once()
	repo.On("MergeUserGroup", ctx, int64(2), []int64{1}, "998901111111").
		Return(errors.New("boom")).Once()
	repo.On("MergeUserGroup", ctx, int64(4), []int64{3}, "998902222222").
		Return(nil).Once()

	result, err := svc.MergeDuplicatePhones(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, []string{"998902222222"}, result.MergedPhones)
	repo.AssertExpectations(t)
}

func TestMergeDuplicatePhones_AllSynthetic(t *testing.T) {
	repo, svc := newUserFixture(t)
	ctx := context.Background()

	// Обе записи телефонные: выживает самая ранняя
	users := []*models.User{
		{ID: 1, ExternalID: "phone-998901234567", Phone: "998901234567"},
		{ID: 5, ExternalID: "phone-998901234567", Phone: "998901234567"},
	}

	repo.On("UsersWithPhone", ctx).Return(users, nil).Once()
	repo.On("MergeUserGroup", ctx, int64(1), []int64{5}, "998901234567").Return(nil).Once()

	result, err := svc.MergeDuplicatePhones(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	repo.AssertExpectations(t)
}
