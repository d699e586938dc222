package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fitclub/internal/database"
	"fitclub/internal/domain"
	"fitclub/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// FindOrCreateByTelegram возвращает клиента по Telegram ID, создавая
// запись при первом обращении и обновляя профиль при повторном.
func (s *UserService) FindOrCreateByTelegram(ctx context.Context, telegramID int64, username, firstName, lastName, language string) (*models.User, error) {
	externalID := fmt.Sprintf("%d", telegramID)

	user, err := s.repo.GetUserByExternalID(ctx, externalID)
	if err == nil {
		if user.Username != username || user.FirstName != firstName || user.LastName != lastName {
			if err := s.repo.UpdateUserProfile(ctx, user.ID, firstName, lastName, username); err != nil {
				s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to refresh user profile")
			} else {
				user.Username = username
				user.FirstName = firstName
				user.LastName = lastName
			}
		}
		return user, nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return nil, err
	}

	if language != models.LanguageUz {
		language = models.LanguageRu
	}
	user = &models.User{
		ExternalID: externalID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Language:   language,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("telegram_id", telegramID).Int64("user_id", user.ID).Msg("new client registered")
	return user, nil
}

// FindOrCreateByPhone ищет клиента по нормализованному телефону и
// создаёт телефонную запись, если клиент ещё не известен.
func (s *UserService) FindOrCreateByPhone(ctx context.Context, phone, firstName, lastName string) (*models.User, error) {
	normalized := models.NormalizePhone(phone)
	if normalized == "" {
		return nil, database.ErrInvalidPhone
	}

	user, err := s.repo.GetUserByPhone(ctx, normalized)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		ExternalID: models.ExternalIDPhonePrefix + normalized,
		FirstName:  firstName,
		LastName:   lastName,
		Phone:      normalized,
		Language:   models.LanguageRu,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateManual заводит клиента, добавленного администратором вручную.
func (s *UserService) CreateManual(ctx context.Context, firstName, lastName, phone string) (*models.User, error) {
	normalized := models.NormalizePhone(phone)
	if normalized != "" {
		if existing, err := s.repo.GetUserByPhone(ctx, normalized); err == nil {
			return existing, nil
		} else if !errors.Is(err, database.ErrUserNotFound) {
			return nil, err
		}
	}

	user := &models.User{
		ExternalID: models.ExternalIDManualPrefix + uuid.NewString(),
		FirstName:  firstName,
		LastName:   lastName,
		Phone:      normalized,
		Language:   models.LanguageRu,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.repo.GetUserByExternalID(ctx, externalID)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) UpdatePhone(ctx context.Context, externalID, phone string) error {
	normalized := models.NormalizePhone(phone)
	if normalized == "" {
		return database.ErrInvalidPhone
	}
	return s.repo.UpdateUserPhone(ctx, externalID, normalized)
}

func (s *UserService) UpdateLanguage(ctx context.Context, externalID, language string) error {
	if language != models.LanguageRu && language != models.LanguageUz {
		return database.ErrInvalidLanguage
	}
	return s.repo.UpdateUserLanguage(ctx, externalID, language)
}

func (s *UserService) Search(ctx context.Context, query string) ([]*models.User, error) {
	return s.repo.SearchUsers(ctx, strings.TrimSpace(query))
}

// MergeDuplicatePhones схлопывает клиентов с одинаковым телефоном.
// Выживает запись с настоящим внешним идентификатором (Telegram либо
// ручная), при прочих равных самая ранняя; телефонные записи
// "phone-..." поглощаются. Повторный запуск ничего не меняет.
func (s *UserService) MergeDuplicatePhones(ctx context.Context) (*models.MergeResult, error) {
	users, err := s.repo.UsersWithPhone(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]*models.User)
	var order []string
	for _, user := range users {
		normalized := models.NormalizePhone(user.Phone)
		if normalized == "" {
			continue
		}
		if _, seen := groups[normalized]; !seen {
			order = append(order, normalized)
		}
		groups[normalized] = append(groups[normalized], user)
	}

	result := &models.MergeResult{}
	for _, phone := range order {
		group := groups[phone]
		if len(group) < 2 {
			continue
		}

		keep := pickSurvivor(group)
		var duplicateIDs []int64
		for _, user := range group {
			if user.ID != keep.ID {
				duplicateIDs = append(duplicateIDs, user.ID)
			}
		}

		// Сбой одной группы не должен останавливать весь проход
		if err := s.repo.MergeUserGroup(ctx, keep.ID, duplicateIDs, phone); err != nil {
			s.logger.Error().Err(err).
				Str("phone", phone).
				Int64("keep_id", keep.ID).
				Msg("failed to merge phone group, skipping")
			continue
		}

		s.logger.Info().
			Str("phone", phone).
			Int64("keep_id", keep.ID).
			Int("duplicates", len(duplicateIDs)).
			Msg("merged duplicate clients")

		result.Merged += len(duplicateIDs)
		result.MergedPhones = append(result.MergedPhones, phone)
	}
	return result, nil
}

// pickSurvivor выбирает выжившего в группе дубликатов: сначала запись
// с не-телефонным внешним идентификатором; группа отсортирована по
// created_at, так что первый подходящий и есть самый ранний.
func pickSurvivor(group []*models.User) *models.User {
	for _, user := range group {
		if !strings.HasPrefix(user.ExternalID, models.ExternalIDPhonePrefix) {
			return user
		}
	}
	return group[0]
}
