package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"message-service/internal/models"
	"message-service/internal/query"
	"message-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, msg *models.Message, actorID string) (string, error) {
	args := m.Called(ctx, msg, actorID)
	return args.String(0), args.Error(1)
}

func (m *MessageRepositoryMock) GetByID(ctx context.Context, id string) (models.Message, bool, error) {
	args := m.Called(ctx, id)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Bool(1), args.Error(2)
}

func (m *MessageRepositoryMock) Delete(ctx context.Context, id string, actorID string) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) FindByCriteria(ctx context.Context, criteria query.Criteria, sort *query.Sort) ([]models.ThreadEntry, error) {
	args := m.Called(ctx, criteria, sort)
	var entries []models.ThreadEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.ThreadEntry)
	}
	return entries, args.Error(1)
}

type DirectoryRepositoryMock struct {
	mock.Mock
}

func (m *DirectoryRepositoryMock) ResolveTargetID(ctx context.Context, name string, kind models.TargetKind) (string, bool, error) {
	args := m.Called(ctx, name, kind)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *DirectoryRepositoryMock) UserIDForToken(ctx context.Context, token string) (string, bool, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Bool(1), args.Error(2)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.DirectoryRepository = (*DirectoryRepositoryMock)(nil)
