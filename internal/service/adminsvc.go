package service

import (
	"context"

	"GameNightwebserver/internal/domain"
	"GameNightwebserver/internal/export"
)

type AdminUsersStore interface {
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	SearchUsers(ctx context.Context, query string, limit, offset int) ([]domain.User, error)
}

type AccountRemover interface {
	DeleteUser(ctx context.Context, userID string) error
}

type EventRemover interface {
	DeleteEvent(ctx context.Context, eventID string) error
}

type FriendshipRemover interface {
	DeleteFriendship(ctx context.Context, id string) error
}

const exportPageSize = 200

// AdminService is the privileged capability set. Every method checks the
// caller's stored admin flag first.
type AdminService struct {
	Users       AdminUsersStore
	Accounts    AccountRemover
	Events      EventRemover
	Friendships FriendshipRemover
}

func requireAdmin(actor domain.AuthContext) error {
	if !actor.IsAdmin {
		return domain.ErrAdminOnly
	}
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor domain.AuthContext, limit, offset int) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Users.ListUsers(ctx, limit, offset)
}

func (s *AdminService) SearchUsers(ctx context.Context, actor domain.AuthContext, query string, limit, offset int) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Users.SearchUsers(ctx, query, limit, offset)
}

func (s *AdminService) DeleteUser(ctx context.Context, actor domain.AuthContext, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == actor.UserID {
		return domain.NewValidationError(map[string]string{"id": "use account deletion to remove yourself"})
	}
	return s.Accounts.DeleteUser(ctx, userID)
}

func (s *AdminService) DeleteEvent(ctx context.Context, actor domain.AuthContext, eventID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.Events.DeleteEvent(ctx, eventID)
}

func (s *AdminService) DeleteFriendship(ctx context.Context, actor domain.AuthContext, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.Friendships.DeleteFriendship(ctx, id)
}

// ExportUsers renders every user as an XLSX workbook.
func (s *AdminService) ExportUsers(ctx context.Context, actor domain.AuthContext) ([]byte, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var all []domain.User
	for offset := 0; ; offset += exportPageSize {
		page, err := s.Users.ListUsers(ctx, exportPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			break
		}
	}
	return export.UsersXLSX(all)
}
