package service

import (
	"context"

	"blog-game/entities"
	"blog-game/repository"
)

// Accounts 余额操作入口，各游戏Hub统一走这里。
// 接口化是为了测试里注入内存实现。
type Accounts interface {
	Lookup(ctx context.Context, userID int) (entities.User, error)
	TryDebit(ctx context.Context, userID int, amount int64) (int64, bool, error)
	Credit(ctx context.Context, userID int, amount int64) (int64, error)
}

type AccountService struct {
	repo *repository.UserRepo
}

func NewAccountService(repo *repository.UserRepo) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) Lookup(ctx context.Context, userID int) (entities.User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *AccountService) TryDebit(ctx context.Context, userID int, amount int64) (int64, bool, error) {
	return s.repo.TryDebit(ctx, userID, amount)
}

func (s *AccountService) Credit(ctx context.Context, userID int, amount int64) (int64, error) {
	return s.repo.Credit(ctx, userID, amount)
}
