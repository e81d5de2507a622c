package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"blog-game/entities"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var DB *sql.DB

// InitMySQL 连接用户库（余额的唯一权威存储）
func InitMySQL() {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/blog_game?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		zap.S().Fatalf("MySQL 打开失败: %v", err)
	}
	db.SetMaxOpenConns(16)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		zap.S().Fatalf("MySQL 连接失败: %v", err)
	}

	DB = db
	zap.S().Infof("✅ MySQL 连接成功")
}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser 按ID查用户
func (r *UserRepo) GetUser(ctx context.Context, userID int) (entities.User, error) {
	var u entities.User
	row := r.db.QueryRowContext(ctx,
		"SELECT id, username, name, surname, balance, role FROM users WHERE id = ?", userID)
	if err := row.Scan(&u.ID, &u.UserName, &u.Name, &u.Surname, &u.Balance, &u.Role); err != nil {
		return entities.User{}, fmt.Errorf("查询用户[%d]失败: %w", userID, err)
	}
	return u, nil
}

// TryDebit 条件扣款：余额足够才扣，整条语句原子执行。
// 返回扣款后的余额和是否扣成功。
func (r *UserRepo) TryDebit(ctx context.Context, userID int, amount int64) (int64, bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?",
		amount, userID, amount)
	if err != nil {
		return 0, false, fmt.Errorf("扣款失败: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("扣款结果读取失败: %w", err)
	}
	if affected == 0 {
		return 0, false, nil
	}

	balance, err := r.balance(ctx, userID)
	if err != nil {
		return 0, true, err
	}
	return balance, true, nil
}

// Credit 入账（派彩、返还）
func (r *UserRepo) Credit(ctx context.Context, userID int, amount int64) (int64, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET balance = balance + ? WHERE id = ?", amount, userID); err != nil {
		return 0, fmt.Errorf("入账失败: %w", err)
	}
	return r.balance(ctx, userID)
}

func (r *UserRepo) balance(ctx context.Context, userID int) (int64, error) {
	var balance int64
	row := r.db.QueryRowContext(ctx, "SELECT balance FROM users WHERE id = ?", userID)
	if err := row.Scan(&balance); err != nil {
		return 0, fmt.Errorf("查询余额失败: %w", err)
	}
	return balance, nil
}
