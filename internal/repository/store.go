// Package repository 封装全部数据访问；每个方法对应一种访问模式，均使用参数化语句
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"pigeon/internal/apperr"
)

const DefaultTimeout = 5 * time.Second

// Store 持有数据库连接与每次调用的超时时间
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

func New(db *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{db: db, timeout: timeout}
}

// DB 返回底层连接，仅供迁移与健康检查使用
func (s *Store) DB() *gorm.DB { return s.db }

// scope 为单次存储调用附加超时
func (s *Store) scope(ctx context.Context) (context.Context, *gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return ctx, s.db.WithContext(ctx), cancel
}

// InTx 在单个事务中执行 fn，fn 中通过 tx 访问的所有操作要么全部提交要么全部回滚
// 超时作用于整个事务
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, timeout: s.timeout})
	})
	if err != nil {
		return translate(ctx, err, "")
	}
	return nil
}

// Ping 检查数据库连通性
func (s *Store) Ping(ctx context.Context) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return translate(ctx, err, "")
	}
	return translate(ctx, sqlDB.PingContext(ctx), "")
}

// translate 将 gorm/驱动错误映射为 apperr 错误；原始错误只作为 Cause 保留，不进入响应
func translate(ctx context.Context, err error, entity string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Timeout(err)
	}
	if entity == "" {
		entity = "record"
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity + " not found")
	case isDuplicate(err):
		return apperr.Wrap(apperr.CodeAlreadyExists, entity+" already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated) || hasPgCode(err, "23503") || strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return apperr.Wrap(apperr.CodeNotFound, "referenced record not found", err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated) || hasPgCode(err, "23514") || strings.Contains(err.Error(), "CHECK constraint failed"):
		return apperr.Wrap(apperr.CodeInvalidArgument, "constraint violation", err)
	}
	return apperr.StorageFailure(err)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		hasPgCode(err, "23505") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func hasPgCode(err error, codes ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	for _, c := range codes {
		if pgErr.Code == c {
			return true
		}
	}
	return false
}

// IsTransient 报告错误是否为可重试的并发冲突（序列化失败、死锁、sqlite 锁竞争）
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if hasPgCode(err, "40001", "40P01") {
		return true
	}
	msg := err.Error()
	for cur := errors.Unwrap(err); cur != nil; cur = errors.Unwrap(cur) {
		msg += " " + cur.Error()
	}
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// Page 分页参数，页码从 1 开始
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// List 分页结果
type List[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
}

// likePattern 构造大小写不敏感的部分匹配模式，转义通配符
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// paginate 统计总数后取当前页；preloads 只作用于取数据的查询
func paginate[T any](q *gorm.DB, p Page, order string, preloads ...string) (List[T], error) {
	var out List[T]
	q = q.Session(&gorm.Session{})
	if err := q.Count(&out.TotalCount).Error; err != nil {
		return out, err
	}
	out.Items = make([]T, 0)
	if out.TotalCount == 0 {
		return out, nil
	}
	find := q.Order(order).Offset(p.Offset()).Limit(p.Limit)
	for _, name := range preloads {
		find = find.Preload(name)
	}
	err := find.Find(&out.Items).Error
	return out, err
}

// NewPage 规范化分页参数：页码至少为 1，limit 缺省取 def，超过 max 时截断
func NewPage(page, limit, def, max int) Page {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return Page{Page: page, Limit: limit}
}

// RetryTransient 执行 fn，遇到可重试冲突时最多再执行 retries 次
func RetryTransient(retries int, fn func() error, onRetry func(attempt int, err error)) error {
	err := fn()
	for attempt := 1; attempt <= retries && IsTransient(err); attempt++ {
		if onRetry != nil {
			onRetry(attempt, err)
		}
		err = fn()
	}
	return err
}
