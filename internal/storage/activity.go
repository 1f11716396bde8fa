package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/s/learnhub/internal/models"
)

// ActivityQuery selects a page of the activity log. Empty filters match all.
type ActivityQuery struct {
	UserID string
	Action string
	Page   int
	Limit  int
}

func (q ActivityQuery) normalized() ActivityQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	return q
}

func (q ActivityQuery) offset() int { return (q.Page - 1) * q.Limit }

// ActivityLog stores what users did through this service.
type ActivityLog interface {
	Record(ctx context.Context, userID models.ID, action string, details interface{}) error
	List(ctx context.Context, q ActivityQuery) ([]models.UserLog, int64, error)
}

func newEntry(userID models.ID, action string, details interface{}) (models.UserLog, error) {
	entry := models.UserLog{UserID: userID.String(), Action: action}
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return entry, err
		}
		entry.Details = datatypes.JSON(b)
	}
	return entry, nil
}

// DBActivityLog keeps the log in the user_logs table.
type DBActivityLog struct {
	db *gorm.DB
}

func NewDBActivityLog(db *gorm.DB) *DBActivityLog {
	return &DBActivityLog{db: db}
}

func (l *DBActivityLog) Record(ctx context.Context, userID models.ID, action string, details interface{}) error {
	entry, err := newEntry(userID, action, details)
	if err != nil {
		return err
	}
	return l.db.WithContext(ctx).Create(&entry).Error
}

// List returns one page of entries, newest first, and the total match count.
func (l *DBActivityLog) List(ctx context.Context, q ActivityQuery) ([]models.UserLog, int64, error) {
	q = q.normalized()
	db := l.db.WithContext(ctx).Model(&models.UserLog{})
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.Action != "" {
		db = db.Where("action = ?", q.Action)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.UserLog
	err := db.Order("created_at DESC").Order("id DESC").Offset(q.offset()).Limit(q.Limit).Find(&out).Error
	return out, total, err
}

// MemoryActivityLog keeps the log in process memory.
type MemoryActivityLog struct {
	mu      sync.Mutex
	entries []models.UserLog
	now     func() time.Time
}

func NewMemoryActivityLog() *MemoryActivityLog {
	return &MemoryActivityLog{now: time.Now}
}

func (l *MemoryActivityLog) Record(_ context.Context, userID models.ID, action string, details interface{}) error {
	entry, err := newEntry(userID, action, details)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entry.ID = uint(len(l.entries) + 1)
	entry.CreatedAt = l.now()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *MemoryActivityLog) List(_ context.Context, q ActivityQuery) ([]models.UserLog, int64, error) {
	q = q.normalized()

	l.mu.Lock()
	var matched []models.UserLog
	for _, e := range l.entries {
		if (q.UserID == "" || e.UserID == q.UserID) && (q.Action == "" || e.Action == q.Action) {
			matched = append(matched, e)
		}
	}
	l.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	from := q.offset()
	if from >= len(matched) {
		return []models.UserLog{}, total, nil
	}
	to := from + q.Limit
	if to > len(matched) {
		to = len(matched)
	}
	return matched[from:to], total, nil
}
