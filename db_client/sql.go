package db_client

import (
	"context"
	"fmt"
	"time"

	"Cadence/utils"

	"github.com/Strum355/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type chatSettingsRow struct {
	ChatID      string `gorm:"primaryKey"`
	Volume      int
	RepeatMode  bool
	ShuffleMode bool
	AutoLeave   bool
}

func (chatSettingsRow) TableName() string { return "chat_settings" }

type historyRow struct {
	ID       uint   `gorm:"primaryKey"`
	ChatID   string `gorm:"index"`
	UserID   string `gorm:"index"`
	TrackID  string
	Title    string
	URL      string
	Seconds  int
	PlayedAt time.Time
}

func (historyRow) TableName() string { return "play_history" }

type sqlStore struct {
	db *gorm.DB
}

// Open returns the Store for driver: "memory", "postgres" or "sqlite"
func Open(driver, dsn string) (Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := connect(dialector, 10)
	if err != nil {
		return nil, err
	}
	return newSQLStore(db)
}

// connect opens the database, waiting for it to accept connections
func connect(dialector gorm.Dialector, attempts int) (*gorm.DB, error) {
	var lastErr error
	for range attempts {
		db, err := gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			sqlDB, _ := db.DB()
			if lastErr = sqlDB.Ping(); lastErr == nil {
				return db, nil
			}
		} else {
			lastErr = err
		}
		log.Info("Waiting for database to be ready...")
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("unable to connect to database: %w", lastErr)
}

func newSQLStore(db *gorm.DB) (*sqlStore, error) {
	if err := db.AutoMigrate(&chatSettingsRow{}, &historyRow{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &sqlStore{db: db}, nil
}

func (s *sqlStore) IsOnOff(toggle Toggle) bool {
	return isOnOff(toggle)
}

func (s *sqlStore) GetChatSettings(ctx context.Context, chatID string) (ChatSettings, error) {
	var rows []chatSettingsRow
	if err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).Limit(1).Find(&rows).Error; err != nil {
		return ChatSettings{}, err
	}
	if len(rows) == 0 {
		return DefaultChatSettings(), nil
	}
	row := rows[0]
	return ChatSettings{
		Volume:      row.Volume,
		RepeatMode:  row.RepeatMode,
		ShuffleMode: row.ShuffleMode,
		AutoLeave:   row.AutoLeave,
	}, nil
}

func (s *sqlStore) SetChatSettings(ctx context.Context, chatID string, update SettingsUpdate) (ChatSettings, error) {
	var settings ChatSettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := (&sqlStore{db: tx}).GetChatSettings(ctx, chatID)
		if err != nil {
			return err
		}
		settings = update.apply(current)
		row := chatSettingsRow{
			ChatID:      chatID,
			Volume:      settings.Volume,
			RepeatMode:  settings.RepeatMode,
			ShuffleMode: settings.ShuffleMode,
			AutoLeave:   settings.AutoLeave,
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
	return settings, err
}

func (s *sqlStore) AddToHistory(ctx context.Context, entry HistoryEntry) error {
	playedAt := entry.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(&historyRow{
		ChatID:   entry.ChatID,
		UserID:   entry.UserID,
		TrackID:  entry.Track.ID,
		Title:    entry.Track.Title,
		URL:      entry.Track.URL,
		Seconds:  utils.DurationToSeconds(entry.Track.Duration),
		PlayedAt: playedAt,
	}).Error
}

func (s *sqlStore) GetUserStats(ctx context.Context, userID string) (UserStats, error) {
	var stats UserStats
	err := s.db.WithContext(ctx).
		Model(&historyRow{}).
		Select("COUNT(*) AS songs_played, COALESCE(SUM(seconds), 0) AS time_listened").
		Where("user_id = ?", userID).
		Scan(&stats).Error
	return stats, err
}

func (s *sqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
