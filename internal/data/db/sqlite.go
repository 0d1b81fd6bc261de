package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/utils"
)

// SqliteService backs DB_DRIVER=sqlite for local development and one-shot
// tooling. Row ids are generated in the repositories, so nothing here needs
// the uuid-ossp extension Postgres provides.
type SqliteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSqliteService(logg *logger.Logger) (*SqliteService, error) {
	serviceLog := logg.With("service", "SqliteService")

	path := utils.GetEnv("SQLITE_PATH", "dandarts.db", logg)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}

	// Serialize writers instead of surfacing SQLITE_BUSY to the repos.
	if err := db.Exec(`PRAGMA busy_timeout = 5000;`).Error; err != nil {
		return nil, fmt.Errorf("failed to set sqlite busy_timeout: %w", err)
	}

	return &SqliteService{db: db, log: serviceLog}, nil
}

func (s *SqliteService) DB() *gorm.DB { return s.db }
