package database

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"equiprent/internal/domain"
)

// Models is the migration set, in dependency order.
var Models = []interface{}{
	&domain.Category{},
	&domain.Equipment{},
	&domain.Rental{},
	&domain.AdminUser{},
}

type Options struct {
	MaxOpenConns int
	Logger       *zap.Logger
}

func Connect(dsn string) (*gorm.DB, error) {
	return ConnectWith(dsn, Options{})
}

func ConnectWith(dsn string, opts Options) (*gorm.DB, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if IsPostgres(dsn) {
		log.Info("connecting to PostgreSQL")
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, err
		}
		if opts.MaxOpenConns > 0 {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
			sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		}
		return db, nil
	}

	log.Info("using SQLite for local development", zap.String("dsn", dsn))

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        withForeignKeys(dsn),
		}),
		gormCfg,
	)
	if err != nil {
		return nil, err
	}

	// a single connection keeps :memory: databases alive and serialises writers
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
