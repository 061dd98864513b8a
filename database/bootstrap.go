// database/bootstrap.go
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kritlunkad/krishi-drishti-backend/config"
	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

// Open connects to sqlite or postgres and migrates all entities.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.URL), gcfg)
	case "sqlite", "":
		db, err = gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gcfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer keeps sqlite from returning SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)

		// run BEFORE AutoMigrate so GORM doesn't try to ALTER the legacy users table
		if err := migrateLegacyUsers(db, logger); err != nil {
			return nil, fmt.Errorf("migrate users: %w", err)
		}
	}

	if err := db.AutoMigrate(
		&entities.User{},
		&entities.FarmerProfile{},
		&entities.DetectionRecord{},
		&entities.ChatRecord{},
		&entities.KBDocument{},
		&entities.KBChunk{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		if err := importLegacyRecords(db, logger); err != nil {
			return nil, fmt.Errorf("import legacy records: %w", err)
		}
	}

	logger.Info("database ready", zap.String("driver", db.Dialector.Name()))
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func sqliteDSN(path string) string {
	if path == "" {
		path = "krishi.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

type colInfo struct {
	Cid       int
	Name      string
	Type      string
	NotNull   int
	DfltValue sql.NullString
	Pk        int
}

func tableColumns(db *gorm.DB, table string) (map[string]bool, error) {
	var tbl string
	if err := db.Raw(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&tbl).Error; err != nil {
		return nil, fmt.Errorf("check table exist: %w", err)
	}
	if tbl == "" {
		return nil, nil
	}
	var cols []colInfo
	if err := db.Raw(fmt.Sprintf(`PRAGMA table_info(%s)`, table)).Scan(&cols).Error; err != nil {
		return nil, fmt.Errorf("table_info: %w", err)
	}
	out := make(map[string]bool, len(cols))
	for _, c := range cols {
		out[strings.ToLower(c.Name)] = true
	}
	return out, nil
}

// migrateLegacyUsers rebuilds a users table created by the first version of the
// service (integer id + aadhar + plaintext column name "password") into the
// identifier-keyed schema. Password hashes are carried over as-is.
func migrateLegacyUsers(db *gorm.DB, logger *zap.Logger) error {
	cols, err := tableColumns(db, "users")
	if err != nil {
		return err
	}
	if cols == nil || !cols["aadhar"] {
		// fresh DB or already migrated
		return nil
	}

	logger.Info("rebuilding legacy users table")
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
CREATE TABLE users_new (
    id TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    created_at DATETIME
);`).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
INSERT OR IGNORE INTO users_new (id, password_hash, created_at)
SELECT aadhar, password, ? FROM users WHERE aadhar IS NOT NULL AND aadhar <> '';`, time.Now()).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DROP TABLE users`).Error; err != nil {
			return err
		}
		return tx.Exec(`ALTER TABLE users_new RENAME TO users`).Error
	})
}

// importLegacyRecords copies rows from the first-version tables into the new
// ones and drops the old tables. Rows whose identifier has no user are skipped.
func importLegacyRecords(db *gorm.DB, logger *zap.Logger) error {
	type legacy struct {
		table string
		copy  string
	}
	steps := []legacy{
		{"farmers", `
INSERT OR IGNORE INTO farmer_profiles (user_id, name, location, crops_grown, soil_type, irrigation_system,
    farm_size, previous_diseases, farming_method, extra_farm_type, current_weather, any_other_info, created_at)
SELECT aadhar, COALESCE(name,''), COALESCE(location,''), COALESCE(crops_grown,''), COALESCE(soil_type,''),
    COALESCE(irrigation_system,''), COALESCE(farm_size,''), COALESCE(previous_diseases,''),
    COALESCE(organic_farming,''), COALESCE(extra_farm_type,''), COALESCE(current_weather,''),
    COALESCE(any_other_info,''), ?
FROM farmers WHERE aadhar IN (SELECT id FROM users);`},
		{"detection_results", `
INSERT INTO detection_records (user_id, disease, confidence, language, created_at)
SELECT aadhar, disease, confidence, 'en', ?
FROM detection_results WHERE aadhar IN (SELECT id FROM users) ORDER BY id;`},
		{"chat_interactions", `
INSERT INTO chat_records (user_id, session_id, question, answer, language, created_at)
SELECT aadhar, aadhar, COALESCE(question,''), COALESCE(answer,''), 'en', ?
FROM chat_interactions WHERE aadhar IN (SELECT id FROM users) ORDER BY id;`},
	}

	for _, s := range steps {
		cols, err := tableColumns(db, s.table)
		if err != nil {
			return err
		}
		if cols == nil {
			continue
		}
		var moved int64
		err = db.Transaction(func(tx *gorm.DB) error {
			res := tx.Exec(s.copy, time.Now())
			if res.Error != nil {
				return res.Error
			}
			moved = res.RowsAffected
			return tx.Exec(fmt.Sprintf(`DROP TABLE %s`, s.table)).Error
		})
		if err != nil {
			return fmt.Errorf("%s: %w", s.table, err)
		}
		logger.Info("imported legacy table", zap.String("table", s.table), zap.Int64("rows", moved))
	}
	return nil
}
