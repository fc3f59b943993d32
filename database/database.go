package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"celengan/config"
	"celengan/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured store. The caller owns the handle and
// releases it with Close.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.LogMode {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); !strings.HasPrefix(cfg.Path, "file:") && dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path)
	default:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
		)
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers anyway; one connection keeps
		// in-memory databases and row updates on a single handle
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Migrate creates or updates every ledger table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.RecurringTransaction{},
		&models.Budget{},
		&models.Goal{},
		&models.GoalContribution{},
		&models.FinancialTip{},
		&models.PasswordReset{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Init opens, migrates and seeds the store
func Init(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		Close(db)
		return nil, err
	}
	if err := SeedTips(db); err != nil {
		log.Printf("warning: seed financial tips: %v", err)
	}

	log.Println("database ready")
	return db, nil
}

// SeedTips inserts the default financial tips when the table is empty
func SeedTips(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.FinancialTip{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tips := []models.FinancialTip{
		{Title: "Sisihkan di awal", Content: "Pindahkan porsi tabungan segera setelah gajian, sebelum uang terpakai untuk pengeluaran lain."},
		{Title: "Dana darurat", Content: "Targetkan dana darurat minimal 3 sampai 6 kali pengeluaran bulanan."},
		{Title: "Aturan 50/30/20", Content: "Alokasikan 50% untuk kebutuhan, 30% untuk keinginan, dan 20% untuk tabungan atau investasi."},
		{Title: "Catat setiap transaksi", Content: "Pengeluaran kecil yang tidak tercatat sering menjadi kebocoran terbesar."},
		{Title: "Tinjau anggaran tiap bulan", Content: "Bandingkan anggaran dengan realisasi dan sesuaikan kategori yang selalu melebihi batas."},
	}
	return db.Create(&tips).Error
}

// Close releases the connection pool
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("warning: close database: %v", err)
	}
}
