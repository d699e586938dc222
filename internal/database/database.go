package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite допускает одного писателя; сериализуем соединения,
	// чтобы конкурентные бронирования упирались в busy_timeout, а не в ошибку.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Клиенты клуба
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            external_id TEXT UNIQUE NOT NULL,
            username TEXT,
            first_name TEXT,
            last_name TEXT,
            phone TEXT UNIQUE,
            language TEXT NOT NULL DEFAULT 'ru',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Категории услуг
		`CREATE TABLE IF NOT EXISTS service_categories (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            slug TEXT UNIQUE NOT NULL,
            name_ru TEXT NOT NULL,
            name_uz TEXT,
            icon TEXT,
            sort_order INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Услуги
		`CREATE TABLE IF NOT EXISTS services (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            category_id INTEGER NOT NULL REFERENCES service_categories(id),
            name_ru TEXT NOT NULL,
            name_uz TEXT,
            description_ru TEXT,
            description_uz TEXT,
            price INTEGER NOT NULL DEFAULT 0,
            duration INTEGER NOT NULL DEFAULT 60,
            capacity INTEGER NOT NULL DEFAULT 1,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Слоты расписания
		`CREATE TABLE IF NOT EXISTS slots (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            service_id INTEGER NOT NULL REFERENCES services(id),
            date TEXT NOT NULL,
            start_time TEXT NOT NULL,
            end_time TEXT NOT NULL,
            specialist TEXT,
            capacity INTEGER NOT NULL DEFAULT 1,
            booked_count INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'ACTIVE',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            CHECK (booked_count >= 0 AND booked_count <= capacity)
        )`,

		// Бронирования
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL REFERENCES users(id),
            slot_id INTEGER NOT NULL REFERENCES slots(id),
            status TEXT NOT NULL DEFAULT 'PENDING',
            is_membership BOOLEAN NOT NULL DEFAULT 0,
            comment TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Тарифы абонементов
		`CREATE TABLE IF NOT EXISTS membership_plans (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name_ru TEXT NOT NULL,
            name_uz TEXT,
            type TEXT NOT NULL,
            duration_days INTEGER NOT NULL,
            total_visits INTEGER,
            max_freeze_days INTEGER NOT NULL DEFAULT 0,
            price INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            sort_order INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Услуги, входящие в тариф
		`CREATE TABLE IF NOT EXISTS plan_services (
            plan_id INTEGER NOT NULL REFERENCES membership_plans(id) ON DELETE CASCADE,
            service_id INTEGER NOT NULL REFERENCES services(id),
            PRIMARY KEY (plan_id, service_id)
        )`,

		// Абонементы клиентов
		`CREATE TABLE IF NOT EXISTS user_memberships (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL REFERENCES users(id),
            plan_id INTEGER NOT NULL REFERENCES membership_plans(id),
            start_date DATETIME NOT NULL,
            end_date DATETIME NOT NULL,
            remaining_visits INTEGER,
            used_freeze_days INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'ACTIVE',
            payment_type TEXT NOT NULL DEFAULT 'OFFLINE',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// История заморозок (append-only)
		`CREATE TABLE IF NOT EXISTS membership_freezes (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            membership_id INTEGER NOT NULL REFERENCES user_memberships(id) ON DELETE CASCADE,
            freeze_start DATETIME NOT NULL,
            freeze_end DATETIME,
            days_frozen INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Категории фитнес-бара
		`CREATE TABLE IF NOT EXISTS bar_categories (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            slug TEXT UNIQUE NOT NULL,
            name_ru TEXT NOT NULL,
            name_uz TEXT,
            icon TEXT,
            sort_order INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Позиции меню бара
		`CREATE TABLE IF NOT EXISTS bar_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            category_id INTEGER NOT NULL REFERENCES bar_categories(id),
            name_ru TEXT NOT NULL,
            name_uz TEXT,
            description_ru TEXT,
            description_uz TEXT,
            price INTEGER NOT NULL DEFAULT 0,
            image_url TEXT,
            volume TEXT,
            calories INTEGER NOT NULL DEFAULT 0,
            proteins INTEGER NOT NULL DEFAULT 0,
            fats INTEGER NOT NULL DEFAULT 0,
            carbs INTEGER NOT NULL DEFAULT 0,
            is_available BOOLEAN NOT NULL DEFAULT 1,
            sort_order INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Заказы бара
		`CREATE TABLE IF NOT EXISTS bar_orders (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL REFERENCES users(id),
            status TEXT NOT NULL DEFAULT 'PENDING',
            total INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Позиции заказов
		`CREATE TABLE IF NOT EXISTS bar_order_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            order_id INTEGER NOT NULL REFERENCES bar_orders(id) ON DELETE CASCADE,
            item_id INTEGER NOT NULL REFERENCES bar_items(id),
            quantity INTEGER NOT NULL DEFAULT 1,
            price INTEGER NOT NULL DEFAULT 0
        )`,

		// Отзывы после занятий, один на бронирование
		`CREATE TABLE IF NOT EXISTS session_feedback (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER UNIQUE NOT NULL REFERENCES bookings(id),
            rating INTEGER NOT NULL,
            comment TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Администраторы
		`CREATE TABLE IF NOT EXISTS admin_users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            name TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'MANAGER',
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_date ON slots(date)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_service_id ON slots(service_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_slot_id ON bookings(slot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_memberships_user_id ON user_memberships(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_memberships_status ON user_memberships(status)`,
		`CREATE INDEX IF NOT EXISTS idx_freezes_membership_id ON membership_freezes(membership_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bar_orders_user_id ON bar_orders(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bar_orders_status ON bar_orders(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// withTx выполняет fn в транзакции с откатом при ошибке.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
