package database

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/carterahq/cartera/internal/cache"

	"github.com/google/uuid"

	"github.com/carterahq/cartera/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con, Cache: nil} // or Cache: newCache if cache is used
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createSchema(db)
	if err != nil {
		return nil, err
	}
	err = createThresholdTable(db)
	if err != nil {
		return nil, err
	}
	err = createAttachmentRuleTable(db)
	if err != nil {
		return nil, err
	}
	err = createExecutionTable(db)
	if err != nil {
		return nil, err
	}
	err = createClientTable(db)
	if err != nil {
		return nil, err
	}
	err = createAuditLogTable(db)
	if err != nil {
		return nil, err
	}
	err = createSchedulerLockTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func GenerateUUIDWithSuffix(module string) string {
	// Generate a new UUID
	id := uuid.New()

	// Convert the UUID to a string
	uuidStr := id.String()

	// Add the module suffix
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)

	return idWithSuffix
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS cartera`)
	return err
}

// createThresholdTable creates a PostgreSQL table for the NotificationThreshold struct
func createThresholdTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cartera.notification_thresholds (
			id SERIAL PRIMARY KEY,
			threshold_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			name TEXT,
			days_from INT NOT NULL,
			days_to INT,
			template_id TEXT NOT NULL,
			channel TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			disabled_at TIMESTAMP
		)
	`)
	return err
}

// createAttachmentRuleTable creates a PostgreSQL table for the AttachmentRule struct
func createAttachmentRuleTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cartera.attachment_rules (
			id SERIAL PRIMARY KEY,
			rule_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			name TEXT,
			threshold_id TEXT,
			category TEXT,
			customer_nit TEXT,
			days_from INT,
			days_to INT,
			min_amount NUMERIC,
			max_amount NUMERIC,
			is_global BOOLEAN NOT NULL DEFAULT FALSE,
			attachment_id TEXT NOT NULL,
			display_order INT NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createExecutionTable creates a PostgreSQL table for the CollectionExecution struct
func createExecutionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cartera.collection_executions (
			id SERIAL PRIMARY KEY,
			execution_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			campaign_name TEXT,
			status TEXT NOT NULL,
			total_clients INT NOT NULL DEFAULT 0,
			assigned_clients INT NOT NULL DEFAULT 0,
			total_batches INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMP
		)
	`)
	return err
}

// createClientTable creates a PostgreSQL table for imported collection clients
func createClientTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cartera.collection_clients (
			id SERIAL PRIMARY KEY,
			execution_id TEXT NOT NULL REFERENCES cartera.collection_executions(execution_id),
			nit TEXT NOT NULL,
			name TEXT,
			email TEXT,
			phone TEXT,
			category TEXT,
			total_days_overdue INT NOT NULL DEFAULT 0,
			total_amount_due NUMERIC NOT NULL DEFAULT 0,
			total_invoices INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createAuditLogTable creates the append-only execution audit log table
func createAuditLogTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cartera.execution_audit_logs (
			id SERIAL PRIMARY KEY,
			execution_id TEXT NOT NULL,
			batch_id TEXT,
			event TEXT NOT NULL,
			worker_id TEXT,
			details TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createSchedulerLockTable creates the singleton-per-tenant scheduler lock table
func createSchedulerLockTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cartera.scheduler_locks (
			tenant_id TEXT PRIMARY KEY,
			locked_by TEXT NOT NULL DEFAULT 'init',
			locked_at TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	return err
}
