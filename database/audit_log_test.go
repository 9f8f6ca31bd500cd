package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/carterahq/cartera/model"
	"github.com/stretchr/testify/assert"
)

func TestAppendAuditLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	entry := model.AuditLogEntry{
		ExecutionID: "exec_1",
		BatchID:     "batch_1",
		Event:       model.EventEnqueued,
		WorkerID:    "worker-7",
		Details:     "50 clients",
	}

	mock.ExpectExec("INSERT INTO cartera.execution_audit_logs").
		WithArgs("exec_1", "batch_1", "ENQUEUED", "worker-7", "50 clients", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = ds.AppendAuditLog(context.Background(), &entry)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), entry.CreatedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAuditLog_GlobalEventHasNullBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	entry := model.AuditLogEntry{
		ExecutionID: "exec_1",
		Event:       model.EventEnqueued,
	}

	mock.ExpectExec("INSERT INTO cartera.execution_audit_logs").
		WithArgs("exec_1", nil, "ENQUEUED", nil, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = ds.AppendAuditLog(context.Background(), &entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAuditLogByExecution(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	base := time.Now().Add(-time.Minute)
	rows := sqlmock.NewRows([]string{"id", "execution_id", "batch_id", "event", "worker_id", "details", "created_at"}).
		AddRow(1, "exec_1", "batch_1", "ENQUEUED", nil, nil, base).
		AddRow(2, "exec_1", "batch_1", "PICKED_UP", "worker-7", nil, base.Add(time.Second)).
		AddRow(3, "exec_1", nil, "ENQUEUED", nil, "execution started", base.Add(2*time.Second))

	mock.ExpectQuery("SELECT .* FROM cartera.execution_audit_logs").
		WithArgs("exec_1").
		WillReturnRows(rows)

	entries, err := ds.GetAuditLogByExecution(context.Background(), "exec_1")
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, model.EventPickedUp, entries[1].Event)
	assert.Equal(t, "worker-7", entries[1].WorkerID)
	assert.Empty(t, entries[2].BatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
