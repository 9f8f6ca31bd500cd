package database

import (
	"context"
	"database/sql"

	"github.com/carterahq/cartera/model"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// InsertClients bulk-inserts an execution's imported client rows using the
// postgres COPY protocol. One round trip regardless of batch size.
func (d Datasource) InsertClients(ctx context.Context, executionID string, clients []model.Client) error {
	ctx, span := otel.Tracer("Client").Start(ctx, "Bulk inserting collection clients")
	defer span.End()

	if len(clients) == 0 {
		return nil
	}

	txn, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := txn.PrepareContext(ctx, pq.CopyInSchema("cartera", "collection_clients",
		"execution_id", "nit", "name", "email", "phone", "category",
		"total_days_overdue", "total_amount_due", "total_invoices"))
	if err != nil {
		_ = txn.Rollback()
		return err
	}

	for i := range clients {
		c := &clients[i]
		_, err = stmt.ExecContext(ctx, executionID, c.NIT, c.Name, c.Email, c.Phone, c.Category,
			c.TotalDaysOverdue, c.TotalAmountDue.String(), c.TotalInvoices)
		if err != nil {
			_ = stmt.Close()
			_ = txn.Rollback()
			return err
		}
	}

	if _, err = stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = txn.Rollback()
		return err
	}
	if err = stmt.Close(); err != nil {
		_ = txn.Rollback()
		return err
	}
	return txn.Commit()
}

// GetClientsByExecution returns the imported client rows for one execution.
func (d Datasource) GetClientsByExecution(ctx context.Context, executionID string) ([]model.Client, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT nit, name, email, phone, category, total_days_overdue, total_amount_due, total_invoices
		FROM cartera.collection_clients
		WHERE execution_id = $1
		ORDER BY id ASC
	`, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		var name, email, phone, category sql.NullString
		var amount string
		err := rows.Scan(&c.NIT, &name, &email, &phone, &category,
			&c.TotalDaysOverdue, &amount, &c.TotalInvoices)
		if err != nil {
			return nil, err
		}
		c.Name = name.String
		c.Email = email.String
		c.Phone = phone.String
		c.Category = category.String
		if c.TotalAmountDue, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
