package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
)

const (
	tableReports  = "cibil_reports"
	tableAccounts = "cibil_report_accounts"
)

var (
	// reportsColumns holds the columns for the "cibil_reports" table.
	reportsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "source", Type: field.TypeString, SchemaType: map[string]string{dialect.Postgres: "text"}},
		{Name: "created_at", Type: field.TypeString, Size: 40},
		{Name: "cibil_score", Type: field.TypeInt, Nullable: true},
		{Name: "total_accounts", Type: field.TypeInt},
		{Name: "overall_quality", Type: field.TypeFloat64},
		{Name: "result", Type: field.TypeString, SchemaType: map[string]string{dialect.Postgres: "text"}},
	}
	// reportsTable holds the schema information for the "cibil_reports" table.
	reportsTable = &schema.Table{
		Name:       tableReports,
		Columns:    reportsColumns,
		PrimaryKey: []*schema.Column{reportsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "idx_cibil_reports_created_at",
				Unique:  false,
				Columns: []*schema.Column{reportsColumns[2]},
			},
		},
	}
	// accountsColumns holds the columns for the "cibil_report_accounts" table.
	accountsColumns = []*schema.Column{
		{Name: "report_id", Type: field.TypeString, Size: 36},
		{Name: "position", Type: field.TypeInt},
		{Name: "account_number", Type: field.TypeString, SchemaType: map[string]string{dialect.Postgres: "text"}},
		{Name: "bank_name", Type: field.TypeString, SchemaType: map[string]string{dialect.Postgres: "text"}},
		{Name: "account_status", Type: field.TypeString, SchemaType: map[string]string{dialect.Postgres: "text"}},
		{Name: "page_number", Type: field.TypeInt},
	}
	// accountsTable holds the schema information for the "cibil_report_accounts" table.
	accountsTable = &schema.Table{
		Name:       tableAccounts,
		Columns:    accountsColumns,
		PrimaryKey: []*schema.Column{accountsColumns[0], accountsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "cibil_report_accounts_report",
				Columns:    []*schema.Column{accountsColumns[0]},
				RefColumns: []*schema.Column{reportsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "idx_cibil_report_accounts_number",
				Unique:  false,
				Columns: []*schema.Column{accountsColumns[2]},
			},
		},
	}
	// tables holds all the tables in the schema.
	tables = []*schema.Table{
		reportsTable,
		accountsTable,
	}
)

func init() {
	accountsTable.ForeignKeys[0].RefTable = reportsTable
}

// Migrate brings the report tables and indexes up to date. Running it against an
// already migrated store is a no-op.
func Migrate(ctx context.Context, db *DB) error {
	m, err := schema.NewMigrate(db.drv)
	if err != nil {
		return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	return nil
}
