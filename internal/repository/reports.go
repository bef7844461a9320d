package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

type ReportRepository interface {
	Save(ctx context.Context, source string, result *entity.ProcessingResult) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.StoredReport, error)
	List(ctx context.Context, limit int) ([]*entity.StoredReport, error)
	FindAccount(ctx context.Context, accountNumber string) ([]entity.AccountRef, error)
}

type reportRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewReportRepository(db *DB, logger *slog.Logger) ReportRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &reportRepository{db: db, logger: logger, now: time.Now}
}

// Save stores the result and one row per account in a single transaction.
func (r *reportRepository) Save(ctx context.Context, source string, result *entity.ProcessingResult) (uuid.UUID, error) {
	if result == nil || result.AggregatedData == nil {
		return uuid.Nil, fmt.Errorf("%w: result has no aggregated report", common.ErrInvalidInput)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal result: %w", err)
	}
	report := result.AggregatedData
	id := uuid.New()
	var score any
	if s := report.ReportSummary.CibilScore; s != nil {
		score = *s
	}

	b := entsql.Dialect(r.db.dialect)
	insertReport, reportArgs := b.Insert(tableReports).
		Columns("id", "source", "created_at", "cibil_score", "total_accounts", "overall_quality", "result").
		Values(id.String(), source, r.now().UTC().Format(timeLayout), score,
			report.ReportSummary.TotalAccounts,
			report.DataQualityMetrics.OverallAggregationQuality,
			string(payload)).
		Query()

	tx, err := r.db.drv.Tx(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}
	if err := tx.Exec(ctx, insertReport, reportArgs, nil); err != nil {
		return uuid.Nil, r.rollback(tx, "insert report", err)
	}
	if len(report.AllAccounts) > 0 {
		ins := b.Insert(tableAccounts).
			Columns("report_id", "position", "account_number", "bank_name", "account_status", "page_number")
		for i, a := range report.AllAccounts {
			ins.Values(id.String(), i, a.AccountNumber, a.BankName, entity.Deref(a.AccountStatus), a.PageNumber)
		}
		q, args := ins.Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return uuid.Nil, r.rollback(tx, "insert accounts", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	r.logger.Info("report.saved", "report_id", id, "source", source, "accounts", len(report.AllAccounts))
	return id, nil
}

func (r *reportRepository) rollback(tx dialect.Tx, op string, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		r.logger.Error("report.rollback.failed", "op", op, "error", rerr)
	}
	r.logger.Error("report.save.failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", common.ErrDatabase, op, err)
}

// Get returns the stored report with its full result, or common.ErrNotFound.
func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*entity.StoredReport, error) {
	q, args := entsql.Dialect(r.db.dialect).
		Select("id", "source", "created_at", "cibil_score", "total_accounts", "overall_quality", "result").
		From(entsql.Table(tableReports)).
		Where(entsql.EQ("id", id.String())).
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: get report: %w", common.ErrDatabase, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: get report: %w", common.ErrDatabase, err)
		}
		return nil, fmt.Errorf("report %s: %w", id, common.ErrNotFound)
	}

	var payload string
	rep, err := scanReport(&rows, &payload)
	if err != nil {
		return nil, err
	}
	rep.Result = &entity.ProcessingResult{}
	if err := json.Unmarshal([]byte(payload), rep.Result); err != nil {
		return nil, fmt.Errorf("decode stored result: %w", err)
	}
	return rep, nil
}

// List returns stored reports without their results, newest first. limit <= 0 means no limit.
func (r *reportRepository) List(ctx context.Context, limit int) ([]*entity.StoredReport, error) {
	sel := entsql.Dialect(r.db.dialect).
		Select("id", "source", "created_at", "cibil_score", "total_accounts", "overall_quality").
		From(entsql.Table(tableReports)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("failed to list reports", "error", err)
		return nil, fmt.Errorf("%w: list reports: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := []*entity.StoredReport{}
	for rows.Next() {
		rep, err := scanReport(&rows, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list reports: %w", common.ErrDatabase, err)
	}
	return out, nil
}

// FindAccount returns every stored sighting of an account number, newest report first.
func (r *reportRepository) FindAccount(ctx context.Context, accountNumber string) ([]entity.AccountRef, error) {
	q, args := findAccountQuery(r.db.dialect, accountNumber)

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: find account: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := []entity.AccountRef{}
	for rows.Next() {
		var (
			ref               entity.AccountRef
			reportID, created string
			pageNumber        int64
		)
		if err := rows.Scan(&reportID, &ref.Source, &created, &ref.AccountNumber, &ref.BankName, &ref.AccountStatus, &pageNumber); err != nil {
			return nil, fmt.Errorf("%w: scan account: %w", common.ErrDatabase, err)
		}
		var err error
		if ref.ReportID, err = uuid.Parse(reportID); err != nil {
			return nil, fmt.Errorf("stored report id %q: %w", reportID, err)
		}
		if ref.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("stored created_at %q: %w", created, err)
		}
		ref.PageNumber = int(pageNumber)
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: find account: %w", common.ErrDatabase, err)
	}
	return out, nil
}

// scanReport reads one report row; payload receives the result column when non-nil.
func scanReport(rows *entsql.Rows, payload *string) (*entity.StoredReport, error) {
	var (
		rep         entity.StoredReport
		id, created string
		score       sql.NullInt64
		total       int64
	)
	dest := []any{&id, &rep.Source, &created, &score, &total, &rep.OverallQuality}
	if payload != nil {
		dest = append(dest, payload)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("%w: scan report: %w", common.ErrDatabase, err)
	}
	var err error
	if rep.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("stored report id %q: %w", id, err)
	}
	if rep.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("stored created_at %q: %w", created, err)
	}
	if score.Valid {
		s := int(score.Int64)
		rep.CibilScore = &s
	}
	rep.TotalAccounts = int(total)
	return &rep, nil
}

// findAccountQuery joins accounts to their reports. Both tables are aliased before any
// column is taken from them so the qualifiers match the join.
func findAccountQuery(d, accountNumber string) (string, []any) {
	b := entsql.Dialect(d)
	rt := b.Table(tableReports).As("r")
	at := b.Table(tableAccounts).As("a")
	return b.Select(
		at.C("report_id"),
		rt.C("source"),
		rt.C("created_at"),
		at.C("account_number"),
		at.C("bank_name"),
		at.C("account_status"),
		at.C("page_number"),
	).
		From(at).
		Join(rt).On(at.C("report_id"), rt.C("id")).
		Where(entsql.EQ(at.C("account_number"), accountNumber)).
		OrderBy(entsql.Desc(rt.C("created_at")), entsql.Asc(at.C("position"))).
		Query()
}
