package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: DriverSQLite, DSN: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(nil) })
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func newTestRepo(t *testing.T) (*reportRepository, *time.Time) {
	t.Helper()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	repo := NewReportRepository(openTestDB(t), nil).(*reportRepository)
	repo.now = func() time.Time { return now }
	return repo, &now
}

func result(score *int, accounts ...entity.AccountRecord) *entity.ProcessingResult {
	if accounts == nil {
		accounts = []entity.AccountRecord{}
	}
	return &entity.ProcessingResult{
		ReportType: "CIBIL",
		AggregatedData: &entity.AggregatedReport{
			ReportSummary:      entity.ReportSummary{CibilScore: score, TotalAccounts: len(accounts), LoanTypes: []string{}},
			AllAccounts:        accounts,
			DataQualityMetrics: entity.QualityMetrics{OverallAggregationQuality: 0.8},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	score := 742
	in := result(&score, entity.AccountRecord{
		AccountNumber:  "AB1234567890",
		BankName:       "HDFC Bank",
		AccountStatus:  entity.Str("active"),
		PaymentHistory: []string{"0"},
		PageNumber:     2,
	})

	id, err := repo.Save(ctx, "report.pdf", in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id || got.Source != "report.pdf" || got.TotalAccounts != 1 || got.OverallQuality != 0.8 {
		t.Errorf("stored report = %+v", got)
	}
	if got.CibilScore == nil || *got.CibilScore != 742 {
		t.Errorf("score = %v", got.CibilScore)
	}
	if !got.CreatedAt.Equal(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}
	if diff := cmp.Diff(in, got.Result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestGetUnknownReport(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.Get(context.Background(), uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveRejectsEmptyResult(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.Save(context.Background(), "x", &entity.ProcessingResult{}); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo, now := newTestRepo(t)

	first, err := repo.Save(ctx, "a.json", result(nil))
	if err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Minute)
	second, err := repo.Save(ctx, "b.json", result(nil))
	if err != nil {
		t.Fatal(err)
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != second || all[1].ID != first {
		t.Fatalf("List order = %+v", all)
	}
	if all[0].Result != nil || all[0].CibilScore != nil {
		t.Errorf("list rows should carry neither result nor score: %+v", all[0])
	}

	limited, err := repo.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 1 || limited[0].Source != "b.json" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestFindAccount(t *testing.T) {
	ctx := context.Background()
	repo, now := newTestRepo(t)
	acct := entity.AccountRecord{AccountNumber: "AB1234567890", BankName: "HDFC Bank", PageNumber: 3, PaymentHistory: []string{}}

	older, err := repo.Save(ctx, "jan.pdf", result(nil, acct))
	if err != nil {
		t.Fatal(err)
	}
	*now = now.Add(24 * time.Hour)
	acct.AccountStatus = entity.Str("closed")
	newer, err := repo.Save(ctx, "feb.pdf", result(nil, acct, entity.AccountRecord{AccountNumber: "CD9876543210", PaymentHistory: []string{}}))
	if err != nil {
		t.Fatal(err)
	}

	refs, err := repo.FindAccount(ctx, "AB1234567890")
	if err != nil {
		t.Fatalf("FindAccount: %v", err)
	}
	want := []entity.AccountRef{
		{ReportID: newer, Source: "feb.pdf", CreatedAt: *now, AccountNumber: "AB1234567890", BankName: "HDFC Bank", AccountStatus: "closed", PageNumber: 3},
		{ReportID: older, Source: "jan.pdf", CreatedAt: now.Add(-24 * time.Hour), AccountNumber: "AB1234567890", BankName: "HDFC Bank", PageNumber: 3},
	}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("refs mismatch (-want +got):\n%s", diff)
	}

	none, err := repo.FindAccount(ctx, "ZZ0000000000")
	if err != nil || len(none) != 0 {
		t.Errorf("unknown account: %v %v", none, err)
	}
}

func TestFindAccountQueryQualifiesJoinedColumns(t *testing.T) {
	tests := []struct {
		dialect string
		quote   string
	}{
		{dialect.SQLite, "`"},
		{dialect.Postgres, `"`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			q, args := findAccountQuery(tt.dialect, "AB1234567890")
			id := func(s string) string { return tt.quote + s + tt.quote }
			for _, want := range []string{
				id(tableAccounts) + " AS " + id("a"),
				id(tableReports) + " AS " + id("r"),
				id("a") + "." + id("report_id") + " = " + id("r") + "." + id("id"),
				id("r") + "." + id("created_at"),
			} {
				if !strings.Contains(q, want) {
					t.Errorf("query %q does not contain %q", q, want)
				}
			}
			if strings.Contains(q, id("t1")) {
				t.Errorf("query %q falls back to a generated alias", q)
			}
			if diff := cmp.Diff([]any{"AB1234567890"}, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Errorf("second Migrate: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "mysql"}, nil); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}
