package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"expense-report/internal/models"
	"expense-report/internal/storage"
)

// csvHeader is the interchange column order for exports.
var csvHeader = []string{
	"expense_id", "user_id", "amount", "category",
	"payment_method", "date", "description", "tag",
}

// TransferService moves the ledger in and out of CSV files. Export is
// unscoped (all users); the CLI restricts it to Admins.
type TransferService struct {
	db *storage.DB
}

// NewTransferService creates a TransferService backed by db.
func NewTransferService(db *storage.DB) *TransferService {
	return &TransferService{db: db}
}

// Export writes the full joined ledger to a CSV file, optionally sorted by
// an allow-listed field. The sort field is validated before the file is
// created, so an invalid field leaves no file behind. Returns the number of
// rows written.
func (s *TransferService) Export(ctx context.Context, filename, sortField string) (int, error) {
	rows, err := s.db.ExportRows(ctx, sortField)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", filename, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.UserID, 10),
			strconv.FormatFloat(r.Amount, 'f', -1, 64),
			r.Category,
			r.PaymentMethod,
			r.Date,
			r.Description,
			r.Tag,
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	// A failed close can mean the file never fully reached disk.
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", filename, err)
	}

	slog.InfoContext(ctx, "expenses exported", "file", filename, "rows", len(rows))
	return len(rows), nil
}

// Import appends expense rows from a CSV file. The expense_id column, when
// present, is ignored: identifiers are assigned by the store. Category and
// payment method may appear as names (category, payment_method) or ids
// (category_id, method_id). Each row is inserted in its own transaction;
// the first bad row stops the import without rolling back earlier rows.
// Returns how many rows were inserted.
func (s *TransferService) Import(ctx context.Context, filename string) (int, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%s: %w", filename, models.ErrFileNotFound)
		}
		return 0, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	inserted := 0
	for line, record := range records[1:] {
		expense, err := s.rowToExpense(ctx, columns, record)
		if err != nil {
			return inserted, fmt.Errorf("row %d: %w", line+2, err)
		}
		if _, err := s.db.CreateExpense(ctx, expense); err != nil {
			return inserted, fmt.Errorf("row %d: %w", line+2, err)
		}
		inserted++
	}

	slog.InfoContext(ctx, "expenses imported", "file", filename, "rows", inserted)
	return inserted, nil
}

// rowToExpense maps one CSV record to an insertable expense, resolving
// category and payment method references.
func (s *TransferService) rowToExpense(ctx context.Context, columns map[string]int, record []string) (*models.Expense, error) {
	field := func(name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}
	required := func(name string) (string, error) {
		v, ok := field(name)
		if !ok || v == "" {
			return "", fmt.Errorf("missing column %q: %w", name, models.ErrInvalidField)
		}
		return v, nil
	}

	userRaw, err := required("user_id")
	if err != nil {
		return nil, err
	}
	userID, err := strconv.ParseInt(userRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("user_id %q: %w", userRaw, models.ErrInvalidValue)
	}

	amountRaw, err := required("amount")
	if err != nil {
		return nil, err
	}
	amount, err := strconv.ParseFloat(amountRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", amountRaw, models.ErrInvalidValue)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount %q: %w", amountRaw, models.ErrInvalidAmount)
	}

	date, err := required("date")
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("date %q: %w", date, models.ErrInvalidValue)
	}

	categoryID, err := s.resolveRef(ctx, field, "category", "category_id", s.db.CategoryIDByName)
	if err != nil {
		return nil, err
	}
	methodID, err := s.resolveRef(ctx, field, "payment_method", "method_id", s.db.MethodIDByName)
	if err != nil {
		return nil, err
	}

	description, _ := field("description")
	tag, _ := field("tag")

	return &models.Expense{
		UserID:      userID,
		CategoryID:  categoryID,
		MethodID:    methodID,
		Amount:      amount,
		Date:        date,
		Description: description,
		Tag:         tag,
	}, nil
}

// resolveRef resolves a reference either by name column or by id column.
func (s *TransferService) resolveRef(ctx context.Context, field func(string) (string, bool), nameCol, idCol string, byName func(context.Context, string) (int64, error)) (int64, error) {
	if name, ok := field(nameCol); ok && name != "" {
		return byName(ctx, name)
	}
	if raw, ok := field(idCol); ok && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s %q: %w", idCol, raw, models.ErrInvalidValue)
		}
		return id, nil
	}
	return 0, fmt.Errorf("missing column %q: %w", nameCol, models.ErrInvalidField)
}
