package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fabricstore/internal/domain"
	"fabricstore/internal/receipt"
	"fabricstore/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// TransactionSource is the only storage dependency of the analytics side.
type TransactionSource interface {
	ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]domain.Transaction, error)
}

type Options struct {
	Location            *time.Location
	Locale              domain.Locale
	StoreName           string
	LowStockThresholdKg float64
	Now                 func() time.Time
}

type Service struct {
	repo   *repository.Repository
	source TransactionSource
	opts   Options
}

func New(repo *repository.Repository, opts Options) *Service {
	return NewWithSource(repo, repo, opts)
}

// NewWithSource lets analytics read from a source other than repo.
func NewWithSource(repo *repository.Repository, source TransactionSource, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if !opts.Locale.Valid() {
		opts.Locale = domain.LocaleEnglish
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StoreName == "" {
		opts.StoreName = "Fabric Store"
	}
	return &Service{repo: repo, source: source, opts: opts}
}

// Location is the zone calendar windows are cut in.
func (s *Service) Location() *time.Location {
	return s.opts.Location
}

func (s *Service) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *Service) ListFabrics(ctx context.Context, search string, limit, offset int) ([]domain.Fabric, error) {
	return s.repo.ListFabrics(ctx, repository.FabricListFilter{Search: search, Limit: limit, Offset: offset})
}

func (s *Service) GetFabric(ctx context.Context, id int64) (*domain.Fabric, error) {
	return s.repo.GetFabric(ctx, id)
}

func (s *Service) CreateFabric(ctx context.Context, input repository.FabricCreateInput) (domain.Fabric, error) {
	input.FabricName = strings.TrimSpace(input.FabricName)
	if input.FabricName == "" {
		return domain.Fabric{}, fmt.Errorf("fabric_name is required: %w", ErrInvalidInput)
	}
	input.Color = normalizeNullable(input.Color)
	return s.repo.CreateFabric(ctx, input)
}

func (s *Service) PatchFabric(ctx context.Context, id int64, input repository.FabricPatchInput) (*domain.Fabric, error) {
	return s.repo.PatchFabric(ctx, id, input)
}

func (s *Service) DeleteFabric(ctx context.Context, id int64) error {
	return s.repo.DeleteFabric(ctx, id)
}

func (s *Service) ImportFabrics(ctx context.Context, rows []domain.FabricImportRow) (int, int, error) {
	if len(rows) == 0 {
		return 0, 0, fmt.Errorf("import file has no data rows: %w", ErrInvalidInput)
	}
	return s.repo.UpsertFabricRows(ctx, rows)
}

// LowStock uses the configured threshold for fabrics without their own alarm.
func (s *Service) LowStock(ctx context.Context, thresholdKg *float64) ([]domain.LowStockRow, error) {
	threshold := s.opts.LowStockThresholdKg
	if thresholdKg != nil {
		threshold = *thresholdKg
	}
	return s.repo.GetLowStock(ctx, threshold)
}

func (s *Service) ListCustomers(ctx context.Context, search string, limit, offset int) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx, search, limit, offset)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, input repository.CustomerInput) (domain.Customer, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Customer{}, fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	input.Phone = normalizeNullable(input.Phone)
	input.Address = normalizeNullable(input.Address)
	return s.repo.CreateCustomer(ctx, input)
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, input repository.CustomerInput) (*domain.Customer, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	input.Phone = normalizeNullable(input.Phone)
	input.Address = normalizeNullable(input.Address)
	return s.repo.UpdateCustomer(ctx, id, input)
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) CreateTransaction(ctx context.Context, input repository.TransactionCreateInput) (domain.Transaction, error) {
	if err := validateTransaction(input); err != nil {
		return domain.Transaction{}, err
	}
	input.AdminUsername = normalizeNullable(input.AdminUsername)
	record, err := s.repo.CreateTransaction(ctx, input)
	if err != nil {
		return domain.Transaction{}, err
	}
	record.CreatedAt = record.CreatedAt.In(s.opts.Location)
	s.logAction(ctx, "transaction.create", "Transaction "+record.ID,
		fmt.Sprintf("%s, %d item(s), %.2f kg, total %.2f",
			record.CustomerName, len(record.LineItems), record.TotalWeightKg(), record.TotalTransaction),
		input.AdminUsername)
	return record, nil
}

func (s *Service) ImportTransactions(ctx context.Context, records []domain.Transaction) (int, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("import file has no transactions: %w", ErrInvalidInput)
	}
	return s.repo.ImportTransactions(ctx, records)
}

func (s *Service) ListTransactions(ctx context.Context, filter repository.TransactionListFilter) ([]domain.Transaction, error) {
	records, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.localize(records)
	return records, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	record, err := s.repo.GetTransaction(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	record.CreatedAt = record.CreatedAt.In(s.opts.Location)
	return record, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id string, adminUsername *string) error {
	id = strings.TrimSpace(id)
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.logAction(ctx, "transaction.delete", "Transaction "+id, "-", normalizeNullable(adminUsername))
	return nil
}

// TransactionReceipt renders the PDF receipt of one transaction.
func (s *Service) TransactionReceipt(ctx context.Context, id string) ([]byte, error) {
	record, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return receipt.Render(*record, receipt.Options{StoreName: s.opts.StoreName})
}

func (s *Service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	return s.repo.EnsureAdmin(ctx, username, password)
}

func (s *Service) AuthenticateAdmin(ctx context.Context, username, password string) (*domain.AdminUser, error) {
	return s.repo.AuthenticateAdmin(ctx, username, password)
}

func (s *Service) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	return s.repo.ListAdmins(ctx)
}

func (s *Service) CreateAdmin(
	ctx context.Context,
	username, password, role string,
	autoLockMinutes int,
) (*domain.AdminUser, error) {
	return s.repo.CreateAdmin(ctx, username, password, role, autoLockMinutes)
}

func (s *Service) UpdateAdminPassword(ctx context.Context, adminID int64, password string) error {
	return s.repo.UpdateAdminPassword(ctx, adminID, password)
}

func (s *Service) DeleteAdmin(ctx context.Context, adminID int64) error {
	return s.repo.DeleteAdmin(ctx, adminID)
}

func (s *Service) GetAdminByID(ctx context.Context, adminID int64) (*domain.AdminUser, error) {
	return s.repo.GetAdminByID(ctx, adminID)
}

func (s *Service) LogAction(
	ctx context.Context,
	actionType, title, details string,
	adminUsername *string,
) error {
	return s.repo.LogAction(ctx, actionType, title, details, normalizeNullable(adminUsername))
}

func (s *Service) ListActions(ctx context.Context, limit, offset int, search string) ([]domain.ActionEntry, error) {
	return s.repo.ListActions(ctx, limit, offset, search)
}

func (s *Service) CountActions(ctx context.Context, search string) (int, error) {
	return s.repo.CountActions(ctx, search)
}

// logAction records an audit entry. A failure is logged and never fails the
// operation that triggered it.
func (s *Service) logAction(ctx context.Context, actionType, title, details string, adminUsername *string) {
	if s.repo == nil {
		return
	}
	if err := s.repo.LogAction(ctx, actionType, title, details, adminUsername); err != nil {
		log.Printf("activity log %s failed: %v", actionType, err)
	}
}

func validateTransaction(input repository.TransactionCreateInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return fmt.Errorf("customer_name is required: %w", ErrInvalidInput)
	}
	if len(input.Lines) == 0 {
		return fmt.Errorf("line_items cannot be empty: %w", ErrInvalidInput)
	}
	for i, line := range input.Lines {
		if strings.TrimSpace(line.FabricName) == "" {
			return fmt.Errorf("line %d: fabric_name is required: %w", i+1, ErrInvalidInput)
		}
		if domain.ParseWeight(line.Weight) <= 0 {
			return fmt.Errorf("line %d: weight must be a positive number: %w", i+1, ErrInvalidInput)
		}
		if line.PricePerKg < 0 {
			return fmt.Errorf("line %d: price_per_kg cannot be negative: %w", i+1, ErrInvalidInput)
		}
	}
	return nil
}

func (s *Service) localize(records []domain.Transaction) {
	for i := range records {
		records[i].CreatedAt = records[i].CreatedAt.In(s.opts.Location)
	}
}

func normalizeNullable(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
