package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Service coordinates sales reads and the header plus lines write path.
type Service struct {
	repo     Repository
	notifier shared.ChangeNotifier
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService wires a Service. A nil notifier disables change notifications.
func NewService(repo Repository, notifier shared.ChangeNotifier) *Service {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	return &Service{repo: repo, notifier: notifier, validate: httpx.NewValidator(), logger: slog.Default()}
}

// WithLogger sets the logger used for failed change notifications.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// List returns one page of headers with their customer.
func (s *Service) List(ctx context.Context, req shared.PageRequest) (shared.Page[ListRow], error) {
	rows, total, err := s.repo.List(ctx, req.Limit, req.Offset())
	if err != nil {
		return shared.Page[ListRow]{}, err
	}
	return shared.NewPage(req, total, rows), nil
}

// Get returns the expanded sale or an error wrapping httpx.ErrNotFound.
func (s *Service) Get(ctx context.Context, docNo int64) (SalesDTO, error) {
	res, err := s.repo.Get(ctx, docNo)
	if err != nil {
		return SalesDTO{}, err
	}
	return ToSalesDTO(*res), nil
}

// Create inserts the header, then every line tagged with the new docno, in
// one transaction. An empty item list creates a sale without lines.
func (s *Service) Create(ctx context.Context, req SaleRequest) (DocRef, error) {
	docDate, err := s.check(req)
	if err != nil {
		return DocRef{}, err
	}

	var ref DocRef
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		header, err := tx.InsertHeader(ctx, docDate.Time, req.CustomerID)
		if err != nil {
			return fmt.Errorf("insert sales header: %w", err)
		}
		ref.DocNo = header.DocNo
		if err := tx.InsertLines(ctx, header.DocNo, req.Items); err != nil {
			return fmt.Errorf("insert sales detail: %w", err)
		}
		return nil
	})
	if err != nil {
		return DocRef{}, err
	}
	shared.NotifyChange(ctx, s.notifier, s.logger)
	return ref, nil
}

// Update rewrites the header and replaces all of its lines with req.Items.
// Callers must send the complete line set. It returns nil when docNo does
// not exist, leaving storage untouched.
func (s *Service) Update(ctx context.Context, docNo int64, req SaleRequest) (*SalesHeader, error) {
	docDate, err := s.check(req)
	if err != nil {
		return nil, err
	}

	var updated *SalesHeader
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		header, err := tx.UpdateHeader(ctx, docNo, docDate.Time, req.CustomerID)
		if err != nil {
			return fmt.Errorf("update sales header: %w", err)
		}
		if header == nil {
			return nil
		}
		updated = header
		if err := tx.DeleteLines(ctx, docNo); err != nil {
			return fmt.Errorf("delete sales detail: %w", err)
		}
		if err := tx.InsertLines(ctx, docNo, req.Items); err != nil {
			return fmt.Errorf("insert sales detail: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated != nil {
		shared.NotifyChange(ctx, s.notifier, s.logger)
	}
	return updated, nil
}

// Delete removes the header; storage cascades to its lines.
func (s *Service) Delete(ctx context.Context, docNo int64) error {
	if err := s.repo.Delete(ctx, docNo); err != nil {
		return fmt.Errorf("delete sales header: %w", err)
	}
	shared.NotifyChange(ctx, s.notifier, s.logger)
	return nil
}

// priceScale matches the NUMERIC(18,2) unitprice column.
const priceScale = 2

func checkPrice(price *decimal.Decimal) error {
	switch {
	case price == nil:
		return errors.New("is required")
	case price.IsNegative():
		return errors.New("must not be negative")
	case !price.Equal(price.Round(priceScale)):
		return fmt.Errorf("must have at most %d decimal places", priceScale)
	}
	return nil
}

func (s *Service) check(req SaleRequest) (shared.Date, error) {
	if err := s.validate.Struct(req); err != nil {
		return shared.Date{}, httpx.Invalid(err)
	}
	for i, line := range req.Items {
		if err := checkPrice(line.UnitPrice); err != nil {
			return shared.Date{}, fmt.Errorf("%w: items[%d].unitprice %s", httpx.ErrValidation, i, err)
		}
	}
	docDate, err := shared.ParseDate(req.DocDate)
	if err != nil {
		return shared.Date{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return docDate, nil
}
