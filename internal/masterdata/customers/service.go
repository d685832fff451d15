package customers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Service holds the customer use cases.
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

func (s *Service) List(ctx context.Context, req shared.PageRequest) (shared.Page[Customer], error) {
	rows, total, err := s.repo.List(ctx, req.Limit, req.Offset())
	if err != nil {
		return shared.Page[Customer]{}, err
	}
	return shared.NewPage(req, total, rows), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a customer. The assigned id is not returned to callers.
func (s *Service) Create(ctx context.Context, in CustomerInput) error {
	in.CustName = strings.TrimSpace(in.CustName)
	if err := s.validate.Struct(in); err != nil {
		return httpx.Invalid(err)
	}
	if _, err := s.repo.Create(ctx, in.CustName); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	shared.NotifyChange(ctx, s.notifier, s.logger)
	return nil
}

// Update returns the updated row, or nil when the id does not exist.
func (s *Service) Update(ctx context.Context, id int64, in CustomerInput) (*Customer, error) {
	in.CustName = strings.TrimSpace(in.CustName)
	if err := s.validate.Struct(in); err != nil {
		return nil, httpx.Invalid(err)
	}
	c, err := s.repo.Update(ctx, id, in.CustName)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	shared.NotifyChange(ctx, s.notifier, s.logger)
	return nil
}
