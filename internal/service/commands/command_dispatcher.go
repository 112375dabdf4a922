package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/costing"
	"github.com/quimo/inventario/internal/domain/models"
)

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Usage lists the commands understood by the dispatcher.
const Usage = "Comandos: /produccion <producto_id> <cantidad> [area], /costos [semana|quincena|mes|trimestre], /semana."

// ProductionRecorder registers production entries.
type ProductionRecorder interface {
	RegisterProduction(ctx context.Context, req models.ProductionRequest) (*models.ProductionEntry, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	WeeklyReportText(ctx context.Context) (string, error)
	PeriodSummaryText(ctx context.Context, period costing.Period) (string, error)
}

// Dispatcher executes parsed commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	production ProductionRecorder
	reporting  ReportingAdapter
	logger     *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(production ProductionRecorder, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		production: production,
		reporting:  reporting,
		logger:     logger,
	}
}

// HandleCommand runs the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandProduction:
		req, err := buildProductionRequest(cmd)
		if err != nil {
			return "", err
		}
		entry, err := s.production.RegisterProduction(ctx, req)
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("Producción registrada: producto %d, %s u el %s.", entry.ProductID, formatQty(req.Quantity), entry.Date)
		if entry.Quantity != req.Quantity {
			message += fmt.Sprintf(" Total del día: %s u.", formatQty(entry.Quantity))
		}
		return message, nil
	case models.CommandCosts:
		period := costing.PeriodWeek
		if len(cmd.Args) > 0 {
			p, err := costing.ParsePeriod(cmd.Args[0])
			if err != nil {
				return "", fmt.Errorf("%w: %v", models.ErrInvalidArguments, err)
			}
			period = p
		}
		return s.reporting.PeriodSummaryText(ctx, period)
	case models.CommandWeek:
		return s.reporting.WeeklyReportText(ctx)
	default:
		return "", ErrUnsupportedCommand
	}
}

func buildProductionRequest(cmd models.Command) (models.ProductionRequest, error) {
	if len(cmd.Args) < 2 {
		return models.ProductionRequest{}, fmt.Errorf("%w: /produccion <producto_id> <cantidad> [area]", models.ErrInvalidArguments)
	}

	productID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil || productID <= 0 {
		return models.ProductionRequest{}, fmt.Errorf("%w: invalid product id %q", models.ErrInvalidArguments, cmd.Args[0])
	}

	// workers type decimal commas
	quantity, err := strconv.ParseFloat(strings.ReplaceAll(cmd.Args[1], ",", "."), 64)
	if err != nil || quantity <= 0 {
		return models.ProductionRequest{}, fmt.Errorf("%w: invalid quantity %q", models.ErrInvalidArguments, cmd.Args[1])
	}

	area := ""
	if len(cmd.Args) > 2 {
		area = strings.Join(cmd.Args[2:], " ")
	}

	return models.ProductionRequest{ProductID: productID, Quantity: quantity, Area: area}, nil
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
