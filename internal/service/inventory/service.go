// Package inventory handles catalog maintenance, recipes and production entry.
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/cache"
	"github.com/quimo/inventario/internal/costing"
	"github.com/quimo/inventario/internal/domain/models"
)

// Store is the subset of the SQLite repository used by the service.
type Store interface {
	ListCatalog(ctx context.Context, kind models.CatalogKind) ([]models.CatalogItem, error)
	GetCatalogItem(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogItem, error)
	UpdateStock(ctx context.Context, kind models.CatalogKind, id int64, update models.StockUpdate) error
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
	CreateProduct(ctx context.Context, product *models.Product) error
	CreateRawMaterial(ctx context.Context, material *models.RawMaterial) error
	CreateResaleProduct(ctx context.Context, product *models.ResaleProduct) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	RecipeComponents(ctx context.Context, productIDs ...int64) ([]models.RecipeComponent, error)
	ReplaceRecipe(ctx context.Context, productID int64, lines []models.RecipeLine) error
	UpsertProduction(ctx context.Context, entry models.ProductionEntry) (*models.ProductionEntry, error)
}

// Service implements the inventory use cases.
type Service struct {
	store  Store
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new inventory service instance. A nil cache disables caching.
func NewService(store Store, c cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{store: store, cache: c, logger: logger, now: time.Now}
}

// ListCatalog returns the rows of kind whose name contains query, ignoring case.
func (s *Service) ListCatalog(ctx context.Context, kind models.CatalogKind, query string) ([]models.CatalogItem, error) {
	items, err := s.store.ListCatalog(ctx, kind)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}

	filtered := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), query) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// GetCatalogItem returns one catalog row.
func (s *Service) GetCatalogItem(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogItem, error) {
	return s.store.GetCatalogItem(ctx, kind, id)
}

// UpdateStock changes quantity and/or status, then returns the updated row.
func (s *Service) UpdateStock(ctx context.Context, kind models.CatalogKind, id int64, update models.StockUpdate) (*models.CatalogItem, error) {
	if update.Quantity == nil && update.Active == nil {
		return nil, fmt.Errorf("%w: quantity or active is required", models.ErrInvalidArguments)
	}
	if update.Quantity != nil && *update.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", models.ErrInvalidArguments)
	}

	if err := s.store.UpdateStock(ctx, kind, id, update); err != nil {
		return nil, err
	}
	s.logger.Info("stock updated", zap.String("kind", string(kind)), zap.Int64("id", id))
	return s.store.GetCatalogItem(ctx, kind, id)
}

// ListSuppliers returns every supplier.
func (s *Service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.store.ListSuppliers(ctx)
}

// CreateSupplier registers a supplier.
func (s *Service) CreateSupplier(ctx context.Context, name string) (*models.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidArguments)
	}
	supplier := &models.Supplier{Name: name}
	if err := s.store.CreateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// CreateProduct registers an active product.
func (s *Service) CreateProduct(ctx context.Context, req models.NewProductRequest) (*models.Product, error) {
	if err := checkNewItem(req.Name, req.Unit, req.Quantity); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:     strings.TrimSpace(req.Name),
		Unit:     strings.TrimSpace(req.Unit),
		Area:     strings.TrimSpace(req.Area),
		Quantity: req.Quantity,
		Status:   models.StatusActive,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.Int64("id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// CreateRawMaterial registers an active raw material.
func (s *Service) CreateRawMaterial(ctx context.Context, req models.NewRawMaterialRequest) (*models.RawMaterial, error) {
	if err := checkNewItem(req.Name, req.Unit, req.Quantity); err != nil {
		return nil, err
	}
	if req.UnitCost < 0 {
		return nil, fmt.Errorf("%w: unit cost must not be negative", models.ErrInvalidArguments)
	}
	material := &models.RawMaterial{
		Name:       strings.TrimSpace(req.Name),
		Unit:       strings.TrimSpace(req.Unit),
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
		Status:     models.StatusActive,
	}
	if err := s.store.CreateRawMaterial(ctx, material); err != nil {
		return nil, err
	}
	// unit costs feed every report
	s.invalidateReports(ctx)
	s.logger.Info("raw material created", zap.Int64("id", material.ID), zap.String("name", material.Name))
	return material, nil
}

// CreateResaleProduct registers an active resale product.
func (s *Service) CreateResaleProduct(ctx context.Context, req models.NewResaleProductRequest) (*models.ResaleProduct, error) {
	if err := checkNewItem(req.Name, req.Unit, req.Quantity); err != nil {
		return nil, err
	}
	product := &models.ResaleProduct{
		Name:       strings.TrimSpace(req.Name),
		Unit:       strings.TrimSpace(req.Unit),
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		Status:     models.StatusActive,
	}
	if err := s.store.CreateResaleProduct(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("resale product created", zap.Int64("id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func checkNewItem(name, unit string, quantity float64) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is required", models.ErrInvalidArguments)
	case strings.TrimSpace(unit) == "":
		return fmt.Errorf("%w: unit is required", models.ErrInvalidArguments)
	case quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", models.ErrInvalidArguments)
	}
	return nil
}

// Recipe is a product's bill of materials with its unit cost and price.
type Recipe struct {
	ProductID int64                    `json:"product_id"`
	Lines     []models.RecipeComponent `json:"lines"`
	UnitCost  string                   `json:"unit_cost"`
	UnitPrice string                   `json:"unit_price"`
}

// GetRecipe returns the recipe of a product.
func (s *Service) GetRecipe(ctx context.Context, productID int64) (*Recipe, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	lines, err := s.store.RecipeComponents(ctx, productID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []models.RecipeComponent{}
	}
	cost := costing.UnitCost(lines)
	return &Recipe{
		ProductID: productID,
		Lines:     lines,
		UnitCost:  cost.StringFixed(2),
		UnitPrice: costing.Price(cost).StringFixed(2),
	}, nil
}

// ReplaceRecipe replaces the recipe of a product. Each raw material may appear once.
func (s *Service) ReplaceRecipe(ctx context.Context, productID int64, lines []models.RecipeLine) (*Recipe, error) {
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if line.QuantityPerUnit <= 0 {
			return nil, fmt.Errorf("%w: quantity per unit must be positive", models.ErrInvalidArguments)
		}
		if seen[line.MaterialID] {
			return nil, fmt.Errorf("%w: raw material %d listed twice", models.ErrInvalidArguments, line.MaterialID)
		}
		seen[line.MaterialID] = true
	}

	if err := s.store.ReplaceRecipe(ctx, productID, lines); err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	s.logger.Info("recipe replaced", zap.Int64("product_id", productID), zap.Int("lines", len(lines)))
	return s.GetRecipe(ctx, productID)
}

// RegisterProduction records quantity produced of a product. An empty date means
// today and an empty area falls back to the product's area. Registering the same
// product twice on one day accumulates.
func (s *Service) RegisterProduction(ctx context.Context, req models.ProductionRequest) (*models.ProductionEntry, error) {
	if req.ProductID <= 0 {
		return nil, fmt.Errorf("%w: product_id is required", models.ErrInvalidArguments)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", models.ErrInvalidArguments)
	}

	date := s.now()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := time.Parse(models.DateLayout, strings.TrimSpace(req.Date))
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrInvalidArguments)
		}
		date = parsed
	}

	product, err := s.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	lines, err := s.store.RecipeComponents(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	cost, _ := costing.ProductCost(req.Quantity, lines).Round(2).Float64()

	area := strings.TrimSpace(req.Area)
	if area == "" {
		area = product.Area
	}

	entry := models.ProductionEntry{
		Date:      date.Format(models.DateLayout),
		ProductID: req.ProductID,
		Day:       models.DayLabel(date),
		Quantity:  req.Quantity,
		Cost:      cost,
		Area:      area,
	}
	stored, err := s.store.UpsertProduction(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx)
	s.logger.Info("production registered",
		zap.Int64("product_id", stored.ProductID),
		zap.String("date", stored.Date),
		zap.Float64("quantity", req.Quantity),
		zap.Float64("day_total", stored.Quantity))
	return stored, nil
}

func (s *Service) invalidateReports(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.ReportPrefix); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}
