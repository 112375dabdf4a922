package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/domain/models"
	"github.com/quimo/inventario/internal/service/inventory"
)

// InventoryService is implemented by inventory.Service.
type InventoryService interface {
	ListCatalog(ctx context.Context, kind models.CatalogKind, query string) ([]models.CatalogItem, error)
	GetCatalogItem(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogItem, error)
	UpdateStock(ctx context.Context, kind models.CatalogKind, id int64, update models.StockUpdate) (*models.CatalogItem, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	CreateSupplier(ctx context.Context, name string) (*models.Supplier, error)
	CreateProduct(ctx context.Context, req models.NewProductRequest) (*models.Product, error)
	CreateRawMaterial(ctx context.Context, req models.NewRawMaterialRequest) (*models.RawMaterial, error)
	CreateResaleProduct(ctx context.Context, req models.NewResaleProductRequest) (*models.ResaleProduct, error)
	GetRecipe(ctx context.Context, productID int64) (*inventory.Recipe, error)
	ReplaceRecipe(ctx context.Context, productID int64, lines []models.RecipeLine) (*inventory.Recipe, error)
	RegisterProduction(ctx context.Context, req models.ProductionRequest) (*models.ProductionEntry, error)
}

// InventoryHandler exposes catalog, recipe and production endpoints.
type InventoryHandler struct {
	svc    InventoryService
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc InventoryService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

func badBody(err error) error {
	return fmt.Errorf("%w: %v", models.ErrInvalidArguments, err)
}

// ListCatalog GET /api/catalog/:kind?q=
func (h *InventoryHandler) ListCatalog(c *gin.Context) {
	kind, err := models.ParseCatalogKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.logger, "list catalog", err)
		return
	}

	items, err := h.svc.ListCatalog(c.Request.Context(), kind, c.Query("q"))
	if err != nil {
		respondError(c, h.logger, "list catalog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "items": items})
}

// GetCatalogItem GET /api/catalog/:kind/:id
func (h *InventoryHandler) GetCatalogItem(c *gin.Context) {
	kind, err := models.ParseCatalogKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.logger, "get catalog item", err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.logger, "get catalog item", err)
		return
	}

	item, err := h.svc.GetCatalogItem(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, h.logger, "get catalog item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateStock PATCH /api/catalog/:kind/:id
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	kind, err := models.ParseCatalogKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.logger, "update stock", err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.logger, "update stock", err)
		return
	}
	var req models.StockUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "update stock", badBody(err))
		return
	}

	item, err := h.svc.UpdateStock(c.Request.Context(), kind, id, req)
	if err != nil {
		respondError(c, h.logger, "update stock", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListSuppliers GET /api/suppliers
func (h *InventoryHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.svc.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list suppliers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": suppliers})
}

// CreateSupplier POST /api/suppliers
func (h *InventoryHandler) CreateSupplier(c *gin.Context) {
	var req models.Supplier
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create supplier", badBody(err))
		return
	}
	supplier, err := h.svc.CreateSupplier(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, "create supplier", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// CreateProduct POST /api/products
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req models.NewProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create product", badBody(err))
		return
	}
	product, err := h.svc.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "create product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// CreateRawMaterial POST /api/raw-materials
func (h *InventoryHandler) CreateRawMaterial(c *gin.Context) {
	var req models.NewRawMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create raw material", badBody(err))
		return
	}
	material, err := h.svc.CreateRawMaterial(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "create raw material", err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

// CreateResaleProduct POST /api/resale-products
func (h *InventoryHandler) CreateResaleProduct(c *gin.Context) {
	var req models.NewResaleProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create resale product", badBody(err))
		return
	}
	product, err := h.svc.CreateResaleProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "create resale product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetRecipe GET /api/products/:id/recipe
func (h *InventoryHandler) GetRecipe(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.logger, "get recipe", err)
		return
	}
	recipe, err := h.svc.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get recipe", err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

type replaceRecipeRequest struct {
	Lines []models.RecipeLine `json:"lines" binding:"dive"`
}

// ReplaceRecipe PUT /api/products/:id/recipe
func (h *InventoryHandler) ReplaceRecipe(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.logger, "replace recipe", err)
		return
	}
	var req replaceRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "replace recipe", badBody(err))
		return
	}
	recipe, err := h.svc.ReplaceRecipe(c.Request.Context(), id, req.Lines)
	if err != nil {
		respondError(c, h.logger, "replace recipe", err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// RegisterProduction POST /api/production
func (h *InventoryHandler) RegisterProduction(c *gin.Context) {
	var req models.ProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "register production", badBody(err))
		return
	}
	entry, err := h.svc.RegisterProduction(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "register production", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
