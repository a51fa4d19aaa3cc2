package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/category"
	categoryDTO "github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const ServiceName = rpc.ServicePrefix + "ProductService"

type AddProductRequest struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	InitialStock int64           `json:"initial_stock"`
}

type EditProductRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type ProductIDRequest struct {
	ID string `json:"id"`
}

type ProductResponse struct {
	Product *rpc.Product `json:"product"`
}

type DeleteProductResponse struct {
	HardDeleted bool `json:"hard_deleted"`
}

type ListProductsRequest struct {
	Category        string `json:"category"`
	Search          string `json:"search"`
	IncludeInactive bool   `json:"include_inactive"`
	Page            int    `json:"page"`
	PageSize        int    `json:"page_size"`
}

type ListProductsResponse struct {
	Products []*rpc.Product `json:"products"`
	Total    int            `json:"total"`
}

type ListCategoriesRequest struct {
	Search          string `json:"search"`
	IncludeInactive bool   `json:"include_inactive"`
}

type ListCategoriesResponse struct {
	Categories []model.CategorySummary `json:"categories"`
}

type ProductServer interface {
	AddProduct(context.Context, *AddProductRequest) (*ProductResponse, error)
	EditProduct(context.Context, *EditProductRequest) (*ProductResponse, error)
	DeleteProduct(context.Context, *ProductIDRequest) (*DeleteProductResponse, error)
	GetProduct(context.Context, *ProductIDRequest) (*ProductResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
}

var _ ProductServer = (*ProductHandler)(nil)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProductServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "AddProduct", ProductServer.AddProduct),
		rpc.Unary(ServiceName, "EditProduct", ProductServer.EditProduct),
		rpc.Unary(ServiceName, "DeleteProduct", ProductServer.DeleteProduct),
		rpc.Unary(ServiceName, "GetProduct", ProductServer.GetProduct),
		rpc.Unary(ServiceName, "ListProducts", ProductServer.ListProducts),
		rpc.Unary(ServiceName, "ListCategories", ProductServer.ListCategories),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/product.json",
}

type ProductHandler struct {
	uc         product.UseCase
	categories category.UseCase
	logger     logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, categories category.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:         uc,
		categories: categories,
		logger:     log,
	}
}

func Register(s grpc.ServiceRegistrar, h ProductServer) {
	s.RegisterService(&ServiceDesc, h)
}

func (h *ProductHandler) AddProduct(ctx context.Context, req *AddProductRequest) (*ProductResponse, error) {
	p, err := h.uc.CreateProduct(ctx, &dto.CreateProductInput{
		ID:           req.ID,
		Name:         req.Name,
		Category:     req.Category,
		UnitPrice:    req.UnitPrice,
		UnitCost:     req.UnitCost,
		InitialStock: req.InitialStock,
	})
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return &ProductResponse{Product: rpc.MapProduct(p)}, nil
}

func (h *ProductHandler) EditProduct(ctx context.Context, req *EditProductRequest) (*ProductResponse, error) {
	p, err := h.uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		ID:        req.ID,
		Name:      req.Name,
		Category:  req.Category,
		UnitPrice: req.UnitPrice,
		UnitCost:  req.UnitCost,
	})
	if err != nil {
		return nil, rpc.Status(err)
	}
	return &ProductResponse{Product: rpc.MapProduct(p)}, nil
}

func (h *ProductHandler) DeleteProduct(ctx context.Context, req *ProductIDRequest) (*DeleteProductResponse, error) {
	hard, err := h.uc.DeleteProduct(ctx, req.ID)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return &DeleteProductResponse{HardDeleted: hard}, nil
}

func (h *ProductHandler) GetProduct(ctx context.Context, req *ProductIDRequest) (*ProductResponse, error) {
	p, err := h.uc.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return &ProductResponse{Product: rpc.MapProduct(p)}, nil
}

func (h *ProductHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	products, total, err := h.uc.ListProducts(ctx, &dto.ProductFilters{
		Category:        req.Category,
		SearchQuery:     req.Search,
		IncludeInactive: req.IncludeInactive,
		Page:            req.Page,
		PageSize:        req.PageSize,
	})
	if err != nil {
		return nil, rpc.Status(err)
	}
	return &ListProductsResponse{Products: rpc.MapProducts(products), Total: total}, nil
}

func (h *ProductHandler) ListCategories(ctx context.Context, req *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	categories, err := h.categories.ListCategories(ctx, &categoryDTO.CategoryFilters{
		SearchQuery:     req.Search,
		IncludeInactive: req.IncludeInactive,
	})
	if err != nil {
		return nil, rpc.Status(err)
	}
	return &ListCategoriesResponse{Categories: categories}, nil
}
