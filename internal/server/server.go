// Package server exposes the POS workflow over HTTP: catalog browsing
// and management, per-terminal carts, checkout and sales history.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/prasetyadew/kasirpos/internal/cart"
	catalogapp "github.com/prasetyadew/kasirpos/internal/catalog/app"
	catalogdomain "github.com/prasetyadew/kasirpos/internal/catalog/domain"
	checkoutapp "github.com/prasetyadew/kasirpos/internal/checkout/app"
	orderapp "github.com/prasetyadew/kasirpos/internal/order/app"
	orderdomain "github.com/prasetyadew/kasirpos/internal/order/domain"
)

// Terminals identify themselves per request; a missing header maps to
// a single shared default terminal.
const terminalHeader = "X-Terminal-ID"

type Server struct {
	log      *slog.Logger
	catalog  *catalogapp.Service
	checkout *checkoutapp.Service
	history  *orderapp.Service
	carts    *CartRegistry
	verifier *oidc.IDTokenVerifier
}

func New(log *slog.Logger, catalog *catalogapp.Service, checkout *checkoutapp.Service, history *orderapp.Service, verifier *oidc.IDTokenVerifier) *Server {
	return &Server{
		log:      log,
		catalog:  catalog,
		checkout: checkout,
		history:  history,
		carts:    NewCartRegistry(),
		verifier: verifier,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", authMiddleware(s.verifier))

	api.GET("/categories", s.listCategories)
	api.GET("/products", s.listProducts)
	api.GET("/products/all", s.listAllProducts)
	api.POST("/products", s.createProduct)
	api.PUT("/products/:id", s.updateProduct)
	api.DELETE("/products/:id", s.deleteProduct)
	api.PATCH("/products/:id/availability", s.setAvailability)

	api.GET("/cart", s.getCart)
	api.POST("/cart/items", s.addCartItem)
	api.PATCH("/cart/items/:productID", s.adjustCartItem)
	api.DELETE("/cart/items/:productID", s.removeCartItem)
	api.DELETE("/cart", s.clearCart)

	api.POST("/checkout", s.doCheckout)

	api.GET("/orders", s.listOrders)
	api.GET("/orders/:id/items", s.orderItems)

	return r
}

// --- catalog ---

func (s *Server) listCategories(c *gin.Context) {
	// A failed refresh serves the previous snapshot; the client treats
	// an unchanged list as possibly stale, never as a confirmed empty
	// catalog.
	if err := s.catalog.Refresh(c.Request.Context()); err != nil {
		s.log.Warn("catalog refresh failed", slog.Any("err", err))
	}
	c.JSON(http.StatusOK, s.catalog.Categories())
}

func (s *Server) listProducts(c *gin.Context) {
	if err := s.catalog.Refresh(c.Request.Context()); err != nil {
		s.log.Warn("catalog refresh failed", slog.Any("err", err))
	}

	category := c.DefaultQuery("category", catalogapp.CategoryAll)
	c.JSON(http.StatusOK, s.catalog.Filter(category, c.Query("q")))
}

func (s *Server) listAllProducts(c *gin.Context) {
	products, err := s.catalog.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

type productPayload struct {
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	IsAvailable bool            `json:"is_available"`
}

func (p productPayload) toDomain(id string) catalogdomain.Product {
	return catalogdomain.Product{
		ID:          id,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		IsAvailable: p.IsAvailable,
	}
}

func (s *Server) createProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.catalog.CreateProduct(c.Request.Context(), payload.toDomain(""))
	if err != nil {
		s.catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := s.catalog.UpdateProduct(c.Request.Context(), payload.toDomain(c.Param("id")))
	if err != nil {
		s.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		s.catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setAvailability(c *gin.Context) {
	var payload struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.catalog.SetAvailability(c.Request.Context(), c.Param("id"), payload.IsAvailable); err != nil {
		s.catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) catalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalogapp.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalogapp.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// --- cart ---

type cartView struct {
	Lines     []cart.Line     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func viewOf(c *cart.Cart) cartView {
	return cartView{
		Lines:     c.Lines(),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

func terminalID(c *gin.Context) string {
	if id := c.GetHeader(terminalHeader); id != "" {
		return id
	}
	return "default"
}

func (s *Server) getCart(c *gin.Context) {
	var view cartView
	s.carts.With(terminalID(c), func(crt *cart.Cart) {
		view = viewOf(crt)
	})
	c.JSON(http.StatusOK, view)
}

func (s *Server) addCartItem(c *gin.Context) {
	var payload struct {
		ProductID string `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	p, ok := s.catalog.ProductByID(payload.ProductID)
	if !ok {
		// The snapshot may predate the product; retry once after a
		// refresh before rejecting.
		if err := s.catalog.Refresh(c.Request.Context()); err != nil {
			s.log.Warn("catalog refresh failed", slog.Any("err", err))
		}
		if p, ok = s.catalog.ProductByID(payload.ProductID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found or unavailable"})
			return
		}
	}

	var view cartView
	s.carts.With(terminalID(c), func(crt *cart.Cart) {
		crt.Add(p.ID, p.Name, p.Price)
		view = viewOf(crt)
	})
	c.JSON(http.StatusOK, view)
}

func (s *Server) adjustCartItem(c *gin.Context) {
	var payload struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var view cartView
	s.carts.With(terminalID(c), func(crt *cart.Cart) {
		crt.Adjust(c.Param("productID"), payload.Delta)
		view = viewOf(crt)
	})
	c.JSON(http.StatusOK, view)
}

func (s *Server) removeCartItem(c *gin.Context) {
	var view cartView
	s.carts.With(terminalID(c), func(crt *cart.Cart) {
		crt.Remove(c.Param("productID"))
		view = viewOf(crt)
	})
	c.JSON(http.StatusOK, view)
}

func (s *Server) clearCart(c *gin.Context) {
	s.carts.Drop(terminalID(c))
	c.Status(http.StatusNoContent)
}

// --- checkout ---

func (s *Server) doCheckout(c *gin.Context) {
	var payload struct {
		CustomerName  string `json:"customer_name"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	terminal := terminalID(c)

	// Checkout runs on a snapshot so the registry lock is not held
	// across the store writes; the live cart is cleared only after the
	// commit fully succeeds.
	snap := s.carts.Snapshot(terminal)

	receipt, err := s.checkout.Checkout(
		c.Request.Context(),
		snap,
		payload.CustomerName,
		orderdomain.PaymentMethod(payload.PaymentMethod),
		actorFrom(c),
	)
	if err != nil {
		s.checkoutError(c, err)
		return
	}

	s.carts.With(terminal, func(crt *cart.Cart) {
		crt.Clear()
	})

	c.JSON(http.StatusCreated, receipt)
}

func (s *Server) checkoutError(c *gin.Context, err error) {
	var partial *checkoutapp.PartialCommitError
	switch {
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart is empty"})
	case errors.Is(err, checkoutapp.ErrInvalidPayment):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment method"})
	case errors.As(err, &partial):
		// The order row exists without lines; keep the cart so the
		// operator can reconcile instead of silently retrying.
		s.log.Error("partial commit",
			slog.String("order_id", partial.OrderID),
			slog.String("order_number", partial.OrderNumber),
			slog.Any("err", err),
		)
		c.JSON(http.StatusConflict, gin.H{
			"error":        "order committed without lines",
			"order_id":     partial.OrderID,
			"order_number": partial.OrderNumber,
		})
	default:
		s.log.Error("checkout failed", slog.Any("err", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "order was not saved, please retry"})
	}
}

// --- history ---

func (s *Server) listOrders(c *gin.Context) {
	window, err := orderapp.ParseWindow(c.Query("window"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, err := s.history.ListOrders(c.Request.Context(), window)
	if err != nil {
		s.log.Error("order history load failed", slog.Any("err", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":  orders,
		"summary": orderapp.Summarize(orders),
	})
}

func (s *Server) orderItems(c *gin.Context) {
	lines, err := s.history.Lines(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.Error("order lines load failed", slog.Any("err", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load order items"})
		return
	}
	c.JSON(http.StatusOK, lines)
}
