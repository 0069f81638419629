package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"shop-demo/pkg/auth"
	"shop-demo/pkg/catalog"
	"shop-demo/pkg/diagnostics"
	"shop-demo/pkg/models"
	"shop-demo/pkg/orders"
	"shop-demo/pkg/views"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	message string
	catalog *catalog.Catalog
	auth    *auth.Auth
	placer  *orders.Placer
	metrics *diagnostics.Metrics
	logger  *zap.Logger
}

// New creates a new Handlers instance
func New(message string, catalog *catalog.Catalog, auth *auth.Auth, placer *orders.Placer, metrics *diagnostics.Metrics, logger *zap.Logger) *Handlers {
	return &Handlers{
		message: message,
		catalog: catalog,
		auth:    auth,
		placer:  placer,
		metrics: metrics,
		logger:  logger,
	}
}

// Message returns the greeting
func (h *Handlers) Message(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: h.message})
}

// ListProducts returns the whole catalog
func (h *Handlers) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Products())
}

// Login handles user login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	err := c.ShouldBindJSON(&req)

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		c.JSON(http.StatusBadRequest, models.LoginResponse{Message: "invalid request"})
		return
	}
	// Well-formed JSON that is not a pair of strings can never match;
	// an empty body is an empty pair.
	if err != nil && !errors.Is(err, io.EOF) {
		h.rejectLogin(c, models.LoginRequest{})
		return
	}

	if err := h.auth.ValidateCredentials(req.Username, req.Password); err != nil {
		h.rejectLogin(c, req)
		return
	}

	token, err := h.auth.GenerateToken(req.Username)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.LoginResponse{Message: "failed to generate token"})
		return
	}

	h.metrics.LoginAttempt(true)
	c.JSON(http.StatusOK, models.LoginResponse{
		Success: true,
		Token:   token,
	})
}

func (h *Handlers) rejectLogin(c *gin.Context, req models.LoginRequest) {
	h.metrics.LoginAttempt(false)
	h.logger.Info("login rejected", zap.String("username", req.Username))
	c.JSON(http.StatusUnauthorized, models.LoginResponse{Message: "Invalid credentials"})
}

// PlaceOrder accepts any body and answers with a fresh order id
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var req models.OrderRequest
	bindErr := c.ShouldBindJSON(&req)

	order := h.placer.Place(req)
	h.metrics.OrderPlaced()

	fields := []zap.Field{
		zap.Int("order_id", order.ID),
		zap.String("reference", order.Reference),
		zap.Int("user_id", order.UserID),
		zap.Ints("product_ids", order.ProductIDs),
		zap.Int("known_products", h.catalog.Known(order.ProductIDs)),
		zap.String("username", c.GetString(auth.UsernameKey)),
	}
	if bindErr != nil {
		fields = append(fields, zap.NamedError("bind_error", bindErr))
	}
	h.logger.Info("order placed", fields...)

	c.JSON(http.StatusOK, models.OrderResponse{
		Success: true,
		OrderID: order.ID,
	})
}

// Fallback serves the single-page client for every other request
func (h *Handlers) Fallback(c *gin.Context) {
	render(c, http.StatusOK, views.Page())
}

// Asset serves an embedded client file. Directories and misses get the
// fallback page like any other unknown path.
func (h *Handlers) Asset(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filepath"), "/")
	if name == "" {
		h.Fallback(c)
		return
	}

	info, err := fs.Stat(views.Assets, name)
	if err != nil || info.IsDir() {
		h.Fallback(c)
		return
	}

	c.FileFromFS(name, http.FS(views.Assets))
}

// render renders a templ component
func render(c *gin.Context, status int, template templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := template.Render(c.Request.Context(), c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}
