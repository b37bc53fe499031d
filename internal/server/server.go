package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printshop-backend/internal/domain"
	"printshop-backend/internal/pricing"
	"printshop-backend/internal/usecase"
)

type Server struct {
	engine  *gin.Engine
	logger  *zap.Logger
	orders  *usecase.OrderService
	catalog *usecase.CatalogService
	auth    *usecase.AuthService
	addons  domain.AddonMap

	tokenIssueKey string
}

func New(logger *zap.Logger, orders *usecase.OrderService, catalog *usecase.CatalogService, auth *usecase.AuthService, addons domain.AddonMap, tokenIssueKey string) *Server {
	s := &Server{
		engine:        gin.New(),
		logger:        logger,
		orders:        orders,
		catalog:       catalog,
		auth:          auth,
		addons:        addons,
		tokenIssueKey: tokenIssueKey,
	}
	s.engine.Use(gin.Recovery())
	s.engine.Use(RequestID())
	s.engine.Use(Logger(logger))
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "printshop-backend"})
	})

	v1 := s.engine.Group("/api/v1")
	v1.POST("/auth/token", s.handleIssueToken)

	authed := v1.Group("")
	authed.Use(Auth(s.auth))
	{
		authed.GET("/services", s.handleListServices)
		authed.POST("/quotes", s.handleQuote)
		authed.POST("/orders", s.handleCreateOrder)
		authed.GET("/orders/:id", s.handleGetOrder)
		authed.GET("/my/orders", s.handleHistory)
		authed.POST("/orders/:id/payments", s.handleSubmitPayment)
	}

	staff := v1.Group("")
	staff.Use(Auth(s.auth), RequireStaff())
	{
		staff.GET("/orders", s.handleListOrders)
		staff.POST("/orders/:id/status", s.handleStatusCommand)
		staff.DELETE("/orders/:id", s.handleDeleteOrder)
		staff.POST("/payments/:id/review", s.handleReviewPayment)
		staff.POST("/services", s.handleUpsertService)
		staff.DELETE("/services/:id", s.handleDeactivateService)
	}
}

type issueTokenReq struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// handleIssueToken exchanges the shared gateway key for a signed token.
// Credential checks belong to the upstream identity provider.
func (s *Server) handleIssueToken(c *gin.Context) {
	if s.tokenIssueKey == "" || c.GetHeader("X-Issue-Key") != s.tokenIssueKey {
		c.JSON(http.StatusForbidden, gin.H{"error": "issue key required"})
		return
	}
	var req issueTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := s.auth.Issue(req.UserID, req.Role)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) handleListServices(c *gin.Context) {
	opts, err := s.catalog.ListActive(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": opts})
}

type quoteReq struct {
	PaperID     string `json:"paperId"`
	FinishingID string `json:"finishingId"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Pages       int    `json:"pages"`
	Copies      int    `json:"copies"`
}

func (r quoteReq) spec() pricing.Spec {
	return pricing.Spec{
		PaperID:     r.PaperID,
		FinishingID: r.FinishingID,
		Size:        domain.SizeMode(r.Size),
		Color:       domain.ColorMode(r.Color),
		Pages:       r.Pages,
		Copies:      r.Copies,
	}
}

func (s *Server) handleQuote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	catalog, err := s.catalog.ListActive(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	b := pricing.Compute(catalog, s.addons, req.spec())
	c.JSON(http.StatusOK, b)
}

type createOrderReq struct {
	quoteReq
	DocumentRef string `json:"documentRef"`
	Note        string `json:"note"`
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	catalog, err := s.catalog.ListActive(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	spec := req.spec()
	breakdown := pricing.Compute(catalog, s.addons, spec)
	items := pricing.LineItems(catalog, s.addons, spec)

	order, err := s.orders.CreateOrder(ctx, c.GetString("user_id"), items, breakdown.GrandTotal, req.DocumentRef, req.Note)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"orderId":   order.OrderID,
		"status":    order.Status(),
		"breakdown": breakdown,
	})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	detail, err := s.orders.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if c.GetString("role") != usecase.RoleStaff && detail.Order.CustomerID != c.GetString("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleHistory(c *gin.Context) {
	rows, err := s.orders.History(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": rows})
}

type submitPaymentReq struct {
	Amount   int64  `json:"amount"`
	Channel  string `json:"channel" binding:"required"`
	ProofRef string `json:"proofRef"`
}

func (s *Server) handleSubmitPayment(c *gin.Context) {
	var req submitPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attempt, err := s.orders.RecordPaymentAttempt(c.Request.Context(), c.Param("id"), c.GetString("user_id"), req.Amount, req.Channel, req.ProofRef)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

func (s *Server) handleListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	orders, total, err := s.orders.List(c.Request.Context(), page, pageSize)
	if err != nil {
		s.fail(c, err)
		return
	}
	type row struct {
		domain.Order
		Status domain.Status `json:"status"`
	}
	rows := make([]row, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, row{Order: o, Status: o.Status()})
	}
	c.JSON(http.StatusOK, gin.H{"orders": rows, "total": total})
}

type statusCommandReq struct {
	Command string `json:"command" binding:"required"`
}

func (s *Server) handleStatusCommand(c *gin.Context) {
	var req statusCommandReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.orders.ApplyStatusCommand(c.Request.Context(), c.Param("id"), domain.StatusCommand(req.Command))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId":     order.OrderID,
		"fulfillment": order.Fulfillment,
		"payment":     order.Payment,
		"status":      order.Status(),
	})
}

func (s *Server) handleDeleteOrder(c *gin.Context) {
	if err := s.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reviewPaymentReq struct {
	Accept bool `json:"accept"`
}

func (s *Server) handleReviewPayment(c *gin.Context) {
	var req reviewPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attempt, err := s.orders.ReviewPaymentAttempt(c.Request.Context(), c.Param("id"), req.Accept)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (s *Server) handleUpsertService(c *gin.Context) {
	var opt domain.ServiceOption
	if err := c.ShouldBindJSON(&opt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.catalog.Upsert(c.Request.Context(), &opt); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opt)
}

func (s *Server) handleDeactivateService(c *gin.Context) {
	if err := s.catalog.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps the usecase error taxonomy onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		validation usecase.ValidationError
		transition usecase.InvalidTransitionError
		notFound   usecase.NotFoundError
		upstream   *usecase.UpstreamFailure
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &upstream):
		s.logger.Error("upstream failure", zap.Error(err), zap.String("request_id", c.GetString("request_id")))
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable", "request_id": c.GetString("request_id")})
	default:
		s.logger.Error("unhandled error", zap.Error(err), zap.String("request_id", c.GetString("request_id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "request_id": c.GetString("request_id")})
	}
}
