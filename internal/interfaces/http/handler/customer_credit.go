package handler

import (
	financeapp "github.com/backoffice/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerCreditHandler handles customer credit API endpoints
type CustomerCreditHandler struct {
	BaseHandler
	creditService *financeapp.CustomerCreditService
}

// NewCustomerCreditHandler creates a new CustomerCreditHandler
func NewCustomerCreditHandler(creditService *financeapp.CustomerCreditService) *CustomerCreditHandler {
	return &CustomerCreditHandler{
		creditService: creditService,
	}
}

// Create creates a credit record for a customer
func (h *CustomerCreditHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req financeapp.CreateCustomerCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	credit, err := h.creditService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, credit)
}

// Update changes a customer's credit limit
func (h *CustomerCreditHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit record ID format")
		return
	}

	var req financeapp.UpdateCustomerCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	credit, err := h.creditService.Update(c.Request.Context(), tenantID, creditID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, credit)
}

// GetByID retrieves a credit record by its ID
func (h *CustomerCreditHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit record ID format")
		return
	}

	credit, err := h.creditService.GetByID(c.Request.Context(), tenantID, creditID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, credit)
}

// List retrieves a paginated list of credit records with filtering
func (h *CustomerCreditHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter financeapp.CustomerCreditListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	credits, total, err := h.creditService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, credits, total, filter.Page, filter.PageSize)
}

// GetByCustomer retrieves the credit record for a customer
func (h *CustomerCreditHandler) GetByCustomer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	credit, err := h.creditService.GetByCustomer(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, credit)
}

// Recalculate recomputes a customer's balance and payment statistics
// from their invoice history
func (h *CustomerCreditHandler) Recalculate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	credit, err := h.creditService.Recalculate(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, credit)
}
