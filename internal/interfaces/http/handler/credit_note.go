package handler

import (
	financeapp "github.com/backoffice/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditNoteHandler handles credit note API endpoints
type CreditNoteHandler struct {
	BaseHandler
	creditNoteService *financeapp.CreditNoteService
}

// NewCreditNoteHandler creates a new CreditNoteHandler
func NewCreditNoteHandler(creditNoteService *financeapp.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{
		creditNoteService: creditNoteService,
	}
}

// VoidCreditNoteRequest carries the reason for voiding a credit note
type VoidCreditNoteRequest struct {
	Reason string `json:"reason"`
}

// Create creates a new draft credit note
func (h *CreditNoteHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req financeapp.CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.creditNoteService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, note)
}

// Update updates a draft credit note
func (h *CreditNoteHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	var req financeapp.UpdateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.creditNoteService.Update(c.Request.Context(), tenantID, noteID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, note)
}

// Apply applies credit note funds against an invoice
func (h *CreditNoteHandler) Apply(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	var req financeapp.ApplyCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.creditNoteService.Apply(c.Request.Context(), tenantID, noteID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, note)
}

// Void voids a credit note
func (h *CreditNoteHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	var req VoidCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.creditNoteService.Void(c.Request.Context(), tenantID, noteID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, note)
}

// GetByID retrieves a credit note by its ID
func (h *CreditNoteHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	note, err := h.creditNoteService.GetByID(c.Request.Context(), tenantID, noteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, note)
}

// List retrieves a paginated list of credit notes with filtering
func (h *CreditNoteHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter financeapp.CreditNoteListFilter
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

	notes, total, err := h.creditNoteService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, notes, total, filter.Page, filter.PageSize)
}

// Delete deletes a draft credit note
func (h *CreditNoteHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	if err := h.creditNoteService.Delete(c.Request.Context(), tenantID, noteID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
