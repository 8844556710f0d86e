package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/repository"
	"github.com/michaelprosario/career-catalyst/internal/service"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

type page struct {
	limit  int
	offset int
}

func newPage(limit, offset int) (page, error) {
	if limit < 1 || limit > maxLimit {
		return page{}, errors.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", maxLimit), nil)
	}
	if offset < 0 {
		return page{}, errors.InvalidInput("offset must not be negative", nil)
	}
	return page{limit: limit, offset: offset}, nil
}

func pageFromQuery(c *gin.Context) (page, error) {
	limit, offset := defaultLimit, 0
	var err error
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return page{}, errors.InvalidInput("limit must be an integer", err)
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return page{}, errors.InvalidInput("offset must be an integer", err)
		}
	}
	return newPage(limit, offset)
}

// pageFromBody removes limit and offset from a search body.
func pageFromBody(raw map[string]any) (page, error) {
	limit, offset := defaultLimit, 0
	for key, dst := range map[string]*int{"limit": &limit, "offset": &offset} {
		v, ok := raw[key]
		delete(raw, key)
		if !ok || v == nil {
			continue
		}
		n, ok := v.(float64)
		if !ok || n != float64(int(n)) {
			return page{}, errors.InvalidInput(key+" must be an integer", nil)
		}
		*dst = int(n)
	}
	return newPage(limit, offset)
}

func (p page) apply(list []*models.UserOpportunity) []*models.UserOpportunity {
	if p.offset >= len(list) {
		return nil
	}
	end := p.offset + p.limit
	if end > len(list) {
		end = len(list)
	}
	return list[p.offset:end]
}

func writeList(c *gin.Context, list []*models.UserOpportunity, p page) {
	results := toDTOs(p.apply(list))
	c.JSON(http.StatusOK, listResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d opportunities", len(results)),
		Errors:  []string{},
		Results: results,
		Total:   len(list),
	})
}

func writeDocument(c *gin.Context, message string, o *models.UserOpportunity) {
	dto := toDTO(o)
	c.JSON(http.StatusOK, documentResponse{
		Success:  true,
		Message:  message,
		Errors:   []string{},
		Document: &dto,
	})
}

func (h *handler) createOpportunity(c *gin.Context) {
	var req OpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	params, err := req.params()
	if err != nil {
		h.writeError(c, err)
		return
	}
	res := h.Opportunities.Save(c.Request.Context(), params)
	c.JSON(resultStatus(res, http.StatusCreated), res)
}

func (h *handler) getOpportunity(c *gin.Context) {
	res := h.Opportunities.GetUserOpportunityByID(c.Request.Context(), c.Param("id"))
	if !res.Success {
		c.JSON(statusFor(res.Type), documentResponse{Message: res.Message, Errors: res.Errors})
		return
	}
	writeDocument(c, res.Message, res.Document)
}

// updateOpportunity replaces the record while keeping its stored creation
// time.
func (h *handler) updateOpportunity(c *gin.Context) {
	id := c.Param("id")
	var req OpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	if req.ID != id {
		c.JSON(http.StatusBadRequest, service.AppResult{
			Message: "Path ID does not match request ID",
			Errors:  []string{"Path ID and request ID must match"},
		})
		return
	}

	ctx := c.Request.Context()
	existing := h.Opportunities.GetUserOpportunityByID(ctx, id)
	if !existing.Success {
		c.JSON(statusFor(existing.Type), service.AppResult{Message: existing.Message, Errors: existing.Errors})
		return
	}

	params, err := req.params()
	if err != nil {
		h.writeError(c, err)
		return
	}
	if req.PostedAt == nil {
		params.PostedAt = existing.Document.PostedAt
	}
	o, err := models.NewUserOpportunity(params, existing.Document.CreatedAt)
	if err != nil {
		h.writeError(c, err)
		return
	}
	o.UpdatedAt = h.now()

	res := h.Opportunities.UpdateUserOpportunity(ctx, o)
	c.JSON(resultStatus(res, http.StatusOK), res)
}

func (h *handler) deleteOpportunity(c *gin.Context) {
	res := h.Opportunities.DeleteUserOpportunityByID(c.Request.Context(), c.Param("id"))
	c.JSON(resultStatus(res, http.StatusOK), res)
}

func (h *handler) apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	o, err := h.Opportunities.Apply(c.Request.Context(), c.Param("id"), req.ResumeID, req.CoverLetterID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeDocument(c, "Application recorded successfully", o)
}

func (h *handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	status, err := models.ParseApplicationStatus(req.ApplicationStatus)
	if err != nil {
		h.writeError(c, err)
		return
	}
	o, err := h.Opportunities.UpdateApplicationStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeDocument(c, "Application status updated successfully", o)
}

func (h *handler) addNotes(c *gin.Context) {
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	o, err := h.Opportunities.AddNotes(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeDocument(c, "Notes updated successfully", o)
}

func (h *handler) listUserOpportunities(c *gin.Context) {
	p, err := pageFromQuery(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := c.Param("user_id")
	var list []*models.UserOpportunity
	if s := c.Query("status"); s != "" {
		status, perr := models.ParseApplicationStatus(s)
		if perr != nil {
			h.writeError(c, perr)
			return
		}
		list, err = h.Opportunities.GetByApplicationStatus(ctx, userID, status)
	} else {
		list, err = h.Opportunities.GetUserOpportunities(ctx, userID)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeList(c, list, p)
}

// searchOpportunities accepts criteria as a loose JSON object. Keys the
// search does not understand are ignored.
func (h *handler) searchOpportunities(c *gin.Context) {
	raw := map[string]any{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.badJSON(c, err)
		return
	}
	p, err := pageFromBody(raw)
	if err != nil {
		h.writeError(c, err)
		return
	}
	criteria, ignored, err := repository.ParseSearchCriteria(raw)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(ignored) > 0 {
		h.logger.Debug("ignoring unsupported search criteria", zap.Strings("keys", ignored))
	}

	list, err := h.Opportunities.Search(c.Request.Context(), criteria)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeList(c, list, p)
}

func (h *handler) listActive(c *gin.Context) {
	p, err := pageFromQuery(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	list, err := h.Opportunities.GetActive(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeList(c, list, p)
}

func (h *handler) listByType(c *gin.Context) {
	p, err := pageFromQuery(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	t, err := models.ParseOpportunityType(c.Param("type"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	list, err := h.Opportunities.GetByType(c.Request.Context(), t)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeList(c, list, p)
}

func (h *handler) history(c *gin.Context) {
	if h.Journal == nil {
		unavailable(c, "Activity history is not configured")
		return
	}
	entries, err := h.Journal.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Found %d events", len(entries)),
		"errors":  []string{},
		"events":  entries,
	})
}
