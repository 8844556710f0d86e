package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/jobsearch"
	"github.com/michaelprosario/career-catalyst/internal/profile"
	"github.com/michaelprosario/career-catalyst/internal/service"
)

type profileRequest struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Resume          string `json:"resume"`
	Goals           string `json:"goals"`
	Accomplishments string `json:"accomplishments"`
}

type coverLetterRequest struct {
	UserID        string `json:"user_id"`
	OpportunityID string `json:"opportunity_id"`
}

type bookmarkRequest struct {
	UserID      string `json:"user_id"`
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	JobURL      string `json:"job_url"`
	DatePosted  string `json:"date_posted"`
	IsRemote    bool   `json:"is_remote"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

type jobSearchResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []string            `json:"errors"`
	Results []jobsearch.Posting `json:"results"`
	Total   int                 `json:"total"`
}

func (h *handler) getProfile(c *gin.Context) {
	if h.Profiles == nil {
		unavailable(c, "Profile storage is not configured")
		return
	}
	p, err := h.Profiles.Load(c.Request.Context(), c.Param("user_id"))
	if errors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, service.AppResult{Message: "No data found for user", Errors: []string{}})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Data retrieved successfully",
		"errors":  []string{},
		"data":    p,
	})
}

func (h *handler) saveProfile(c *gin.Context) {
	if h.Profiles == nil {
		unavailable(c, "Profile storage is not configured")
		return
	}
	userID := c.Param("user_id")
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	if req.UserID != "" && req.UserID != userID {
		c.JSON(http.StatusBadRequest, service.AppResult{
			Message: "Path user ID does not match request user ID",
			Errors:  []string{},
		})
		return
	}

	err := h.Profiles.Save(c.Request.Context(), profile.Profile{
		UserID:          userID,
		Name:            req.Name,
		Resume:          req.Resume,
		Goals:           req.Goals,
		Accomplishments: req.Accomplishments,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.AppResult{Success: true, Message: "Data saved successfully", Errors: []string{}})
}

func (h *handler) deleteProfile(c *gin.Context) {
	if h.Profiles == nil {
		unavailable(c, "Profile storage is not configured")
		return
	}
	if err := h.Profiles.Delete(c.Request.Context(), c.Param("user_id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.AppResult{Success: true, Message: "Data deleted successfully", Errors: []string{}})
}

func (h *handler) generateCoverLetter(c *gin.Context) {
	if h.CoverLetters == nil {
		unavailable(c, "Cover letter generation is not configured")
		return
	}
	var req coverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	res := h.CoverLetters.Generate(c.Request.Context(), req.UserID, req.OpportunityID)
	status := http.StatusOK
	if !res.Success {
		status = statusFor(res.Type)
	}
	c.JSON(status, res)
}

func (h *handler) searchJobs(c *gin.Context) {
	if h.Searcher == nil {
		unavailable(c, "Job search is not configured")
		return
	}
	var q jobsearch.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		h.badJSON(c, err)
		return
	}
	q, err := q.Normalize()
	if err != nil {
		h.writeError(c, err)
		return
	}

	postings, err := h.Searcher.Search(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobSearchResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d jobs", len(postings)),
		Errors:  []string{},
		Results: postings,
		Total:   len(postings),
	})
}

// bookmarkJob saves a search result through the management service, so the
// one-listing-per-user rule applies.
func (h *handler) bookmarkJob(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}

	params := jobsearch.ToParams(req.UserID, jobsearch.Posting{
		Title:       req.JobTitle,
		Company:     req.Company,
		Location:    req.Location,
		JobURL:      req.JobURL,
		DatePosted:  req.DatePosted,
		IsRemote:    req.IsRemote,
		Description: req.Description,
	})
	params.Notes = req.Notes

	h.logger.Info("bookmarking job",
		zap.String("user_id", req.UserID),
		zap.String("title", req.JobTitle),
		zap.String("company", req.Company))
	res := h.Opportunities.Save(c.Request.Context(), params)
	if !res.Success {
		c.JSON(statusFor(res.Type), service.AppResult{
			Message: "Failed to bookmark job opportunity",
			Errors:  append([]string{res.Message}, res.Errors...),
		})
		return
	}
	c.JSON(http.StatusCreated, res)
}
