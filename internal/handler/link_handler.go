package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/dropss/internal/db"
	"github.com/dropss/internal/service"
	"github.com/gin-gonic/gin"
)

type linkRequest struct {
	Platform string `json:"platform" binding:"required"`
	URL      string `json:"url" binding:"required,url"`
}

type linkVisibilityRequest struct {
	IsVisible *bool `json:"is_visible" binding:"required"`
}

// ListLinks returns every link of the caller in display order.
func (a *API) ListLinks(c *gin.Context) {
	links, err := a.links.ListLinks(mustUserID(c))
	if err != nil {
		handleLinkError(c, err)
		return
	}

	items := make([]gin.H, 0, len(links))
	for _, link := range links {
		items = append(items, linkPayload(link))
	}
	c.JSON(http.StatusOK, gin.H{"links": items})
}

// CreateLink appends a link at the end of the caller's list.
func (a *API) CreateLink(c *gin.Context) {
	var payload linkRequest
	if !bindJSON(c, &payload, "Choose a platform and enter a valid URL") {
		return
	}

	link, err := a.links.AddLink(mustUserID(c), service.LinkInput{
		Platform: payload.Platform,
		URL:      payload.URL,
	})
	if err != nil {
		handleLinkError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Link added", "link": linkPayload(*link)})
}

// DeleteLink removes one of the caller's links.
func (a *API) DeleteLink(c *gin.Context) {
	if err := a.links.DeleteLink(mustUserID(c), c.Param("id")); err != nil {
		handleLinkError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link deleted"})
}

// UpdateLinkVisibility shows or hides a link on the public page.
func (a *API) UpdateLinkVisibility(c *gin.Context) {
	var payload linkVisibilityRequest
	if !bindJSON(c, &payload, "is_visible is required") {
		return
	}

	link, err := a.links.SetLinkVisibility(mustUserID(c), c.Param("id"), *payload.IsVisible)
	if err != nil {
		handleLinkError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link updated", "link": linkPayload(*link)})
}

func linkPayload(link db.Link) gin.H {
	return gin.H{
		"id":            link.ID,
		"platform":      link.Platform,
		"url":           link.URL,
		"display_order": link.DisplayOrder,
		"is_visible":    link.IsVisible,
		"created_at":    link.CreatedAt,
	}
}

func handleLinkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		respondError(c, http.StatusNotFound, "Link not found")
	case errors.Is(err, service.ErrLinkInvalidInput):
		respondError(c, http.StatusBadRequest, validationDetail(err, service.ErrLinkInvalidInput))
	case errors.Is(err, service.ErrProfileNotFound):
		respondError(c, http.StatusNotFound, "Profile not found")
	default:
		log.Printf("[links] operation failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Link operation failed")
	}
}
