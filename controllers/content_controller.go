package controllers

import (
	"net/http"

	"spectrumhub/content"

	"github.com/gin-gonic/gin"
)

func ListPages(c *gin.Context) {
	pages, err := content.Summaries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

func GetPage(c *gin.Context) {
	page, ok, err := content.PageBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load page"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		return
	}
	c.JSON(http.StatusOK, page)
}
