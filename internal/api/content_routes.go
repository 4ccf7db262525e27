package api

import (
	"net/http"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/content"
	"github.com/MyelinBots/heavenly-go/internal/services/library"
	"github.com/gin-gonic/gin"
)

func RegisterContentRoutes(rg *gin.RouterGroup, svc Services) {
	l := svc.Library
	rg.GET("/content/categories", func(c *gin.Context) { listCategories(c, l) })
	rg.GET("/content", func(c *gin.Context) { listContent(c, l) })
	rg.POST("/content", func(c *gin.Context) { publishContent(c, l) })
	rg.GET("/content/favorites", func(c *gin.Context) { listFavorites(c, l) })
	rg.GET("/content/recommendations", func(c *gin.Context) { recommendations(c, l) })
	rg.GET("/content/:id", func(c *gin.Context) { getContent(c, l) })
	rg.POST("/content/:id/progress", func(c *gin.Context) { updateProgress(c, l) })
	rg.POST("/content/:id/favorite", func(c *gin.Context) { favorite(c, l) })
	rg.DELETE("/content/:id/favorite", func(c *gin.Context) { unfavorite(c, l) })
}

func listCategories(c *gin.Context, l library.LibraryService) {
	cats, err := l.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func listContent(c *gin.Context, l library.LibraryService) {
	items, err := l.List(c.Request.Context(), content.ListFilter{
		CategoryID: c.Query("category"),
		Type:       c.Query("type"),
		Audience:   c.Query("audience"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func publishContent(c *gin.Context, l library.LibraryService) {
	var in library.PublishInput
	if !bind(c, &in) {
		return
	}
	item, err := l.Publish(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func getContent(c *gin.Context, l library.LibraryService) {
	item, err := l.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func updateProgress(c *gin.Context, l library.LibraryService) {
	var in library.ProgressInput
	if !bind(c, &in) {
		return
	}
	p, err := l.UpdateProgress(c.Request.Context(), currentUser(c).ID, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func favorite(c *gin.Context, l library.LibraryService) {
	if err := l.Favorite(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func unfavorite(c *gin.Context, l library.LibraryService) {
	if err := l.Unfavorite(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func listFavorites(c *gin.Context, l library.LibraryService) {
	items, err := l.Favorites(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func recommendations(c *gin.Context, l library.LibraryService) {
	recs, err := l.Recommendations(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
