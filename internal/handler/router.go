package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	RAG *RAGHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/query", deps.RAG.Query)
	api.GET("/courses", deps.RAG.Courses)
	api.GET("/models", deps.RAG.Models)
}
