package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/properties", handler.GetProperties)
	router.GET("/trends", handler.GetTrends)
	router.GET("/price-comparison", handler.GetPriceComparison)
	router.GET("/list-csv-files", handler.ListCSVFiles)
}
