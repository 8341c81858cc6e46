package http

import "github.com/gin-gonic/gin"

func NewRouter(monitorController *MonitorController) *gin.Engine {
	router := gin.Default()

	router.GET("/health", monitorController.Health)
	router.GET("/status", monitorController.StatusAll)
	router.GET("/status/:service", monitorController.StatusOne)
	router.POST("/trigger/:service", monitorController.Trigger)

	return router
}
