package activities

import "github.com/gin-gonic/gin"

func SetupActivityRoutes(router gin.IRouter, controller *Controller) {
	activities := router.Group("/activities")
	{
		activities.GET("", controller.GetActivities)                         // GET /activities - full roster
		activities.POST("/:name/signup", controller.Signup)                  // POST /activities/:name/signup?email=
		activities.DELETE("/:name/unregister/:email", controller.Unregister) // DELETE /activities/:name/unregister/:email
	}
}
