package crm

import "github.com/gin-gonic/gin"

// RegisterRoutes registers all CRM routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/me", h.Me)
	r.POST("/signout", h.SignOut)
	r.GET("/stages", h.Stages)
	r.GET("/dashboard", h.Dashboard)
	r.GET("/ws", h.Stream)

	leads := r.Group("/leads")
	{
		leads.GET("", h.ListLeads)
		leads.POST("", h.CreateLead)
		leads.POST("/refresh", h.Refresh)

		leads.PUT("/:id", h.UpdateLead)
		leads.PATCH("/:id/stage", h.TransitionStage)
		leads.DELETE("/:id", h.DeleteLead)
		leads.GET("/:id/activities", h.ListActivities)
	}
}
