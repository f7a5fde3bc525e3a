package handlers

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, ideas *IdeaHandler, images *ImageHandler, proxy *ProxyHandler) {
	app.Get("/healthz", Health)

	api := app.Group("/api")

	api.Post("/ideas/generate", ideas.GenerateIdeas)
	api.Get("/ideas", ideas.ListIdeas)
	api.Patch("/ideas/:id", ideas.UpdateIdea)

	api.Post("/images/generate", images.GenerateImage)
	api.Get("/images", images.ListImages)
	api.Post("/images/upload", images.UploadImage)
	api.Post("/images/modify", images.ModifyImage)
	api.Get("/images/job/:jobId", images.JobStatus)

	api.Get("/uploads", images.ListUploads)
	api.Delete("/uploads/:id", images.RemoveUpload)

	api.Options("/proxy/:webhookId", proxy.Preflight)
	api.Post("/proxy/:webhookId", proxy.Forward)
}
