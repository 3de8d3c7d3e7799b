package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/melih/dockdash/internal/core/domain"
	"github.com/melih/dockdash/internal/core/ports"
	"github.com/melih/dockdash/internal/dashboard"
)

type DashboardHandler struct {
	state    *dashboard.State
	commands ports.CommandSender
	status   ports.SessionStatus
}

func NewDashboardHandler(state *dashboard.State, commands ports.CommandSender, status ports.SessionStatus) *DashboardHandler {
	return &DashboardHandler{state: state, commands: commands, status: status}
}

// Page renders the view bound to route.
func (h *DashboardHandler) Page(route dashboard.Route) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snapshot := h.state.Snapshot()
		running := make([]domain.Container, 0, len(snapshot.Containers))
		for _, ct := range snapshot.Containers {
			if dashboard.IsRunning(ct) {
				running = append(running, ct)
			}
		}
		return c.Render(route.Template, fiber.Map{
			"Title":      route.Title,
			"Controller": route.Controller,
			"Path":       c.Path(),
			"Routes":     dashboard.Routes,
			"Images":     snapshot.Images,
			"Containers": snapshot.Containers,
			"Running":    running,
			"Connected":  h.status.Connected(),
			"Error":      h.status.Err(),
		})
	}
}

// Command sends a lifecycle command for the container named in the path.
func (h *DashboardHandler) Command(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	var send func(string) error
	switch c.Params("action") {
	case "start":
		send = h.commands.Start
	case "stop":
		send = h.commands.Stop
	case "remove":
		send = h.commands.Remove
	case "kill":
		send = h.commands.Kill
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown action: " + c.Params("action"),
		})
	}

	if err := send(id); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Redirect("/containers", fiber.StatusSeeOther)
}

// State returns the current view model as JSON.
func (h *DashboardHandler) State(c *fiber.Ctx) error {
	snapshot := h.state.Snapshot()
	resp := fiber.Map{
		"connected":  h.status.Connected(),
		"images":     snapshot.Images,
		"containers": snapshot.Containers,
	}
	if err := h.status.Err(); err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(resp)
}

// imageTag is the template helper resolving an image ID to its display tag.
// Unknown images fall back to the short ID.
func (h *DashboardHandler) imageTag(id string) string {
	if tag, ok := h.state.ImageTag(id); ok {
		return tag
	}
	return shortID(id)
}
