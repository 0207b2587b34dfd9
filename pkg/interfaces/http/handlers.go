package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/events"
)

// ReserveRequest is the body of POST /api/v1/reserve
type ReserveRequest struct {
	Head     string              `json:"head"`
	Requests []entities.LineItem `json:"requests"`
}

// LocationView is one entry of GET /api/v1/locations
type LocationView struct {
	Name     string                     `json:"name"`
	Fallback string                     `json:"fallback,omitempty"`
	Stock    []entities.InventoryRecord `json:"stock"`
}

// Reserve runs a chain allocation for the posted request set
func (s *Server) Reserve(c *fiber.Ctx) error {
	var req ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Head == "" {
		return fiber.NewError(fiber.StatusBadRequest, "head is required")
	}

	report, err := s.service.Reserve(c.UserContext(), req.Head, req.Requests)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(report)
}

// ListLocations returns every location with its fallback and stock
func (s *Server) ListLocations(c *fiber.Ctx) error {
	locations := s.catalog.Locations()
	views := make([]LocationView, 0, len(locations))
	for _, loc := range locations {
		views = append(views, LocationView{
			Name:     loc.Name,
			Fallback: s.catalog.FallbackName(loc),
			Stock:    loc.Inventory,
		})
	}
	return c.JSON(fiber.Map{"locations": views})
}

// RunEvents returns the events published for one allocation run. Runs that
// have aged out of the store's retention window are reported as not found.
func (s *Server) RunEvents(c *fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid run id: "+c.Params("id"))
	}

	published, err := s.events.ReadEvents(events.StreamID(runID), 1)
	if err != nil {
		return err
	}
	if len(published) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no events for run "+runID.String())
	}
	return c.JSON(fiber.Map{"run_id": runID, "events": published})
}
