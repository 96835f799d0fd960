package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/getapet/adoption-api/internal/model"
	"github.com/getapet/adoption-api/internal/queue"
	"github.com/getapet/adoption-api/internal/repository"
	queue_publisher "github.com/getapet/adoption-api/internal/service"
)

// AdoptionHandler implements the two lifecycle transitions: an adopter
// scheduling a visit and the owner concluding the adoption.
type AdoptionHandler struct {
	Users  repository.UserStore
	Pets   repository.PetStore
	Events queue_publisher.Publisher
}

func NewAdoptionHandler(users repository.UserStore, pets repository.PetStore, events queue_publisher.Publisher) *AdoptionHandler {
	if users == nil || pets == nil {
		panic("nil store passed to NewAdoptionHandler")
	}
	if events == nil {
		events = queue_publisher.NopPublisher{}
	}
	return &AdoptionHandler{Users: users, Pets: pets, Events: events}
}

// Schedule records the caller as the pet's adopter. Owners cannot
// schedule on their own pet, and the current adopter cannot schedule
// twice; a different user may replace a prior adopter. The write is a
// compare-and-set against the adopter observed here, so of two
// concurrent first schedulers exactly one wins and the other gets a 409
// instead of silently overwriting.
//
// The confirmation message is the only channel that discloses the
// owner's contact details to the adopter. Scheduling deliberately keeps
// working after an adoption was concluded; see the lifecycle tests.
func (h *AdoptionHandler) Schedule(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid pet id"})
	}

	ctx := c.Request().Context()
	pet, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPetNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if pet.Owner.ID == callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you cannot schedule a visit to your own pet"})
	}
	var prev *uint64
	if pet.Adopter != nil {
		if pet.Adopter.ID == callerID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you have already scheduled a visit for this pet"})
		}
		prev = &pet.Adopter.ID
	}

	caller, err := h.Users.GetByID(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	adopter := model.AdopterRef{ID: caller.ID, Name: caller.Name, Avatar: caller.Avatar}

	if err := h.Pets.SetAdopter(ctx, pet.ID, prev, adopter); err != nil {
		if err == repository.ErrAdopterConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "another visit was scheduled concurrently, reload and try again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule visit failed"})
	}

	h.Events.VisitScheduled(ctx, queue.VisitScheduledEvent{
		PetID:       pet.ID,
		PetName:     pet.Name,
		OwnerID:     pet.Owner.ID,
		OwnerName:   pet.Owner.Name,
		AdopterID:   adopter.ID,
		AdopterName: adopter.Name,
		ScheduledAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("the visit was scheduled successfully, contact %s on %s", pet.Owner.Name, pet.Owner.Phone),
	})
}

// Conclude finalizes the adoption: owner only, unconditional. No prior
// schedule is required and the recorded adopter is not checked; finishing
// an adoption is the owner's act alone. A second call changes nothing.
func (h *AdoptionHandler) Conclude(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid pet id"})
	}

	ctx := c.Request().Context()
	pet, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPetNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if pet.Owner.ID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner can conclude this adoption"})
	}

	if err := h.Pets.Conclude(ctx, pet.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conclude adoption failed"})
	}

	ev := queue.AdoptionConcludedEvent{
		PetID:       pet.ID,
		PetName:     pet.Name,
		OwnerID:     pet.Owner.ID,
		OwnerName:   pet.Owner.Name,
		ConcludedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if pet.Adopter != nil {
		ev.AdopterID = pet.Adopter.ID
		ev.AdopterName = pet.Adopter.Name
	}
	h.Events.AdoptionConcluded(ctx, ev)

	return c.JSON(http.StatusOK, echo.Map{"message": "congratulations, the adoption has been concluded"})
}
