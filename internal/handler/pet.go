package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/getapet/adoption-api/internal/model"
	"github.com/getapet/adoption-api/internal/repository"
	"github.com/getapet/adoption-api/internal/storage"
)

// PetHandler covers pet registration and the owner-gated mutations plus
// the public browse endpoints. Authorization is relational: the only
// privileged role on a pet is being the user whose id sits in its owner
// snapshot.
type PetHandler struct {
	Users repository.UserStore
	Pets  repository.PetStore
	Files storage.FileStore
}

func NewPetHandler(users repository.UserStore, pets repository.PetStore, files storage.FileStore) *PetHandler {
	if users == nil || pets == nil || files == nil {
		panic("nil dependency passed to NewPetHandler")
	}
	return &PetHandler{Users: users, Pets: pets, Files: files}
}

// petInput is the validated multipart payload for create and update.
// Update requires the same full field set as create, images included:
// there are no partial pet updates.
type petInput struct {
	Name        string
	Species     string
	Description string
	Age         int
	Weight      float64
	Images      []*multipart.FileHeader
}

// bindPetInput validates the whole form before the caller applies any of
// it. The returned message is empty on success and a 422 body otherwise.
func bindPetInput(c echo.Context) (petInput, string) {
	var in petInput
	in.Name = c.FormValue("name")
	in.Species = c.FormValue("species")
	in.Description = c.FormValue("description")

	if in.Name == "" {
		return in, "name is required"
	}
	if in.Species == "" {
		return in, "species is required"
	}
	ageRaw := c.FormValue("age")
	if ageRaw == "" {
		return in, "age is required"
	}
	age, err := strconv.Atoi(ageRaw)
	if err != nil || age <= 0 {
		return in, "age must be a positive number"
	}
	in.Age = age

	weightRaw := c.FormValue("weight")
	if weightRaw == "" {
		return in, "weight is required"
	}
	weight, err := strconv.ParseFloat(weightRaw, 64)
	if err != nil || weight <= 0 {
		return in, "weight must be a positive number"
	}
	in.Weight = weight

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		return in, "at least one image is required"
	}
	in.Images = form.File["images"]
	return in, ""
}

func (h *PetHandler) storeImages(files []*multipart.FileHeader) ([]string, error) {
	refs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := h.Files.Save(fh)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Create registers a pet for the caller. The caller's current
// {id, name, avatar, phone} are copied into the owner snapshot; later
// edits to the user do not reach back into the pet.
func (h *PetHandler) Create(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	in, msg := bindPetInput(c)
	if msg != "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": msg})
	}

	ctx := c.Request().Context()
	owner, err := h.Users.GetByID(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load owner failed"})
	}
	refs, err := h.storeImages(in.Images)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store images failed"})
	}

	pet := model.Pet{
		Name:        in.Name,
		Species:     in.Species,
		Description: in.Description,
		Age:         in.Age,
		Weight:      in.Weight,
		Images:      refs,
		Available:   true,
		Owner: model.OwnerRef{
			ID:     owner.ID,
			Name:   owner.Name,
			Avatar: owner.Avatar,
			Phone:  owner.Phone,
		},
	}
	if err := h.Pets.Create(ctx, &pet); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create pet failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "pet registered successfully",
		"pet":     pet,
	})
}

// Update replaces every editable field of an owned pet. Validation is
// batched: either the whole input is applied or none of it is.
func (h *PetHandler) Update(c echo.Context) error {
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
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner can update this pet"})
	}

	in, msg := bindPetInput(c)
	if msg != "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": msg})
	}
	refs, err := h.storeImages(in.Images)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store images failed"})
	}

	pet.Name = in.Name
	pet.Species = in.Species
	pet.Description = in.Description
	pet.Age = in.Age
	pet.Weight = in.Weight
	pet.Images = refs
	if err := h.Pets.Update(ctx, pet); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update pet failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "pet updated successfully",
		"pet":     pet,
	})
}

// Delete removes an owned pet unconditionally once the ownership check
// passes, scheduled visit or not.
func (h *PetHandler) Delete(c echo.Context) error {
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
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner can remove this pet"})
	}
	if err := h.Pets.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete pet failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "pet removed successfully"})
}

// ListAll returns every registered pet, newest first.
func (h *PetHandler) ListAll(c echo.Context) error {
	pets, err := h.Pets.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list pets failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"pets": pets})
}

// ListMine returns the caller's registered pets, newest first.
func (h *PetHandler) ListMine(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pets, err := h.Pets.ListByOwner(c.Request().Context(), callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list pets failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"pets": pets})
}

// ListAdoptions returns the pets the caller has scheduled visits for,
// newest first.
func (h *PetHandler) ListAdoptions(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pets, err := h.Pets.ListByAdopter(c.Request().Context(), callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list adoptions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"pets": pets})
}

// Get returns a single pet by id.
func (h *PetHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid pet id"})
	}
	pet, err := h.Pets.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrPetNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"pet": pet})
}
