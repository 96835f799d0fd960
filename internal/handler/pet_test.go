package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getapet/adoption-api/internal/model"
)

func (v *env) createPet(t *testing.T, callerID uint64, fields map[string]string, images ...string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := petForm(t, fields, images...)
	return v.request(t, v.pet.Create, http.MethodPost, "/v1/pets", body, ct, callerID, nil)
}

func TestCreatePetSnapshotsOwner(t *testing.T) {
	v := newEnv(t)
	u := v.seedUser(t, "Ana", "ana@example.com")

	rec := v.createPet(t, u.ID, validPetFields(), "rex.jpg", "rex2.jpg")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "pet registered successfully", decode(t, rec)["message"])

	pet, err := v.pets.GetByID(ctxBg(), 1)
	require.NoError(t, err)
	assert.Equal(t, u.ID, pet.Owner.ID)
	assert.Equal(t, u.Name, pet.Owner.Name)
	assert.Equal(t, u.Phone, pet.Owner.Phone)
	assert.Len(t, pet.Images, 2)
	assert.True(t, pet.Available)
	assert.Nil(t, pet.Adopter)

	// The snapshot is frozen at registration: renaming the user later
	// does not reach back into the pet.
	u.Name = "Renamed"
	require.NoError(t, v.users.Update(ctxBg(), u))
	pet, err = v.pets.GetByID(ctxBg(), pet.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", pet.Owner.Name)
}

func TestCreatePetValidation(t *testing.T) {
	v := newEnv(t)
	u := v.seedUser(t, "Ana", "ana@example.com")

	cases := []struct {
		mutate func(map[string]string)
		images []string
		want   string
	}{
		{func(f map[string]string) { delete(f, "name") }, []string{"a.jpg"}, "name is required"},
		{func(f map[string]string) { delete(f, "species") }, []string{"a.jpg"}, "species is required"},
		{func(f map[string]string) { delete(f, "age") }, []string{"a.jpg"}, "age is required"},
		{func(f map[string]string) { f["age"] = "-1" }, []string{"a.jpg"}, "age must be a positive number"},
		{func(f map[string]string) { f["age"] = "three" }, []string{"a.jpg"}, "age must be a positive number"},
		{func(f map[string]string) { f["weight"] = "0" }, []string{"a.jpg"}, "weight must be a positive number"},
		{func(f map[string]string) {}, nil, "at least one image is required"},
	}
	for _, tc := range cases {
		fields := validPetFields()
		tc.mutate(fields)
		rec := v.createPet(t, u.ID, fields, tc.images...)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, tc.want)
		assert.Equal(t, tc.want, decode(t, rec)["error"])
	}

	// Nothing was persisted by any rejected attempt.
	all, err := v.pets.ListAll(ctxBg())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdatePetFullReplace(t *testing.T) {
	v := newEnv(t)
	u := v.seedUser(t, "Ana", "ana@example.com")
	p := v.seedPet(t, u, "Rex")

	fields := map[string]string{
		"name": "Max", "species": "dog", "description": "",
		"age": "4", "weight": "14",
	}
	body, ct := petForm(t, fields, "new.jpg")
	rec := v.request(t, v.pet.Update, http.MethodPut, "/v1/pets/1", body, ct, u.ID,
		map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := v.pets.GetByID(ctxBg(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Max", got.Name)
	assert.Equal(t, 4, got.Age)
	assert.Equal(t, "", got.Description, "update replaces every editable field, omitted means cleared")
	require.Len(t, got.Images, 1)
	assert.NotEqual(t, "seed.jpg", got.Images[0], "images are replaced, not appended")
}

func TestUpdatePetRejectedInputAppliesNothing(t *testing.T) {
	v := newEnv(t)
	u := v.seedUser(t, "Ana", "ana@example.com")
	p := v.seedPet(t, u, "Rex")

	fields := map[string]string{
		"name": "Max", "species": "dog", "age": "bad", "weight": "14",
	}
	body, ct := petForm(t, fields, "new.jpg")
	rec := v.request(t, v.pet.Update, http.MethodPut, "/v1/pets/1", body, ct, u.ID,
		map[string]string{"id": "1"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	got, err := v.pets.GetByID(ctxBg(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Name, "rejected update must not partially apply")
	assert.Equal(t, []string{"seed.jpg"}, got.Images)
}

func TestPetOwnershipGates(t *testing.T) {
	v := newEnv(t)
	owner := v.seedUser(t, "Ana", "ana@example.com")
	stranger := v.seedUser(t, "Bo", "bo@example.com")
	p := v.seedPet(t, owner, "Rex")

	body, ct := petForm(t, validPetFields(), "x.jpg")
	rec := v.request(t, v.pet.Update, http.MethodPut, "/v1/pets/1", body, ct, stranger.ID,
		map[string]string{"id": "1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = v.request(t, v.pet.Delete, http.MethodDelete, "/v1/pets/1", nil, "", stranger.ID,
		map[string]string{"id": "1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The pet is untouched by either rejected call.
	got, err := v.pets.GetByID(ctxBg(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Name)

	rec = v.request(t, v.pet.Delete, http.MethodDelete, "/v1/pets/1", nil, "", owner.ID,
		map[string]string{"id": "1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	_, err = v.pets.GetByID(ctxBg(), p.ID)
	assert.Error(t, err)
}

func TestPetNotFound(t *testing.T) {
	v := newEnv(t)
	u := v.seedUser(t, "Ana", "ana@example.com")

	rec := v.request(t, v.pet.Get, http.MethodGet, "/v1/pets/9", nil, "", 0,
		map[string]string{"id": "9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = v.request(t, v.pet.Delete, http.MethodDelete, "/v1/pets/9", nil, "", u.ID,
		map[string]string{"id": "9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = v.request(t, v.pet.Get, http.MethodGet, "/v1/pets/abc", nil, "", 0,
		map[string]string{"id": "abc"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPetLists(t *testing.T) {
	v := newEnv(t)
	ana := v.seedUser(t, "Ana", "ana@example.com")
	bo := v.seedUser(t, "Bo", "bo@example.com")
	mine := v.seedPet(t, ana, "Rex")
	theirs := v.seedPet(t, bo, "Mia")
	require.NoError(t, v.pets.SetAdopter(ctxBg(), theirs.ID, nil,
		model.AdopterRef{ID: ana.ID, Name: ana.Name}))

	rec := v.request(t, v.pet.ListAll, http.MethodGet, "/v1/pets", nil, "", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["pets"], 2)

	rec = v.request(t, v.pet.ListMine, http.MethodGet, "/v1/pets/mine", nil, "", ana.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pets := decode(t, rec)["pets"].([]any)
	require.Len(t, pets, 1)
	assert.Equal(t, mine.Name, pets[0].(map[string]any)["name"])

	rec = v.request(t, v.pet.ListAdoptions, http.MethodGet, "/v1/pets/adoptions", nil, "", ana.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pets = decode(t, rec)["pets"].([]any)
	require.Len(t, pets, 1)
	assert.Equal(t, theirs.Name, pets[0].(map[string]any)["name"])
}
