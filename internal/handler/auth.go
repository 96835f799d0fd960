package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/getapet/adoption-api/internal/config"
	"github.com/getapet/adoption-api/internal/model"
	"github.com/getapet/adoption-api/internal/repository"
	"github.com/getapet/adoption-api/internal/storage"
	"github.com/getapet/adoption-api/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and the user
// directory endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users repository.UserStore
	Files storage.FileStore
}

func NewAuthHandler(cfg config.Config, users repository.UserStore, files storage.FileStore) *AuthHandler {
	if users == nil || files == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: users, Files: files}
}

// ----- DTOs -----

type registerReq struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPart is the outward shape of a user; the password hash never
// serializes.
type userPart struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar,omitempty"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Avatar: u.Avatar}
}

type authResp struct {
	User  userPart `json:"user"`
	Token string   `json:"token"`
}

// Register creates a user and returns an identity token immediately:
// registration auto-authenticates. Emails are compared exactly as given,
// no trimming or lowercasing, so uniqueness is case-sensitive.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch {
	case req.Name == "":
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name is required"})
	case req.Email == "":
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email is required"})
	case req.Phone == "":
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "phone is required"})
	case req.Password == "":
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "password is required"})
	case req.ConfirmPassword == "":
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "password confirmation is required"})
	case req.Password != req.ConfirmPassword:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "password and confirmation must match"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	u := model.User{Name: req.Name, Email: req.Email, Phone: req.Phone, PasswordHash: hash}

	ctx := c.Request().Context()
	if err := h.Users.Create(ctx, &u); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	tok, err := utils.NewIdentityToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusCreated, authResp{User: toUserPart(u), Token: tok.Token})
}

// Login verifies credentials and issues a fresh token. Previously issued
// tokens stay valid; there is no session revocation.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email is required"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "password is required"})
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no user registered with this email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid password"})
	}

	tok, err := utils.NewIdentityToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{User: toUserPart(u), Token: tok.Token})
}

// CheckCaller resolves the caller from the Authorization header without
// requiring one: no header answers 200 with a null body, so clients can
// probe their session state with a single unauthenticated call. A header
// that is present but unusable is still a 401.
func (h *AuthHandler) CheckCaller(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if auth == "" {
		return c.JSON(http.StatusOK, nil)
	}
	raw := strings.TrimPrefix(auth, "Bearer ")
	uid, err := utils.ParseUserToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown subject"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// GetUser returns the public view of any user.
func (h *AuthHandler) GetUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid user id"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// EditSelf updates the caller's own record; the edited user always comes
// from the token, never from a path parameter. The whole input is
// validated into a candidate row first and persisted in a single write,
// so a failure halfway through validation leaves nothing applied.
func (h *AuthHandler) EditSelf(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, callerID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	name := c.FormValue("name")
	email := c.FormValue("email")
	phone := c.FormValue("phone")
	password := c.FormValue("password")
	confirm := c.FormValue("confirm_password")

	switch {
	case name == "":
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name is required"})
	case email == "":
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email is required"})
	case phone == "":
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "phone is required"})
	}
	if email != u.Email {
		if other, err := h.Users.GetByEmail(ctx, email); err == nil && other.ID != u.ID {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "please use another email"})
		} else if err != nil && err != repository.ErrUserNotFound {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	// Candidate row; nothing is written until every field has passed.
	u.Name, u.Email, u.Phone = name, email, phone

	if password != "" || confirm != "" {
		if password != confirm {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "password and confirmation must match"})
		}
		hash, err := utils.HashPassword(password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
		}
		u.PasswordHash = hash
	}

	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		ref, err := h.Files.Save(fh)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store avatar failed"})
		}
		u.Avatar = ref
	}

	if err := h.Users.Update(ctx, u); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "please use another email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user updated successfully",
		"user":    toUserPart(u),
	})
}
