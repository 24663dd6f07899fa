package handler

import (
	"errors"

	"hireboard/internal/delivery/http/dto"
	"hireboard/internal/delivery/http/middleware"
	"hireboard/internal/pkg/response"
	"hireboard/internal/usecase"
	ucauth "hireboard/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc usecase.AuthUsecase
}

func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	sess, err := h.uc.Register(c.Context(), ucauth.RegisterInput{Email: req.Email, Name: req.Name, Password: req.Password})
	if err != nil {
		return mapAuthError(err)
	}
	return response.Created(c, sess)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	sess, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthError(err)
	}
	return response.OK(c, sess)
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok && len(c.Body()) > 0 {
		var req dto.RefreshRequest
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
		tok = req.RefreshToken
	}

	pair, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		return mapAuthError(err)
	}
	return response.OK(c, pair)
}

func (h *AuthHandler) Me(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	usr, err := h.uc.Me(c.Context(), userID)
	if errors.Is(err, usecase.ErrNotFound) {
		return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
	}
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, usr)
}

var authErrors = []struct {
	err     error
	status  int
	message string
}{
	{ucauth.ErrEmailAlreadyRegistered, fiber.StatusConflict, "Email already registered"},
	{ucauth.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid email or password"},
	{ucauth.ErrInvalidInput, fiber.StatusBadRequest, "Bad request"},
	{usecase.ErrRefreshTokenExpired, fiber.StatusUnauthorized, "Refresh token expired"},
	{usecase.ErrInvalidRefreshToken, fiber.StatusUnauthorized, "Invalid refresh token"},
	{usecase.ErrUnauthorized, fiber.StatusUnauthorized, "Unauthorized"},
}

func mapAuthError(err error) error {
	for _, m := range authErrors {
		if errors.Is(err, m.err) {
			return middleware.NewAppError(m.status, m.message, nil, err)
		}
	}
	return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
}
