package auth

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// AuthController serves the JSON auth surface.
type AuthController struct {
	Logger       Logger
	Auther       Authenticator
	Verifier     *TokenVerifier
	Config       Config
	ErrorHandler func(*fiber.Ctx, error) error
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerErrorHandler(handler func(*fiber.Ctx, error) error) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func NewAuthController(auther Authenticator, verifier *TokenVerifier, cfg Config, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		Auther:       auther,
		Verifier:     verifier,
		Config:       cfg,
		ErrorHandler: WriteError,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Verifier == nil {
		panic("Missing TokenVerifier in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the JSON endpoints. The verification tier for
// each route is decided here: token_verify is the cheap crypto-only tier;
// logout, user creation, and whoami disclose identity or mutate state, so
// they run strict verification against the persisted session record.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	verifier := controller.Verifier
	cfg := controller.Config
	onError := WithErrorHandler(controller.ErrorHandler)

	app.Post("/auth", controller.SignIn)

	app.Post("/auth/token_verify",
		Protected(verifier, cfg, onError),
		controller.TokenVerify,
	)

	app.Post("/auth/logout",
		Protected(verifier, cfg, onError, WithStrict()),
		controller.Logout,
	)

	app.Post("/users",
		Protected(verifier, cfg, onError, WithStrict(), WithAdminOnly()),
		controller.UserCreate,
	)

	app.Get("/users/me",
		Protected(verifier, cfg, onError, WithStrict()),
		controller.Me,
	)
}

// SignIn handles POST /auth.
func (a *AuthController) SignIn(c *fiber.Ctx) error {
	payload := new(SignInRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, ErrInvalidCredentialsFormat)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, err)
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		// Issuance and persistence failures render as 401 like bad
		// credentials; the body never says which it was.
		if !IsMalformedError(err) && !goerrors.Is(err, ErrMismatchedHashAndPassword) {
			a.Logger.Error("SignIn error", "error", err)
		}
		return a.ErrorHandler(c, ErrMismatchedHashAndPassword)
	}

	return c.JSON(fiber.Map{"token": token})
}

// TokenVerify handles POST /auth/token_verify. The middleware already ran
// the cryptographic tier; reaching the handler means the token is valid.
func (a *AuthController) TokenVerify(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

// Logout handles POST /auth/logout.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.Config.GetContextKey())
	if !ok {
		return a.ErrorHandler(c, ErrMissingToken)
	}

	if err := a.Auther.Logout(c.UserContext(), claims); err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// UserCreate handles POST /users (admin gate enforced by middleware).
func (a *AuthController) UserCreate(c *fiber.Ctx) error {
	payload := new(CreateUserRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, ErrInvalidCredentialsFormat)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, err)
	}

	user, err := a.Auther.CreateUser(c.UserContext(), *payload)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(user)
}

// Me handles GET /users/me.
func (a *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.Config.GetContextKey())
	if !ok {
		return a.ErrorHandler(c, ErrMissingToken)
	}

	user, err := a.Auther.CurrentUser(c.UserContext(), claims)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(user)
}

// WriteError renders a rich error as the JSON error envelope. Internal
// failures are masked with a fixed message; categories carry the status.
func WriteError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	message := richErr.Message
	switch richErr.Category {
	case goerrors.CategoryInternal, goerrors.CategoryOperation:
		status = fiber.StatusInternalServerError
		message = "internal server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   message,
			"text_code": richErr.TextCode,
		},
	})
}
