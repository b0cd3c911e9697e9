package marketplace

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

type AuthControllerRoutes struct {
	Login    string
	Logout   string
	Register string
	Me       string
}

// AuthController serves the session endpoints
type AuthController struct {
	Logger Logger
	Auther *Authenticator
	Cookie SessionCookie
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

// WithAuthControllerLogger sets the logger
func WithAuthControllerLogger(logger Logger) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Logger = normalizeLogger(logger)
		return ac
	}
}

// WithAuthControllerRoutes overrides the default paths
func WithAuthControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if routes != nil {
			ac.Routes = routes
		}
		return ac
	}
}

func NewAuthController(auther *Authenticator, cookie SessionCookie, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Auther: auther,
		Cookie: cookie,
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Register: "/register",
			Me:       "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func (a *AuthController) Register(c router.Context) error {
	var payload CredentialsPayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}

	session, err := a.Auther.Register(c.Context(), payload)
	if err != nil {
		return err
	}

	a.Cookie.Attach(responseHeaders{c}, session.Token)
	return c.JSON(fiber.StatusOK, ViewOf(session.Identity))
}

func (a *AuthController) Login(c router.Context) error {
	var payload CredentialsPayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}

	session, err := a.Auther.Login(c.Context(), payload)
	if err != nil {
		return err
	}

	a.Cookie.Attach(responseHeaders{c}, session.Token)
	return c.JSON(fiber.StatusOK, ViewOf(session.Identity))
}

func (a *AuthController) Me(c router.Context) error {
	identity, ok := IdentityFromRouter(c)
	if !ok {
		return ErrUnauthorized
	}
	return c.JSON(fiber.StatusOK, fiber.Map{"user": ViewOf(identity)})
}

func (a *AuthController) Logout(c router.Context) error {
	identity, _ := IdentityFromRouter(c)
	a.Auther.Logout(c.Context(), identity)

	a.Cookie.Clear(responseHeaders{c})
	return c.JSON(fiber.StatusOK, fiber.Map{"ok": true})
}

// TemplatesController serves the catalog
type TemplatesController struct {
	Logger  Logger
	Catalog *Catalog
}

func NewTemplatesController(catalog *Catalog) *TemplatesController {
	return &TemplatesController{Logger: defLogger{}, Catalog: catalog}
}

func (t *TemplatesController) List(c router.Context) error {
	templates, err := t.Catalog.List(c.Context(), TemplateFilter{
		Category: c.Query("category", ""),
		Featured: c.Query("featured", "") == "true",
		Search:   c.Query("search", ""),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.StatusOK, fiber.Map{"templates": templates})
}

func (t *TemplatesController) Show(c router.Context) error {
	template, err := t.Catalog.Get(c.Context(), c.Param("id", ""))
	if err != nil {
		return err
	}
	return c.JSON(fiber.StatusOK, fiber.Map{"template": template})
}

func (t *TemplatesController) Create(c router.Context) error {
	var payload TemplatePayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}

	identity, ok := IdentityFromRouter(c)
	if !ok {
		return ErrUnauthorized
	}

	template, err := t.Catalog.Create(c.Context(), payload, identity.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.StatusCreated, fiber.Map{"template": template})
}

func (t *TemplatesController) Update(c router.Context) error {
	var patch TemplatePatch
	if err := decodeBody(c, &patch); err != nil {
		return err
	}

	template, err := t.Catalog.Update(c.Context(), c.Param("id", ""), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.StatusOK, fiber.Map{"template": template})
}

func (t *TemplatesController) Delete(c router.Context) error {
	if err := t.Catalog.Delete(c.Context(), c.Param("id", "")); err != nil {
		return err
	}
	return c.JSON(fiber.StatusOK, fiber.Map{"message": "Template deleted"})
}

// PurchasesController serves the purchases of the signed in user
type PurchasesController struct {
	Purchasing *Purchasing
}

func NewPurchasesController(purchasing *Purchasing) *PurchasesController {
	return &PurchasesController{Purchasing: purchasing}
}

func (p *PurchasesController) List(c router.Context) error {
	identity, ok := IdentityFromRouter(c)
	if !ok {
		return ErrUnauthorized
	}

	purchases, err := p.Purchasing.List(c.Context(), identity.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.StatusOK, fiber.Map{"purchases": purchases})
}

func (p *PurchasesController) Create(c router.Context) error {
	var payload PurchasePayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}

	identity, ok := IdentityFromRouter(c)
	if !ok {
		return ErrUnauthorized
	}

	purchase, err := p.Purchasing.Buy(c.Context(), identity.ID(), payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.StatusCreated, fiber.Map{"purchase": purchase})
}

// StatsController serves the admin counters
type StatsController struct {
	Repo RepositoryManager
}

func NewStatsController(repo RepositoryManager) *StatsController {
	return &StatsController{Repo: repo}
}

func (s *StatsController) Show(c router.Context) error {
	stats, err := s.Repo.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.StatusOK, fiber.Map{"stats": stats})
}
