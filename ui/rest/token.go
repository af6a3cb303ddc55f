package rest

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"

	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	pkgError "github.com/P-Jays/crypto-telegram-bot/pkg/error"
	"github.com/P-Jays/crypto-telegram-bot/pkg/utils"
)

type Token struct {
	Service token.ITokenUsecase
}

func InitRestToken(app fiber.Router, service token.ITokenUsecase) Token {
	handler := Token{Service: service}

	group := app.Group("/api")
	group.Get("/token/:query", handler.Snapshot)
	group.Get("/token/:query/safety", handler.Safety)
	group.Get("/resolve/:query", handler.Resolve)

	return handler
}

func (h *Token) Snapshot(c *fiber.Ctx) error {
	query := c.Params("query")
	validateQuery(query)

	snap, err := h.Service.Snapshot(c.UserContext(), query)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Market snapshot retrieved",
		Results: snap,
	})
}

func (h *Token) Safety(c *fiber.Ctx) error {
	query := c.Params("query")
	validateQuery(query)
	provider := c.Query("provider")

	report, err := h.Service.Safety(c.UserContext(), query, provider)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Safety report generated",
		Results: report,
	})
}

func (h *Token) Resolve(c *fiber.Ctx) error {
	query := c.Params("query")
	validateQuery(query)

	res, err := h.Service.Resolve(c.UserContext(), query)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Contract resolved",
		Results: res,
	})
}

// validateQuery bounds what reaches the pipeline: symbols, names and
// 0x-addresses, nothing longer than a contract address.
func validateQuery(query string) {
	err := validation.Validate(query,
		validation.Required,
		validation.Length(1, 64),
	)
	if err != nil {
		utils.PanicIfNeeded(pkgError.InvalidInputError("invalid query: " + err.Error()))
	}
}
