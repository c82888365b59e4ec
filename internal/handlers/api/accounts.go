package api

import (
	"github.com/gofiber/fiber/v3"

	"socialpulse/internal/config"
	"socialpulse/internal/growth"
	"socialpulse/internal/models"
	"socialpulse/internal/store"
	"socialpulse/internal/validation"
)

// AccountsHandler serves the read-only account queries.
type AccountsHandler struct {
	reader   store.Reader
	analyzer *growth.Analyzer
	cfg      *config.Config
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(reader store.Reader, cfg *config.Config) *AccountsHandler {
	return &AccountsHandler{
		reader:   reader,
		analyzer: growth.NewAnalyzer(reader),
		cfg:      cfg,
	}
}

// ByCategory returns a page of accounts tagged with the category in the path.
func (h *AccountsHandler) ByCategory(c fiber.Ctx) error {
	name := c.Params("name")
	if valid, msg := validation.ValidateCategory(name); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	page, ok := h.page(c)
	if !ok {
		return nil
	}

	accounts, err := h.reader.AccountsByCategory(c.Context(), name, page)
	if err != nil {
		return failure(c, err, "fetch accounts")
	}

	return jsonSuccess(c, models.CategoryAccountsResponse{
		Category: name,
		Accounts: accounts,
		Offset:   page.Offset,
		Limit:    page.Limit,
	})
}

// MillionPlus returns a page of accounts that ever had more subscribers than
// the threshold, one million unless overridden with ?threshold=.
func (h *AccountsHandler) MillionPlus(c fiber.Ctx) error {
	threshold, valid, msg := validation.ParseThreshold(c.Query("threshold"), h.cfg.LargeAccountThreshold)
	if !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	page, ok := h.page(c)
	if !ok {
		return nil
	}

	accounts, err := h.reader.AccountsOverThreshold(c.Context(), threshold, page)
	if err != nil {
		return failure(c, err, "fetch accounts")
	}

	return jsonSuccess(c, models.AccountsResponse{
		Threshold: threshold,
		Accounts:  accounts,
		Offset:    page.Offset,
		Limit:     page.Limit,
	})
}

// Growth returns a page of accounts whose subscriber growth over the window
// before the latest observation exceeds the threshold percentage.
func (h *AccountsHandler) Growth(c fiber.Ctx) error {
	opts := h.cfg.GrowthOptions()

	days, valid, msg := validation.ParseWindowDays(c.Query("window_days"), opts.WindowDays)
	if !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	opts.WindowDays = days

	threshold, valid, msg := validation.ParsePercentage(c.Query("threshold"), opts.Threshold)
	if !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	opts.Threshold = threshold

	page, ok := h.page(c)
	if !ok {
		return nil
	}

	report, err := h.analyzer.Analyze(c.Context(), opts, page)
	if err != nil {
		return failure(c, err, "analyze growth")
	}
	if !report.HasData {
		return jsonSuccess(c, models.MessageResponse{Message: "No data found"})
	}

	return jsonSuccess(c, report)
}

// page parses the pagination query. When it reports false the error
// response has already been written.
func (h *AccountsHandler) page(c fiber.Ctx) (store.Page, bool) {
	page, valid, msg := validation.ParsePagination(c.Query("offset"), c.Query("limit"), h.cfg.PageLimitDefault, h.cfg.PageLimitMax)
	if !valid {
		_ = jsonError(c, fiber.StatusBadRequest, msg)
		return page, false
	}
	return page, true
}
