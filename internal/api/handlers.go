// Package api exposes board administration and card endpoints over REST
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	boardservice "github.com/thenoetrevino/tablero/internal/services/board"
	cardservice "github.com/thenoetrevino/tablero/internal/services/card"
)

// maxBodySize bounds request bodies, large enough for a full board backup
const maxBodySize = 8 << 20

// Services are the handlers the REST surface routes to
type Services struct {
	Boards boardservice.Service
	Cards  cardservice.Service
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc Services, logger *log.Logger) {
	h := &handlers{svc: svc, log: logger}

	e.GET("/api/boards", h.listBoards)
	e.POST("/api/boards", h.createBoard)
	e.GET("/api/boards/:id", h.getBoard)
	e.PUT("/api/boards/:id", h.replaceBoard)
	e.DELETE("/api/boards/:id", h.deleteBoard)

	e.POST("/api/boards/:id/lists/:listId/cards", h.createCard)
	e.PATCH("/api/boards/:id/lists/:listId/cards/:cardId", h.patchCard)
	e.DELETE("/api/boards/:id/lists/:listId/cards/:cardId", h.deleteCard)
}

type handlers struct {
	svc Services
	log *log.Logger
}

// CreateBoardBody is the body of POST /api/boards
type CreateBoardBody struct {
	Name  string   `json:"name"`
	Lists []string `json:"lists,omitempty"`
}

// CreateCardBody is the body of POST .../cards
type CreateCardBody struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
}

// PatchCardBody is the body of PATCH .../cards/:cardId
type PatchCardBody struct {
	Updates    models.CardPatch `json:"updates"`
	EditorName string           `json:"editorName"`
}

// ErrorBody is the JSON shape of every REST error
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine readable code and a message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errBadBody = errors.New("invalid request body")

func (h *handlers) listBoards(c echo.Context) error {
	sums, err := h.svc.Boards.ListBoards(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sums)
}

func (h *handlers) createBoard(c echo.Context) error {
	var body CreateBoardBody
	if err := decode(c, &body); err != nil {
		return h.fail(c, err)
	}
	b, err := h.svc.Boards.CreateBoard(c.Request().Context(), boardservice.CreateBoardRequest{Name: body.Name, Lists: body.Lists})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *handlers) getBoard(c echo.Context) error {
	b, err := h.svc.Boards.GetBoard(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *handlers) replaceBoard(c echo.Context) error {
	var doc models.Board
	if err := decode(c, &doc); err != nil {
		return h.fail(c, err)
	}
	b, err := h.svc.Boards.ReplaceBoard(c.Request().Context(), c.Param("id"), &doc)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *handlers) deleteBoard(c echo.Context) error {
	if err := h.svc.Boards.DeleteBoard(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) createCard(c echo.Context) error {
	var body CreateCardBody
	if err := decode(c, &body); err != nil {
		return h.fail(c, err)
	}
	_, card, err := h.svc.Cards.AddCard(c.Request().Context(), cardservice.AddCardRequest{
		BoardID:     c.Param("id"),
		ListID:      c.Param("listId"),
		Title:       body.Title,
		Description: body.Description,
		Labels:      body.Labels,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, card)
}

func (h *handlers) patchCard(c echo.Context) error {
	var body PatchCardBody
	if err := decode(c, &body); err != nil {
		return h.fail(c, err)
	}
	_, card, err := h.svc.Cards.EditCard(c.Request().Context(), cardservice.EditCardRequest{
		BoardID:    c.Param("id"),
		ListID:     c.Param("listId"),
		CardID:     c.Param("cardId"),
		Updates:    body.Updates,
		EditorName: body.EditorName,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, card)
}

func (h *handlers) deleteCard(c echo.Context) error {
	_, err := h.svc.Cards.DeleteCard(c.Request().Context(), c.Param("id"), c.Param("listId"), c.Param("cardId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func decode(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	if err := dec.Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

// fail maps an error to its status and JSON body
func (h *handlers) fail(c echo.Context, err error) error {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.Path()).Error("request failed")
		msg = "internal error"
	}
	return c.JSON(status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

func classify(err error) (int, string) {
	var nf *models.NotFoundError
	switch {
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.As(err, &nf):
		if nf.Kind == models.KindBoard {
			return http.StatusNotFound, string(events.CodeBoardNotFound)
		}
		return http.StatusNotFound, string(events.CodeNotFound)
	case models.IsValidation(err):
		return http.StatusUnprocessableEntity, string(events.CodeValidationFailed)
	default:
		return http.StatusInternalServerError, string(events.CodeInternal)
	}
}
