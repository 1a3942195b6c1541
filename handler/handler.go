// Package handler maps the five command operations onto a db.Store and
// reports each outcome as a Result.
package handler

import (
	"errors"
	"log/slog"

	"cmdapi/db"
	"cmdapi/model"
)

// Status is the closed set of outcomes an operation can produce.
type Status int

const (
	StatusOK Status = iota
	StatusCreated
	StatusNoContent
	StatusNotFound
	StatusBadRequest
	StatusPersistenceFailure
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCreated:
		return "created"
	case StatusNoContent:
		return "no-content"
	case StatusNotFound:
		return "not-found"
	case StatusBadRequest:
		return "bad-request"
	case StatusPersistenceFailure:
		return "persistence-failure"
	default:
		return "unknown"
	}
}

// RouteGetCommand names the operation that reads back a single command.
const RouteGetCommand = "GetCommand"

// Route is a reference to another operation, e.g. where a created command
// can be fetched.
type Route struct {
	Name string
	ID   int64
}

// Result is what every operation returns. Exactly one of Command and
// Commands is set for StatusOK/StatusCreated; Err carries the cause of a
// failure status.
type Result struct {
	Status   Status
	Command  *model.Command
	Commands []model.Command
	Route    *Route
	Err      error
}

var (
	ErrNotFound   = errors.New("command not found")
	ErrIDMismatch = errors.New("command id does not match request id")
)

type Handler struct {
	store  db.Store
	logger *slog.Logger
}

func New(store db.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

func (h *Handler) ListCommands() Result {
	commands, err := h.store.List()
	if err != nil {
		return h.persistenceFailure("list", 0, err)
	}
	return Result{Status: StatusOK, Commands: commands}
}

func (h *Handler) GetCommand(id int64) Result {
	c, ok, err := h.store.Get(id)
	if err != nil {
		return h.persistenceFailure("get", id, err)
	}
	if !ok {
		return notFound()
	}
	return Result{Status: StatusOK, Command: &c}
}

// CreateCommand stores c under a new id; any id carried by c is discarded.
func (h *Handler) CreateCommand(c model.Command) Result {
	created, err := h.store.Create(c.Fields())
	if err != nil {
		h.logger.Warn("create command rejected", "err", err)
		return Result{Status: StatusBadRequest, Err: err}
	}
	h.logger.Debug("command created", "id", created.ID)
	return Result{
		Status:  StatusCreated,
		Command: &created,
		Route:   &Route{Name: RouteGetCommand, ID: created.ID},
	}
}

// ReplaceCommand overwrites the text fields of command id with c. c.ID must
// equal id; a mismatch is rejected before the store is consulted.
func (h *Handler) ReplaceCommand(id int64, c model.Command) Result {
	if !c.MatchesID(id) {
		h.logger.Debug("replace id mismatch", "id", id, "body_id", c.ID)
		return Result{Status: StatusBadRequest, Err: ErrIDMismatch}
	}
	ok, err := h.store.Update(id, c)
	if err != nil {
		return h.persistenceFailure("replace", id, err)
	}
	if !ok {
		return notFound()
	}
	h.logger.Debug("command replaced", "id", id)
	return Result{Status: StatusNoContent}
}

func (h *Handler) DeleteCommand(id int64) Result {
	removed, ok, err := h.store.Remove(id)
	if err != nil {
		return h.persistenceFailure("delete", id, err)
	}
	if !ok {
		return notFound()
	}
	h.logger.Debug("command deleted", "id", id)
	return Result{Status: StatusOK, Command: &removed}
}

func notFound() Result {
	return Result{Status: StatusNotFound, Err: ErrNotFound}
}

func (h *Handler) persistenceFailure(op string, id int64, err error) Result {
	h.logger.Error("store failure", "op", op, "id", id, "err", err)
	return Result{Status: StatusPersistenceFailure, Err: err}
}
