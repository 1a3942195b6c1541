package handler

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"cmdapi/db"
	"cmdapi/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, db.Store) {
	t.Helper()
	store := db.NewMemory()
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func awesome() model.Command {
	return model.Command{
		HowTo:       "Do Something Awesome",
		Platform:    "some platform",
		CommandLine: "some command line",
	}
}

// seed creates n commands and returns the last one.
func seed(t *testing.T, h *Handler, n int) model.Command {
	t.Helper()
	var last model.Command
	for range n {
		r := h.CreateCommand(awesome())
		require.Equal(t, StatusCreated, r.Status)
		last = *r.Command
	}
	return last
}

func count(t *testing.T, s db.Store) int {
	t.Helper()
	n, err := s.Count()
	require.NoError(t, err)
	return n
}

func TestListCommands_EmptyStore(t *testing.T) {
	h, _ := newTestHandler(t)

	r := h.ListCommands()
	assert.Equal(t, StatusOK, r.Status)
	assert.NotNil(t, r.Commands)
	assert.Empty(t, r.Commands)
}

func TestListCommands_LengthTracksStore(t *testing.T) {
	h, s := newTestHandler(t)

	for i := 1; i <= 3; i++ {
		seed(t, h, 1)
		r := h.ListCommands()
		require.Equal(t, StatusOK, r.Status)
		assert.Len(t, r.Commands, i)
		assert.Equal(t, count(t, s), len(r.Commands))
	}
}

func TestCreateCommand(t *testing.T) {
	h, _ := newTestHandler(t)

	r := h.CreateCommand(awesome())
	require.Equal(t, StatusCreated, r.Status)
	require.NotNil(t, r.Command)
	assert.NotZero(t, r.Command.ID)
	assert.Equal(t, "Do Something Awesome", r.Command.HowTo)
	assert.Equal(t, "some platform", r.Command.Platform)
	assert.Equal(t, "some command line", r.Command.CommandLine)
	assert.Equal(t, &Route{Name: RouteGetCommand, ID: r.Command.ID}, r.Route)

	list := h.ListCommands()
	assert.Len(t, list.Commands, 1)

	got := h.GetCommand(r.Command.ID)
	require.Equal(t, StatusOK, got.Status)
	assert.Equal(t, *r.Command, *got.Command)
}

func TestCreateCommand_IgnoresCallerID(t *testing.T) {
	h, _ := newTestHandler(t)

	in := awesome()
	in.ID = 1234
	r := h.CreateCommand(in)
	require.Equal(t, StatusCreated, r.Status)
	assert.NotEqual(t, int64(1234), r.Command.ID)

	assert.Equal(t, StatusNotFound, h.GetCommand(1234).Status)
}

func TestCreateCommand_StoreFailureIsBadRequest(t *testing.T) {
	h := New(failingStore{}, nil)

	r := h.CreateCommand(awesome())
	assert.Equal(t, StatusBadRequest, r.Status)
	assert.ErrorIs(t, r.Err, errDisk)
	assert.Nil(t, r.Command)
}

func TestGetCommand_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	c := seed(t, h, 1)

	for _, id := range []int64{-1, 0, c.ID + 1} {
		r := h.GetCommand(id)
		assert.Equal(t, StatusNotFound, r.Status, "id %d", id)
		assert.ErrorIs(t, r.Err, ErrNotFound)
		assert.Nil(t, r.Command)
	}

	require.Equal(t, StatusOK, h.DeleteCommand(c.ID).Status)
	assert.Equal(t, StatusNotFound, h.GetCommand(c.ID).Status)
}

func TestReplaceCommand(t *testing.T) {
	h, _ := newTestHandler(t)
	c := seed(t, h, 5)
	require.Equal(t, int64(5), c.ID)

	repl := model.Command{ID: 5, HowTo: "Updated", Platform: "linux", CommandLine: "ls -la"}
	r := h.ReplaceCommand(5, repl)
	assert.Equal(t, StatusNoContent, r.Status)
	assert.Nil(t, r.Command)

	got := h.GetCommand(5)
	require.Equal(t, StatusOK, got.Status)
	assert.Equal(t, repl, *got.Command)
}

func TestReplaceCommand_IDMismatch(t *testing.T) {
	h, _ := newTestHandler(t)
	c := seed(t, h, 5)
	before := h.GetCommand(c.ID)

	repl := model.Command{ID: 5, HowTo: "UPDATED", Platform: "UPDATED", CommandLine: "UPDATED"}
	r := h.ReplaceCommand(6, repl)
	assert.Equal(t, StatusBadRequest, r.Status)
	assert.ErrorIs(t, r.Err, ErrIDMismatch)

	after := h.GetCommand(c.ID)
	assert.Equal(t, *before.Command, *after.Command)
}

func TestReplaceCommand_IDMismatchNeverReachesStore(t *testing.T) {
	h := New(failingStore{}, nil)

	r := h.ReplaceCommand(2, model.Command{ID: 1})
	assert.Equal(t, StatusBadRequest, r.Status)
	assert.ErrorIs(t, r.Err, ErrIDMismatch)
}

func TestReplaceCommand_NotFound(t *testing.T) {
	h, s := newTestHandler(t)
	seed(t, h, 1)

	r := h.ReplaceCommand(42, model.Command{ID: 42, HowTo: "x"})
	assert.Equal(t, StatusNotFound, r.Status)
	assert.Equal(t, 1, count(t, s))
}

func TestDeleteCommand(t *testing.T) {
	h, s := newTestHandler(t)
	c := seed(t, h, 2)
	before := count(t, s)

	r := h.DeleteCommand(c.ID)
	require.Equal(t, StatusOK, r.Status)
	assert.Equal(t, c, *r.Command)
	assert.Equal(t, before-1, count(t, s))
	assert.Equal(t, StatusNotFound, h.GetCommand(c.ID).Status)
}

func TestDeleteCommand_NotFound(t *testing.T) {
	tests := []struct {
		name string
		id   int64
	}{
		{"negative", -1},
		{"zero", 0},
		{"past last", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s := newTestHandler(t)
			seed(t, h, 2)

			r := h.DeleteCommand(tt.id)
			assert.Equal(t, StatusNotFound, r.Status)
			assert.Equal(t, 2, count(t, s))
		})
	}
}

func TestPersistenceFailures(t *testing.T) {
	h := New(failingStore{}, nil)

	for name, r := range map[string]Result{
		"list":    h.ListCommands(),
		"get":     h.GetCommand(1),
		"replace": h.ReplaceCommand(1, model.Command{ID: 1}),
		"delete":  h.DeleteCommand(1),
	} {
		assert.Equal(t, StatusPersistenceFailure, r.Status, name)
		assert.ErrorIs(t, r.Err, errDisk, name)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "not-found", StatusNotFound.String())
	assert.Equal(t, "persistence-failure", StatusPersistenceFailure.String())
	assert.Equal(t, "unknown", Status(99).String())
}

var errDisk = errors.New("disk on fire")

type failingStore struct{}

func (failingStore) List() ([]model.Command, error) { return nil, errDisk }
func (failingStore) Get(int64) (model.Command, bool, error) {
	return model.Command{}, false, errDisk
}
func (failingStore) Create(model.Command) (model.Command, error) {
	return model.Command{}, errDisk
}
func (failingStore) Update(int64, model.Command) (bool, error) { return false, errDisk }
func (failingStore) Remove(int64) (model.Command, bool, error) {
	return model.Command{}, false, errDisk
}
func (failingStore) Count() (int, error) { return 0, errDisk }
func (failingStore) Close() error        { return nil }
