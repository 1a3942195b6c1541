package db

import (
	"cmp"
	"slices"
	"sync"

	"cmdapi/model"
)

// Memory is a Store held entirely in process memory.
type Memory struct {
	mu       sync.RWMutex
	commands []model.Command
	lastID   int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) List() ([]model.Command, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Command, len(m.commands))
	copy(out, m.commands)
	return out, nil
}

func (m *Memory) Get(id int64) (model.Command, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return model.Command{}, false, nil
	}
	return m.commands[i], true, nil
}

func (m *Memory) Create(c model.Command) (model.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	c.ID = m.lastID
	m.commands = append(m.commands, c)
	return c, nil
}

func (m *Memory) Update(id int64, c model.Command) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return false, nil
	}
	stored := &m.commands[i]
	stored.HowTo = c.HowTo
	stored.Platform = c.Platform
	stored.CommandLine = c.CommandLine
	return true, nil
}

func (m *Memory) Remove(id int64) (model.Command, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return model.Command{}, false, nil
	}
	removed := m.commands[i]
	m.commands = append(m.commands[:i], m.commands[i+1:]...)
	return removed, true, nil
}

func (m *Memory) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.commands), nil
}

func (m *Memory) Close() error {
	return nil
}

// indexOf relies on commands being sorted by id, which holds because ids
// are assigned in increasing order and only appended. Caller holds mu.
func (m *Memory) indexOf(id int64) int {
	i, found := slices.BinarySearchFunc(m.commands, id, func(c model.Command, id int64) int {
		return cmp.Compare(c.ID, id)
	})
	if !found {
		return -1
	}
	return i
}
