package core

import (
	"context"

	"github.com/agenthands/almanac/internal/core/model"
)

type MockOracle struct {
	Response      string
	ResponseQueue []string
	Err           error
	LastSystem    string
	LastUser      string
}

func (m *MockOracle) Chat(ctx context.Context, system, user string) (string, error) {
	m.LastSystem = system
	m.LastUser = user
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

type MockGeocoder struct {
	Coords  model.Coordinates
	Address string
	Err     error
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (model.Coordinates, string, error) {
	if m.Err != nil {
		return model.Coordinates{}, "", m.Err
	}
	return m.Coords, m.Address, nil
}
