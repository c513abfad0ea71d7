package bindgen

import (
	"context"
	"errors"
)

// mockGenerator records requests and returns a canned result.
type mockGenerator struct {
	reqs []Request
	out  []byte
	fail bool
}

func (m *mockGenerator) FileName() string { return "bindings.mock" }

func (m *mockGenerator) Generate(_ context.Context, req Request) ([]byte, error) {
	m.reqs = append(m.reqs, req)
	if m.fail {
		return nil, errors.New("cannot parse libv4l2.h")
	}
	return m.out, nil
}
