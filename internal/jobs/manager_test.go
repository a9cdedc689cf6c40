package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopcrawl/shopcrawl/internal/session"
	"github.com/shopcrawl/shopcrawl/internal/sites"
)

func TestCreateJobRejectsUnknownSite(t *testing.T) {
	m := NewManager(nil, sites.Default(), nil, nil, session.Config{}, nil)

	_, err := m.CreateJob(context.Background(), "nosuchsite", "shoes", 2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown site")
}

func TestCreateJobRejectsEmptyQuery(t *testing.T) {
	m := NewManager(nil, sites.Default(), nil, nil, session.Config{}, nil)

	_, err := m.CreateJob(context.Background(), "flipkart", "", 2)
	assert.Error(t, err)
}
