package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-token/pkg/config"
	"github.com/tendant/simple-token/pkg/settings"
)

type failingRepo struct{}

func (failingRepo) ListServices(context.Context) ([]Service, error) {
	return nil, errors.New("registry offline")
}

func newRepo() *InMemRepository {
	repo := NewInMemRepository()
	repo.Add(Service{ID: 7, Shortname: "fake WS", Name: "Fake web service"})
	repo.Add(Service{Shortname: "", Name: "No shortname"})
	repo.Add(Service{Shortname: "mobile", Name: "Mobile app"})
	return repo
}

func TestSupportedServices(t *testing.T) {
	c := NewCatalog(newRepo(), settings.Snapshot{})

	got, err := c.SupportedServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(7), got["fake WS"].ID)
	assert.Equal(t, "mobile", got["mobile"].Shortname)

	list, err := c.ListSupported(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Fake web service", list[0].Name)
	assert.Equal(t, "Mobile app", list[1].Name)
}

func TestEnabledServices(t *testing.T) {
	c := NewCatalog(newRepo(), settings.Snapshot{Services: config.ParseList("test,1, null, , ,0,false")})
	assert.Equal(t, []string{"test", "1", " null", "0", "false"}, c.EnabledServices())

	assert.Equal(t, []string{}, NewCatalog(newRepo(), settings.Snapshot{}).EnabledServices())
}

func TestIsServiceEnabled(t *testing.T) {
	c := NewCatalog(newRepo(), settings.Snapshot{Services: config.ParseList("fake WS, mobile")})

	assert.True(t, c.IsServiceEnabled("fake WS"))
	assert.False(t, c.IsServiceEnabled(" fake WS"))
	assert.False(t, c.IsServiceEnabled("fake WS "))
	assert.False(t, c.IsServiceEnabled("mobile"))
	assert.True(t, c.IsServiceEnabled(" mobile"))
	assert.False(t, c.IsServiceEnabled(""))
}

func TestServiceByShortname(t *testing.T) {
	c := NewCatalog(newRepo(), settings.Snapshot{})
	ctx := context.Background()

	s, err := c.ServiceByShortname(ctx, "fake WS")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(7), s.ID)

	s, err = c.ServiceByShortname(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = c.ServiceByShortname(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = NewCatalog(failingRepo{}, settings.Snapshot{}).ServiceByShortname(ctx, "fake WS")
	assert.ErrorContains(t, err, "registry offline")
}
