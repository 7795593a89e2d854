package oidc

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSlider/GoSlider/internal/web/handler/handlertest"
)

func TestState(t *testing.T) {
	s := Service{states: make(map[string]time.Time)}
	now := time.Now()

	s.putState("a", now)
	assert.True(t, s.takeState("a", now.Add(time.Minute)))
	assert.False(t, s.takeState("a", now.Add(time.Minute)), "a state is accepted once")

	s.putState("b", now)
	assert.False(t, s.takeState("b", now.Add(stateTTL+time.Second)))

	s.putState("c", now)
	s.putState("d", now.Add(stateTTL+time.Second))
	assert.NotContains(t, s.states, "c")
	assert.Contains(t, s.states, "d")
}

func TestInit_WithoutProvider(t *testing.T) {
	env := handlertest.New(t)
	require.NoError(t, new(Service).Init(env.App, env.Deps))

	resp := env.Get(t, LoginPath, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
