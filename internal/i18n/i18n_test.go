package i18n_test

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSlider/GoSlider/internal/i18n"
)

func TestGetString(t *testing.T) {
	c, err := i18n.New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		key    string
		domain string
		params []string
		want   string
	}{
		{name: "slider string", key: "deleted", domain: i18n.DomainSlider, want: "Slide deleted"},
		{name: "core string", key: "previous", domain: i18n.DomainCore, want: "Previous"},
		{name: "params", key: "page_of", domain: i18n.DomainCore, params: []string{"2", "5"}, want: "Page 2 of 5"},
		{name: "missing key", key: "nope", domain: i18n.DomainSlider, want: "[[nope]]"},
		{name: "wrong domain", key: "deleted", domain: i18n.DomainCore, want: "[[deleted]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.GetString(tt.key, tt.domain, tt.params...))
		})
	}
}

func TestValidationMessages(t *testing.T) {
	c, err := i18n.New()
	require.NoError(t, err)

	v := validator.New()
	require.NoError(t, c.RegisterValidator(v))

	type form struct {
		Width string `validate:"omitempty,numeric"`
		Name  string `validate:"required"`
	}

	msgs := c.ValidationMessages(v.Struct(form{Width: "abc"}))
	assert.Equal(t, []string{"Name is a required field", "Width must be a valid numeric value"}, msgs)

	assert.Equal(t, []string{"boom"}, c.ValidationMessages(errors.New("boom")))
}
