// Package i18n looks up localised strings. The catalogue is embedded and
// loaded into a universal-translator, which also serves the validator
// messages.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Domains of the catalogue.
const (
	DomainSlider = "slider"
	DomainCore   = "core"
)

const catalogueFile = "lang/en.yaml"

//go:embed lang/*.yaml
var langFS embed.FS

// Strings is the localised string lookup handed to handlers and the renderer.
type Strings interface {
	GetString(key, domain string, params ...string) string
}

// Catalog implements Strings on top of a universal-translator.
type Catalog struct {
	trans ut.Translator
}

// New loads the embedded english catalogue.
func New() (*Catalog, error) {
	raw, err := langFS.ReadFile(catalogueFile)
	if err != nil {
		return nil, err
	}

	var domains map[string]map[string]string
	if err = yaml.Unmarshal(raw, &domains); err != nil {
		return nil, fmt.Errorf("parse %s: %w", catalogueFile, err)
	}

	english := en.New()
	uni := ut.New(english, english)

	trans, _ := uni.GetTranslator(english.Locale())

	for domain, keys := range domains {
		for key, text := range keys {
			if err = trans.Add(id(key, domain), text, false); err != nil {
				return nil, fmt.Errorf("add %s: %w", id(key, domain), err)
			}
		}
	}

	return &Catalog{trans: trans}, nil
}

func id(key, domain string) string {
	return domain + ":" + key
}

// GetString returns the text for key in domain with {n} placeholders
// replaced by params. A missing key renders as [[key]].
func (c *Catalog) GetString(key, domain string, params ...string) string {
	text, err := c.trans.T(id(key, domain), params...)
	if err != nil {
		log.Debug().Str("key", key).Str("domain", domain).Msg("missing string")
		return "[[" + key + "]]"
	}

	return text
}

// RegisterValidator installs the english validator messages.
func (c *Catalog) RegisterValidator(v *validator.Validate) error {
	return entranslations.RegisterDefaultTranslations(v, c.trans)
}

// ValidationMessages turns a validator error into sorted user facing
// messages. Other errors are returned as their text.
func (c *Catalog) ValidationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(verrs))
	for _, msg := range verrs.Translate(c.trans) {
		messages = append(messages, msg)
	}

	sort.Strings(messages)

	return messages
}
