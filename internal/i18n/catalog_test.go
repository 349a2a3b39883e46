package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	tags := c.Locales()
	require.NotEmpty(t, tags)
	assert.Equal(t, language.English, tags[0])
	assert.Contains(t, tags, language.French)
}

func TestMatch(t *testing.T) {
	c := MustLoad()

	tests := []struct {
		header string
		want   language.Tag
	}{
		{"", language.English},
		{"fr-CA,fr;q=0.9,en;q=0.8", language.French},
		{"fr", language.French},
		{"de-DE", language.English},
		{"en-GB", language.English},
		{"not a header;;", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := c.Match(tt.header)
			base, _ := got.Base()
			wantBase, _ := tt.want.Base()
			assert.Equal(t, wantBase, base)
		})
	}
}

func TestMessagesFallback(t *testing.T) {
	c := MustLoad()

	fr := c.Messages(language.French, "EditShapePanel")
	assert.Equal(t, "Pas de tracé associé à cette circulation.", fr.Get("noShape"))
	assert.Equal(t, "missingKey", fr.Get("missingKey"))

	unknown := c.Messages(language.Japanese, "EditShapePanel")
	assert.Equal(t, "No shape associated with this pattern.", unknown.Get("noShape"))

	fr.primary = map[string]string{}
	assert.Equal(t, "No shape associated with this pattern.", fr.Get("noShape"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Required for booking_type 2",
		Format("Required for booking_type %bookingType%", map[string]string{"bookingType": "2"}))
	assert.Equal(t, "a %b% c", Format("a %b% c", nil))
	assert.Equal(t, "x and %y%", Format("%x% and %y%", map[string]string{"x": "x"}))

	m := MustLoad().Messages(language.English, "BookingRuleValidation")
	assert.Equal(t, "Forbidden for booking_type 0 if prior_notice_duration_max is defined",
		m.Format("forbiddenForBookingTypeIfDefined", map[string]string{"bookingType": "0", "field": "prior_notice_duration_max"}))
}

func TestEveryLocaleCoversEnglishKeys(t *testing.T) {
	c := MustLoad()
	english := c.entries[language.English]
	for _, tag := range c.Locales() {
		for component, keys := range english {
			for key := range keys {
				_, ok := c.entries[tag][component][key]
				assert.True(t, ok, "%s is missing %s.%s", tag, component, key)
			}
		}
	}
}
