package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

func TestNormalize(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		payload := []byte(`{
			"phone_number": "+5511999990000",
			"nome": "Maria",
			"empresa": "Acme",
			"cidade": "Sao Paulo",
			"tipo_midia": "outdoor",
			"periodo": "30d",
			"orcamento": "5000",
			"mensagens": [
				{"text": "hello", "origem": "cliente"},
				{"text": "hi there", "origem": "owner"}
			]
		}`)

		ev, err := Normalize(payload)
		require.NoError(t, err)
		require.Equal(t, "+5511999990000", ev.ContactID)
		require.Equal(t, "Maria", ev.Attributes[types.AttrName])
		require.Equal(t, "Acme", ev.Attributes[types.AttrCompany])
		require.Equal(t, "Sao Paulo", ev.Attributes[types.AttrCity])
		require.Equal(t, "outdoor", ev.Attributes[types.AttrMediaType])
		require.Equal(t, "30d", ev.Attributes[types.AttrPeriod])
		require.Equal(t, "5000", ev.Attributes[types.AttrBudget])

		require.Len(t, ev.Messages, 2)
		require.Equal(t, "hello", ev.Messages[0].Text)
		require.Equal(t, types.OriginContact, ev.Messages[0].Origin)
		require.Equal(t, types.OriginOwner, ev.Messages[1].Origin)
	})

	t.Run("eventData wrapper", func(t *testing.T) {
		payload := []byte(`{"eventData": {"from": "+5511888880000", "name": "Jo"}}`)

		ev, err := Normalize(payload)
		require.NoError(t, err)
		require.Equal(t, "+5511888880000", ev.ContactID)
		require.Equal(t, "Jo", ev.Attributes[types.AttrName])
	})

	t.Run("sender fallback and single text", func(t *testing.T) {
		payload := []byte(`{"sender": "+5511777770000", "text": "first contact"}`)

		ev, err := Normalize(payload)
		require.NoError(t, err)
		require.Equal(t, "+5511777770000", ev.ContactID)
		require.Len(t, ev.Messages, 1)
		require.Equal(t, "first contact", ev.Messages[0].Text)
		require.Equal(t, types.OriginContact, ev.Messages[0].Origin)
	})

	t.Run("english attribute keys", func(t *testing.T) {
		payload := []byte(`{"from": "+5511666660000", "company": "Globex", "budget": "900"}`)

		ev, err := Normalize(payload)
		require.NoError(t, err)
		require.Equal(t, "Globex", ev.Attributes[types.AttrCompany])
		require.Equal(t, "900", ev.Attributes[types.AttrBudget])
		require.NotContains(t, ev.Attributes, types.AttrName)
	})

	t.Run("missing phone", func(t *testing.T) {
		_, err := Normalize([]byte(`{"nome": "Maria"}`))
		require.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := Normalize([]byte(`{}`))
		require.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Normalize([]byte(`{not json`))
		require.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("skips malformed message entries", func(t *testing.T) {
		payload := []byte(`{"from": "+5511555550000", "messages": ["bogus", {"origem": "cliente"}, {"text": "ok"}]}`)

		ev, err := Normalize(payload)
		require.NoError(t, err)
		require.Len(t, ev.Messages, 1)
		require.Equal(t, "ok", ev.Messages[0].Text)
	})
}
