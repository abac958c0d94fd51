package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

func newTestZaia(t *testing.T, handler http.HandlerFunc) *ZaiaClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewZaiaClient(ZaiaConfig{
		BaseURL: srv.URL,
		Token:   "test-token",
	})
	require.NoError(t, err)

	return client
}

func TestNewZaiaClientValidation(t *testing.T) {
	_, err := NewZaiaClient(ZaiaConfig{Token: "x"})
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, err = NewZaiaClient(ZaiaConfig{BaseURL: "https://api.example"})
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestZaiaNotifyAssignment(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]string
	)
	client := newTestZaia(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	lead := &types.Lead{
		ID:        "lead-1",
		ContactID: "+5511999990000",
		Attributes: map[string]string{
			types.AttrName:    "Maria",
			types.AttrCompany: "Acme",
			types.AttrBudget:  "5000",
		},
	}
	owner := &types.Owner{ID: 2, DisplayName: "Bob", ContactHandle: "+5511777770000", RoutingTag: "bob"}
	result := types.ResultFor(true, lead, owner)

	require.NoError(t, client.NotifyAssignment(context.Background(), result, lead))

	require.Equal(t, "/messages/send", gotPath)
	require.Equal(t, "Bearer test-token", gotAuth)
	require.Equal(t, "+5511777770000", gotBody["to"])
	require.Equal(t, "text", gotBody["type"])
	require.Contains(t, gotBody["text"], "New qualified lead")
	require.Contains(t, gotBody["text"], "Maria")
	require.Contains(t, gotBody["text"], "Acme")
	require.Contains(t, gotBody["text"], "5000")
}

func TestZaiaTagContact(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]string
	)
	client := newTestZaia(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.TagContact(context.Background(), "+5511999990000", "bob"))

	require.Equal(t, "/contacts/tag", gotPath)
	require.Equal(t, "+5511999990000", gotBody["phone"])
	require.Equal(t, "bob", gotBody["tag"])
}

func TestZaiaAPIError(t *testing.T) {
	client := newTestZaia(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	err := client.TagContact(context.Background(), "+5511999990000", "bob")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
	require.Contains(t, err.Error(), "upstream unavailable")
}

func TestZaiaContacts(t *testing.T) {
	client := newTestZaia(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/contacts", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"contacts": []types.PlatformContact{
				{Phone: "+5511111110000", Name: "Ana", Tag: "alice"},
				{Phone: "+5511222220000"},
			},
		})
	})

	contacts, err := client.Contacts(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	require.Equal(t, "Ana", contacts[0].Name)
	require.Equal(t, "+5511222220000", contacts[1].Phone)
}

func TestSummaryTextReturningLead(t *testing.T) {
	lead := &types.Lead{
		ID:        "lead-1",
		ContactID: "+5511999990000",
		Attributes: map[string]string{
			types.AttrName: "Maria",
		},
	}
	owner := &types.Owner{ID: 1, DisplayName: "Alice"}
	result := types.ResultFor(false, lead, owner)

	text := SummaryText(result, lead)
	require.Contains(t, text, "Lead returned")
	require.Contains(t, text, "Maria")
	require.Contains(t, text, "not provided")
}
