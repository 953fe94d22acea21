package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPullPaging(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "u", user)
		require.Equal(t, "p", pass)
		require.Equal(t, "/students", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("option"))

		page := r.URL.Query().Get("page")
		if page == "1" {
			people := make([]Person, 100)
			for i := range people {
				people[i] = Person{PersonPK: i + 1, LastName: fmt.Sprintf("Last%d", i+1)}
			}
			_ = json.NewEncoder(w).Encode(people)
			return
		}
		_ = json.NewEncoder(w).Encode([]Person{{PersonPK: 101, LastName: "Tail"}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "u", "p")
	people, err := c.Pull(context.Background(), "students", url.Values{"option": {"2"}})
	require.NoError(t, err)
	require.Len(t, people, 101)
	require.Equal(t, 101, people[100].PersonPK)
}

func TestHousehold(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/households/77", r.URL.Path)
		_, _ = w.Write([]byte(`{"household":{"household_pk":77,"address_1":"1 Main St","city":"Springfield"}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "u", "p")
	h, err := c.Household(context.Background(), 77)
	require.NoError(t, err)
	require.Equal(t, 77, h.HouseholdPK)
	require.Equal(t, "1 Main St", Str(h.Address1))
	require.Nil(t, h.Address2)
}

func TestPullErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "u", "bad")
	_, err := c.Pull(context.Background(), "students", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
