package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chamberPage = `<html><body>
<div class="gz-directory-card">
  <h5 class="gz-card-title"><a href="/members/ohana-plumbing">Ohana Plumbing</a></h5>
  <li class="gz-card-address">98-027 Hekaha St, Aiea, HI 96701</li>
  <li class="gz-card-phone">(808) 555-0142</li>
  <li class="gz-card-website"><a href="https://ohanaplumbing.example">Visit Site</a></li>
  <div class="gz-card-categories">Contractors</div>
  <p class="gz-card-excerpt">Family owned plumbing since 1978.</p>
</div>
<div itemscope itemtype="http://schema.org/LocalBusiness">
  <span itemprop="name">Lihue Dental Group</span>
  <span itemprop="telephone">808.555.0199</span>
  <span itemprop="address">4366 Kukui Grove St, Lihue, HI 96766</span>
  <a itemprop="url" href="https://lihuedental.example/">lihuedental.example</a>
  <span itemprop="description">General and family dentistry.</span>
</div>
<article class="directory-listing">
  <h3>Hilo Farm Supply</h3>
  <p>Serving growers across Hilo and Puna.</p>
  <a href="tel:+18085550111">Call</a>
</article>
<div class="listing"><p>No name here</p></div>
</body></html>`

func TestParseListings(t *testing.T) {
	doc, err := parseHTML([]byte(chamberPage))
	require.NoError(t, err)

	got := parseListings(doc, mustURL(t, "https://chamber.example/directory"))
	require.Len(t, got, 4)

	plumbing := got[0]
	assert.Equal(t, "Ohana Plumbing", plumbing.Name)
	assert.Equal(t, "98-027 Hekaha St, Aiea, HI 96701", plumbing.Address)
	assert.Equal(t, "(808) 555-0142", plumbing.Phone)
	assert.Equal(t, "https://ohanaplumbing.example", plumbing.Website)
	assert.Equal(t, "Contractors", plumbing.Industry)
	assert.Equal(t, "Family owned plumbing since 1978.", plumbing.Description)
	assert.Equal(t, "https://chamber.example/members/ohana-plumbing", plumbing.SourceURL)

	dental := got[1]
	assert.Equal(t, "Lihue Dental Group", dental.Name)
	assert.Equal(t, "808.555.0199", dental.Phone)
	assert.Equal(t, "https://lihuedental.example/", dental.Website)
	assert.Equal(t, "General and family dentistry.", dental.Description)

	farm := got[2]
	assert.Equal(t, "Hilo Farm Supply", farm.Name)
	assert.Equal(t, "Hilo", farm.IslandText, "location is read from the listing text when no address is marked")
	assert.Equal(t, "+18085550111", farm.Phone)

	assert.Empty(t, got[3].Name)
}

func TestDirectoryAdapter_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/directory" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, chamberPage)
	}))
	defer srv.Close()

	a := NewDirectoryAdapter(testClient(), DirectoryConfig{
		URLs: []string{srv.URL + "/directory", srv.URL + "/gone"},
	}, nil)
	got, err := drain(t, a.Fetch)

	require.NoError(t, err)
	assert.Equal(t, []string{"Ohana Plumbing", "Lihue Dental Group", "Hilo Farm Supply"}, names(got))
	for _, c := range got {
		assert.Equal(t, DirectorySource, c.Source)
		assert.NotEmpty(t, c.SourceURL)
	}
	assert.Equal(t, srv.URL+"/directory", got[2].SourceURL)
}

func TestDirectoryAdapter_AllPagesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewDirectoryAdapter(testClient(), DirectoryConfig{URLs: []string{srv.URL}}, nil)
	_, err := drain(t, a.Fetch)
	assert.ErrorContains(t, err, "status 500")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, a.Fetch(ctx, nil), context.Canceled)
}

func TestParseListings_LocationNeedsWholeWord(t *testing.T) {
	page := `<html><body>
<div class="listing"><h3>Konami Amusements</h3><p>Our philosophy is fun.</p></div>
<div class="listing"><h3>Kona Kai Realty</h3><p>Homes across Kona.</p></div>
</body></html>`
	doc, err := parseHTML([]byte(page))
	require.NoError(t, err)

	got := parseListings(doc, mustURL(t, "https://chamber.example/directory"))

	require.Len(t, got, 2)
	assert.Empty(t, got[0].IslandText)
	assert.Equal(t, "Kona", got[1].IslandText)
}
